// Package responder answers unit conversion requests arriving over MQTT.
//
// A client publishes {"quantity": "3 ft", "target": "m"} on
// runits/request/convert/{id} and receives the result on
// runits/response/convert/{id}:
//
//	{"request_id": "id", "value": 0.9144, "unit": "m", "dimension": "length"}
//
// Failures carry error_code and error instead of a value. Codes are those
// of units.Code plus bad_request and non_finite_result.
package responder
