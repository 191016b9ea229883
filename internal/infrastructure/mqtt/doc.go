// Package mqtt provides MQTT client connectivity for runits.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//
// runits uses MQTT as an alternative request/response transport to the
// HTTP API: clients publish conversion requests under runits/request/convert
// and receive replies under runits/response/convert.
//
// # Security Considerations
//
//   - Enable TLS for anything beyond a local broker (cfg.Broker.TLS=true)
//   - Payloads are not encrypted beyond TLS transport
//
// # Usage
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.AllConvertRequests(), 1,
//	    func(topic string, payload []byte) error {
//	        id, _ := mqtt.Topics{}.RequestID(topic)
//	        return client.Publish(mqtt.Topics{}.ConvertResponse(id), reply, 1, false)
//	    })
package mqtt
