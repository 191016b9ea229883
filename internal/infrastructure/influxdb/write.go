package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/edoardob90/runits/internal/conversion"
)

// MeasurementConversions is the measurement conversion events are written to.
const MeasurementConversions = "conversions"

// RecordConversion writes one conversion event. It implements
// conversion.Recorder, so a Client can be handed straight to the engine.
//
// Unit names and dimension are tags; the values and the latency are fields.
func (c *Client) RecordConversion(ev conversion.Event) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(conversionPoint(ev, time.Now()))
}

func conversionPoint(ev conversion.Event, ts time.Time) *write.Point {
	tags := map[string]string{
		"from":   ev.From,
		"status": ev.Status,
	}
	// Failed parses of the target leave these empty; empty tag values are
	// rejected by line protocol.
	if ev.To != "" {
		tags["to"] = ev.To
	}
	if ev.Dimension != "" {
		tags["dimension"] = ev.Dimension
	}

	fields := map[string]interface{}{
		"value":       ev.Value,
		"duration_us": ev.Duration.Microseconds(),
	}
	if ev.Status == conversion.StatusOK {
		fields["result"] = ev.Result
	}
	return write.NewPoint(MeasurementConversions, tags, fields, ts)
}

// MeasurementRegistry receives one point each time a registry is published.
const MeasurementRegistry = "registry"

// RecordRegistry writes the size of a freshly published registry, tagged
// with the active system and duplicate-name policy.
func (c *Client) RecordRegistry(units int, system, policy string) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(registryPoint(units, system, policy, time.Now()))
}

func registryPoint(units int, system, policy string, ts time.Time) *write.Point {
	return write.NewPoint(MeasurementRegistry,
		map[string]string{"system": system, "policy": policy},
		map[string]interface{}{"units": units},
		ts)
}
