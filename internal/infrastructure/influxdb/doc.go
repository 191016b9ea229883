// Package influxdb records conversion telemetry in InfluxDB.
//
// It wraps the official influxdb-client-go v2 library. A connected Client
// implements conversion.Recorder and writes one point per conversion to the
// "conversions" measurement:
//
//	tags:   from, to, dimension, status
//	fields: value, result, duration_us
//
// RecordRegistry adds a "registry" point (tag system and policy, field
// units) when the server publishes its registry.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	engine.SetRecorder(client)
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval. Batch errors are delivered to the SetOnError callback;
// connection and health check errors are returned directly.
package influxdb
