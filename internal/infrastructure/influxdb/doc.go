// Package influxdb records control command history in InfluxDB v2.
//
// Each terminal control outcome becomes one device_command point tagged with
// user, device, action and result. The sink is optional: when disabled the
// control gateway simply skips it.
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // run without history
//	}
//	defer client.Close()
//
//	client.RecordCommand(influxdb.CommandRecord{UserID: 7, DeviceID: 42, Action: "on", Result: "published"})
//
// Writes are non-blocking and batched per batch_size / flush_interval;
// batch failures are delivered to the SetOnError callback.
package influxdb
