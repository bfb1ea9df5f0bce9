package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// MeasurementDeviceCommand is the measurement holding control history.
const MeasurementDeviceCommand = "device_command"

// CommandRecord is one terminal control outcome.
type CommandRecord struct {
	CommandID string
	UserID    int64
	DeviceID  int64
	Action    string

	// Result is one of published, denied, invalid, failed.
	Result string

	Time time.Time
}

// RecordCommand queues a device_command point. Tags are kept low-cardinality
// (ids, action, result); the command id is a field. Dropped silently when
// the client is closed.
//
// Example:
//
//	client.RecordCommand(influxdb.CommandRecord{
//	    CommandID: cmd.ID, UserID: 7, DeviceID: 42, Action: "on", Result: "published",
//	})
func (c *Client) RecordCommand(rec CommandRecord) {
	if !c.IsConnected() {
		return
	}
	c.writeAPI.WritePoint(commandPoint(rec))
}

func commandPoint(rec CommandRecord) *write.Point {
	ts := rec.Time
	if ts.IsZero() {
		ts = time.Now()
	}

	fields := map[string]any{
		"count": 1,
	}
	if rec.CommandID != "" {
		fields["command_id"] = rec.CommandID
	}

	return write.NewPoint(
		MeasurementDeviceCommand,
		map[string]string{
			"user_id":   strconv.FormatInt(rec.UserID, 10),
			"device_id": strconv.FormatInt(rec.DeviceID, 10),
			"action":    rec.Action,
			"result":    rec.Result,
		},
		fields,
		ts,
	)
}
