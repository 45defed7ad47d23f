package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteLightState records a light state observation to InfluxDB.
//
// This is the primary method for recording state history. Every reconciled
// state transition (device report, command echo, liveness change) produces
// one point. The write is non-blocking; data is batched and sent
// asynchronously.
//
// Parameters:
//   - deviceID: Unique identifier for the light (e.g., "light-living-01")
//   - on: Current power state
//   - online: Current liveness state
//   - brightness: Current brightness (0-100)
//
// Example:
//
//	client.WriteLightState("light-kitchen", true, true, 75)
func (c *Client) WriteLightState(deviceID string, on, online bool, brightness int) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"light_state",
		map[string]string{
			"device_id": deviceID,
		},
		map[string]interface{}{
			"on":         on,
			"online":     online,
			"brightness": brightness,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WriteCommand records an outbound device command.
//
// Used for auditing what was sent to which device and correlating
// commands against subsequent state reports.
//
// Parameters:
//   - deviceID: Device identifier
//   - command: Command name (e.g., "Power", "Dimmer")
//   - payload: The published payload
func (c *Client) WriteCommand(deviceID string, command string, payload string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"commands",
		map[string]string{
			"device_id": deviceID,
			"command":   command,
		},
		map[string]interface{}{
			"payload": payload,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("system_stats",
//	    map[string]string{"host": "core-01"},
//	    map[string]interface{}{"cpu_percent": 45.2, "memory_mb": 512})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}

// WritePointWithTime writes a custom point with a specific timestamp.
//
// Use this when the timestamp is not "now" (e.g., delayed data).
//
// Parameters:
//   - measurement: The measurement name
//   - tags: Key-value pairs for indexing
//   - fields: Key-value pairs for the data
//   - timestamp: The exact time for this data point
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, timestamp)
	c.writeAPI.WritePoint(point)
}
