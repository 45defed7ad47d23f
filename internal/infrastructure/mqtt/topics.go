package mqtt

import (
	"fmt"
	"strings"
)

// Topic prefixes for the device topic scheme.
//
// Per-device topics follow the Tasmota-style convention used by the
// light firmware:
//
//	cmnd/{deviceId}/...  commands to a device
//	stat/{deviceId}/...  state reports from a device
//	tele/{deviceId}/...  telemetry (liveness, heartbeat)
const (
	// TopicPrefixCommand is the base for device-addressed commands.
	TopicPrefixCommand = "cmnd"

	// TopicPrefixState is the base for device state reports.
	TopicPrefixState = "stat"

	// TopicPrefixTelemetry is the base for device telemetry.
	TopicPrefixTelemetry = "tele"

	// TopicDiscovery carries device announcements of shape "{id}:{address}".
	TopicDiscovery = "lights/discovery"

	// TopicDiscoveryRequest carries the discovery broadcast trigger.
	TopicDiscoveryRequest = "lights/discovery/request"

	// TopicSystemStatus carries this service's own online/offline status
	// (LWT and graceful shutdown).
	TopicSystemStatus = "lumen/status"
)

// Well-known payloads.
const (
	// PayloadOn / PayloadOff are the power command and state tokens.
	PayloadOn  = "ON"
	PayloadOff = "OFF"

	// PayloadOnline is the LWT liveness payload; any other value on the
	// LWT topic implies the device went offline.
	PayloadOnline = "Online"

	// PayloadStatusAll requests a full status report from a device.
	PayloadStatusAll = "0"

	// PayloadDiscover is the discovery broadcast trigger payload.
	PayloadDiscover = "discover"
)

// Topics provides builders for device topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{}
//	cmdTopic := topics.Power("esp-01")
//	// Returns: "cmnd/esp-01/Power"
type Topics struct{}

// Power returns the power command topic for a device.
//
// Example: cmnd/esp-01/Power (payload "ON"/"OFF")
func (Topics) Power(deviceID string) string {
	return fmt.Sprintf("%s/%s/Power", TopicPrefixCommand, deviceID)
}

// Dimmer returns the brightness command topic for a device.
//
// Example: cmnd/esp-01/Dimmer (payload "0".."100")
func (Topics) Dimmer(deviceID string) string {
	return fmt.Sprintf("%s/%s/Dimmer", TopicPrefixCommand, deviceID)
}

// StatusRequest returns the status request topic for a device.
//
// Example: cmnd/esp-01/STATUS (payload "0")
func (Topics) StatusRequest(deviceID string) string {
	return fmt.Sprintf("%s/%s/STATUS", TopicPrefixCommand, deviceID)
}

// StateResult returns the state report topic for a device.
//
// Example: stat/esp-01/RESULT (payload {"POWER":"ON","Dimmer":80})
func (Topics) StateResult(deviceID string) string {
	return fmt.Sprintf("%s/%s/RESULT", TopicPrefixState, deviceID)
}

// LWT returns the last-will liveness topic for a device.
//
// Example: tele/esp-01/LWT (payload "Online")
func (Topics) LWT(deviceID string) string {
	return fmt.Sprintf("%s/%s/LWT", TopicPrefixTelemetry, deviceID)
}

// Heartbeat returns the heartbeat telemetry topic for a device.
//
// Example: tele/esp-01/HEARTBEAT
func (Topics) Heartbeat(deviceID string) string {
	return fmt.Sprintf("%s/%s/HEARTBEAT", TopicPrefixTelemetry, deviceID)
}

// Discovery returns the shared discovery announcement topic.
func (Topics) Discovery() string {
	return TopicDiscovery
}

// DiscoveryRequest returns the discovery broadcast trigger topic.
func (Topics) DiscoveryRequest() string {
	return TopicDiscoveryRequest
}

// DeviceID extracts the device identifier from a per-device topic of the
// form {prefix}/{deviceId}/{suffix}. Returns "" if the topic does not
// match that shape.
func DeviceID(topic string) string {
	parts := strings.Split(topic, "/")
	if len(parts) != 3 {
		return ""
	}
	return parts[1]
}
