// Package mqtt provides the message channel adapter for Lumen Core.
//
// It wraps paho.mqtt.golang with the functionality the reconciliation
// engine depends on:
//
//   - Connection lifecycle callbacks (established / lost) with automatic
//     reconnection handled entirely inside the client
//   - Tracked subscriptions, restored transparently after a reconnect
//   - Publish/Subscribe/Unsubscribe with validation and timeouts
//   - Panic recovery around message handlers, so a bad payload can never
//     take down the delivery goroutine
//   - Last Will and Testament on lumen/status for crash detection
//
// # Topic scheme
//
// Device topics follow the Tasmota-style convention spoken by the light
// firmware; use the Topics builders rather than formatting strings:
//
//	cmnd/{id}/Power    power command ("ON"/"OFF")
//	cmnd/{id}/Dimmer   brightness command ("0".."100")
//	cmnd/{id}/STATUS   status report request ("0")
//	stat/{id}/RESULT   state report ({"POWER":"ON","Dimmer":80})
//	tele/{id}/LWT      liveness ("Online" or broker-set will)
//	tele/{id}/HEARTBEAT periodic heartbeat
//	lights/discovery   announcements ("{id}:{address}")
//
// # Thread Safety
//
// All methods are safe for concurrent use. Message handlers are invoked
// on paho's delivery goroutines, concurrently with engine operations;
// consumers must do their own serialization.
package mqtt
