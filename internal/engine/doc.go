// Package engine implements the device state reconciliation engine for
// Lumen Core.
//
// The engine owns the canonical in-memory collection of lights for one
// owner. It merges four asynchronous inputs into that collection:
//
//   - inbound MQTT state reports (stat/{id}/RESULT)
//   - liveness telemetry (tele/{id}/LWT, tele/{id}/HEARTBEAT)
//   - registry change pushes (full-collection replace)
//   - local commands (toggle, brightness, rename, add, remove)
//
// and produces outbound MQTT commands plus registry writes.
//
// # Concurrency
//
// MQTT handlers and the registry push subscription never touch engine
// state directly. They enqueue events onto a buffered channel drained by
// a single goroutine, which applies reconciliation under the engine
// mutex. Command methods are called from arbitrary goroutines and take
// the same mutex. Snapshot accessors return copies.
//
// Registry writes mirror that shape on the outbound side: persist calls
// enqueue onto a write queue drained by one goroutine, so writes for
// any device reach the store in the order they were issued.
//
// # Merge precedence
//
// Two merge strategies coexist deliberately. Inbound device messages
// patch individual fields; a registry push replaces the whole
// collection (last store write wins) and supersedes local optimistic
// state not yet reflected in the store. A slow push can therefore
// briefly roll back a just-applied message-derived field; state
// converges once the message-derived write lands in the store.
//
// # Liveness
//
// Receipt of any message from a device is itself the liveness signal.
// A watchdog sweeps on a fixed interval and demotes devices whose last
// signal is older than the configured timeout. Demotion is
// one-directional per sweep; a device returns online only through a new
// inbound signal.
package engine
