// Package device defines the Light entity shared by the registry store
// and the reconciliation engine.
//
// A Light is the canonical representation of a controllable fixture:
// identity, display name, power state, liveness, stored brightness
// setpoint and owning principal. Power and liveness are authoritative
// only through the engine's reconciliation; brightness is a setpoint
// that is not necessarily in effect while the light is off.
//
// # Key Types
//
//   - Light: the canonical entity (JSON shape matches the registry record)
//   - DefaultBrightness: the domain default setpoint (50)
//
// # Invariants
//
//   - Brightness is always within [0,100]; use ClampBrightness at every
//     boundary that accepts external values.
//   - ID is unique within an owner's scope and never reassigned.
package device
