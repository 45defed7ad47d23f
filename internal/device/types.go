package device

// Brightness bounds and default for the dimmer setpoint.
const (
	MinBrightness = 0
	MaxBrightness = 100

	// DefaultBrightness is the setpoint assigned at registration and the
	// fallback when an inbound message carries no usable dimmer token and
	// no prior value is known.
	DefaultBrightness = 50
)

// Light represents a controllable light fixture.
//
// The JSON field names match the registry record shape, so a Light can be
// marshalled directly for API or debugging output.
type Light struct {
	// ID is the opaque device identifier. Stable, unique within an
	// owner's scope, assigned at registration, never reassigned.
	ID string `json:"id"`

	// Name is the user-editable display label.
	Name string `json:"name"`

	// On is the power state. Authoritative only through reconciliation.
	On bool `json:"isOn"`

	// Online is the liveness flag, derived exclusively by the engine
	// from channel activity. Never set directly by a user.
	Online bool `json:"isOnline"`

	// Brightness is the stored dimmer setpoint in [0,100]. It is not
	// necessarily in effect while the light is off.
	Brightness int `json:"brightness"`

	// OwnerID identifies the controlling principal. Immutable after
	// creation.
	OwnerID string `json:"ownerId"`
}

// New returns the registration default for a light: off, offline,
// brightness at the domain default.
func New(id, name, ownerID string) Light {
	return Light{
		ID:         id,
		Name:       name,
		On:         false,
		Online:     false,
		Brightness: DefaultBrightness,
		OwnerID:    ownerID,
	}
}

// ClampBrightness forces a value into the valid [0,100] range.
// Out-of-range values must never be stored or published.
func ClampBrightness(v int) int {
	if v < MinBrightness {
		return MinBrightness
	}
	if v > MaxBrightness {
		return MaxBrightness
	}
	return v
}
