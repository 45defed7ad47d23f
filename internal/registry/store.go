package registry

import (
	"context"

	"github.com/lumenhaus/lumen-core/internal/device"
)

// Store defines the persistence interface for registered lights.
// This abstraction allows for different implementations (SQLite, mock)
// and enables engine testing without database dependencies.
type Store interface {
	// ListForOwner retrieves all lights registered to an owner.
	// An empty result is not an error.
	ListForOwner(ctx context.Context, ownerID string) ([]device.Light, error)

	// Create inserts a new light record. Creation is idempotent in
	// intent: if a record with the same owner and id already exists it
	// is left untouched and no error is returned.
	Create(ctx context.Context, light device.Light) error

	// Update applies a partial update to a light record. Nil fields are
	// left untouched in the store. If no record exists for the id, a
	// minimal default record is created first and the update re-applied.
	Update(ctx context.Context, ownerID, id string, fields Fields) error

	// Delete removes a light record.
	// Returns device.ErrNotFound if the record does not exist.
	Delete(ctx context.Context, ownerID, id string) error

	// Subscribe registers a callback invoked with the owner's full
	// current list after every mutation touching that owner's records.
	// The returned function cancels the subscription.
	Subscribe(ownerID string, fn func(lights []device.Light)) (cancel func())
}

// Fields is a partial update of a light record. A nil field means
// "do not change"; this pointer-presence convention prevents zero values
// (false, 0, "") from being written unintentionally.
type Fields struct {
	Name       *string
	On         *bool
	Online     *bool
	Brightness *int
}

// IsZero reports whether no field is set.
func (f Fields) IsZero() bool {
	return f.Name == nil && f.On == nil && f.Online == nil && f.Brightness == nil
}

// Pointer helpers for building Fields values.

// String returns a pointer to v.
func String(v string) *string { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }
