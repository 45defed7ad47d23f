package device

import "errors"

// Domain errors for the device package.
//
// These errors can be checked using errors.Is() for error handling:
//
//	if errors.Is(err, device.ErrNotFound) {
//	    // handle not found case
//	}
var (
	// ErrNotFound is returned when a device ID does not exist.
	ErrNotFound = errors.New("device: not found")

	// ErrExists is returned when creating a device with an ID that
	// already exists within the owner's scope.
	ErrExists = errors.New("device: already exists")

	// ErrInvalidID is returned when a device ID is blank or malformed.
	ErrInvalidID = errors.New("device: invalid id")

	// ErrInvalidName is returned when a device name is blank or too long.
	ErrInvalidName = errors.New("device: invalid name")

	// ErrInvalidOwner is returned when an owner ID is blank.
	ErrInvalidOwner = errors.New("device: invalid owner")

	// ErrInvalidBrightness is returned when a brightness value is outside [0,100].
	ErrInvalidBrightness = errors.New("device: invalid brightness")
)
