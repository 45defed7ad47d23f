package device

import (
	"fmt"
	"strings"
)

// Validation constants.
const (
	maxIDLength   = 64
	maxNameLength = 100
)

// ValidateID checks that a device identifier is usable as a registry key
// and an MQTT topic segment.
func ValidateID(id string) error {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return fmt.Errorf("%w: blank", ErrInvalidID)
	}
	if len(trimmed) > maxIDLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidID, maxIDLength)
	}
	// Topic-level separators and wildcards would corrupt the per-device
	// topic scheme (cmnd/{id}/Power etc.).
	if strings.ContainsAny(trimmed, "/+#") {
		return fmt.Errorf("%w: contains topic metacharacters", ErrInvalidID)
	}
	return nil
}

// ValidateName checks that a display name is non-blank and within limits.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("%w: blank", ErrInvalidName)
	}
	if len(trimmed) > maxNameLength {
		return fmt.Errorf("%w: exceeds %d characters", ErrInvalidName, maxNameLength)
	}
	return nil
}

// Validate performs full validation of a light record before persistence.
func Validate(l *Light) error {
	if err := ValidateID(l.ID); err != nil {
		return err
	}
	if err := ValidateName(l.Name); err != nil {
		return err
	}
	if l.OwnerID == "" {
		return ErrInvalidOwner
	}
	if l.Brightness < MinBrightness || l.Brightness > MaxBrightness {
		return fmt.Errorf("%w: %d out of range", ErrInvalidBrightness, l.Brightness)
	}
	return nil
}
