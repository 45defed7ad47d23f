package device

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr error
	}{
		{"valid simple", "esp-01", nil},
		{"valid alphanumeric", "D1Mini1", nil},
		{"blank", "", ErrInvalidID},
		{"whitespace only", "   ", ErrInvalidID},
		{"too long", strings.Repeat("a", 65), ErrInvalidID},
		{"contains slash", "esp/01", ErrInvalidID},
		{"contains plus wildcard", "esp+01", ErrInvalidID},
		{"contains hash wildcard", "esp#", ErrInvalidID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateID(%q) = %v, want nil", tt.id, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateID(%q) = %v, want %v", tt.id, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr error
	}{
		{"valid", "Kitchen", nil},
		{"valid with spaces", "Garage Door Light", nil},
		{"blank", "", ErrInvalidName},
		{"whitespace only", "\t ", ErrInvalidName},
		{"too long", strings.Repeat("n", 101), ErrInvalidName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.value)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateName(%q) = %v, want nil", tt.value, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateName(%q) = %v, want %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := New("l1", "Kitchen", "owner-1")
	if err := Validate(&valid); err != nil {
		t.Errorf("Validate(valid light) = %v, want nil", err)
	}

	noOwner := New("l1", "Kitchen", "")
	if err := Validate(&noOwner); !errors.Is(err, ErrInvalidOwner) {
		t.Errorf("Validate(no owner) = %v, want ErrInvalidOwner", err)
	}

	outOfRange := New("l1", "Kitchen", "owner-1")
	outOfRange.Brightness = 150
	if err := Validate(&outOfRange); !errors.Is(err, ErrInvalidBrightness) {
		t.Errorf("Validate(brightness 150) = %v, want ErrInvalidBrightness", err)
	}
}

func TestClampBrightness(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{-10, 0},
		{0, 0},
		{50, 50},
		{100, 100},
		{150, 100},
	}

	for _, tt := range tests {
		if got := ClampBrightness(tt.in); got != tt.want {
			t.Errorf("ClampBrightness(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	l := New("l2", "Garage", "owner-1")

	if l.On {
		t.Error("New() light should be off")
	}
	if l.Online {
		t.Error("New() light should be offline")
	}
	if l.Brightness != DefaultBrightness {
		t.Errorf("New() brightness = %d, want %d", l.Brightness, DefaultBrightness)
	}
	if l.OwnerID != "owner-1" {
		t.Errorf("New() ownerId = %q, want %q", l.OwnerID, "owner-1")
	}
}
