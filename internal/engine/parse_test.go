package engine

import "testing"

func TestParsePower(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		wantOn  bool
		wantOK  bool
	}{
		{"on", `{"POWER":"ON"}`, true, true},
		{"off", `{"POWER":"OFF","Dimmer":10}`, false, true},
		{"absent", `{"Dimmer":10}`, false, false},
		{"garbage", `{"POWER":"BANANA"}`, false, false},
		{"empty", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			on, ok := parsePower(tt.payload)
			if on != tt.wantOn || ok != tt.wantOK {
				t.Errorf("parsePower(%q) = (%v, %v), want (%v, %v)",
					tt.payload, on, ok, tt.wantOn, tt.wantOK)
			}
		})
	}
}

func TestParseBrightness(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    int
		wantOK  bool
	}{
		{"present", `{"POWER":"ON","Dimmer":80}`, 80, true},
		{"spaced", `{"Dimmer" : 5}`, 5, true},
		{"zero", `{"Dimmer":0}`, 0, true},
		{"absent", `{"POWER":"ON"}`, 0, false},
		{"non-numeric", `{"Dimmer":"high"}`, 0, false},
		{"empty", "", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := parseBrightness(tt.payload)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("parseBrightness(%q) = (%d, %v), want (%d, %v)",
					tt.payload, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestParseAnnouncement(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		wantID   string
		wantAddr string
		wantOK   bool
	}{
		{"valid", "ESP9:10.0.0.5", "ESP9", "10.0.0.5", true},
		{"trimmed", " ESP9:10.0.0.5\n", "ESP9", "10.0.0.5", true},
		{"no separator", "ESP9", "", "", false},
		{"blank id", ":10.0.0.5", "", "", false},
		{"empty", "", "", "", false},
		{"empty address", "ESP9:", "ESP9", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, addr, ok := parseAnnouncement(tt.payload)
			if id != tt.wantID || addr != tt.wantAddr || ok != tt.wantOK {
				t.Errorf("parseAnnouncement(%q) = (%q, %q, %v), want (%q, %q, %v)",
					tt.payload, id, addr, ok, tt.wantID, tt.wantAddr, tt.wantOK)
			}
		})
	}
}
