package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// Device state reports are compact JSON-ish strings such as
// {"POWER":"ON","Dimmer":80}. Token extraction is deliberately loose:
// the firmware emits several report shapes and a malformed token is
// treated as absent, never as an error.

var dimmerPattern = regexp.MustCompile(`"Dimmer"\s*:\s*(\d+)`)

// parsePower extracts the power token from a state payload.
// Returns (state, true) when an explicit ON/OFF token is present.
func parsePower(payload string) (on, ok bool) {
	switch {
	case strings.Contains(payload, `"POWER":"ON"`):
		return true, true
	case strings.Contains(payload, `"POWER":"OFF"`):
		return false, true
	default:
		return false, false
	}
}

// parseBrightness extracts the Dimmer token from a state payload.
// Returns (value, true) when a parseable token is present.
func parseBrightness(payload string) (int, bool) {
	m := dimmerPattern.FindStringSubmatch(payload)
	if m == nil {
		return 0, false
	}
	v, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return v, true
}

// parseAnnouncement splits a discovery announcement of shape
// "{deviceId}:{address}". Returns ok=false for blank or malformed
// payloads.
func parseAnnouncement(payload string) (id, addr string, ok bool) {
	id, addr, found := strings.Cut(strings.TrimSpace(payload), ":")
	if !found || id == "" {
		return "", "", false
	}
	return id, addr, true
}
