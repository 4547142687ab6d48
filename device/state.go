package device

import (
	"fmt"
	"strings"
)

// State is a device's binary state stream value: Off, On, or Unknown
// (the gateway occasionally reports a state it cannot resolve).
type State int

const (
	StateUnknown State = iota
	StateOff
	StateOn
)

func (s State) String() string {
	switch s {
	case StateOff:
		return "Off"
	case StateOn:
		return "On"
	default:
		return "Unknown"
	}
}

// ParseState decodes an ITEM_UPDATE STATE field: "OFF", "ON",
// "UNKNOWN", or "UNDEFINED" (case-insensitively). Any other string
// fails to parse; callers should log and skip the update rather than
// writing the state stream.
func ParseState(s string) (State, error) {
	switch strings.ToUpper(s) {
	case "OFF":
		return StateOff, nil
	case "ON":
		return StateOn, nil
	case "UNKNOWN", "UNDEFINED":
		return StateUnknown, nil
	default:
		return StateUnknown, fmt.Errorf("device: state %q: not OFF/ON/UNKNOWN/UNDEFINED", s)
	}
}
