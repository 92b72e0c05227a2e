package overrides

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeNormal      Mode = "normal"
	ModePickupOnly  Mode = "pickup"
	ModeDropOffOnly Mode = "dropoff"
	ModeCustom      Mode = "custom"
)

// Restriction is one boarding/alighting rule attached to a single stop visit.
// AlightFrom & BoardTo are only meaningful for custom mode. They are authored
// and carried through serialization but the segmentation compiler only reads
// Mode - splitting decisions never consult the lists themselves.
type Restriction struct {
	Mode Mode `json:"mode" validate:"oneof=normal pickup dropoff custom"`

	AlightFrom []string `json:"alight_from,omitempty"`
	BoardTo    []string `json:"board_to,omitempty"`
}

// RuleKey addresses one stop visit within one trip. A trip visiting the same
// stop twice collapses both visits onto the same key.
type RuleKey struct {
	TripID string
	StopID string
}

func (key RuleKey) String() string {
	return fmt.Sprintf("%s::%s", key.TripID, key.StopID)
}

func ParseRuleKey(value string) (RuleKey, error) {
	parts := strings.SplitN(value, "::", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RuleKey{}, fmt.Errorf("invalid rule key %q", value)
	}

	return RuleKey{TripID: parts[0], StopID: parts[1]}, nil
}

// RuleSet is the compiler facing view of an override document.
type RuleSet map[RuleKey]Restriction

// StopDefaults maps a stop identity to a default mode. It exists for editing
// tools only and is deliberately kept apart from RuleSet - the compiler never
// consults it.
type StopDefaults map[string]Mode
