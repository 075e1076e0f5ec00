package core

import (
	"fmt"
	"strings"
)

// Phase is the signal state shown to an approach
type Phase int

const (
	// PhaseRed holds vehicles in the queue
	PhaseRed Phase = iota
	// PhaseGreen lets the road server depart vehicles
	PhaseGreen
	// PhaseYellow clears the intersection; no new service starts
	PhaseYellow
)

// String returns the upper-case phase name
func (p Phase) String() string {
	switch p {
	case PhaseRed:
		return "RED"
	case PhaseGreen:
		return "GREEN"
	case PhaseYellow:
		return "YELLOW"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Next returns the phase that follows p in the RED, GREEN, YELLOW cycle
func (p Phase) Next() Phase {
	switch p {
	case PhaseRed:
		return PhaseGreen
	case PhaseGreen:
		return PhaseYellow
	default:
		return PhaseRed
	}
}

// ParsePhase converts a phase name, case-insensitively
func ParsePhase(s string) (Phase, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RED":
		return PhaseRed, nil
	case "GREEN":
		return PhaseGreen, nil
	case "YELLOW":
		return PhaseYellow, nil
	}
	return PhaseRed, fmt.Errorf("unknown phase %q", s)
}
