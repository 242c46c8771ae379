package router

import "strings"

// Decision is the closed set of classification labels
type Decision string

const (
	// DecisionBooker routes flight and hotel bookings
	DecisionBooker Decision = "booker"

	// DecisionInfo routes general information questions
	DecisionInfo Decision = "info"

	// DecisionUnclear is the fallback for everything else
	DecisionUnclear Decision = "unclear"
)

// Decisions lists every label in prompt order
func Decisions() []Decision {
	return []Decision{DecisionBooker, DecisionInfo, DecisionUnclear}
}

// ParseDecision maps raw model output to a Decision.
// Only surrounding whitespace is removed; any value other than exactly
// "booker" or "info" becomes DecisionUnclear.
func ParseDecision(raw string) Decision {
	switch Decision(strings.TrimSpace(raw)) {
	case DecisionBooker:
		return DecisionBooker
	case DecisionInfo:
		return DecisionInfo
	default:
		return DecisionUnclear
	}
}

// Valid reports whether d is one of the enumerated labels
func (d Decision) Valid() bool {
	switch d {
	case DecisionBooker, DecisionInfo, DecisionUnclear:
		return true
	}
	return false
}

func (d Decision) String() string {
	return string(d)
}
