// Package availability models a nurse's weekly hourly availability and its
// translation to and from persisted range records.
package availability

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStatus is returned when a status name cannot be parsed.
var ErrUnknownStatus = errors.New("unknown availability status")

// Status is the availability of one hour.
type Status int

const (
	// Unset means no record covers the hour.
	Unset Status = iota
	Unavailable
	Preferred
	Available
)

// PersistedStatuses lists the statuses that are written as range records,
// in encode order.
var PersistedStatuses = [...]Status{Unavailable, Preferred, Available}

// String returns the lower-case status name.
func (s Status) String() string {
	switch s {
	case Unset:
		return "unset"
	case Unavailable:
		return "unavailable"
	case Preferred:
		return "preferred"
	case Available:
		return "available"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Valid reports whether s is one of the four known statuses.
func (s Status) Valid() bool {
	return s >= Unset && s <= Available
}

// Next returns the status a single click moves to.
//
// The persisted statuses cycle unavailable -> preferred -> available ->
// unavailable. An untouched (unset) hour behaves like an unavailable one on
// its first click and becomes unavailable; unset is never reached by cycling.
func (s Status) Next() Status {
	switch s {
	case Unset:
		return Unavailable
	case Unavailable:
		return Preferred
	case Preferred:
		return Available
	case Available:
		return Unavailable
	default:
		return Unavailable
	}
}

// ParseStatus parses a status name. Matching is case-insensitive and accepts
// the single-letter shorthands u, p, a and x (unset).
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unset", "x", "none", "clear":
		return Unset, nil
	case "unavailable", "u":
		return Unavailable, nil
	case "preferred", "p":
		return Preferred, nil
	case "available", "a":
		return Available, nil
	default:
		return Unset, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}
