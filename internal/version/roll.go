package version

import (
	"fmt"
	"math"
)

// Component names one of the numeric parts of a version.
type Component string

const (
	Major Component = "major"
	Minor Component = "minor"
	Patch Component = "patch"
)

// ParseComponent parses "major", "minor", or "patch".
func ParseComponent(s string) (Component, error) {
	switch Component(s) {
	case Major, Minor, Patch:
		return Component(s), nil
	default:
		return "", fmt.Errorf("unknown version component: %q (must be major, minor, or patch)", s)
	}
}

// NegativeError reports a roll that would drive a component below zero.
type NegativeError struct {
	From      Version
	Component Component
	Amount    int
	Attempted int
}

func (e *NegativeError) Error() string {
	return fmt.Sprintf("cannot roll %s version by %d from %s: result %d is negative",
		e.Component, e.Amount, e.From, e.Attempted)
}

// Roll adds amount to the named component, zeroes every lower-order component,
// and clears pre-release and build metadata.
func (v Version) Roll(c Component, amount int) (Version, error) {
	var cur int
	switch c {
	case Major:
		cur = v.Major
	case Minor:
		cur = v.Minor
	case Patch:
		cur = v.Patch
	default:
		return Version{}, fmt.Errorf("unknown version component: %q", c)
	}

	if amount > 0 && cur > math.MaxInt-amount {
		return Version{}, fmt.Errorf("cannot roll %s version by %d from %s: result is too large", c, amount, v)
	}
	next := cur + amount
	if next < 0 {
		return Version{}, &NegativeError{From: v, Component: c, Amount: amount, Attempted: next}
	}

	out := Version{Major: v.Major, Minor: v.Minor, Patch: v.Patch}
	switch c {
	case Major:
		out.Major, out.Minor, out.Patch = next, 0, 0
	case Minor:
		out.Minor, out.Patch = next, 0
	case Patch:
		out.Patch = next
	}
	return out, nil
}
