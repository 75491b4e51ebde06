// Package margin enumerates collateral handling modes for leveraged trading
package margin

import (
	"errors"
	"fmt"
	"strings"
)

// Type defines the collateral mode for a leveraged position. Multi is
// commonly referred to as cross margin where the whole wallet backs every
// open position.
type Type uint8

const (
	// Unset indicates no margin mode is configured
	Unset Type = 0
	// Isolated limits collateral to the margin assigned to the position
	Isolated Type = 1 << (iota - 1)
	// Multi shares collateral across all open positions
	Multi

	supported = Isolated | Multi
)

const (
	unsetStr    = ""
	isolatedStr = "isolated"
	multiStr    = "multi"
	crossStr    = "cross"
	crossedStr  = "crossed"
)

// ErrInvalidMarginType returned when the margin type is invalid
var ErrInvalidMarginType = errors.New("invalid margin type")

// Valid returns whether the margin type is valid
func (t Type) Valid() bool {
	return t != Unset && supported&t == t
}

// String returns the string representation of the margin type in lowercase
func (t Type) String() string {
	switch t {
	case Unset:
		return unsetStr
	case Isolated:
		return isolatedStr
	case Multi:
		return multiStr
	default:
		return "unknown"
	}
}

// Upper returns the upper case string representation of the margin type
func (t Type) Upper() string {
	return strings.ToUpper(t.String())
}

// IsValidString checks to see if the supplied string is a valid margin type
func IsValidString(m string) bool {
	switch strings.ToLower(m) {
	case isolatedStr, multiStr, unsetStr, crossedStr, crossStr:
		return true
	}
	return false
}

// StringToMarginType converts a string to a margin type
func StringToMarginType(m string) (Type, error) {
	switch strings.ToLower(m) {
	case isolatedStr:
		return Isolated, nil
	case multiStr, crossedStr, crossStr:
		return Multi, nil
	case unsetStr:
		return Unset, nil
	}
	return Unset, fmt.Errorf("%w %v", ErrInvalidMarginType, m)
}
