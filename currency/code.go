package currency

import "strings"

// Code defines a currency code e.g. BTC
type Code string

// Common codes used across tests and default configurations
const (
	BTC       Code = "BTC"
	ETH       Code = "ETH"
	USD       Code = "USD"
	USDT      Code = "USDT"
	EMPTYCODE Code = ""
)

// NewCode returns a normalised uppercase currency code
func NewCode(c string) Code {
	return Code(strings.ToUpper(strings.TrimSpace(c)))
}

// String returns the string representation of the code
func (c Code) String() string {
	return string(c)
}

// Lower returns the lowercase string representation of the code
func (c Code) Lower() string {
	return strings.ToLower(string(c))
}

// IsEmpty returns true when no code is set
func (c Code) IsEmpty() bool {
	return c == ""
}

// Equal compares codes case insensitively
func (c Code) Equal(o Code) bool {
	return strings.EqualFold(string(c), string(o))
}
