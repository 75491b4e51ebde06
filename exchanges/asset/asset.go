// Package asset enumerates the trading modes a market can be traded under
package asset

import (
	"fmt"
	"strings"
)

// Item defines the type of trading mode
type Item string

// Supported asset types
const (
	Spot    = Item("spot")
	Margin  = Item("margin")
	Futures = Item("futures")
	Swap    = Item("swap")
)

// Items defines a list of asset types
type Items []Item

// Supported returns the full list of supported asset types
func Supported() Items {
	return Items{Spot, Margin, Futures, Swap}
}

// String converts an asset type to its string representation
func (a Item) String() string {
	return string(a)
}

// Strings converts an asset type list to a string list
func (a Items) Strings() []string {
	assets := make([]string, len(a))
	for x := range a {
		assets[x] = a[x].String()
	}
	return assets
}

// Contains returns whether the list holds the supplied asset type
func (a Items) Contains(i Item) bool {
	if !i.IsValid() {
		return false
	}
	for x := range a {
		if a[x] == i {
			return true
		}
	}
	return false
}

// JoinToString joins the list into a delimited string
func (a Items) JoinToString(separator string) string {
	return strings.Join(a.Strings(), separator)
}

// IsValid returns whether the asset type is supported
func (a Item) IsValid() bool {
	for _, s := range Supported() {
		if a == s {
			return true
		}
	}
	return false
}

// IsContract returns whether the asset type carries contract-denominated
// amounts
func (a Item) IsContract() bool {
	return a == Futures || a == Swap
}

// New attempts to convert a string into a supported asset type
func New(input string) (Item, error) {
	a := Item(strings.ToLower(input))
	if !a.IsValid() {
		return "", fmt.Errorf("asset type %q unsupported", input)
	}
	return a, nil
}
