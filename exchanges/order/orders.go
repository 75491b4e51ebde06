// Package order defines order submission, status and lookup types shared by
// the gateway and the dry-run simulator
package order

import (
	"errors"
	"strings"
	"time"
)

var (
	// ErrOrderNotFound is returned when an order id cannot be resolved
	ErrOrderNotFound = errors.New("order not found")
	// ErrInsufficientFunds is returned when the account cannot cover an order
	ErrInsufficientFunds = errors.New("insufficient funds for order")
	// ErrInvalidOrder is returned on business-rule violations for an order call
	ErrInvalidOrder = errors.New("invalid order")
	// ErrAmountIsInvalid is returned when an order amount is zero or negative
	ErrAmountIsInvalid = errors.New("order amount is invalid")
	// ErrPriceIsInvalid is returned when a limit order carries no usable price
	ErrPriceIsInvalid = errors.New("order price is invalid")
)

// Side enumerates order sides
type Side string

// Order sides
const (
	Buy  = Side("buy")
	Sell = Side("sell")
)

// Type enumerates order types
type Type string

// Order types
const (
	Limit         = Type("limit")
	Market        = Type("market")
	StopLossLimit = Type("stop_loss_limit")
)

// Status defines order lifecycle states
type Status string

// Order statuses. Transitions only move forward: open orders close or cancel,
// although a cancelled order re-checked after an external fill reports closed.
const (
	Open      = Status("open")
	Closed    = Status("closed")
	Cancelled = Status("canceled")
)

// TimeInForce values accepted across exchanges
const (
	GoodTillCancel    = "gtc"
	FillOrKill        = "fok"
	ImmediateOrCancel = "ioc"
	PostOnly          = "po"
)

// Fee describes the fee charged against an order fill
type Fee struct {
	Currency string
	Cost     float64
	Rate     float64
}

// Submit contains the parameters needed to place an order
type Submit struct {
	Pair        string
	Side        Side
	Type        Type
	Amount      float64
	Price       float64
	StopPrice   float64
	Leverage    float64
	TimeInForce string
	ReduceOnly  bool
	Params      map[string]string
}

// Validate performs basic shape checks before submission
func (s *Submit) Validate() error {
	if s.Pair == "" {
		return errors.New("order pair unset")
	}
	if s.Side != Buy && s.Side != Sell {
		return errors.New("order side unset")
	}
	if s.Amount <= 0 {
		return ErrAmountIsInvalid
	}
	if s.Type == Limit && s.Price <= 0 {
		return ErrPriceIsInvalid
	}
	return nil
}

// Detail holds order status information returned by lookups
type Detail struct {
	ID          string
	Pair        string
	Side        Side
	Type        Type
	Amount      float64
	Price       float64
	StopPrice   float64
	Average     float64
	Filled      float64
	Remaining   float64
	Fee         *Fee
	Status      Status
	Leverage    float64
	Date        time.Time
	LastUpdated time.Time
}

// IsOpen reports whether the order is still working
func (d *Detail) IsOpen() bool {
	return d != nil && d.Status == Open
}

// SideFromString parses an order side
func SideFromString(s string) (Side, error) {
	switch strings.ToLower(s) {
	case "buy":
		return Buy, nil
	case "sell":
		return Sell, nil
	}
	return "", errors.New("order side unrecognised: " + s)
}

// Opposite returns the other side of the book
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}
