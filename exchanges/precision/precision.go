// Package precision performs market precision rounding and contract size
// conversion. Exchanges declare precision either as digits after the decimal
// point, as a count of significant digits or as a smallest price increment;
// all three are supported identically for amounts and prices.
package precision

import (
	"errors"
	"math"

	"github.com/shopspring/decimal"
)

// Mode defines how a market's precision value is to be interpreted
type Mode uint8

// Precision modes
const (
	DecimalPlaces Mode = iota + 1
	SignificantDigits
	TickSize
)

var (
	// ErrPrecisionModeUnset is returned for an unrecognised precision mode
	ErrPrecisionModeUnset = errors.New("precision mode unset or unsupported")
	errTickSizeInvalid    = errors.New("tick size must be positive")
)

// AmountToPrecision truncates amount toward zero to the market precision.
// Truncation rather than rounding is mandatory so a submitted amount never
// exceeds the available balance.
func AmountToPrecision(amount float64, mode Mode, prec float64) (float64, error) {
	return apply(amount, mode, prec, false)
}

// PriceToPrecision rounds price to the nearest representable value under the
// market precision. The operation is idempotent.
func PriceToPrecision(price float64, mode Mode, prec float64) (float64, error) {
	return apply(price, mode, prec, true)
}

func apply(value float64, mode Mode, prec float64, round bool) (float64, error) {
	if value == 0 {
		return 0, nil
	}
	d := decimal.NewFromFloat(value)
	switch mode {
	case DecimalPlaces:
		return fit(d, int32(prec), round), nil
	case SignificantDigits:
		places := int32(prec) - 1 - int32(math.Floor(math.Log10(math.Abs(value))))
		return fit(d, places, round), nil
	case TickSize:
		if prec <= 0 {
			return 0, errTickSizeInvalid
		}
		tick := decimal.NewFromFloat(prec)
		steps := d.Div(tick)
		if round {
			steps = steps.Round(0)
		} else {
			steps = steps.Truncate(0)
		}
		return steps.Mul(tick).InexactFloat64(), nil
	}
	return 0, ErrPrecisionModeUnset
}

func fit(d decimal.Decimal, places int32, round bool) float64 {
	if round {
		return d.Round(places).InexactFloat64()
	}
	return d.Truncate(places).InexactFloat64()
}

// OnePip returns the smallest meaningful price increment at the supplied
// precision, used for rate nudging
func OnePip(mode Mode, prec float64) (float64, error) {
	switch mode {
	case TickSize:
		if prec <= 0 {
			return 0, errTickSizeInvalid
		}
		return prec, nil
	case DecimalPlaces, SignificantDigits:
		return 1 / math.Pow(10, prec), nil
	}
	return 0, ErrPrecisionModeUnset
}

// AmountToContracts converts a base currency amount into contracts. A
// contract size at or below zero is treated as 1.
func AmountToContracts(amount, contractSize float64) float64 {
	if contractSize <= 0 {
		return amount
	}
	return amount / contractSize
}

// ContractsToAmount converts a contract count into a base currency amount
func ContractsToAmount(contracts, contractSize float64) float64 {
	if contractSize <= 0 {
		return contracts
	}
	return contracts * contractSize
}
