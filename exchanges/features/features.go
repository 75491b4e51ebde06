// Package features describes what a venue can do. A Profile is assembled once
// from process defaults, the venue's own capability table and any user
// overrides, and is read-only afterwards. Callers branch on capabilities
// instead of on venue names.
package features

import (
	"github.com/tidalfin/cryptogate/exchanges/asset"
	"github.com/tidalfin/cryptogate/exchanges/margin"
)

// Key identifies a single capability
type Key string

// Capability keys
const (
	CandleLimit             Key = "candle_limit"
	CandleLimitPerTimeframe Key = "candle_limit_per_timeframe"
	CandleHistoricLimit     Key = "candle_historic_limit"
	TradesPagination        Key = "trades_pagination"
	TradesPaginationArg     Key = "trades_pagination_arg"
	OrderTimeInForce        Key = "order_time_in_force"
	StoplossOnExchange      Key = "stoploss_on_exchange"
	StoplossOrderTypes      Key = "stoploss_order_types"
	StoplossLimitRatio      Key = "stoploss_limit_ratio"
	OrderbookLimitRange     Key = "l2_limit_range"
	OrderbookLimitRequired  Key = "l2_limit_required"
	MarkCandleTimeframe     Key = "mark_candle_timeframe"
	FundingFeeTimeframe     Key = "funding_fee_timeframe"
	FundingPartialRatio     Key = "funding_fee_partial_ratio"
)

// Pagination styles for the TradesPagination key
const (
	PaginateByID   = "id"
	PaginateByTime = "time"
)

// Value is a capability lookup result. Exists reports whether the profile
// declares the key at all; the typed accessors return zero values otherwise.
type Value struct {
	Exists bool
	raw    any
}

// Bool returns the capability as a bool
func (v Value) Bool() bool {
	b, _ := v.raw.(bool)
	return b
}

// Int returns the capability as an int
func (v Value) Int() int {
	n, _ := v.raw.(int)
	return n
}

// Float returns the capability as a float64
func (v Value) Float() float64 {
	f, _ := v.raw.(float64)
	return f
}

// Str returns the capability as a string
func (v Value) Str() string {
	s, _ := v.raw.(string)
	return s
}

// Ints returns the capability as an int slice
func (v Value) Ints() []int {
	s, _ := v.raw.([]int)
	return s
}

// Strs returns the capability as a string slice
func (v Value) Strs() []string {
	s, _ := v.raw.([]string)
	return s
}

// IntMap returns the capability as a string keyed int map
func (v Value) IntMap() map[string]int {
	m, _ := v.raw.(map[string]int)
	return m
}

// ModePair is a trading mode and margin mode combination a venue accepts
type ModePair struct {
	Trading asset.Item
	Margin  margin.Type
}

// Profile is a venue's merged capability table
type Profile struct {
	name  string
	caps  map[Key]any
	modes []ModePair
}

// New assembles a profile for the named venue. Values merge in three layers,
// later layers winning: process defaults, the venue's built-in table, then
// overrides from user configuration. Unknown venue names get the defaults
// only.
func New(venue string, overrides map[Key]any) *Profile {
	caps := make(map[Key]any, len(defaultCaps))
	for k, v := range defaultCaps {
		caps[k] = v
	}
	modes := defaultModes
	if b, ok := builtin[venue]; ok {
		for k, v := range b.caps {
			caps[k] = v
		}
		if len(b.modes) > 0 {
			modes = b.modes
		}
	}
	for k, v := range overrides {
		caps[k] = v
	}
	return &Profile{name: venue, caps: caps, modes: modes}
}

// Name returns the venue name the profile was assembled for
func (p *Profile) Name() string {
	return p.name
}

// Capability looks up a single key. Unknown keys yield an absent Value,
// never an error.
func (p *Profile) Capability(k Key) Value {
	if p == nil {
		return Value{}
	}
	raw, ok := p.caps[k]
	if !ok {
		return Value{}
	}
	return Value{Exists: true, raw: raw}
}

// SupportsModes reports whether the venue accepts the trading and margin mode
// combination. Spot requires no margin mode.
func (p *Profile) SupportsModes(a asset.Item, m margin.Type) bool {
	for i := range p.modes {
		if p.modes[i].Trading == a && p.modes[i].Margin == m {
			return true
		}
	}
	return false
}

// SupportedModes returns a copy of the accepted mode combinations
func (p *Profile) SupportedModes() []ModePair {
	out := make([]ModePair, len(p.modes))
	copy(out, p.modes)
	return out
}
