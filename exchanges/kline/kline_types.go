package kline

import (
	"errors"
	"time"

	"github.com/tidalfin/cryptogate/currency"
	"github.com/tidalfin/cryptogate/exchanges/asset"
)

// Consts here define basic time intervals
const (
	OneMin     = Interval(time.Minute)
	ThreeMin   = 3 * OneMin
	FiveMin    = 5 * OneMin
	FifteenMin = 15 * OneMin
	ThirtyMin  = 30 * OneMin
	OneHour    = Interval(time.Hour)
	TwoHour    = 2 * OneHour
	FourHour   = 4 * OneHour
	SixHour    = 6 * OneHour
	EightHour  = 8 * OneHour
	TwelveHour = 12 * OneHour
	OneDay     = 24 * OneHour
	ThreeDay   = 3 * OneDay
	OneWeek    = 7 * OneDay
	TwoWeek    = 2 * OneWeek
	OneMonth   = 30 * OneDay
)

// ErrUnsupportedInterval locale for an unparsable timeframe string
var ErrUnsupportedInterval = errors.New("interval unsupported by exchange")

// Interval type for kline interval usage
type Interval time.Duration

// CandleType classifies the price series a candle belongs to
type CandleType string

// Candle classifications used in derivatives pricing
const (
	Spot            = CandleType("spot")
	Mark            = CandleType("mark")
	Index           = CandleType("index")
	Premium         = CandleType("premiumIndex")
	FuturesCombined = CandleType("futures")
)

// IsPrice returns whether the candle type carries tradable prices as opposed
// to synthetic derivative series
func (c CandleType) IsPrice() bool {
	return c == Spot || c == FuturesCombined || c == ""
}

// String returns the candle type string representation
func (c CandleType) String() string {
	return string(c)
}

// Candle holds historic rate information.
type Candle struct {
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Item holds all the relevant information for internal kline elements
type Item struct {
	Exchange   string
	Pair       currency.Pair
	Asset      asset.Item
	Interval   Interval
	CandleType CandleType
	Candles    []Candle
}

// ByDate allows for sorting candle entries by date
type ByDate []Candle

func (b ByDate) Len() int           { return len(b) }
func (b ByDate) Less(i, j int) bool { return b[i].Time.Before(b[j].Time) }
func (b ByDate) Swap(i, j int)      { b[i], b[j] = b[j], b[i] }
