package currency

import (
	"errors"
	"fmt"
	"strings"
)

// Pair holds base and quote currency codes plus the settlement currency for
// linear/inverse contract symbols e.g. BTC/USDT:USDT
type Pair struct {
	Delimiter string
	Base      Code
	Quote     Code
	Settle    Code
}

var errEmptyPairString = errors.New("empty currency pair string")

// NewPair returns a currency pair from currency codes
func NewPair(base, quote Code) Pair {
	return Pair{Base: base, Quote: quote, Delimiter: "/"}
}

// NewPairFromString converts a delimited currency string into a Pair. The
// settlement suffix of contract symbols is split off first.
func NewPairFromString(pair string) (Pair, error) {
	if pair == "" {
		return Pair{}, errEmptyPairString
	}

	var settle Code
	if i := strings.Index(pair, ":"); i != -1 {
		settle = NewCode(pair[i+1:])
		pair = pair[:i]
	}

	for _, d := range []string{"/", "-", "_"} {
		if !strings.Contains(pair, d) {
			continue
		}
		result := strings.Split(pair, d)
		if len(result) < 2 || result[0] == "" || result[1] == "" {
			return Pair{}, fmt.Errorf("cannot parse pair string %q", pair)
		}
		return Pair{
			Delimiter: d,
			Base:      NewCode(result[0]),
			Quote:     NewCode(result[1]),
			Settle:    settle,
		}, nil
	}

	return Pair{Base: NewCode(pair), Settle: settle}, nil
}

// String returns the currency pair string
func (p Pair) String() string {
	s := p.Base.String() + p.Delimiter + p.Quote.String()
	if !p.Settle.IsEmpty() {
		s += ":" + p.Settle.String()
	}
	return s
}

// Equal compares two currency pairs ignoring settlement currency
func (p Pair) Equal(o Pair) bool {
	return p.Base.Equal(o.Base) && p.Quote.Equal(o.Quote)
}

// IsEmpty returns whether the pair is missing a currency code
func (p Pair) IsEmpty() bool {
	return p.Base.IsEmpty() || p.Quote.IsEmpty()
}
