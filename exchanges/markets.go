package exchange

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/tidalfin/cryptogate/currency"
	"github.com/tidalfin/cryptogate/exchanges/asset"
	"github.com/tidalfin/cryptogate/exchanges/precision"
	"github.com/tidalfin/cryptogate/log"
)

// Market describes one tradable instrument as listed by the venue
type Market struct {
	Symbol string
	// Pair is the parsed symbol. Concatenated venue symbols resolve their
	// quote against the other listed markets during reload.
	Pair currency.Pair
	// Active is the venue's listing flag; venues that omit it count as active
	Active   *bool
	Darkpool bool

	Spot    bool
	Margin  bool
	Futures bool
	Swap    bool

	ContractSize    float64
	PrecisionMode   precision.Mode
	AmountPrecision float64
	PricePrecision  float64
}

// IsActive reports whether the venue lists the market as trading. A missing
// flag counts as active.
func (m *Market) IsActive() bool {
	return m.Active == nil || *m.Active
}

func (m *Market) allowedIn(a asset.Item) bool {
	switch a {
	case asset.Spot:
		return m.Spot
	case asset.Margin:
		return m.Margin
	case asset.Futures:
		return m.Futures
	case asset.Swap:
		return m.Swap
	}
	return false
}

// IsTradable reports whether orders may be placed on the market under the
// supplied trading mode. Dark pool listings and the venue's `.d` dark pool
// symbol suffix are excluded outright.
func (m *Market) IsTradable(a asset.Item) bool {
	if !m.IsActive() || m.Darkpool || strings.HasSuffix(m.Symbol, ".d") {
		return false
	}
	if m.Pair.Quote.IsEmpty() {
		return false
	}
	return m.allowedIn(a)
}

// ReloadMarkets refreshes the market cache once the reload interval has
// elapsed, or immediately when forced. A failed refresh keeps the previous
// cache and is only logged.
func (b *Base) ReloadMarkets(ctx context.Context, force bool) {
	b.marketsMu.RLock()
	fresh := !b.marketsLoaded.IsZero() && b.now().Sub(b.marketsLoaded) < b.reloadEvery
	b.marketsMu.RUnlock()
	if fresh && !force {
		return
	}

	var listed []Market
	err := b.retrier.Do(ctx, "fetch_markets", func(ctx context.Context) error {
		var err error
		listed, err = b.client.FetchMarkets(ctx)
		return err
	})
	if err != nil {
		log.Warnf(log.MarketSys, "%s: market reload failed, keeping previous markets: %v", b.Name(), err)
		return
	}

	markets := make(map[string]Market, len(listed))
	for i := range listed {
		markets[listed[i].Symbol] = listed[i]
	}
	resolveConcatenatedQuotes(markets)

	b.marketsMu.Lock()
	b.markets = markets
	b.marketsLoaded = b.now()
	b.marketsMu.Unlock()
	log.Debugf(log.MarketSys, "%s: loaded %d markets", b.Name(), len(markets))
}

// resolveConcatenatedQuotes fills in base and quote for venue symbols listed
// without a delimiter, matching the longest quote currency any delimited
// market declares
func resolveConcatenatedQuotes(markets map[string]Market) {
	quotes := knownQuotes(markets)
	for symbol, m := range markets {
		if !m.Pair.Quote.IsEmpty() {
			continue
		}
		raw := m.Pair.Base.String()
		for _, q := range quotes {
			if len(raw) > len(q) && strings.HasSuffix(raw, q) {
				m.Pair.Base = currency.NewCode(raw[:len(raw)-len(q)])
				m.Pair.Quote = currency.NewCode(q)
				markets[symbol] = m
				break
			}
		}
	}
}

// knownQuotes returns the quote currencies of all delimited markets, longest
// first
func knownQuotes(markets map[string]Market) []string {
	set := make(map[string]struct{})
	for _, m := range markets {
		if !m.Pair.Quote.IsEmpty() {
			set[m.Pair.Quote.String()] = struct{}{}
		}
	}
	quotes := make([]string, 0, len(set))
	for q := range set {
		quotes = append(quotes, q)
	}
	sort.Slice(quotes, func(i, j int) bool {
		if len(quotes[i]) != len(quotes[j]) {
			return len(quotes[i]) > len(quotes[j])
		}
		return quotes[i] < quotes[j]
	})
	return quotes
}

// Markets returns a snapshot of the cached markets
func (b *Base) Markets() map[string]Market {
	b.marketsMu.RLock()
	defer b.marketsMu.RUnlock()
	out := make(map[string]Market, len(b.markets))
	for k, v := range b.markets {
		out[k] = v
	}
	return out
}

// Market returns the cached listing for symbol
func (b *Base) Market(symbol string) (Market, error) {
	b.marketsMu.RLock()
	defer b.marketsMu.RUnlock()
	m, ok := b.markets[symbol]
	if !ok {
		return Market{}, fmt.Errorf("%w: %s", ErrMarketNotFound, symbol)
	}
	return m, nil
}

// TradableMarkets returns the symbols tradable under the configured trading
// mode
func (b *Base) TradableMarkets() []string {
	b.marketsMu.RLock()
	defer b.marketsMu.RUnlock()
	out := make([]string, 0, len(b.markets))
	for symbol, m := range b.markets {
		if m.IsTradable(b.tradingMode) {
			out = append(out, symbol)
		}
	}
	sort.Strings(out)
	return out
}

// GetQuoteCurrencies returns every quote currency across the cached markets
func (b *Base) GetQuoteCurrencies() []currency.Code {
	b.marketsMu.RLock()
	defer b.marketsMu.RUnlock()
	set := make(map[currency.Code]struct{})
	for _, m := range b.markets {
		if !m.Pair.Quote.IsEmpty() {
			set[m.Pair.Quote] = struct{}{}
		}
	}
	out := make([]currency.Code, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// PairQuoteCurrency returns the quote currency of a symbol, consulting the
// market cache for concatenated listings
func (b *Base) PairQuoteCurrency(symbol string) currency.Code {
	if m, err := b.Market(symbol); err == nil {
		return m.Pair.Quote
	}
	p, err := currency.NewPairFromString(symbol)
	if err != nil {
		return currency.EMPTYCODE
	}
	return p.Quote
}

// PairBaseCurrency returns the base currency of a symbol, consulting the
// market cache for concatenated listings
func (b *Base) PairBaseCurrency(symbol string) currency.Code {
	if m, err := b.Market(symbol); err == nil {
		return m.Pair.Base
	}
	p, err := currency.NewPairFromString(symbol)
	if err != nil {
		return currency.EMPTYCODE
	}
	return p.Base
}

// NextLimitInList returns the smallest depth bucket covering limit. When the
// requested limit exceeds every bucket the largest is returned if the venue
// requires one, otherwise ok is false and the caller may request the full
// book.
func NextLimitInList(limit int, buckets []int, required bool) (int, bool) {
	if len(buckets) == 0 {
		return limit, true
	}
	best := -1
	max := buckets[0]
	for _, bkt := range buckets {
		if bkt > max {
			max = bkt
		}
		if bkt >= limit && (best == -1 || bkt < best) {
			best = bkt
		}
	}
	if best != -1 {
		return best, true
	}
	if required {
		return max, true
	}
	return 0, false
}
