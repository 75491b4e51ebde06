package exchange

import (
	"context"
	"fmt"

	"github.com/tidalfin/cryptogate/exchanges/ticker"
)

const tickersCacheKey = "tickers"

// GetTickers returns top of book snapshots for every market. With cached set
// a snapshot younger than the ticker TTL is served without a venue call.
func (b *Base) GetTickers(ctx context.Context, cached bool) (map[string]*ticker.Price, error) {
	if cached {
		if v := b.tickersCache.Get(tickersCacheKey); v != nil {
			return v.(map[string]*ticker.Price), nil
		}
	}

	var tickers map[string]*ticker.Price
	err := b.retrier.Do(ctx, "fetch_tickers", func(ctx context.Context) error {
		var err error
		tickers, err = b.client.FetchTickers(ctx)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching tickers: %w", err)
	}
	b.tickersCache.Add(tickersCacheKey, tickers)
	return tickers, nil
}

// FetchTicker returns the top of book snapshot for one symbol. The result is
// remembered per symbol independently of the bulk ticker cache.
func (b *Base) FetchTicker(ctx context.Context, symbol string) (*ticker.Price, error) {
	var price *ticker.Price
	err := b.retrier.Do(ctx, "fetch_ticker", func(ctx context.Context) error {
		var err error
		price, err = b.client.FetchTicker(ctx, symbol)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching ticker %s: %w", symbol, err)
	}
	b.lastTicker.Store(symbol, price)
	return price, nil
}

// LastTicker returns the most recently fetched per-symbol snapshot without a
// venue call
func (b *Base) LastTicker(symbol string) (*ticker.Price, bool) {
	v, ok := b.lastTicker.Load(symbol)
	if !ok {
		return nil, false
	}
	return v.(*ticker.Price), true
}
