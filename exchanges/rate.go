package exchange

import (
	"context"
	"errors"
	"fmt"

	"github.com/tidalfin/cryptogate/config"
	"github.com/tidalfin/cryptogate/log"
)

// ErrPricing is returned when no usable rate can be derived for a pair
var ErrPricing = errors.New("no usable price for pair")

// GetRate derives a usable order rate for symbol: the configured book side
// price, optionally blended toward the last traded price when that is more
// favourable, or a raw depth level when order book pricing is enabled. Rates
// are cached per side; refresh bypasses the cache.
func (b *Base) GetRate(ctx context.Context, symbol string, entry, refresh bool) (float64, error) {
	side := "exit"
	pricing := b.cfg.ExitPricing
	if entry {
		side = "entry"
		pricing = b.cfg.EntryPricing
	}
	cacheKey := symbol + "/" + side

	if !refresh {
		if v := b.rateCache.Get(cacheKey); v != nil {
			return v.(float64), nil
		}
	}

	var rate float64
	var err error
	if pricing.UseOrderBook {
		rate, err = b.bookRate(ctx, symbol, pricing)
	} else {
		rate, err = b.tickerRate(ctx, symbol, pricing, entry)
	}
	if err != nil {
		return 0, err
	}
	if rate <= 0 {
		return 0, fmt.Errorf("%w: %s %s", ErrPricing, symbol, side)
	}

	b.rateCache.Add(cacheKey, rate)
	log.Debugf(log.ExchangeSys, "%s: %s rate for %s: %v", b.Name(), side, symbol, rate)
	return rate, nil
}

func (b *Base) bookRate(ctx context.Context, symbol string, pricing config.Pricing) (float64, error) {
	book, err := b.FetchOrderBook(ctx, symbol, pricing.OrderBookTop)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrPricing, symbol, err)
	}
	rate, err := book.PriceAtDepth(pricing.PriceSide == config.PriceSideBid, pricing.OrderBookTop)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrPricing, symbol, err)
	}
	return rate, nil
}

func (b *Base) tickerRate(ctx context.Context, symbol string, pricing config.Pricing, entry bool) (float64, error) {
	tick, err := b.FetchTicker(ctx, symbol)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrPricing, symbol, err)
	}
	rate := tick.SidePrice(pricing.PriceSide == config.PriceSideBid)
	if rate <= 0 {
		if !tick.HasLast() {
			return 0, fmt.Errorf("%w: %s ticker has neither side nor last price", ErrPricing, symbol)
		}
		return tick.Last, nil
	}
	// Pull the rate toward the last trade when that improves it: downward for
	// entries priced off the ask, upward for exits priced off the bid
	if pricing.LastPriceBalance > 0 && tick.HasLast() {
		if (entry && rate > tick.Last) || (!entry && rate < tick.Last) {
			rate += pricing.LastPriceBalance * (tick.Last - rate)
		}
	}
	return rate, nil
}
