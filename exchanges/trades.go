package exchange

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tidalfin/cryptogate/exchanges/features"
	"github.com/tidalfin/cryptogate/exchanges/precision"
	"github.com/tidalfin/cryptogate/exchanges/trade"
	"github.com/tidalfin/cryptogate/log"
)

// tradePageCap guards against venues that never terminate a pagination walk
const tradePageCap = 1000

// GetHistoricTrades collects executed trades for symbol between since and
// until, walking the venue's pagination style. Results are deduplicated by
// trade id and sorted ascending. In contract markets amounts are converted
// from contracts to base currency.
func (b *Base) GetHistoricTrades(ctx context.Context, symbol string, since, until time.Time) ([]trade.Data, error) {
	var trades []trade.Data
	var err error
	switch b.profile.Capability(features.TradesPagination).Str() {
	case features.PaginateByID:
		trades, err = b.tradesByID(ctx, symbol, since, until)
	default:
		trades, err = b.tradesByTime(ctx, symbol, since, until)
	}
	if err != nil {
		return nil, err
	}

	trades = trade.Dedupe(trades)
	trade.SortByTimestamp(trades)
	trades = trimTrades(trades, since, until)

	if b.tradingMode.IsContract() {
		if m, err := b.Market(symbol); err == nil {
			for i := range trades {
				trades[i].Amount = precision.ContractsToAmount(trades[i].Amount, m.ContractSize)
			}
		}
	}
	return trades, nil
}

// tradesByID pages using the venue's trade id cursor. The first call scopes
// by time; every following call passes the last seen id through the venue's
// cursor parameter. The walk ends on an empty page, when the cursor stops
// advancing or when trades pass until.
func (b *Base) tradesByID(ctx context.Context, symbol string, since, until time.Time) ([]trade.Data, error) {
	cursorArg := b.profile.Capability(features.TradesPaginationArg).Str()
	var collected []trade.Data
	var cursor string

	for page := 0; page < tradePageCap; page++ {
		params := make(map[string]string, 1)
		if cursor == "" {
			params["since"] = strconv.FormatInt(since.UnixMilli(), 10)
		} else {
			params[cursorArg] = cursor
		}

		batch, err := b.fetchTradesPage(ctx, symbol, params)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		collected = append(collected, batch...)

		last := batch[len(batch)-1]
		if last.ID == cursor {
			// Venue re-served the page; no forward progress possible
			break
		}
		cursor = last.ID
		if last.Timestamp.After(until) {
			break
		}
	}
	return collected, nil
}

// tradesByTime pages by advancing since to the second newest trade timestamp
// of each batch, so trades sharing the boundary timestamp are not skipped
func (b *Base) tradesByTime(ctx context.Context, symbol string, since, until time.Time) ([]trade.Data, error) {
	var collected []trade.Data
	window := since

	for page := 0; page < tradePageCap; page++ {
		params := map[string]string{
			"since": strconv.FormatInt(window.UnixMilli(), 10),
		}
		batch, err := b.fetchTradesPage(ctx, symbol, params)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}
		collected = append(collected, batch...)

		next := batch[len(batch)-1].Timestamp
		if len(batch) > 1 {
			next = batch[len(batch)-2].Timestamp
		}
		if !next.After(window) {
			log.Debugf(log.ExchangeSys, "%s: trade pagination stalled at %v for %s", b.Name(), window, symbol)
			break
		}
		window = next
		if window.After(until) {
			break
		}
	}
	return collected, nil
}

func (b *Base) fetchTradesPage(ctx context.Context, symbol string, params map[string]string) ([]trade.Data, error) {
	var batch []trade.Data
	err := b.retrier.Do(ctx, "fetch_trades", func(ctx context.Context) error {
		var err error
		batch, err = b.client.FetchTrades(ctx, symbol, params)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching trades %s: %w", symbol, err)
	}
	return batch, nil
}

func trimTrades(trades []trade.Data, since, until time.Time) []trade.Data {
	out := trades[:0]
	for _, t := range trades {
		if t.Timestamp.Before(since) || t.Timestamp.After(until) {
			continue
		}
		out = append(out, t)
	}
	return out
}
