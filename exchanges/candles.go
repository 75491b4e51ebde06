package exchange

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tidalfin/cryptogate/exchanges/features"
	"github.com/tidalfin/cryptogate/exchanges/kline"
	"github.com/tidalfin/cryptogate/exchanges/request"
	"github.com/tidalfin/cryptogate/log"
)

// CandleCallBudget caps how many paginated candle windows one historic
// request may fan out into
const CandleCallBudget = 100

// refreshWorkers bounds concurrent venue calls during a bulk refresh
const refreshWorkers = 4

// ErrCandleBudgetExceeded is returned when a historic range needs more venue
// calls than the budget allows
var ErrCandleBudgetExceeded = errors.New("historic candle range exceeds call budget")

var errInvalidCandleRange = errors.New("candle range end must be after start")

// CandleRequest identifies one candle series
type CandleRequest struct {
	Symbol     string
	Interval   kline.Interval
	CandleType kline.CandleType
}

// Key returns the cache key for the series
func (r CandleRequest) Key() string {
	return r.Symbol + "-" + r.Interval.Short() + "-" + r.CandleType.String()
}

// CandleLimit returns how many candles the venue serves per call for the
// given series. Some venues route old ranges and synthetic series through a
// reduced history endpoint; a non-zero since older than one full window at
// the standard limit selects the reduced limit, as does a non price candle
// type.
func (b *Base) CandleLimit(interval kline.Interval, candleType kline.CandleType, since time.Time) int {
	limit := b.profile.Capability(features.CandleLimit).Int()
	if byTF := b.profile.Capability(features.CandleLimitPerTimeframe).IntMap(); byTF != nil {
		if v, ok := byTF[interval.Short()]; ok {
			limit = v
		}
	}
	historic := b.profile.Capability(features.CandleHistoricLimit)
	if !historic.Exists {
		return limit
	}
	if !candleType.IsPrice() {
		return historic.Int()
	}
	if !since.IsZero() {
		cutoff := b.now().Add(-time.Duration(limit) * interval.Duration())
		if since.Before(cutoff) {
			return historic.Int()
		}
	}
	return limit
}

// GetHistoricCandles fetches the series covering [start, end], paginating
// concurrently when the range spans more than one venue window. Results are
// merged ascending and deduplicated.
func (b *Base) GetHistoricCandles(ctx context.Context, req CandleRequest, start, end time.Time) (*kline.Item, error) {
	if !end.After(start) {
		return nil, fmt.Errorf("%w: start %v end %v", errInvalidCandleRange, start, end)
	}
	limit := b.CandleLimit(req.Interval, req.CandleType, start)
	if limit <= 0 {
		return nil, fmt.Errorf("%w: venue declares no candle limit", request.ErrNotSupported)
	}

	required := int(end.Sub(start)/req.Interval.Duration()) + 1
	calls := (required + limit - 1) / limit
	if calls > CandleCallBudget {
		return nil, fmt.Errorf("%w: %d calls needed for %d candles", ErrCandleBudgetExceeded, calls, required)
	}

	windows := make([][]kline.Candle, calls)
	var wg sync.WaitGroup
	sem := make(chan struct{}, refreshWorkers)
	errs := make([]error, calls)
	for i := 0; i < calls; i++ {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int) {
			defer wg.Done()
			defer func() { <-sem }()
			since := start.Add(time.Duration(i*limit) * req.Interval.Duration())
			errs[i] = b.retrier.Do(ctx, "fetch_candles", func(ctx context.Context) error {
				candles, err := b.client.FetchCandles(ctx, req.Symbol, req.Interval, req.CandleType, since, limit)
				if err != nil {
					return err
				}
				windows[i] = candles
				return nil
			})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("fetching candles %s: %w", req.Key(), err)
		}
	}

	item := &kline.Item{
		Exchange:   b.Name(),
		Interval:   req.Interval,
		CandleType: req.CandleType,
	}
	for _, w := range windows {
		item.Candles = append(item.Candles, w...)
	}
	item.SortCandlesByTimestamp(false)
	item.RemoveDuplicates()
	item.Candles = trimRange(item.Candles, start, end)
	return item, nil
}

func trimRange(candles []kline.Candle, start, end time.Time) []kline.Candle {
	out := candles[:0]
	for _, c := range candles {
		if c.Time.Before(start) || c.Time.After(end) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// RefreshLatestCandles updates the latest window of every requested series,
// fanning out across venues calls with bounded concurrency. With useCache
// set, series whose newest cached candle is still inside the current interval
// are served from cache without a venue call and fresh results are stored for
// the next refresh. Without it every series is fetched and the cache is left
// untouched. A failed series keeps its previously cached data, is logged and
// is excluded from the result set.
func (b *Base) RefreshLatestCandles(ctx context.Context, reqs []CandleRequest, useCache bool) map[string]*kline.Item {
	results := make(map[string]*kline.Item, len(reqs))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, refreshWorkers)

	for _, req := range reqs {
		if useCache {
			if cached := b.cachedCurrent(req); cached != nil {
				// Workers for earlier misses may already be writing results
				resultsMu.Lock()
				results[req.Key()] = cached
				resultsMu.Unlock()
				continue
			}
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(req CandleRequest) {
			defer wg.Done()
			defer func() { <-sem }()
			item, err := b.fetchLatest(ctx, req)
			if err != nil {
				log.Warnf(log.CandleSys, "%s: refreshing %s failed, keeping stale data: %v", b.Name(), req.Key(), err)
				return
			}
			if useCache {
				b.klinesMu.Lock()
				b.klines[req.Key()] = item
				b.klinesMu.Unlock()
			}
			resultsMu.Lock()
			results[req.Key()] = item.Copy()
			resultsMu.Unlock()
		}(req)
	}
	wg.Wait()
	return results
}

// cachedCurrent returns a copy of the cached series when its newest candle
// still covers the present interval
func (b *Base) cachedCurrent(req CandleRequest) *kline.Item {
	b.klinesMu.RLock()
	item := b.klines[req.Key()]
	b.klinesMu.RUnlock()
	latest, ok := item.Latest()
	if !ok {
		return nil
	}
	if !latest.Time.Add(req.Interval.Duration()).After(b.now()) {
		return nil
	}
	return item.Copy()
}

func (b *Base) fetchLatest(ctx context.Context, req CandleRequest) (*kline.Item, error) {
	limit := b.CandleLimit(req.Interval, req.CandleType, time.Time{})
	var candles []kline.Candle
	err := b.retrier.Do(ctx, "refresh_candles", func(ctx context.Context) error {
		var err error
		candles, err = b.client.FetchCandles(ctx, req.Symbol, req.Interval, req.CandleType, time.Time{}, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	item := &kline.Item{
		Exchange:   b.Name(),
		Interval:   req.Interval,
		CandleType: req.CandleType,
		Candles:    candles,
	}
	item.EnsureAscending()
	item.RemoveDuplicates()
	return item, nil
}

// Klines returns the cached series for req: a deep copy when copied is set,
// otherwise the live reference
func (b *Base) Klines(req CandleRequest, copied bool) *kline.Item {
	b.klinesMu.RLock()
	defer b.klinesMu.RUnlock()
	item := b.klines[req.Key()]
	if item == nil {
		return nil
	}
	if copied {
		return item.Copy()
	}
	return item
}
