// Package exchange is the gateway between trading logic and venue REST
// clients. It owns market, ticker and candle caches, retry and dry-run
// dispatch, pricing and derivatives helpers, and adapts per-venue quirks
// through capability profiles instead of venue specific subtypes.
package exchange

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tidalfin/cryptogate/common/cache"
	"github.com/tidalfin/cryptogate/config"
	"github.com/tidalfin/cryptogate/exchanges/asset"
	"github.com/tidalfin/cryptogate/exchanges/dryrun"
	"github.com/tidalfin/cryptogate/exchanges/features"
	"github.com/tidalfin/cryptogate/exchanges/futures"
	"github.com/tidalfin/cryptogate/exchanges/kline"
	"github.com/tidalfin/cryptogate/exchanges/margin"
	"github.com/tidalfin/cryptogate/exchanges/order"
	"github.com/tidalfin/cryptogate/exchanges/orderbook"
	"github.com/tidalfin/cryptogate/exchanges/request"
	"github.com/tidalfin/cryptogate/exchanges/ticker"
	"github.com/tidalfin/cryptogate/exchanges/trade"
)

var (
	// ErrModeUnsupported is returned when the venue does not accept the
	// configured trading and margin mode combination
	ErrModeUnsupported = errors.New("trading and margin mode combination unsupported")
	// ErrMarketNotFound is returned for symbols absent from the market cache
	ErrMarketNotFound = errors.New("market not found")
)

// Client is the venue REST collaborator. Implementations translate these
// calls to venue endpoints and return typed data; authentication, signing and
// wire handling live behind this interface.
type Client interface {
	Name() string
	FetchMarkets(ctx context.Context) ([]Market, error)
	FetchTickers(ctx context.Context) (map[string]*ticker.Price, error)
	FetchTicker(ctx context.Context, symbol string) (*ticker.Price, error)
	FetchOrderBook(ctx context.Context, symbol string, limit int) (*orderbook.Base, error)
	FetchCandles(ctx context.Context, symbol string, interval kline.Interval, candleType kline.CandleType, since time.Time, limit int) ([]kline.Candle, error)
	FetchTrades(ctx context.Context, symbol string, params map[string]string) ([]trade.Data, error)
	SubmitOrder(ctx context.Context, sub *order.Submit) (*order.Detail, error)
	CancelOrder(ctx context.Context, id, symbol string) (*order.Detail, error)
	FetchOrder(ctx context.Context, id, symbol string) (*order.Detail, error)
	FetchLeverageTiers(ctx context.Context, symbol string) ([]futures.LeverageTier, error)
	FetchFundingRates(ctx context.Context, symbol string, since, until time.Time) ([]futures.FundingRateEntry, error)
	FetchFundingFeeHistory(ctx context.Context, symbol string, since time.Time) ([]futures.FundingFeeRecord, error)
	SetLeverage(ctx context.Context, symbol string, leverage float64) error
	SetMarginMode(ctx context.Context, symbol string, mode margin.Type) error
}

// MarginParamsFunc builds venue specific order parameters for leveraged
// submissions
type MarginParamsFunc func(sub *order.Submit, mode margin.Type) map[string]string

// PositionSideFunc resolves the venue position side parameter for hedged
// venues
type PositionSideFunc func(side order.Side, reduceOnly bool) string

// Base is the gateway. Construct with New; the zero value is not usable.
type Base struct {
	client  Client
	profile *features.Profile
	cfg     *config.Config
	retrier *request.Retrier
	sim     *dryrun.Simulator

	tradingMode asset.Item
	marginMode  margin.Type

	marginParams MarginParamsFunc
	positionSide PositionSideFunc

	marketsMu     sync.RWMutex
	markets       map[string]Market
	marketsLoaded time.Time
	reloadEvery   time.Duration

	tickersCache *cache.Timed
	lastTicker   sync.Map

	klinesMu sync.RWMutex
	klines   map[string]*kline.Item

	rateCache *cache.Timed

	now func() time.Time
}

// Option configures a Base at construction
type Option func(*Base)

// WithRetrier overrides the outbound retrier
func WithRetrier(r *request.Retrier) Option {
	return func(b *Base) { b.retrier = r }
}

// WithMarginParams installs the venue's leveraged order parameter builder
func WithMarginParams(fn MarginParamsFunc) Option {
	return func(b *Base) { b.marginParams = fn }
}

// WithPositionSide installs the venue's position side resolver
func WithPositionSide(fn PositionSideFunc) Option {
	return func(b *Base) { b.positionSide = fn }
}

// New assembles a gateway for the client's venue under the supplied
// configuration. The configured trading and margin modes are validated
// against the venue capability profile.
func New(client Client, cfg *config.Config, opts ...Option) (*Base, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	overrides := make(map[features.Key]any, len(cfg.FeatureOverrides))
	for k, v := range cfg.FeatureOverrides {
		overrides[features.Key(k)] = v
	}
	profile := features.New(client.Name(), overrides)

	tradingMode := cfg.Asset()
	marginMode := cfg.Margin()
	if !profile.SupportsModes(tradingMode, marginMode) {
		return nil, fmt.Errorf("%w: %s/%s", ErrModeUnsupported, tradingMode, marginMode)
	}

	b := &Base{
		client:       client,
		profile:      profile,
		cfg:          cfg,
		retrier:      request.NewRetrier(request.WithBudget(cfg.RetryBudget)),
		tradingMode:  tradingMode,
		marginMode:   marginMode,
		markets:      make(map[string]Market),
		reloadEvery:  cfg.MarketReloadInterval,
		tickersCache: cache.NewTimedCache(cfg.TickerCacheTTL),
		klines:       make(map[string]*kline.Item),
		rateCache:    cache.NewTimedCache(cfg.RateCacheTTL),
		now:          time.Now,
	}
	for _, o := range opts {
		o(b)
	}

	if cfg.DryRun {
		b.sim = dryrun.New(b.dryRunBook,
			dryrun.WithMaxSlippage(cfg.MaxSlippage),
			dryrun.WithTakerFee(cfg.TakerFee))
	}
	return b, nil
}

// Name returns the venue name
func (b *Base) Name() string {
	return b.client.Name()
}

// Profile returns the merged capability profile
func (b *Base) Profile() *features.Profile {
	return b.profile
}

// Has reports whether the venue declares the capability
func (b *Base) Has(k features.Key) bool {
	return b.profile.Capability(k).Exists
}

// TradingMode returns the configured trading mode
func (b *Base) TradingMode() asset.Item {
	return b.tradingMode
}

// MarginMode returns the configured margin mode
func (b *Base) MarginMode() margin.Type {
	return b.marginMode
}

// IsDryRun reports whether order flow is simulated
func (b *Base) IsDryRun() bool {
	return b.sim != nil
}
