package exchange

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidalfin/cryptogate/config"
	"github.com/tidalfin/cryptogate/currency"
	"github.com/tidalfin/cryptogate/exchanges/asset"
	"github.com/tidalfin/cryptogate/exchanges/features"
	"github.com/tidalfin/cryptogate/exchanges/futures"
	"github.com/tidalfin/cryptogate/exchanges/kline"
	"github.com/tidalfin/cryptogate/exchanges/margin"
	"github.com/tidalfin/cryptogate/exchanges/order"
	"github.com/tidalfin/cryptogate/exchanges/orderbook"
	"github.com/tidalfin/cryptogate/exchanges/precision"
	"github.com/tidalfin/cryptogate/exchanges/ticker"
	"github.com/tidalfin/cryptogate/exchanges/trade"
)

// mockClient satisfies Client through overridable function fields; calls with
// no override return zero values
type mockClient struct {
	name string

	fetchMarkets    func(ctx context.Context) ([]Market, error)
	fetchTickers    func(ctx context.Context) (map[string]*ticker.Price, error)
	fetchTicker     func(ctx context.Context, symbol string) (*ticker.Price, error)
	fetchOrderBook  func(ctx context.Context, symbol string, limit int) (*orderbook.Base, error)
	fetchCandles    func(ctx context.Context, symbol string, interval kline.Interval, candleType kline.CandleType, since time.Time, limit int) ([]kline.Candle, error)
	fetchTrades     func(ctx context.Context, symbol string, params map[string]string) ([]trade.Data, error)
	submitOrder     func(ctx context.Context, sub *order.Submit) (*order.Detail, error)
	cancelOrder     func(ctx context.Context, id, symbol string) (*order.Detail, error)
	fetchOrder      func(ctx context.Context, id, symbol string) (*order.Detail, error)
	fetchTiers      func(ctx context.Context, symbol string) ([]futures.LeverageTier, error)
	fetchFunding    func(ctx context.Context, symbol string, since, until time.Time) ([]futures.FundingRateEntry, error)
	fetchFundingFee func(ctx context.Context, symbol string, since time.Time) ([]futures.FundingFeeRecord, error)
	setLeverage     func(ctx context.Context, symbol string, leverage float64) error
	setMarginMode   func(ctx context.Context, symbol string, mode margin.Type) error
}

func (m *mockClient) Name() string {
	if m.name == "" {
		return "testvenue"
	}
	return m.name
}

func (m *mockClient) FetchMarkets(ctx context.Context) ([]Market, error) {
	if m.fetchMarkets == nil {
		return nil, nil
	}
	return m.fetchMarkets(ctx)
}

func (m *mockClient) FetchTickers(ctx context.Context) (map[string]*ticker.Price, error) {
	if m.fetchTickers == nil {
		return nil, nil
	}
	return m.fetchTickers(ctx)
}

func (m *mockClient) FetchTicker(ctx context.Context, symbol string) (*ticker.Price, error) {
	if m.fetchTicker == nil {
		return &ticker.Price{Pair: symbol}, nil
	}
	return m.fetchTicker(ctx, symbol)
}

func (m *mockClient) FetchOrderBook(ctx context.Context, symbol string, limit int) (*orderbook.Base, error) {
	if m.fetchOrderBook == nil {
		return &orderbook.Base{Pair: symbol}, nil
	}
	return m.fetchOrderBook(ctx, symbol, limit)
}

func (m *mockClient) FetchCandles(ctx context.Context, symbol string, interval kline.Interval, candleType kline.CandleType, since time.Time, limit int) ([]kline.Candle, error) {
	if m.fetchCandles == nil {
		return nil, nil
	}
	return m.fetchCandles(ctx, symbol, interval, candleType, since, limit)
}

func (m *mockClient) FetchTrades(ctx context.Context, symbol string, params map[string]string) ([]trade.Data, error) {
	if m.fetchTrades == nil {
		return nil, nil
	}
	return m.fetchTrades(ctx, symbol, params)
}

func (m *mockClient) SubmitOrder(ctx context.Context, sub *order.Submit) (*order.Detail, error) {
	if m.submitOrder == nil {
		return &order.Detail{ID: "1", Status: order.Open}, nil
	}
	return m.submitOrder(ctx, sub)
}

func (m *mockClient) CancelOrder(ctx context.Context, id, symbol string) (*order.Detail, error) {
	if m.cancelOrder == nil {
		return &order.Detail{ID: id, Status: order.Cancelled}, nil
	}
	return m.cancelOrder(ctx, id, symbol)
}

func (m *mockClient) FetchOrder(ctx context.Context, id, symbol string) (*order.Detail, error) {
	if m.fetchOrder == nil {
		return &order.Detail{ID: id, Status: order.Open}, nil
	}
	return m.fetchOrder(ctx, id, symbol)
}

func (m *mockClient) FetchLeverageTiers(ctx context.Context, symbol string) ([]futures.LeverageTier, error) {
	if m.fetchTiers == nil {
		return nil, nil
	}
	return m.fetchTiers(ctx, symbol)
}

func (m *mockClient) FetchFundingRates(ctx context.Context, symbol string, since, until time.Time) ([]futures.FundingRateEntry, error) {
	if m.fetchFunding == nil {
		return nil, nil
	}
	return m.fetchFunding(ctx, symbol, since, until)
}

func (m *mockClient) FetchFundingFeeHistory(ctx context.Context, symbol string, since time.Time) ([]futures.FundingFeeRecord, error) {
	if m.fetchFundingFee == nil {
		return nil, nil
	}
	return m.fetchFundingFee(ctx, symbol, since)
}

func (m *mockClient) SetLeverage(ctx context.Context, symbol string, leverage float64) error {
	if m.setLeverage == nil {
		return nil
	}
	return m.setLeverage(ctx, symbol, leverage)
}

func (m *mockClient) SetMarginMode(ctx context.Context, symbol string, mode margin.Type) error {
	if m.setMarginMode == nil {
		return nil
	}
	return m.setMarginMode(ctx, symbol, mode)
}

func newTestGateway(t *testing.T, c *mockClient, mutate func(*config.Config), opts ...Option) *Base {
	t.Helper()
	cfg := config.Default()
	// Keep failure paths instant in tests
	cfg.RetryBudget = 0
	if mutate != nil {
		mutate(cfg)
	}
	b, err := New(c, cfg, opts...)
	require.NoError(t, err)
	return b
}

func boolPtr(v bool) *bool { return &v }

func testMarkets() []Market {
	return []Market{
		{
			Symbol:          "ETH/BTC",
			Pair:            currency.NewPair(currency.ETH, currency.BTC),
			Spot:            true,
			PrecisionMode:   precision.DecimalPlaces,
			AmountPrecision: 3,
			PricePrecision:  5,
		},
		{
			Symbol:          "LTC/USDT",
			Pair:            currency.NewPair(currency.NewCode("LTC"), currency.USDT),
			Spot:            true,
			Futures:         true,
			ContractSize:    0.1,
			PrecisionMode:   precision.DecimalPlaces,
			AmountPrecision: 2,
			PricePrecision:  3,
		},
		{
			Symbol: "XLTCUSDT",
			Pair:   currency.Pair{Base: currency.NewCode("XLTCUSDT")},
			Spot:   true,
		},
		{
			Symbol:   "BTC/EUR.d",
			Pair:     currency.NewPair(currency.BTC, currency.NewCode("EUR")),
			Spot:     true,
			Darkpool: true,
		},
		{
			Symbol: "XRP/USDT",
			Pair:   currency.NewPair(currency.NewCode("XRP"), currency.USDT),
			Spot:   true,
			Active: boolPtr(false),
		},
	}
}

func loadTestMarkets(t *testing.T, b *Base) {
	t.Helper()
	b.ReloadMarkets(context.Background(), true)
	require.NotEmpty(t, b.Markets())
}

func TestNewValidatesModes(t *testing.T) {
	cfg := config.Default()
	cfg.TradingMode = "futures"
	cfg.MarginMode = "isolated"
	// The default profile is spot only
	_, err := New(&mockClient{}, cfg)
	assert.ErrorIs(t, err, ErrModeUnsupported)

	// binance declares isolated futures
	b, err := New(&mockClient{name: "binance"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, asset.Futures, b.TradingMode())
	assert.Equal(t, margin.Isolated, b.MarginMode())
}

func TestNewAppliesFeatureOverrides(t *testing.T) {
	cfg := config.Default()
	cfg.FeatureOverrides = map[string]any{"candle_limit": 123}
	b, err := New(&mockClient{name: "binance"}, cfg)
	require.NoError(t, err)
	assert.Equal(t, 123, b.Profile().Capability(features.CandleLimit).Int())
}

func TestDryRunToggle(t *testing.T) {
	b := newTestGateway(t, &mockClient{}, nil)
	assert.True(t, b.IsDryRun())

	b = newTestGateway(t, &mockClient{}, func(c *config.Config) { c.DryRun = false })
	assert.False(t, b.IsDryRun())
}
