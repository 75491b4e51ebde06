package exchange

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tidalfin/cryptogate/config"
	"github.com/tidalfin/cryptogate/exchanges/margin"
	"github.com/tidalfin/cryptogate/exchanges/order"
	"github.com/tidalfin/cryptogate/exchanges/orderbook"
	"github.com/tidalfin/cryptogate/exchanges/request"
)

func orderGatewayClient() *mockClient {
	return &mockClient{
		fetchMarkets: func(context.Context) ([]Market, error) {
			return testMarkets(), nil
		},
		fetchOrderBook: func(_ context.Context, symbol string, _ int) (*orderbook.Base, error) {
			return &orderbook.Base{
				Pair: symbol,
				Asks: []orderbook.Item{{Price: 0.051, Amount: 100}},
				Bids: []orderbook.Item{{Price: 0.05, Amount: 100}},
			}, nil
		},
	}
}

func TestSubmitOrderDryRun(t *testing.T) {
	c := orderGatewayClient()
	c.submitOrder = func(context.Context, *order.Submit) (*order.Detail, error) {
		t.Fatal("venue must not receive orders in dry-run mode")
		return nil, nil
	}
	b := newTestGateway(t, c, nil)
	loadTestMarkets(t, b)

	d, err := b.SubmitOrder(context.Background(), &order.Submit{
		Pair: "ETH/BTC", Side: order.Buy, Type: order.Limit, Amount: 1, Price: 0.052,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(d.ID, "dry_run_buy_"))
	assert.Equal(t, order.Closed, d.Status)
}

func TestSubmitOrderAppliesPrecision(t *testing.T) {
	var got *order.Submit
	c := orderGatewayClient()
	c.submitOrder = func(_ context.Context, sub *order.Submit) (*order.Detail, error) {
		got = sub
		return &order.Detail{ID: "42", Status: order.Open}, nil
	}
	b := newTestGateway(t, c, func(cfg *config.Config) { cfg.DryRun = false })
	loadTestMarkets(t, b)

	_, err := b.SubmitOrder(context.Background(), &order.Submit{
		Pair: "ETH/BTC", Side: order.Buy, Type: order.Limit, Amount: 1.23456, Price: 0.123456,
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	// Amounts truncate, prices round to nearest
	assert.Equal(t, 1.234, got.Amount)
	assert.Equal(t, 0.12346, got.Price)
}

func TestSubmitOrderContractPrecision(t *testing.T) {
	var got *order.Submit
	c := orderGatewayClient()
	c.name = "binance"
	c.submitOrder = func(_ context.Context, sub *order.Submit) (*order.Detail, error) {
		got = sub
		return &order.Detail{ID: "42", Status: order.Open}, nil
	}
	b := newTestGateway(t, c, func(cfg *config.Config) {
		cfg.DryRun = false
		cfg.TradingMode = "futures"
		cfg.MarginMode = "isolated"
	})
	loadTestMarkets(t, b)

	// 0.5 base = 5 contracts at size 0.1, already exact
	_, err := b.SubmitOrder(context.Background(), &order.Submit{
		Pair: "LTC/USDT", Side: order.Buy, Type: order.Limit, Amount: 0.5, Price: 25.5,
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.InDelta(t, 0.5, got.Amount, 1e-9)

	// 0.055 base = 0.55 contracts, truncates to 0.55 at two decimals
	_, err = b.SubmitOrder(context.Background(), &order.Submit{
		Pair: "LTC/USDT", Side: order.Buy, Type: order.Limit, Amount: 0.0555, Price: 25.5,
	})
	require.NoError(t, err)
	assert.InDelta(t, 0.055, got.Amount, 1e-9)
}

func TestSubmitOrderAmountRoundsToZero(t *testing.T) {
	b := newTestGateway(t, orderGatewayClient(), func(cfg *config.Config) { cfg.DryRun = false })
	loadTestMarkets(t, b)

	_, err := b.SubmitOrder(context.Background(), &order.Submit{
		Pair: "ETH/BTC", Side: order.Buy, Type: order.Limit, Amount: 0.0004, Price: 0.05,
	})
	assert.ErrorIs(t, err, order.ErrAmountIsInvalid)
}

func TestCancelAndFetchDryRunOrder(t *testing.T) {
	c := orderGatewayClient()
	b := newTestGateway(t, c, nil)
	loadTestMarkets(t, b)

	d, err := b.SubmitOrder(context.Background(), &order.Submit{
		Pair: "ETH/BTC", Side: order.Buy, Type: order.Limit, Amount: 1, Price: 0.04,
	})
	require.NoError(t, err)
	require.Equal(t, order.Open, d.Status)

	got, err := b.FetchOrderInfo(context.Background(), d.ID, "ETH/BTC")
	require.NoError(t, err)
	assert.Equal(t, order.Open, got.Status)

	got, err = b.CancelOrder(context.Background(), d.ID, "ETH/BTC")
	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, got.Status)
}

func TestVenueOrderPath(t *testing.T) {
	c := orderGatewayClient()
	c.fetchOrder = func(_ context.Context, id, _ string) (*order.Detail, error) {
		return &order.Detail{ID: id, Status: order.Closed}, nil
	}
	b := newTestGateway(t, c, func(cfg *config.Config) { cfg.DryRun = false })

	d, err := b.FetchOrderInfo(context.Background(), "venue-id-1", "ETH/BTC")
	require.NoError(t, err)
	assert.Equal(t, order.Closed, d.Status)

	got, err := b.CancelOrder(context.Background(), "venue-id-1", "ETH/BTC")
	require.NoError(t, err)
	assert.Equal(t, order.Cancelled, got.Status)
}

func TestSubmitOrderTimeInForce(t *testing.T) {
	c := orderGatewayClient()
	c.name = "binance"
	c.submitOrder = func(_ context.Context, sub *order.Submit) (*order.Detail, error) {
		return &order.Detail{ID: "42", Status: order.Open}, nil
	}
	b := newTestGateway(t, c, func(cfg *config.Config) { cfg.DryRun = false })

	_, err := b.SubmitOrder(context.Background(), &order.Submit{
		Pair: "ETH/USDT", Side: order.Buy, Type: order.Limit, Amount: 1, Price: 100,
		TimeInForce: order.ImmediateOrCancel,
	})
	require.NoError(t, err)

	// binance takes gtc/fok/ioc only
	_, err = b.SubmitOrder(context.Background(), &order.Submit{
		Pair: "ETH/USDT", Side: order.Buy, Type: order.Limit, Amount: 1, Price: 100,
		TimeInForce: order.PostOnly,
	})
	assert.ErrorIs(t, err, request.ErrNotSupported)
}

func TestCreateStoplossUnsupported(t *testing.T) {
	b := newTestGateway(t, orderGatewayClient(), nil)
	_, err := b.CreateStoploss(context.Background(), &order.Submit{
		Pair: "ETH/BTC", Side: order.Sell, Amount: 1, StopPrice: 100,
	})
	assert.ErrorIs(t, err, request.ErrNotSupported)
}

func TestCreateStoploss(t *testing.T) {
	var got *order.Submit
	c := orderGatewayClient()
	c.name = "binance"
	c.submitOrder = func(_ context.Context, sub *order.Submit) (*order.Detail, error) {
		got = sub
		return &order.Detail{ID: "42", Status: order.Open}, nil
	}
	b := newTestGateway(t, c, func(cfg *config.Config) { cfg.DryRun = false })

	_, err := b.CreateStoploss(context.Background(), &order.Submit{
		Pair: "ETH/USDT", Side: order.Sell, Amount: 1, StopPrice: 100,
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, order.StopLossLimit, got.Type)
	// Limit leg sits below the trigger for a long exit
	assert.InDelta(t, 99.0, got.Price, 1e-9)

	_, err = b.CreateStoploss(context.Background(), &order.Submit{
		Pair: "ETH/USDT", Side: order.Buy, Amount: 1, StopPrice: 100,
	})
	require.NoError(t, err)
	assert.InDelta(t, 101.0, got.Price, 1e-9)

	_, err = b.CreateStoploss(context.Background(), &order.Submit{
		Pair: "ETH/USDT", Side: order.Sell, Amount: 1,
	})
	assert.ErrorIs(t, err, order.ErrPriceIsInvalid)
}

func TestCreateStoplossOrderTypeGate(t *testing.T) {
	b := newTestGateway(t, orderGatewayClient(), func(cfg *config.Config) {
		cfg.FeatureOverrides = map[string]any{
			"stoploss_on_exchange": true,
			"stoploss_order_types": []string{"market"},
		}
	})

	_, err := b.CreateStoploss(context.Background(), &order.Submit{
		Pair: "ETH/USDT", Side: order.Sell, Amount: 1, StopPrice: 100,
	})
	assert.ErrorIs(t, err, request.ErrNotSupported)
}

func TestStoplossAdjustNeeded(t *testing.T) {
	resting := &order.Detail{Side: order.Sell, StopPrice: 95}
	assert.True(t, StoplossAdjustNeeded(100, resting))
	assert.False(t, StoplossAdjustNeeded(95, resting))
	assert.False(t, StoplossAdjustNeeded(90, resting))

	restingShort := &order.Detail{Side: order.Buy, StopPrice: 105}
	assert.True(t, StoplossAdjustNeeded(100, restingShort))
	assert.False(t, StoplossAdjustNeeded(110, restingShort))
	assert.False(t, StoplossAdjustNeeded(0, nil))
}

func TestVenueParamStrategies(t *testing.T) {
	var got *order.Submit
	c := orderGatewayClient()
	c.name = "binance"
	c.submitOrder = func(_ context.Context, sub *order.Submit) (*order.Detail, error) {
		got = sub
		return &order.Detail{ID: "42", Status: order.Open}, nil
	}
	b := newTestGateway(t, c,
		func(cfg *config.Config) {
			cfg.DryRun = false
			cfg.TradingMode = "futures"
			cfg.MarginMode = "isolated"
		},
		WithMarginParams(func(_ *order.Submit, mode margin.Type) map[string]string {
			return map[string]string{"marginMode": mode.String()}
		}),
		WithPositionSide(func(side order.Side, reduceOnly bool) string {
			if reduceOnly {
				return string(side.Opposite())
			}
			return string(side)
		}),
	)

	_, err := b.SubmitOrder(context.Background(), &order.Submit{
		Pair: "ETH/USDT", Side: order.Buy, Type: order.Limit, Amount: 1, Price: 100, ReduceOnly: true,
	})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "isolated", got.Params["marginMode"])
	assert.Equal(t, "sell", got.Params["positionSide"])
}

func TestFetchOrderBookLimitMapping(t *testing.T) {
	var gotLimit int
	c := orderGatewayClient()
	c.name = "binance"
	base := c.fetchOrderBook
	c.fetchOrderBook = func(ctx context.Context, symbol string, limit int) (*orderbook.Base, error) {
		gotLimit = limit
		return base(ctx, symbol, limit)
	}
	b := newTestGateway(t, c, nil)

	_, err := b.FetchOrderBook(context.Background(), "ETH/BTC", 11)
	require.NoError(t, err)
	assert.Equal(t, 20, gotLimit)

	// Above every bucket on a venue that requires one: largest bucket
	_, err = b.FetchOrderBook(context.Background(), "ETH/BTC", 2000)
	require.NoError(t, err)
	assert.Equal(t, 1000, gotLimit)
}

func TestFetchOrderBookNoBucketRequired(t *testing.T) {
	var gotLimit int
	c := orderGatewayClient()
	c.name = "kucoin"
	base := c.fetchOrderBook
	c.fetchOrderBook = func(ctx context.Context, symbol string, limit int) (*orderbook.Base, error) {
		gotLimit = limit
		return base(ctx, symbol, limit)
	}
	b := newTestGateway(t, c, nil)

	// Above every bucket and no bucket required: zero asks for the full book
	_, err := b.FetchOrderBook(context.Background(), "ETH/BTC", 500)
	require.NoError(t, err)
	assert.Equal(t, 0, gotLimit)
}

func TestFetchOrderBookError(t *testing.T) {
	c := orderGatewayClient()
	c.fetchOrderBook = func(context.Context, string, int) (*orderbook.Base, error) {
		return nil, errors.New("venue down")
	}
	b := newTestGateway(t, c, nil)
	if _, err := b.FetchOrderBook(context.Background(), "ETH/BTC", 10); err == nil {
		t.Fatal("expected error")
	}
}
