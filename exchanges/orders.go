package exchange

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidalfin/cryptogate/exchanges/dryrun"
	"github.com/tidalfin/cryptogate/exchanges/features"
	"github.com/tidalfin/cryptogate/exchanges/order"
	"github.com/tidalfin/cryptogate/exchanges/orderbook"
	"github.com/tidalfin/cryptogate/exchanges/precision"
	"github.com/tidalfin/cryptogate/exchanges/request"
)

// defaultStoplossLimitRatio positions the limit leg just through the stop
// trigger when the venue profile does not declare one
const defaultStoplossLimitRatio = 0.99

// dryRunBookDepth is the minimum depth the simulator settles fills against
const dryRunBookDepth = 20

// SubmitOrder places an order, fitting amount and price to the market's
// precision rules first. In dry-run mode the order is simulated instead of
// sent to the venue.
func (b *Base) SubmitOrder(ctx context.Context, sub *order.Submit) (*order.Detail, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	if err := b.validateTimeInForce(sub.TimeInForce); err != nil {
		return nil, err
	}
	if err := b.applyMarketPrecision(sub); err != nil {
		return nil, err
	}
	b.applyVenueParams(sub)

	if b.sim != nil {
		return b.sim.SubmitOrder(ctx, sub)
	}

	var detail *order.Detail
	err := b.retrier.Do(ctx, "submit_order", func(ctx context.Context) error {
		var err error
		detail, err = b.client.SubmitOrder(ctx, sub)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("submitting %s %s order for %s: %w", sub.Side, sub.Type, sub.Pair, err)
	}
	return detail, nil
}

// CancelOrder cancels a working order. Simulated orders are cancelled in the
// simulator regardless of venue state.
func (b *Base) CancelOrder(ctx context.Context, id, symbol string) (*order.Detail, error) {
	if b.sim != nil && dryrun.Owns(id) {
		return b.sim.CancelOrder(ctx, id)
	}

	var detail *order.Detail
	err := b.retrier.Do(ctx, "cancel_order", func(ctx context.Context) error {
		var err error
		detail, err = b.client.CancelOrder(ctx, id, symbol)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("cancelling order %s: %w", id, err)
	}
	return detail, nil
}

// FetchOrderInfo returns current order state. Venue lookups run under the
// deeper order fetch retry budget because fresh orders can lag venue query
// endpoints.
func (b *Base) FetchOrderInfo(ctx context.Context, id, symbol string) (*order.Detail, error) {
	if b.sim != nil && dryrun.Owns(id) {
		return b.sim.FetchOrder(ctx, id)
	}

	var detail *order.Detail
	err := b.retrier.DoOrderFetch(ctx, "fetch_order", func(ctx context.Context) error {
		var err error
		detail, err = b.client.FetchOrder(ctx, id, symbol)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching order %s: %w", id, err)
	}
	return detail, nil
}

// CreateStoploss places a stop loss limit order on venues that support
// resting stops. The limit leg is positioned through the trigger by the
// profile's limit ratio so the order fills once triggered.
func (b *Base) CreateStoploss(ctx context.Context, sub *order.Submit) (*order.Detail, error) {
	if !b.profile.Capability(features.StoplossOnExchange).Bool() {
		return nil, fmt.Errorf("%w: %s does not support on-exchange stoploss", request.ErrNotSupported, b.Name())
	}
	if v := b.profile.Capability(features.StoplossOrderTypes); v.Exists && !containsFold(v.Strs(), string(order.Limit)) {
		return nil, fmt.Errorf("%w: %s does not accept limit stoploss orders", request.ErrNotSupported, b.Name())
	}
	if sub.StopPrice <= 0 {
		return nil, fmt.Errorf("%w: stop price unset", order.ErrPriceIsInvalid)
	}

	ratio := defaultStoplossLimitRatio
	if v := b.profile.Capability(features.StoplossLimitRatio); v.Exists {
		ratio = v.Float()
	}
	sub.Type = order.StopLossLimit
	if sub.Side == order.Sell {
		sub.Price = sub.StopPrice * ratio
	} else {
		sub.Price = sub.StopPrice * (2 - ratio)
	}
	return b.SubmitOrder(ctx, sub)
}

// StoplossAdjustNeeded reports whether a resting stop order no longer sits at
// the desired trigger price. Long exits only ever move the stop up, short
// exits only down.
func StoplossAdjustNeeded(stopPrice float64, d *order.Detail) bool {
	if d == nil {
		return false
	}
	if d.Side == order.Sell {
		return stopPrice > d.StopPrice
	}
	return stopPrice < d.StopPrice
}

// FetchOrderBook returns a depth snapshot for symbol with at least limit
// levels, mapped to the venue's supported depth buckets
func (b *Base) FetchOrderBook(ctx context.Context, symbol string, limit int) (*orderbook.Base, error) {
	buckets := b.profile.Capability(features.OrderbookLimitRange).Ints()
	required := b.profile.Capability(features.OrderbookLimitRequired).Bool()
	venueLimit, ok := NextLimitInList(limit, buckets, required)
	if !ok {
		venueLimit = 0
	}

	var book *orderbook.Base
	err := b.retrier.Do(ctx, "fetch_order_book", func(ctx context.Context) error {
		var err error
		book, err = b.client.FetchOrderBook(ctx, symbol, venueLimit)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching order book %s: %w", symbol, err)
	}
	return book, nil
}

// dryRunBook feeds the simulator fresh depth snapshots
func (b *Base) dryRunBook(ctx context.Context, symbol string) (*orderbook.Base, error) {
	return b.FetchOrderBook(ctx, symbol, dryRunBookDepth)
}

// validateTimeInForce checks a requested time in force against the venue's
// accepted set. An unset time in force always passes.
func (b *Base) validateTimeInForce(tif string) error {
	if tif == "" {
		return nil
	}
	if !containsFold(b.profile.Capability(features.OrderTimeInForce).Strs(), tif) {
		return fmt.Errorf("%w: time in force %q not accepted by %s", request.ErrNotSupported, tif, b.Name())
	}
	return nil
}

func containsFold(list []string, want string) bool {
	for _, v := range list {
		if strings.EqualFold(v, want) {
			return true
		}
	}
	return false
}

// applyMarketPrecision fits order amount and price to the market's declared
// precision. Amounts pass through contract conversion so the truncation
// happens in the unit the venue actually accepts. Unlisted symbols are
// submitted untouched.
func (b *Base) applyMarketPrecision(sub *order.Submit) error {
	m, err := b.Market(sub.Pair)
	if err != nil {
		return nil
	}

	amount := sub.Amount
	if b.tradingMode.IsContract() {
		amount = precision.AmountToContracts(amount, m.ContractSize)
	}
	amount, err = precision.AmountToPrecision(amount, m.PrecisionMode, m.AmountPrecision)
	if err != nil {
		return fmt.Errorf("fitting amount for %s: %w", sub.Pair, err)
	}
	if b.tradingMode.IsContract() {
		amount = precision.ContractsToAmount(amount, m.ContractSize)
	}
	if amount <= 0 {
		return fmt.Errorf("%w: %v rounds to zero", order.ErrAmountIsInvalid, sub.Amount)
	}
	sub.Amount = amount

	if sub.Price > 0 {
		price, err := precision.PriceToPrecision(sub.Price, m.PrecisionMode, m.PricePrecision)
		if err != nil {
			return fmt.Errorf("fitting price for %s: %w", sub.Pair, err)
		}
		sub.Price = price
	}
	return nil
}

// applyVenueParams merges venue specific order parameters from the installed
// strategy funcs
func (b *Base) applyVenueParams(sub *order.Submit) {
	if b.marginParams != nil && b.tradingMode.IsContract() {
		for k, v := range b.marginParams(sub, b.marginMode) {
			if sub.Params == nil {
				sub.Params = make(map[string]string)
			}
			sub.Params[k] = v
		}
	}
	if b.positionSide != nil {
		if sub.Params == nil {
			sub.Params = make(map[string]string)
		}
		sub.Params["positionSide"] = b.positionSide(sub.Side, sub.ReduceOnly)
	}
}
