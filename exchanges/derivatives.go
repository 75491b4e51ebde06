package exchange

import (
	"context"
	"fmt"
	"time"

	"github.com/tidalfin/cryptogate/exchanges/features"
	"github.com/tidalfin/cryptogate/exchanges/futures"
	"github.com/tidalfin/cryptogate/exchanges/kline"
	"github.com/tidalfin/cryptogate/exchanges/margin"
	"github.com/tidalfin/cryptogate/exchanges/request"
)

// GetMaxLeverage returns the highest leverage the venue allows for a position
// of the supplied notional value
func (b *Base) GetMaxLeverage(ctx context.Context, symbol string, notional float64) (float64, error) {
	if !b.tradingMode.IsContract() {
		return 1.0, nil
	}
	tiers, err := b.leverageTiers(ctx, symbol)
	if err != nil {
		return 0, err
	}
	return futures.MaxLeverage(tiers, notional)
}

// LiquidationPrice estimates where the venue would liquidate the position.
// Spot positions yield a nil price with no error.
func (b *Base) LiquidationPrice(ctx context.Context, symbol string, isShort bool, amount, openRate, walletBalance, upnlOther, mmOther float64) (*float64, error) {
	if !b.tradingMode.IsContract() || b.marginMode == margin.Unset {
		return nil, nil
	}
	tiers, err := b.leverageTiers(ctx, symbol)
	if err != nil {
		return nil, err
	}
	tier, err := futures.TierForNotional(tiers, amount*openRate)
	if err != nil {
		return nil, err
	}
	return futures.LiquidationPrice(futures.LiquidationParams{
		TradingMode:       b.tradingMode,
		MarginMode:        b.marginMode,
		IsShort:           isShort,
		Amount:            amount,
		OpenRate:          openRate,
		WalletBalance:     walletBalance,
		MaintenanceRatio:  tier.MaintenanceRatio,
		MaintenanceAmount: tier.MaintenanceAmount,
		UPNLOther:         upnlOther,
		MaintenanceOther:  mmOther,
	})
}

func (b *Base) leverageTiers(ctx context.Context, symbol string) ([]futures.LeverageTier, error) {
	var tiers []futures.LeverageTier
	err := b.retrier.Do(ctx, "fetch_leverage_tiers", func(ctx context.Context) error {
		var err error
		tiers, err = b.client.FetchLeverageTiers(ctx, symbol)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetching leverage tiers %s: %w", symbol, err)
	}
	return tiers, nil
}

// CalculateFundingFees accrues funding owed for a position open between start
// and end, joining the venue's funding rates with mark price candles.
// timeInRatio scales the accrual for partially held boundary intervals and is
// only accepted on venues whose profile declares partial interval settlement.
func (b *Base) CalculateFundingFees(ctx context.Context, symbol string, amount float64, isShort bool, start, end time.Time, timeInRatio *float64) (float64, error) {
	partial := b.profile.Capability(features.FundingPartialRatio).Bool()
	if partial && timeInRatio == nil {
		return 0, fmt.Errorf("%w: %s settles funding continuously and needs a time in ratio", request.ErrOperational, b.Name())
	}
	if !partial && timeInRatio != nil {
		return 0, fmt.Errorf("%w: %s settles funding per full interval only", request.ErrOperational, b.Name())
	}

	var rates []futures.FundingRateEntry
	err := b.retrier.Do(ctx, "fetch_funding_rates", func(ctx context.Context) error {
		var err error
		rates, err = b.client.FetchFundingRates(ctx, symbol, start, end)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("fetching funding rates %s: %w", symbol, err)
	}

	markTF := b.profile.Capability(features.MarkCandleTimeframe).Str()
	interval, err := kline.ParseInterval(markTF)
	if err != nil {
		return 0, fmt.Errorf("mark candle timeframe %q: %w", markTF, err)
	}
	marks, err := b.markPrices(ctx, symbol, interval, start, end)
	if err != nil {
		return 0, err
	}

	total := futures.FundingFees(rates, marks, amount, isShort)
	if timeInRatio != nil {
		total = futures.ApplyTimeInRatio(total, *timeInRatio)
	}
	return total, nil
}

func (b *Base) markPrices(ctx context.Context, symbol string, interval kline.Interval, start, end time.Time) ([]futures.MarkPriceEntry, error) {
	item, err := b.GetHistoricCandles(ctx, CandleRequest{
		Symbol:     symbol,
		Interval:   interval,
		CandleType: kline.Mark,
	}, start, end)
	if err != nil {
		return nil, fmt.Errorf("fetching mark prices %s: %w", symbol, err)
	}
	marks := make([]futures.MarkPriceEntry, len(item.Candles))
	for i, c := range item.Candles {
		marks[i] = futures.MarkPriceEntry{Time: c.Time, Price: c.Open}
	}
	return marks, nil
}

// GetFundingFeesFromExchange sums the venue's settled funding payments for
// symbol since the supplied time
func (b *Base) GetFundingFeesFromExchange(ctx context.Context, symbol string, since time.Time) (float64, error) {
	var records []futures.FundingFeeRecord
	err := b.retrier.Do(ctx, "fetch_funding_history", func(ctx context.Context) error {
		var err error
		records, err = b.client.FetchFundingFeeHistory(ctx, symbol, since)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("fetching funding fee history %s: %w", symbol, err)
	}
	return futures.SumFundingRecords(records, since, b.now()), nil
}

// SetLeverage applies leverage on the venue for symbol. Spot configurations
// report not supported.
func (b *Base) SetLeverage(ctx context.Context, symbol string, leverage float64) error {
	if !b.tradingMode.IsContract() {
		return fmt.Errorf("%w: leverage requires a contract trading mode", request.ErrNotSupported)
	}
	if b.sim != nil {
		return nil
	}
	return b.retrier.Do(ctx, "set_leverage", func(ctx context.Context) error {
		return b.client.SetLeverage(ctx, symbol, leverage)
	})
}

// SetMarginMode applies the configured margin mode on the venue for symbol
func (b *Base) SetMarginMode(ctx context.Context, symbol string) error {
	if !b.tradingMode.IsContract() {
		return fmt.Errorf("%w: margin mode requires a contract trading mode", request.ErrNotSupported)
	}
	if !b.profile.SupportsModes(b.tradingMode, b.marginMode) {
		return fmt.Errorf("%w: %s/%s", ErrModeUnsupported, b.tradingMode, b.marginMode)
	}
	if b.sim != nil {
		return nil
	}
	return b.retrier.Do(ctx, "set_margin_mode", func(ctx context.Context) error {
		return b.client.SetMarginMode(ctx, symbol, b.marginMode)
	})
}
