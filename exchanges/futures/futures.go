// Package futures holds derivatives math: leverage tier lookup, liquidation
// pricing and funding fee accrual. Everything here is pure computation over
// data the gateway already fetched.
package futures

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidalfin/cryptogate/exchanges/asset"
	"github.com/tidalfin/cryptogate/exchanges/margin"
)

var (
	// ErrNotionalAboveTiers is returned when a position notional exceeds the
	// venue's top leverage bracket
	ErrNotionalAboveTiers = errors.New("notional value exceeds highest leverage tier")
	// ErrInvalidPosition is returned for a zero or negative position size
	ErrInvalidPosition = errors.New("position amount must be positive")
	errNoDenominator   = errors.New("liquidation price undefined for parameters")
)

// LeverageTier is one notional bracket of a venue's tiered margin schedule
type LeverageTier struct {
	MinNotional       float64
	MaxNotional       float64
	MaintenanceRatio  float64
	MaintenanceAmount float64
	MaxLeverage       float64
}

// TierForNotional returns the bracket covering the supplied notional value
func TierForNotional(tiers []LeverageTier, notional float64) (*LeverageTier, error) {
	for i := range tiers {
		if notional >= tiers[i].MinNotional && notional <= tiers[i].MaxNotional {
			return &tiers[i], nil
		}
	}
	return nil, fmt.Errorf("%w: %v", ErrNotionalAboveTiers, notional)
}

// MaxLeverage returns the highest leverage the venue allows at the supplied
// notional. Venues without a published schedule allow 1x only.
func MaxLeverage(tiers []LeverageTier, notional float64) (float64, error) {
	if len(tiers) == 0 {
		return 1.0, nil
	}
	tier, err := TierForNotional(tiers, notional)
	if err != nil {
		return 0, err
	}
	return tier.MaxLeverage, nil
}

// LiquidationParams carries position and account state for liquidation
// pricing. The Other fields hold unrealised pnl and maintenance margin of all
// remaining cross positions and are ignored under isolated margin.
type LiquidationParams struct {
	TradingMode       asset.Item
	MarginMode        margin.Type
	IsShort           bool
	Amount            float64
	OpenRate          float64
	WalletBalance     float64
	MaintenanceRatio  float64
	MaintenanceAmount float64
	UPNLOther         float64
	MaintenanceOther  float64
}

// LiquidationPrice estimates the price at which the position is liquidated.
// Spot positions and positions without a margin mode cannot be liquidated and
// yield a nil price with no error.
func LiquidationPrice(p LiquidationParams) (*float64, error) {
	if !p.TradingMode.IsContract() || p.MarginMode == margin.Unset {
		return nil, nil
	}
	if p.Amount <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPosition, p.Amount)
	}

	side := 1.0
	if p.IsShort {
		side = -1.0
	}
	crossAdj := 0.0
	if p.MarginMode == margin.Multi {
		crossAdj = p.UPNLOther - p.MaintenanceOther
	}

	den := p.Amount*p.MaintenanceRatio - side*p.Amount
	if den == 0 {
		return nil, errNoDenominator
	}
	price := (p.WalletBalance + crossAdj + p.MaintenanceAmount - side*p.Amount*p.OpenRate) / den
	return &price, nil
}

// FundingRateEntry is one published funding rate
type FundingRateEntry struct {
	Time time.Time
	Rate float64
}

// MarkPriceEntry is one mark price candle close
type MarkPriceEntry struct {
	Time  time.Time
	Price float64
}

// FundingFees accrues funding over the rate and mark series, joined by
// timestamp. Intervals missing a mark price contribute nothing. Shorts
// receive funding as a positive amount, longs pay it as a negative one.
func FundingFees(rates []FundingRateEntry, marks []MarkPriceEntry, amount float64, isShort bool) float64 {
	markAt := make(map[int64]float64, len(marks))
	for i := range marks {
		markAt[marks[i].Time.UnixMilli()] = marks[i].Price
	}
	var fees float64
	for i := range rates {
		price, ok := markAt[rates[i].Time.UnixMilli()]
		if !ok {
			continue
		}
		fees += rates[i].Rate * price * amount
	}
	if isShort {
		return fees
	}
	return -fees
}

// ApplyTimeInRatio scales an accrued funding total by the fraction of the
// boundary interval the position was actually open for. Only venues that
// settle funding continuously honour this.
func ApplyTimeInRatio(total, ratio float64) float64 {
	return total * ratio
}

// FundingFeeRecord is one settled funding payment reported by a venue
type FundingFeeRecord struct {
	Time   time.Time
	Amount float64
}

// SumFundingRecords totals settled funding payments between start and end
// inclusive
func SumFundingRecords(records []FundingFeeRecord, start, end time.Time) float64 {
	var total float64
	for i := range records {
		if records[i].Time.Before(start) || records[i].Time.After(end) {
			continue
		}
		total += records[i].Amount
	}
	return total
}
