package orderbook

// FillEstimate is the outcome of walking one side of the book with a taker
// order
type FillEstimate struct {
	AveragePrice float64
	Amount       float64
	Levels       int
	Exhausted    bool
}

// SimulateMarketOrder walks the taker side of the book volume weighting the
// average price across consumed levels. When the book runs out before the
// requested amount is filled the remainder is priced at the deepest level
// seen. The weighted average is finally clamped to maxSlippage (e.g. 0.05)
// relative to the reference rate: buys never average above
// rate*(1+maxSlippage), sells never below rate*(1-maxSlippage).
func (b *Base) SimulateMarketOrder(buy bool, amount, rate, maxSlippage float64) (*FillEstimate, error) {
	side := b.Bids
	if buy {
		side = b.Asks
	}
	if len(side) == 0 {
		return nil, ErrOrderbookEmpty
	}

	remaining := amount
	var cost, lastPrice float64
	var levels int
	for _, level := range side {
		if remaining <= 0 {
			break
		}
		lastPrice = level.Price
		levels++
		if remaining < level.Amount {
			cost += remaining * level.Price
			remaining = 0
			break
		}
		cost += level.Amount * level.Price
		remaining -= level.Amount
	}

	exhausted := remaining > 0
	if exhausted {
		// Book ran dry; price the remainder at the deepest level
		cost += remaining * lastPrice
	}

	avg := cost / amount
	if maxSlippage > 0 {
		if buy {
			if bound := rate * (1 + maxSlippage); avg > bound {
				avg = bound
			}
		} else {
			if bound := rate * (1 - maxSlippage); avg < bound {
				avg = bound
			}
		}
	}

	return &FillEstimate{
		AveragePrice: avg,
		Amount:       amount,
		Levels:       levels,
		Exhausted:    exhausted,
	}, nil
}
