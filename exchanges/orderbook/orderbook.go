// Package orderbook holds level 2 depth snapshots and fill estimation used by
// pricing and the dry-run simulator
package orderbook

import (
	"errors"
	"time"
)

var (
	// ErrOrderbookEmpty is returned when the requested book side holds no
	// levels
	ErrOrderbookEmpty = errors.New("orderbook side is empty")
	errDepthTooLow    = errors.New("requested depth exceeds book levels")
)

// Item holds a single depth level
type Item struct {
	Price  float64
	Amount float64
}

// Base holds a level 2 orderbook snapshot. Bids are ordered descending and
// asks ascending by price.
type Base struct {
	Pair        string
	Bids        []Item
	Asks        []Item
	LastUpdated time.Time
}

// BestBid returns the highest resting buy price
func (b *Base) BestBid() (float64, error) {
	if b == nil || len(b.Bids) == 0 {
		return 0, ErrOrderbookEmpty
	}
	return b.Bids[0].Price, nil
}

// BestAsk returns the lowest resting sell price
func (b *Base) BestAsk() (float64, error) {
	if b == nil || len(b.Asks) == 0 {
		return 0, ErrOrderbookEmpty
	}
	return b.Asks[0].Price, nil
}

// PriceAtDepth returns the price of the n-th level (1 based) on the requested
// side
func (b *Base) PriceAtDepth(bids bool, depth int) (float64, error) {
	side := b.Asks
	if bids {
		side = b.Bids
	}
	if depth <= 0 || len(side) == 0 {
		return 0, ErrOrderbookEmpty
	}
	if depth > len(side) {
		return 0, errDepthTooLow
	}
	return side[depth-1].Price, nil
}
