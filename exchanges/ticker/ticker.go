// Package ticker holds per-pair top of book price snapshots
package ticker

import (
	"time"
)

// Price struct stores the currency pair and pricing information
type Price struct {
	Pair        string
	Bid         float64
	Ask         float64
	Last        float64
	High        float64
	Low         float64
	Volume      float64
	QuoteVolume float64
	LastUpdated time.Time
}

// HasBid reports whether a usable bid price is present
func (p *Price) HasBid() bool {
	return p != nil && p.Bid > 0
}

// HasAsk reports whether a usable ask price is present
func (p *Price) HasAsk() bool {
	return p != nil && p.Ask > 0
}

// HasLast reports whether a usable last traded price is present
func (p *Price) HasLast() bool {
	return p != nil && p.Last > 0
}

// SidePrice returns the bid or ask depending on the requested side
func (p *Price) SidePrice(useBid bool) float64 {
	if p == nil {
		return 0
	}
	if useBid {
		return p.Bid
	}
	return p.Ask
}
