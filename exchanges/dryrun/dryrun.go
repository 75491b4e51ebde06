// Package dryrun simulates order execution against live depth without
// touching a venue account. State is process local and lost on restart.
package dryrun

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"

	"github.com/tidalfin/cryptogate/exchanges/order"
	"github.com/tidalfin/cryptogate/exchanges/orderbook"
	"github.com/tidalfin/cryptogate/log"
)

// DefaultMaxSlippage bounds how far a simulated market fill may move from the
// requested rate
const DefaultMaxSlippage = 0.05

const idPrefix = "dry_run_"

// BookFetcher supplies a fresh depth snapshot for fill evaluation
type BookFetcher func(ctx context.Context, pair string) (*orderbook.Base, error)

// Simulator tracks simulated orders and settles them against live depth
type Simulator struct {
	mu          sync.Mutex
	orders      map[string]*order.Detail
	fetchBook   BookFetcher
	maxSlippage float64
	takerFee    float64
	now         func() time.Time
}

// Option configures a Simulator
type Option func(*Simulator)

// WithMaxSlippage overrides the market fill slippage bound
func WithMaxSlippage(s float64) Option {
	return func(d *Simulator) { d.maxSlippage = s }
}

// WithTakerFee sets the fee rate charged against simulated fills
func WithTakerFee(rate float64) Option {
	return func(d *Simulator) { d.takerFee = rate }
}

// New returns a Simulator settling fills against books supplied by fetchBook
func New(fetchBook BookFetcher, opts ...Option) *Simulator {
	s := &Simulator{
		orders:      make(map[string]*order.Detail),
		fetchBook:   fetchBook,
		maxSlippage: DefaultMaxSlippage,
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Owns reports whether id was issued by a simulator
func Owns(id string) bool {
	return len(id) > len(idPrefix) && id[:len(idPrefix)] == idPrefix
}

func newID(side order.Side) string {
	id, err := uuid.NewV4()
	if err != nil {
		// v4 generation only fails when the entropy source does
		return fmt.Sprintf("%s%s_%d", idPrefix, side, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s%s_%s", idPrefix, side, id)
}

// SubmitOrder records a simulated order and attempts an immediate fill
// against a fresh book
func (s *Simulator) SubmitOrder(ctx context.Context, sub *order.Submit) (*order.Detail, error) {
	if err := sub.Validate(); err != nil {
		return nil, err
	}
	now := s.now()
	d := &order.Detail{
		ID:          newID(sub.Side),
		Pair:        sub.Pair,
		Side:        sub.Side,
		Type:        sub.Type,
		Amount:      sub.Amount,
		Price:       sub.Price,
		StopPrice:   sub.StopPrice,
		Remaining:   sub.Amount,
		Status:      order.Open,
		Leverage:    sub.Leverage,
		Date:        now,
		LastUpdated: now,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.settle(ctx, d)
	s.orders[d.ID] = d
	return snapshot(d), nil
}

// FetchOrder returns current simulated order state, re-evaluating the fill
// condition against a fresh book first
func (s *Simulator) FetchOrder(ctx context.Context, id string) (*order.Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", order.ErrOrderNotFound, id)
	}
	s.settle(ctx, d)
	return snapshot(d), nil
}

// CancelOrder cancels an open simulated order. The fill condition is checked
// one last time first, so an order the market reached before the cancel
// reports closed and the cancel becomes a no-op. Cancelling a finished order
// is also a no-op returning current state.
func (s *Simulator) CancelOrder(ctx context.Context, id string) (*order.Detail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", order.ErrOrderNotFound, id)
	}
	s.settle(ctx, d)
	if d.Status == order.Open {
		d.Status = order.Cancelled
		d.LastUpdated = s.now()
	}
	return snapshot(d), nil
}

// settle moves an order to closed when the market satisfies it. Limit orders
// fill in full at their own rate once the opposing best level crosses it;
// market orders fill at the depth weighted average. A missing or empty book
// leaves the order untouched. Cancelled limit orders are still re-evaluated
// so a fill the market reached before the cancel surfaces on a later check.
func (s *Simulator) settle(ctx context.Context, d *order.Detail) {
	if d.Status == order.Closed {
		return
	}
	if d.Status == order.Cancelled && d.Type == order.Market {
		return
	}
	book, err := s.fetchBook(ctx, d.Pair)
	if err != nil || book == nil {
		return
	}

	switch d.Type {
	case order.Market:
		est, err := book.SimulateMarketOrder(d.Side == order.Buy, d.Amount, s.marketReference(d, book), s.maxSlippage)
		if err != nil {
			return
		}
		s.close(d, est.AveragePrice)
	default:
		if priceCrossed(book, d.Side, d.Price) {
			s.close(d, d.Price)
		}
	}
}

// marketReference picks the slippage reference rate: the requested price when
// one was given, otherwise the opposing best level
func (s *Simulator) marketReference(d *order.Detail, book *orderbook.Base) float64 {
	if d.Price > 0 {
		return d.Price
	}
	var best float64
	var err error
	if d.Side == order.Buy {
		best, err = book.BestAsk()
	} else {
		best, err = book.BestBid()
	}
	if err != nil {
		return 0
	}
	return best
}

func priceCrossed(book *orderbook.Base, side order.Side, rate float64) bool {
	if side == order.Buy {
		ask, err := book.BestAsk()
		return err == nil && ask <= rate
	}
	bid, err := book.BestBid()
	return err == nil && bid >= rate
}

func (s *Simulator) close(d *order.Detail, avg float64) {
	log.Debugf(log.DryRunSys, "filling %s at %v", d.ID, avg)
	d.Status = order.Closed
	d.Average = avg
	d.Filled = d.Amount
	d.Remaining = 0
	d.LastUpdated = s.now()
	if s.takerFee > 0 {
		d.Fee = &order.Fee{
			Rate: s.takerFee,
			Cost: avg * d.Amount * s.takerFee,
		}
	}
}

func snapshot(d *order.Detail) *order.Detail {
	out := *d
	if d.Fee != nil {
		fee := *d.Fee
		out.Fee = &fee
	}
	return &out
}
