package request

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/tidalfin/cryptogate/log"
)

// Retrier schedules outbound calls against a shared limiter and repeats
// retryable failures until the budget is spent
type Retrier struct {
	limiter *rate.Limiter
	budget  int
	backoff func(retriesLeft, maxRetries int) time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// Option configures a Retrier
type Option func(*Retrier)

// WithLimiter sets the shared rate limiter applied before every attempt
func WithLimiter(l *rate.Limiter) Option {
	return func(r *Retrier) { r.limiter = l }
}

// WithBudget overrides the retry budget
func WithBudget(n int) Option {
	return func(r *Retrier) { r.budget = n }
}

// WithBackoff overrides the backoff schedule
func WithBackoff(fn func(retriesLeft, maxRetries int) time.Duration) Option {
	return func(r *Retrier) { r.backoff = fn }
}

// NewRetrier returns a Retrier with the default budget and an unconstrained
// limiter
func NewRetrier(opts ...Option) *Retrier {
	r := &Retrier{
		limiter: rate.NewLimiter(rate.Inf, 1),
		budget:  DefaultRetryBudget,
		backoff: CalculateBackoff,
		sleep:   sleepCtx,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Do runs fn, repeating it while it reports a retryable failure and budget
// remains. Throttle responses wait out a quadratic backoff first; soft
// throttles retry immediately. The final error is returned unwrapped of any
// retry accounting.
func (r *Retrier) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return r.do(ctx, name, r.budget, fn)
}

// DoOrderFetch runs fn under the deeper order fetch budget regardless of the
// configured default
func (r *Retrier) DoOrderFetch(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return r.do(ctx, name, OrderFetchRetryBudget, fn)
}

func (r *Retrier) do(ctx context.Context, name string, budget int, fn func(ctx context.Context) error) error {
	for retriesLeft := budget; ; retriesLeft-- {
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		err := fn(ctx)
		if err == nil {
			return nil
		}
		if !IsRetryable(err) || retriesLeft <= 0 {
			return err
		}
		if isSoftThrottle(err) {
			log.Warnf(log.RequestSys, "%s: venue reported a self resolving throttle, retrying without backoff (%d tries left)", name, retriesLeft)
			continue
		}
		wait := r.backoff(retriesLeft, budget)
		log.Warnf(log.RequestSys, "%s failed: %v, retrying in %s (%d tries left)", name, err, wait, retriesLeft)
		if err := r.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
