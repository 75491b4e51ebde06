package request

import "time"

// Retry budgets. Order status fetches get a deeper budget because venues
// routinely take a few seconds to expose a freshly placed order.
const (
	DefaultRetryBudget    = 4
	OrderFetchRetryBudget = 5
)

// CalculateBackoff returns how long to wait before the next attempt.
// retriesLeft counts down from maxRetries, so the wait grows quadratically as
// the budget drains: with a budget of 5 the waits run 1, 2, 5, 10 and a final
// 17 seconds.
func CalculateBackoff(retriesLeft, maxRetries int) time.Duration {
	n := maxRetries - retriesLeft
	return time.Duration(1+n*n) * time.Second
}
