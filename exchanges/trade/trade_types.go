// Package trade holds public trade history records
package trade

import (
	"sort"
	"time"
)

// Data defines a single executed trade reported by an exchange
type Data struct {
	ID        string
	Pair      string
	Timestamp time.Time
	Price     float64
	Amount    float64
	Side      string
}

// SortByTimestamp orders trades ascending by execution time
func SortByTimestamp(trades []Data) {
	sort.Slice(trades, func(i, j int) bool {
		return trades[i].Timestamp.Before(trades[j].Timestamp)
	})
}

// Dedupe removes trades sharing an id, keeping first occurrence and input
// ordering. Trades without an id are retained as-is.
func Dedupe(trades []Data) []Data {
	seen := make(map[string]struct{}, len(trades))
	target := 0
	for _, t := range trades {
		if t.ID != "" {
			if _, ok := seen[t.ID]; ok {
				continue
			}
			seen[t.ID] = struct{}{}
		}
		trades[target] = t
		target++
	}
	return trades[:target]
}
