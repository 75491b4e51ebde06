package kline

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// String returns numeric string
func (i Interval) String() string {
	return i.Duration().String()
}

// Duration returns interval casted as time.Duration for compatibility
func (i Interval) Duration() time.Duration {
	return time.Duration(i)
}

// Short returns the timeframe spelling exchanges commonly use e.g. 5m, 1h, 1d
func (i Interval) Short() string {
	switch {
	case i < OneMin:
		return strconv.FormatInt(int64(i.Duration().Seconds()), 10) + "s"
	case i < OneHour:
		return strconv.FormatInt(int64(i.Duration().Minutes()), 10) + "m"
	case i < OneDay:
		return strconv.FormatInt(int64(i.Duration().Hours()), 10) + "h"
	case i < OneWeek:
		return strconv.FormatInt(int64(i.Duration().Hours()/24), 10) + "d"
	default:
		return strconv.FormatInt(int64(i.Duration().Hours()/(24*7)), 10) + "w"
	}
}

// Minutes returns the whole minutes the interval spans
func (i Interval) Minutes() int64 {
	return int64(i.Duration().Minutes())
}

// Seconds returns the whole seconds the interval spans
func (i Interval) Seconds() int64 {
	return int64(i.Duration().Seconds())
}

// Milliseconds returns the interval span in milliseconds
func (i Interval) Milliseconds() int64 {
	return i.Duration().Milliseconds()
}

// PreviousDate truncates t down to the open time of the interval bucket
// containing it
func (i Interval) PreviousDate(t time.Time) time.Time {
	return t.UTC().Truncate(i.Duration())
}

// NextDate returns the open time of the interval bucket after the one
// containing t
func (i Interval) NextDate(t time.Time) time.Time {
	return i.PreviousDate(t).Add(i.Duration())
}

// ParseInterval converts a timeframe string e.g. 5m, 4h, 1d into an Interval
func ParseInterval(tf string) (Interval, error) {
	if len(tf) < 2 {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedInterval, tf)
	}
	value, err := strconv.Atoi(tf[:len(tf)-1])
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedInterval, tf)
	}
	var unit Interval
	switch strings.ToLower(tf[len(tf)-1:]) {
	case "s":
		unit = Interval(time.Second)
	case "m":
		unit = OneMin
	case "h":
		unit = OneHour
	case "d":
		unit = OneDay
	case "w":
		unit = OneWeek
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedInterval, tf)
	}
	return Interval(value) * unit, nil
}

// SortCandlesByTimestamp sorts candles by timestamp
func (k *Item) SortCandlesByTimestamp(desc bool) {
	if desc {
		sort.Sort(sort.Reverse(ByDate(k.Candles)))
		return
	}
	sort.Sort(ByDate(k.Candles))
}

// EnsureAscending normalises exchanges that return candles newest first. A
// full sort is only performed when the first two timestamps are out of order.
func (k *Item) EnsureAscending() bool {
	if len(k.Candles) < 2 {
		return false
	}
	if !k.Candles[1].Time.Before(k.Candles[0].Time) {
		return false
	}
	k.SortCandlesByTimestamp(false)
	return true
}

// RemoveDuplicates drops candles sharing an open time, keeping the first
// occurrence
func (k *Item) RemoveDuplicates() {
	seen := make(map[int64]struct{}, len(k.Candles))
	target := 0
	for _, c := range k.Candles {
		ts := c.Time.UnixMilli()
		if _, ok := seen[ts]; ok {
			continue
		}
		seen[ts] = struct{}{}
		k.Candles[target] = c
		target++
	}
	k.Candles = k.Candles[:target]
}

// Copy returns a deep defensive copy of the item
func (k *Item) Copy() *Item {
	if k == nil {
		return nil
	}
	cpy := *k
	cpy.Candles = make([]Candle, len(k.Candles))
	copy(cpy.Candles, k.Candles)
	return &cpy
}

// Latest returns the most recent candle, or false when the series is empty
func (k *Item) Latest() (Candle, bool) {
	if k == nil || len(k.Candles) == 0 {
		return Candle{}, false
	}
	return k.Candles[len(k.Candles)-1], true
}
