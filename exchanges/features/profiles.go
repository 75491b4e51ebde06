package features

import (
	"github.com/tidalfin/cryptogate/exchanges/asset"
	"github.com/tidalfin/cryptogate/exchanges/margin"
)

// Process defaults; every venue table overlays these
var defaultCaps = map[Key]any{
	CandleLimit:         500,
	TradesPagination:    PaginateByTime,
	TradesPaginationArg: "since",
	OrderTimeInForce:    []string{"GTC"},
	StoplossOnExchange:  false,
	MarkCandleTimeframe: "8h",
	FundingFeeTimeframe: "8h",
	FundingPartialRatio: false,
}

var defaultModes = []ModePair{
	{Trading: asset.Spot, Margin: margin.Unset},
}

type table struct {
	caps  map[Key]any
	modes []ModePair
}

// Built-in venue capability tables. Only deviations from the defaults are
// listed.
var builtin = map[string]table{
	"binance": {
		caps: map[Key]any{
			CandleLimit:            1000,
			TradesPagination:       PaginateByID,
			TradesPaginationArg:    "fromId",
			OrderTimeInForce:       []string{"GTC", "FOK", "IOC"},
			StoplossOnExchange:     true,
			StoplossOrderTypes:     []string{"limit"},
			StoplossLimitRatio:     0.99,
			OrderbookLimitRange:    []int{5, 10, 20, 50, 100, 500, 1000},
			OrderbookLimitRequired: true,
		},
		modes: []ModePair{
			{Trading: asset.Spot, Margin: margin.Unset},
			{Trading: asset.Futures, Margin: margin.Isolated},
		},
	},
	"kraken": {
		caps: map[Key]any{
			CandleLimit:         720,
			TradesPagination:    PaginateByID,
			TradesPaginationArg: "since",
			OrderbookLimitRange: []int{10, 25, 50, 100, 500, 1000},
			MarkCandleTimeframe: "4h",
			FundingFeeTimeframe: "4h",
			FundingPartialRatio: true,
		},
	},
	"kucoin": {
		caps: map[Key]any{
			CandleLimit:         1500,
			StoplossOnExchange:  true,
			OrderbookLimitRange: []int{20, 100},
			OrderTimeInForce:    []string{"GTC", "FOK", "IOC"},
		},
	},
	"okx": {
		caps: map[Key]any{
			CandleLimit:         300,
			CandleHistoricLimit: 100,
			MarkCandleTimeframe: "4h",
		},
		modes: []ModePair{
			{Trading: asset.Spot, Margin: margin.Unset},
			{Trading: asset.Futures, Margin: margin.Isolated},
		},
	},
	"gateio": {
		caps: map[Key]any{
			CandleLimit: 1000,
			CandleLimitPerTimeframe: map[string]int{
				"1d": 500,
				"1w": 500,
			},
			OrderbookLimitRange: []int{20, 50, 100},
		},
		modes: []ModePair{
			{Trading: asset.Spot, Margin: margin.Unset},
			{Trading: asset.Futures, Margin: margin.Isolated},
		},
	},
}
