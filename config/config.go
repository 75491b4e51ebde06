// Package config loads and validates gateway configuration from JSON or YAML
// files via viper
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/tidalfin/cryptogate/exchanges/asset"
	"github.com/tidalfin/cryptogate/exchanges/margin"
)

var (
	// ErrInvalidTradingMode is returned for an unrecognised trading mode
	ErrInvalidTradingMode = errors.New("invalid trading mode")
	errBlendOutOfRange    = errors.New("last price balance must be between 0 and 1")
	errSlippageNegative   = errors.New("max slippage cannot be negative")
)

// Price sides for pricing configuration
const (
	PriceSideBid = "bid"
	PriceSideAsk = "ask"
)

// Pricing controls how a usable rate is derived from market data
type Pricing struct {
	// PriceSide selects the book side the rate starts from
	PriceSide string `mapstructure:"price_side"`
	// UseOrderBook prices off a depth level instead of the ticker
	UseOrderBook bool `mapstructure:"use_order_book"`
	// OrderBookTop is the 1 based depth level used with UseOrderBook
	OrderBookTop int `mapstructure:"order_book_top"`
	// LastPriceBalance blends the side price toward the last traded price:
	// 0 uses the side price alone, 1 the last price alone
	LastPriceBalance float64 `mapstructure:"last_price_balance"`
}

// Config is the gateway configuration
type Config struct {
	Exchange             string         `mapstructure:"exchange"`
	TradingMode          string         `mapstructure:"trading_mode"`
	MarginMode           string         `mapstructure:"margin_mode"`
	DryRun               bool           `mapstructure:"dry_run"`
	TakerFee             float64        `mapstructure:"taker_fee"`
	MaxSlippage          float64        `mapstructure:"max_slippage"`
	RetryBudget          int            `mapstructure:"retry_budget"`
	MarketReloadInterval time.Duration  `mapstructure:"market_reload_interval"`
	TickerCacheTTL       time.Duration  `mapstructure:"ticker_cache_ttl"`
	RateCacheTTL         time.Duration  `mapstructure:"rate_cache_ttl"`
	EntryPricing         Pricing        `mapstructure:"entry_pricing"`
	ExitPricing          Pricing        `mapstructure:"exit_pricing"`
	FeatureOverrides     map[string]any `mapstructure:"feature_overrides"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("trading_mode", string(asset.Spot))
	v.SetDefault("dry_run", true)
	v.SetDefault("max_slippage", 0.05)
	v.SetDefault("retry_budget", 4)
	v.SetDefault("market_reload_interval", time.Hour)
	v.SetDefault("ticker_cache_ttl", 30*time.Minute)
	v.SetDefault("rate_cache_ttl", 30*time.Minute)
	v.SetDefault("entry_pricing.price_side", PriceSideAsk)
	v.SetDefault("entry_pricing.order_book_top", 1)
	v.SetDefault("entry_pricing.last_price_balance", 0)
	v.SetDefault("exit_pricing.price_side", PriceSideBid)
	v.SetDefault("exit_pricing.order_book_top", 1)
	v.SetDefault("exit_pricing.last_price_balance", 0)
}

// Default returns the configuration used when no file is supplied
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	c := new(Config)
	if err := v.Unmarshal(c); err != nil {
		panic(fmt.Sprintf("config defaults do not unmarshal: %v", err))
	}
	return c
}

// Load reads a configuration file, applies defaults for unset keys and
// validates the result
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config %q: %w", path, err)
	}
	c := new(Config)
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("parsing config %q: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks mode names and pricing bounds
func (c *Config) Validate() error {
	if !asset.Item(c.TradingMode).IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidTradingMode, c.TradingMode)
	}
	if c.MarginMode != "" && !margin.IsValidString(c.MarginMode) {
		return fmt.Errorf("%w: %q", margin.ErrInvalidMarginType, c.MarginMode)
	}
	if c.MaxSlippage < 0 {
		return errSlippageNegative
	}
	for _, p := range []Pricing{c.EntryPricing, c.ExitPricing} {
		if p.LastPriceBalance < 0 || p.LastPriceBalance > 1 {
			return errBlendOutOfRange
		}
		if p.PriceSide != PriceSideBid && p.PriceSide != PriceSideAsk {
			return fmt.Errorf("invalid price side %q", p.PriceSide)
		}
	}
	return nil
}

// Asset returns the configured trading mode
func (c *Config) Asset() asset.Item {
	return asset.Item(c.TradingMode)
}

// Margin returns the configured margin mode
func (c *Config) Margin() margin.Type {
	if c.MarginMode == "" {
		return margin.Unset
	}
	m, err := margin.StringToMarginType(c.MarginMode)
	if err != nil {
		return margin.Unset
	}
	return m
}
