// Package config defines the configuration for the DLOB demo harness: the
// configured markets with their auction/pause parameters, the metrics
// listener address, and logging. Config is loaded from a YAML file with
// DLOB_* env var overrides. cmd/dlobdemo applies metrics_addr,
// logging.level and the first perp market's min_auction_duration; the
// pause flags and logging.format are loaded but not applied.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config is the top-level demo-harness configuration. pkg/dlob itself takes
// no configuration — this struct only ever feeds cmd/dlobdemo.
type Config struct {
	Markets        []MarketConfig `mapstructure:"markets"`
	MetricsAddr    string         `mapstructure:"metrics_addr"`
	Logging        LoggingConfig  `mapstructure:"logging"`
	ExchangePaused bool           `mapstructure:"exchange_paused"`
}

// MarketConfig describes one (market_type, market_index): its min auction
// duration and pause flags.
type MarketConfig struct {
	MarketType         string `mapstructure:"market_type"` // "perp" | "spot"
	MarketIndex        uint16 `mapstructure:"market_index"`
	MinAuctionDuration uint32 `mapstructure:"min_auction_duration"`
	FillPaused         bool   `mapstructure:"fill_paused"`
	AmmPaused          bool   `mapstructure:"amm_paused"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // "console" | "json"
}

// Load reads config from a YAML file with env var overrides (prefix
// DLOB_, e.g. DLOB_METRICS_ADDR).
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("DLOB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("metrics_addr", ":9464")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Validate checks required fields and value ranges.
func (c *Config) Validate() error {
	if len(c.Markets) == 0 {
		return fmt.Errorf("at least one market must be configured")
	}
	seen := make(map[MarketConfig]bool)
	for _, m := range c.Markets {
		switch m.MarketType {
		case "perp", "spot":
		default:
			return fmt.Errorf("markets[].market_type must be 'perp' or 'spot', got %q", m.MarketType)
		}
		key := MarketConfig{MarketType: m.MarketType, MarketIndex: m.MarketIndex}
		if seen[key] {
			return fmt.Errorf("duplicate market %s/%d", m.MarketType, m.MarketIndex)
		}
		seen[key] = true
	}
	if c.MetricsAddr == "" {
		return fmt.Errorf("metrics_addr is required")
	}
	return nil
}
