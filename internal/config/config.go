// Package config provides configuration management for the trading engine.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Trading    TradingConfig    `mapstructure:"trading"`
	Risk       RiskConfig       `mapstructure:"risk"`
	Strategies StrategiesConfig `mapstructure:"strategies"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// TradingConfig holds trading-related configuration.
type TradingConfig struct {
	Mode               string   `mapstructure:"mode"` // "live", "paper"
	Symbols            []string `mapstructure:"symbols"`
	DefaultTradeAmount float64  `mapstructure:"default_trade_amount"`
	MinConfidence      float64  `mapstructure:"min_confidence"`
	LookbackDays       int      `mapstructure:"lookback_days"`
	CycleInterval      string   `mapstructure:"cycle_interval"`
}

// RiskConfig holds risk management configuration.
type RiskConfig struct {
	MaxPositions    int     `mapstructure:"max_positions"`
	RiskPctPerTrade float64 `mapstructure:"risk_pct_per_trade"`
	MaxDailyLossPct float64 `mapstructure:"max_daily_loss_pct"`
	StartingEquity  float64 `mapstructure:"starting_equity"`
}

// StrategiesConfig holds per-strategy parameters.
type StrategiesConfig struct {
	Active []string  `mapstructure:"active"`
	SMA    SMAConfig `mapstructure:"sma"`
	RSI    RSIConfig `mapstructure:"rsi"`
}

// SMAConfig holds moving-average crossover parameters.
type SMAConfig struct {
	ShortWindow int `mapstructure:"short_window"`
	LongWindow  int `mapstructure:"long_window"`
}

// RSIConfig holds RSI threshold parameters.
type RSIConfig struct {
	Period     int     `mapstructure:"period"`
	Oversold   float64 `mapstructure:"oversold"`
	Overbought float64 `mapstructure:"overbought"`
}

// DatabaseConfig holds persistence configuration.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level   string `mapstructure:"level"`
	Console bool   `mapstructure:"console"`
	File    bool   `mapstructure:"file"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/robinhood-trader"
	}
	return filepath.Join(home, ".config", "robinhood-trader")
}

// Default returns a configuration populated with default values.
func Default() *Config {
	return &Config{
		Trading: TradingConfig{
			Mode:               "paper",
			Symbols:            []string{"AAPL", "AMZN", "GOOGL", "MSFT", "TSLA"},
			DefaultTradeAmount: 100.0,
			MinConfidence:      0.6,
			LookbackDays:       365,
			CycleInterval:      "15m",
		},
		Risk: RiskConfig{
			MaxPositions:    5,
			RiskPctPerTrade: 2.0,
			MaxDailyLossPct: 5.0,
			StartingEquity:  10000.0,
		},
		Strategies: StrategiesConfig{
			Active: []string{"sma", "rsi"},
			SMA:    SMAConfig{ShortWindow: 50, LongWindow: 200},
			RSI:    RSIConfig{Period: 14, Oversold: 30, Overbought: 70},
		},
		Database: DatabaseConfig{
			Path: filepath.Join(DefaultConfigDir(), "trader.db"),
		},
		Logging: LoggingConfig{
			Level:   "info",
			Console: true,
			File:    true,
		},
	}
}

// setDefaults registers every default with viper before unmarshalling.
// Registering keys individually means file values replace defaults
// outright, so a configured symbol list does not merge with the
// default watchlist.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("trading.mode", d.Trading.Mode)
	v.SetDefault("trading.symbols", d.Trading.Symbols)
	v.SetDefault("trading.default_trade_amount", d.Trading.DefaultTradeAmount)
	v.SetDefault("trading.min_confidence", d.Trading.MinConfidence)
	v.SetDefault("trading.lookback_days", d.Trading.LookbackDays)
	v.SetDefault("trading.cycle_interval", d.Trading.CycleInterval)
	v.SetDefault("risk.max_positions", d.Risk.MaxPositions)
	v.SetDefault("risk.risk_pct_per_trade", d.Risk.RiskPctPerTrade)
	v.SetDefault("risk.max_daily_loss_pct", d.Risk.MaxDailyLossPct)
	v.SetDefault("risk.starting_equity", d.Risk.StartingEquity)
	v.SetDefault("strategies.active", d.Strategies.Active)
	v.SetDefault("strategies.sma.short_window", d.Strategies.SMA.ShortWindow)
	v.SetDefault("strategies.sma.long_window", d.Strategies.SMA.LongWindow)
	v.SetDefault("strategies.rsi.period", d.Strategies.RSI.Period)
	v.SetDefault("strategies.rsi.oversold", d.Strategies.RSI.Oversold)
	v.SetDefault("strategies.rsi.overbought", d.Strategies.RSI.Overbought)
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.console", d.Logging.Console)
	v.SetDefault("logging.file", d.Logging.File)
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
// A missing config file yields the defaults.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config.toml: %w", err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// applyEnvOverrides applies TRADER_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TRADER_MODE"); v != "" {
		cfg.Trading.Mode = v
	}
	if v := os.Getenv("TRADER_SYMBOLS"); v != "" {
		cfg.Trading.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("TRADER_MIN_CONFIDENCE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trading.MinConfidence = f
		}
	}
	if v := os.Getenv("TRADER_MAX_POSITIONS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Risk.MaxPositions = n
		}
	}
	if v := os.Getenv("TRADER_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("TRADER_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}

// Validate checks configuration for invalid values.
func (c *Config) Validate() error {
	if c.Trading.Mode != "paper" && c.Trading.Mode != "live" {
		return fmt.Errorf("trading.mode must be \"paper\" or \"live\", got %q", c.Trading.Mode)
	}
	if len(c.Trading.Symbols) == 0 {
		return fmt.Errorf("trading.symbols must not be empty")
	}
	if c.Trading.MinConfidence < 0 || c.Trading.MinConfidence > 1 {
		return fmt.Errorf("trading.min_confidence must be in [0,1], got %v", c.Trading.MinConfidence)
	}
	if c.Risk.MaxPositions <= 0 {
		return fmt.Errorf("risk.max_positions must be positive, got %d", c.Risk.MaxPositions)
	}
	if c.Risk.RiskPctPerTrade <= 0 || c.Risk.RiskPctPerTrade > 100 {
		return fmt.Errorf("risk.risk_pct_per_trade must be in (0,100], got %v", c.Risk.RiskPctPerTrade)
	}
	if c.Risk.MaxDailyLossPct <= 0 || c.Risk.MaxDailyLossPct > 100 {
		return fmt.Errorf("risk.max_daily_loss_pct must be in (0,100], got %v", c.Risk.MaxDailyLossPct)
	}
	if c.Strategies.SMA.ShortWindow <= 0 || c.Strategies.SMA.LongWindow <= c.Strategies.SMA.ShortWindow {
		return fmt.Errorf("strategies.sma windows invalid: short=%d long=%d",
			c.Strategies.SMA.ShortWindow, c.Strategies.SMA.LongWindow)
	}
	if c.Strategies.RSI.Period <= 0 {
		return fmt.Errorf("strategies.rsi.period must be positive, got %d", c.Strategies.RSI.Period)
	}
	if c.Strategies.RSI.Oversold >= c.Strategies.RSI.Overbought {
		return fmt.Errorf("strategies.rsi.oversold (%v) must be below overbought (%v)",
			c.Strategies.RSI.Oversold, c.Strategies.RSI.Overbought)
	}
	return nil
}
