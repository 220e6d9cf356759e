// Package config loads the service configuration from viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/spf13/viper"

	"vatmonitor/data"
	"vatmonitor/internal/currency"
	"vatmonitor/internal/engine"
	"vatmonitor/internal/logger"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Server   ServerConfig   `mapstructure:"server"`
	Data     DataConfig     `mapstructure:"data"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Currency CurrencyConfig `mapstructure:"currency"`
	Banking  BankingConfig  `mapstructure:"banking"`
	Regions  []string       `mapstructure:"regions"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// RateLimit is requests per second per client; 0 disables limiting.
	RateLimit float64 `mapstructure:"rate_limit"`
}

type DataConfig struct {
	// Dir holds the JSON fixtures. Empty means the embedded sample data.
	Dir      string `mapstructure:"dir"`
	Timezone string `mapstructure:"timezone"`
}

type EngineConfig struct {
	AsOf          string `mapstructure:"as_of"`
	TrendMonths   int    `mapstructure:"trend_months"`
	TrendDays     int    `mapstructure:"trend_days"`
	TopPerformers int    `mapstructure:"top_performers"`
	Leaderboard   int    `mapstructure:"leaderboard"`
	ActivityCap   int    `mapstructure:"activity_cap"`
}

type CurrencyConfig struct {
	Symbol string `mapstructure:"symbol"`
}

type BankingConfig struct {
	SectorID        int   `mapstructure:"sector_id"`
	DepositTypes    []int `mapstructure:"deposit_types"`
	WithdrawalTypes []int `mapstructure:"withdrawal_types"`
}

// SetDefaults registers every key with its default value.
func SetDefaults(v *viper.Viper) {
	d := engine.DefaultOptions()

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", logger.FormatConsole)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.rate_limit", 20)
	v.SetDefault("data.dir", "")
	v.SetDefault("data.timezone", "UTC")
	v.SetDefault("engine.as_of", "")
	v.SetDefault("engine.trend_months", d.TrendMonths)
	v.SetDefault("engine.trend_days", d.TrendDays)
	v.SetDefault("engine.top_performers", d.TopPerformers)
	v.SetDefault("engine.leaderboard", d.Leaderboard)
	v.SetDefault("engine.activity_cap", d.ActivityCap)
	v.SetDefault("currency.symbol", currency.DefaultSymbol)
	v.SetDefault("banking.sector_id", d.BankingSectorID)
	v.SetDefault("banking.deposit_types", d.DepositTypes)
	v.SetDefault("banking.withdrawal_types", d.WithdrawalTypes)
	v.SetDefault("regions", d.Regions)
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate rejects settings the engine cannot work with.
func (c Config) Validate() error {
	switch c.Log.Format {
	case logger.FormatConsole, logger.FormatJSON:
	default:
		return fmt.Errorf("%w: log.format %q", ErrInvalidConfig, c.Log.Format)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("%w: server.rate_limit must not be negative", ErrInvalidConfig)
	}
	for key, n := range map[string]int{
		"engine.trend_months":   c.Engine.TrendMonths,
		"engine.trend_days":     c.Engine.TrendDays,
		"engine.top_performers": c.Engine.TopPerformers,
		"engine.leaderboard":    c.Engine.Leaderboard,
		"engine.activity_cap":   c.Engine.ActivityCap,
	} {
		if n <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, key, n)
		}
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if _, err := c.AsOf(); err != nil {
		return err
	}
	return nil
}

// Location resolves data.timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Data.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Data.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: data.timezone: %v", ErrInvalidConfig, err)
	}
	return loc, nil
}

// AsOf parses engine.as_of; empty yields the zero time.
func (c Config) AsOf() (time.Time, error) {
	if c.Engine.AsOf == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, c.Engine.AsOf)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: engine.as_of: %v", ErrInvalidConfig, err)
	}
	return t, nil
}

// EngineOptions converts the config into dashboard options. Call Validate
// first; parse errors here are ignored.
func (c Config) EngineOptions() engine.Options {
	asOf, _ := c.AsOf()
	return engine.Options{
		Normalizer:      currency.New(c.Currency.Symbol),
		AsOf:            asOf,
		TrendMonths:     c.Engine.TrendMonths,
		TrendDays:       c.Engine.TrendDays,
		TopPerformers:   c.Engine.TopPerformers,
		Leaderboard:     c.Engine.Leaderboard,
		ActivityCap:     c.Engine.ActivityCap,
		BankingSectorID: c.Banking.SectorID,
		DepositTypes:    c.Banking.DepositTypes,
		WithdrawalTypes: c.Banking.WithdrawalTypes,
		Regions:         c.Regions,
	}
}

// DataFS returns the fixture directory, or the embedded sample data when
// data.dir is empty.
func (c Config) DataFS() fs.FS {
	if c.Data.Dir == "" {
		return data.FS
	}
	return os.DirFS(ExpandPath(c.Data.Dir))
}

// ExpandPath expands ~ and environment variables in a file path.
func ExpandPath(path string) string {
	if path == "" {
		return path
	}

	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[2:])
		}
	} else if path == "~" {
		home, err := os.UserHomeDir()
		if err == nil {
			path = home
		}
	}

	return os.ExpandEnv(path)
}
