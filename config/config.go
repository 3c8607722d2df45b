package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/sigmaguard/feed"
	"github.com/rustyeddy/sigmaguard/pkg/logger"
	"github.com/rustyeddy/sigmaguard/risk"
)

// Config is the complete runtime configuration.
type Config struct {
	DataDir   string    `yaml:"data_dir" default:"data/prices" validate:"required"`
	Benchmark string    `yaml:"benchmark" default:"SPY"`
	Watchlist Watchlist `yaml:"watchlist"`

	Macro   MacroConfig      `yaml:"macro"`
	Ledger  LedgerConfig     `yaml:"ledger"`
	State   StateConfig      `yaml:"state"`
	Scan    ScanConfig       `yaml:"scan"`
	Feed    feed.GuardConfig `yaml:"feed"`
	Log     logger.Config    `yaml:"log"`
	Metrics MetricsConfig    `yaml:"metrics"`

	Policy risk.Policy `yaml:"policy"`
}

// MacroConfig names the tickers behind the VIX, US10Y and DXY columns.
// An empty ticker leaves its column at 0.
type MacroConfig struct {
	Enabled bool   `yaml:"enabled" default:"true"`
	VIX     string `yaml:"vix" default:"^VIX"`
	US10Y   string `yaml:"us10y" default:"^TNX"`
	DXY     string `yaml:"dxy" default:"DX-Y.NYB"`
}

type LedgerConfig struct {
	Kind   string `yaml:"kind" default:"csv" validate:"oneof=csv sqlite"`
	Dir    string `yaml:"dir" default:"data/ledgers"`
	DBPath string `yaml:"db_path" default:"data/sigmaguard.db"`
}

// StateConfig selects where prior-cycle state lives. "ledger" reads it
// back from the audit ledger.
type StateConfig struct {
	Kind   string      `yaml:"kind" default:"ledger" validate:"oneof=ledger memory sqlite redis"`
	DBPath string      `yaml:"db_path" default:"data/state.db"`
	Redis  RedisConfig `yaml:"redis"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr" default:"localhost:6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

type ScanConfig struct {
	Workers  int           `yaml:"workers" default:"4" validate:"gte=1,lte=64"`
	Interval time.Duration `yaml:"interval"`
	Settle   bool          `yaml:"settle" default:"true"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

var validate = validator.New()

// Default returns a configuration with every default filled in.
func Default() *Config {
	c := &Config{Policy: risk.DefaultPolicy()}
	if err := defaults.Set(c); err != nil {
		panic(err)
	}
	return c
}

// LoadFromFile reads a YAML config over the defaults, applies environment
// overrides and validates the result.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(data)
}

// Parse is LoadFromFile without the file.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// older files spell the key in capitals
	if len(c.Watchlist) == 0 {
		var legacy struct {
			Watchlist Watchlist `yaml:"WATCHLIST"`
		}
		if err := yaml.Unmarshal(data, &legacy); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
		c.Watchlist = legacy.Watchlist
	}

	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

// ApplyEnv overrides selected fields from SIGMAGUARD_* variables.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("SIGMAGUARD_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("SIGMAGUARD_LEDGER_DIR"); v != "" {
		c.Ledger.Dir = v
	}
	if v := os.Getenv("SIGMAGUARD_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("SIGMAGUARD_REDIS_ADDR"); v != "" {
		c.State.Redis.Addr = v
	}
}

// SaveToFile writes the configuration as YAML.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// Validate checks struct tags, the scoring policy and the watchlist.
func (c *Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		errs = append(errs, err)
	}
	if err := c.Policy.Validate(); err != nil {
		errs = append(errs, err)
	}
	for i, it := range c.Watchlist {
		if strings.TrimSpace(it.Ticker) == "" {
			errs = append(errs, fmt.Errorf("watchlist[%d]: ticker is required", i))
		}
	}
	if c.Ledger.Kind == "csv" && c.Ledger.Dir == "" {
		errs = append(errs, fmt.Errorf("ledger.dir required for csv ledger"))
	}
	if c.Ledger.Kind == "sqlite" && c.Ledger.DBPath == "" {
		errs = append(errs, fmt.Errorf("ledger.db_path required for sqlite ledger"))
	}
	return errors.Join(errs...)
}
