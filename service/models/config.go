package models

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the tunables for the analysis engines and their plumbing.
// Numbers here are policy, not code: resolution threshold, cache TTL and the
// like are deliberately configuration rather than constants.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Resolver struct {
		Threshold          float64  `yaml:"threshold"`
		CooldownHours      int      `yaml:"cooldown_hours"`
		PreferredExchanges []string `yaml:"preferred_exchanges"`
	} `yaml:"resolver"`
	Indicators struct {
		RSIPeriod        int `yaml:"rsi_period"`
		GapToleranceDays int `yaml:"gap_tolerance_days"`
	} `yaml:"indicators"`
	Risk struct {
		VaRConfidence float64 `yaml:"var_confidence"`
		MinVaRSample  int     `yaml:"min_var_sample"`
		DrawdownBars  int     `yaml:"drawdown_bars"`
	} `yaml:"risk"`
	Cache struct {
		TTLDays   int    `yaml:"ttl_days"`
		SweepCron string `yaml:"sweep_cron"`
	} `yaml:"cache"`
	Repository struct {
		Attempts  int           `yaml:"attempts"`
		Backoff   time.Duration `yaml:"backoff"`
		Timeout   time.Duration `yaml:"timeout"`
		LookbackY int           `yaml:"lookback_years"`
	} `yaml:"repository"`
}

// LoadConfig reads config from a YAML file, then applies environment
// overrides and defaults. A missing file just yields the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Resolver.Threshold == 0 {
		c.Resolver.Threshold = 0.80
	}
	if c.Resolver.CooldownHours == 0 {
		c.Resolver.CooldownHours = 24
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.GapToleranceDays == 0 {
		c.Indicators.GapToleranceDays = 7
	}
	if c.Risk.VaRConfidence == 0 {
		c.Risk.VaRConfidence = 0.95
	}
	if c.Risk.MinVaRSample == 0 {
		c.Risk.MinVaRSample = 60
	}
	if c.Risk.DrawdownBars == 0 {
		c.Risk.DrawdownBars = 252 * 5
	}
	if c.Cache.TTLDays == 0 {
		c.Cache.TTLDays = 7
	}
	if c.Cache.SweepCron == "" {
		c.Cache.SweepCron = "30 3 * * *"
	}
	if c.Repository.Attempts == 0 {
		c.Repository.Attempts = 3
	}
	if c.Repository.Backoff == 0 {
		c.Repository.Backoff = 250 * time.Millisecond
	}
	if c.Repository.Timeout == 0 {
		c.Repository.Timeout = 5 * time.Second
	}
	if c.Repository.LookbackY == 0 {
		c.Repository.LookbackY = 10
	}
}

func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLDays) * 24 * time.Hour
}

func (c *Config) ResolverCooldown() time.Duration {
	return time.Duration(c.Resolver.CooldownHours) * time.Hour
}
