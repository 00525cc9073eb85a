package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/dmitrijs2005/evote/internal/client/countdown"
	"github.com/dmitrijs2005/evote/internal/logging"
)

// Config holds runtime settings for the evote CLI.
//
// Fields:
//   - ServerBaseURL: root URL of the backend REST API.
//   - RequestTimeout: upper bound for a single HTTP exchange.
//   - DatabaseDSN: SQLite file holding the session and vote receipts.
//   - ElectionDeadline: end of voting shown by the countdown.
//   - PageSize: candidates per page.
//   - MessageTTL: how long a notice stays visible.
//   - LogLevel: debug, info, warn or error.
//   - CountdownInterval: how often the countdown is recomputed.
type Config struct {
	ServerBaseURL     string
	RequestTimeout    time.Duration
	DatabaseDSN       string
	ElectionDeadline  time.Time
	PageSize          int
	MessageTTL        time.Duration
	LogLevel          string
	CountdownInterval time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerBaseURL = "http://127.0.0.1:8000"
	c.RequestTimeout = 10 * time.Second
	c.DatabaseDSN = "evote.db"
	c.ElectionDeadline = countdown.DefaultDeadline
	c.PageSize = 5
	c.MessageTTL = 3 * time.Second
	c.LogLevel = "info"
	c.CountdownInterval = time.Second
}

// Validate reports the first unusable value.
func (c *Config) Validate() error {
	u, err := url.Parse(c.ServerBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid server url %q", c.ServerBaseURL)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("database dsn is empty")
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.MessageTTL <= 0 {
		return fmt.Errorf("message ttl must be positive, got %s", c.MessageTTL)
	}
	if c.CountdownInterval <= 0 {
		return fmt.Errorf("countdown interval must be positive, got %s", c.CountdownInterval)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), the environment and command-line flags. Later sources
// take precedence over earlier ones. Invalid input panics.
func LoadConfig() *Config {
	return load(os.Args[1:])
}

func load(args []string) *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg, args)
	parseEnv(cfg, args)
	parseFlags(cfg, args)
	if err := cfg.Validate(); err != nil {
		panic(err)
	}
	return cfg
}
