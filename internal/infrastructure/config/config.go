package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid config")

// StartTimeLayout is the dd.mm.yyyy layout of app.start_time.
const StartTimeLayout = "02.01.2006"

const (
	BackendCSV      = "csv"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

type Config struct {
	App struct {
		StartTime string `toml:"start_time"` // dd.mm.yyyy, used when no history exists
	} `toml:"app"`

	Portfolio struct {
		Cryptos []string `toml:"cryptos"`
		Quotes  []string `toml:"quotes"`
	} `toml:"portfolio"`

	Exchange struct {
		Binance BinanceConfig `toml:"binance"`
	} `toml:"exchange"`

	History struct {
		Backend string `toml:"backend"` // csv | sqlite | postgres
		File    string `toml:"file"`
		Mirror  bool   `toml:"mirror"` // also append to file when backend is a database
	} `toml:"history"`

	Log struct {
		Level string `toml:"level"`
		File  string `toml:"file"`
	} `toml:"log"`

	Storage struct {
		SQLite struct {
			Enabled bool   `toml:"enabled"`
			Path    string `toml:"path"`
		} `toml:"sqlite"`

		Postgres struct {
			Enabled bool   `toml:"enabled"`
			DSN     string `toml:"dsn"`
		} `toml:"postgres"`

		Redis RedisConfig `toml:"redis"`
	} `toml:"storage"`

	startTime time.Time
}

type BinanceConfig struct {
	APIKey         string  `toml:"api_key"`
	APISecret      string  `toml:"api_secret"`
	BaseURL        string  `toml:"base_url"` // e.g. https://api.binance.com
	RecvWindow     int     `toml:"recv_window"`
	TimeoutSec     int     `toml:"timeout_sec"`
	RequestsPerSec float64 `toml:"requests_per_sec"`
	PageSize       int     `toml:"page_size"`
}

type RedisConfig struct {
	Enabled       bool   `toml:"enabled"`
	Addr          string `toml:"addr"`
	Password      string `toml:"password"`
	DB            int    `toml:"db"`
	Prefix        string `toml:"prefix"`
	TTLSeconds    int    `toml:"ttl_seconds"`
	ReportStream  string `toml:"report_stream"`
	ReportChannel string `toml:"report_channel"`
}

func Load(path string) (*Config, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	applyDefaults(&cfg)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	cfg.resolvePaths(filepath.Dir(path))
	return &cfg, nil
}

// StartTime is the parsed app.start_time at 00:00 UTC.
func (c *Config) StartTime() time.Time {
	return c.startTime
}

func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Exchange.Binance.TimeoutSec) * time.Second
}

func applyDefaults(cfg *Config) {
	b := &cfg.Exchange.Binance
	if strings.TrimSpace(b.BaseURL) == "" {
		b.BaseURL = "https://api.binance.com"
	}
	if b.RecvWindow <= 0 {
		b.RecvWindow = 5000
	}
	if b.TimeoutSec <= 0 {
		b.TimeoutSec = 10
	}
	if b.RequestsPerSec <= 0 {
		b.RequestsPerSec = 5
	}
	if b.PageSize <= 0 || b.PageSize > 1000 {
		b.PageSize = 1000
	}
	if strings.TrimSpace(cfg.History.Backend) == "" {
		cfg.History.Backend = BackendCSV
	}
	cfg.History.Backend = strings.ToLower(strings.TrimSpace(cfg.History.Backend))
	if strings.TrimSpace(cfg.History.File) == "" {
		cfg.History.File = "orderHistory.csv"
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = "data/dca.db"
	}
	if cfg.Storage.Redis.Prefix == "" {
		cfg.Storage.Redis.Prefix = "dca"
	}
}

func validate(cfg *Config) error {
	bin := cfg.Exchange.Binance
	if strings.TrimSpace(bin.APIKey) == "" {
		return fmt.Errorf("%w: exchange.binance.api_key is empty", ErrInvalid)
	}
	if strings.TrimSpace(bin.APISecret) == "" {
		return fmt.Errorf("%w: exchange.binance.api_secret is empty", ErrInvalid)
	}

	cfg.Portfolio.Cryptos = normalizeSymbols(cfg.Portfolio.Cryptos)
	if len(cfg.Portfolio.Cryptos) == 0 {
		return fmt.Errorf("%w: portfolio.cryptos is empty", ErrInvalid)
	}
	cfg.Portfolio.Quotes = normalizeSymbols(cfg.Portfolio.Quotes)
	if len(cfg.Portfolio.Quotes) == 0 {
		return fmt.Errorf("%w: portfolio.quotes is empty", ErrInvalid)
	}
	// 按子串归类成交记录，币种之间不能互为子串
	if a, b, ok := overlapping(cfg.Portfolio.Cryptos); ok {
		return fmt.Errorf("%w: portfolio.cryptos %q is a substring of %q", ErrInvalid, a, b)
	}

	start, err := time.ParseInLocation(StartTimeLayout, strings.TrimSpace(cfg.App.StartTime), time.UTC)
	if err != nil {
		return fmt.Errorf("%w: app.start_time %q: want dd.mm.yyyy", ErrInvalid, cfg.App.StartTime)
	}
	cfg.startTime = start

	switch cfg.History.Backend {
	case BackendCSV:
	case BackendSQLite:
		cfg.Storage.SQLite.Enabled = true
	case BackendPostgres:
		cfg.Storage.Postgres.Enabled = true
	default:
		return fmt.Errorf("%w: history.backend %q", ErrInvalid, cfg.History.Backend)
	}

	if cfg.Storage.Postgres.Enabled && strings.TrimSpace(cfg.Storage.Postgres.DSN) == "" {
		return fmt.Errorf("%w: storage.postgres.dsn empty but enabled", ErrInvalid)
	}
	if cfg.Storage.Redis.Enabled && strings.TrimSpace(cfg.Storage.Redis.Addr) == "" {
		return fmt.Errorf("%w: storage.redis.addr empty but enabled", ErrInvalid)
	}
	return nil
}

// resolvePaths makes file paths relative to the config file directory.
func (c *Config) resolvePaths(dir string) {
	c.History.File = resolve(dir, c.History.File)
	c.Storage.SQLite.Path = resolve(dir, c.Storage.SQLite.Path)
	if c.Log.File != "" {
		c.Log.File = resolve(dir, c.Log.File)
	}
}

func resolve(dir, p string) string {
	if filepath.IsAbs(p) || dir == "" {
		return p
	}
	return filepath.Join(dir, p)
}

func normalizeSymbols(in []string) []string {
	out := make([]string, 0, len(in))
	seen := map[string]struct{}{}
	for _, s := range in {
		u := strings.ToUpper(strings.TrimSpace(s))
		if u == "" {
			continue
		}
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		out = append(out, u)
	}
	return out
}

func overlapping(assets []string) (string, string, bool) {
	for i, a := range assets {
		for j, b := range assets {
			if i != j && strings.Contains(b, a) {
				return a, b, true
			}
		}
	}
	return "", "", false
}
