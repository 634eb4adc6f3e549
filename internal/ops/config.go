// Package ops holds operational plumbing: the JSON runtime configuration
// and profiling startup.
package ops

import (
	"encoding/json"
	"os"
	"time"

	"github.com/yanun0323/errors"

	"main/internal/og"
	"main/internal/risk"
	"main/internal/store"
)

// FileConfig mirrors the JSON config layout.
type FileConfig struct {
	Symbols       []string        `json:"symbols"`
	RingCapacity  int             `json:"ringCapacity"`
	OrderPoolSize int             `json:"orderPoolSize"`
	Risk          risk.Config     `json:"risk"`
	Gateway       GatewayConfig   `json:"gateway"`
	Postgres      store.PGOption  `json:"postgres"`
	Pyroscope     PyroscopeConfig `json:"pyroscope"`
}

// GatewayConfig holds the simulated venue delays in milliseconds, the
// natural unit for a JSON file.
type GatewayConfig struct {
	MinDelayMs int `json:"minDelayMs"`
	MaxDelayMs int `json:"maxDelayMs"`
}

// PyroscopeConfig enables continuous profiling when an address is set.
type PyroscopeConfig struct {
	Enabled       bool   `json:"enabled"`
	ServerAddress string `json:"serverAddress"`
	AppName       string `json:"appName"`
}

// Loaded is the resolved configuration ready for use.
type Loaded struct {
	Symbols       []string
	RingCapacity  int
	OrderPoolSize int
	Risk          risk.Config
	Gateway       og.Config
	Postgres      store.PGOption
	Pyroscope     PyroscopeConfig
}

// Default returns the configuration used when no file is given: the three
// arbitrage symbols, a 64Ki ring and stock limits.
func Default() Loaded {
	return Loaded{
		Symbols:      []string{"btcusdt", "ethbtc", "ethusdt"},
		RingCapacity: 1 << 16,
		Risk:         risk.DefaultConfig(),
		Gateway:      og.DefaultConfig(),
	}
}

// Load reads a JSON config file and resolves defaults. An empty path
// returns Default().
func Load(path string) (Loaded, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Loaded{}, errors.Wrap(err, "read config")
	}
	var cfg FileConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Loaded{}, errors.Wrap(err, "parse config")
	}
	return resolve(cfg)
}

func resolve(cfg FileConfig) (Loaded, error) {
	out := Default()

	if len(cfg.Symbols) > 0 {
		out.Symbols = cfg.Symbols
	}
	if cfg.RingCapacity != 0 {
		if cfg.RingCapacity < 2 || cfg.RingCapacity&(cfg.RingCapacity-1) != 0 {
			return Loaded{}, errors.Errorf("ringCapacity must be a power of two >= 2, got %d", cfg.RingCapacity)
		}
		out.RingCapacity = cfg.RingCapacity
	}
	if cfg.OrderPoolSize < 0 {
		return Loaded{}, errors.Errorf("orderPoolSize must be >= 0, got %d", cfg.OrderPoolSize)
	}
	out.OrderPoolSize = cfg.OrderPoolSize

	out.Risk = cfg.Risk
	out.Gateway = og.Config{
		MinDelay: time.Duration(cfg.Gateway.MinDelayMs) * time.Millisecond,
		MaxDelay: time.Duration(cfg.Gateway.MaxDelayMs) * time.Millisecond,
	}
	if cfg.Gateway.MinDelayMs < 0 || cfg.Gateway.MaxDelayMs < cfg.Gateway.MinDelayMs && cfg.Gateway.MaxDelayMs != 0 {
		return Loaded{}, errors.Errorf("invalid gateway delays: min=%dms max=%dms", cfg.Gateway.MinDelayMs, cfg.Gateway.MaxDelayMs)
	}
	out.Postgres = cfg.Postgres

	out.Pyroscope = cfg.Pyroscope
	if out.Pyroscope.Enabled && out.Pyroscope.ServerAddress == "" {
		return Loaded{}, errors.New("pyroscope enabled without serverAddress")
	}
	if out.Pyroscope.AppName == "" {
		out.Pyroscope.AppName = "trader"
	}
	return out, nil
}
