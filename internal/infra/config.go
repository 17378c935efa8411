package infra

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"resin_go/internal/domain"
)

const (
	FeedReplay = "replay"
	FeedWS     = "ws"
)

// Config holds every setting of the application.
// After LoadConfig reads the file, RESIN_* environment variables override it.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Trader struct {
		Product       string `yaml:"product"`
		PositionLimit int64  `yaml:"position_limit"`
		TakeProfit    int64  `yaml:"take_profit"`
		StopLoss      int64  `yaml:"stop_loss"`
	} `yaml:"trader"`

	Telemetry struct {
		MaxLogLength int `yaml:"max_log_length"`
	} `yaml:"telemetry"`

	Feed struct {
		Mode       string `yaml:"mode"`
		ReplayPath string `yaml:"replay_path"`
		WSURL      string `yaml:"ws_url"`
		InboxSize  int    `yaml:"inbox_size"`
	} `yaml:"feed"`

	Execution struct {
		Paper bool `yaml:"paper"`
	} `yaml:"execution"`

	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`

	Metrics struct {
		Addr string `yaml:"addr"`
	} `yaml:"metrics"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`
}

// DefaultConfig returns the settings used when the file leaves a field empty.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "resin_go"
	cfg.Trader.Product = "RAINFOREST_RESIN"
	cfg.Trader.PositionLimit = 50
	cfg.Trader.TakeProfit = 3
	cfg.Trader.StopLoss = 2
	cfg.Telemetry.MaxLogLength = 3750
	cfg.Feed.Mode = FeedReplay
	cfg.Feed.InboxSize = 1024
	cfg.Execution.Paper = true
	cfg.Storage.Path = "data/resin.db"
	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return &cfg
}

// LoadConfig reads and parses the configuration file.
// A .env file next to the working directory is loaded first if present.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Trader.Product) == "" {
		return &domain.ConfigError{Field: "trader.product", Err: errors.New("must not be empty")}
	}
	if c.Trader.PositionLimit <= 0 {
		return &domain.ConfigError{Field: "trader.position_limit", Err: fmt.Errorf("must be positive, got %d", c.Trader.PositionLimit)}
	}
	if c.Trader.TakeProfit <= 0 {
		return &domain.ConfigError{Field: "trader.take_profit", Err: fmt.Errorf("must be positive, got %d", c.Trader.TakeProfit)}
	}
	if c.Trader.StopLoss <= 0 {
		return &domain.ConfigError{Field: "trader.stop_loss", Err: fmt.Errorf("must be positive, got %d", c.Trader.StopLoss)}
	}

	if c.Telemetry.MaxLogLength <= 0 {
		return &domain.ConfigError{Field: "telemetry.max_log_length", Err: errors.New("must be positive")}
	}

	switch c.Feed.Mode {
	case FeedReplay:
		if c.Feed.ReplayPath == "" {
			return &domain.ConfigError{Field: "feed.replay_path", Err: errors.New("required in replay mode")}
		}
	case FeedWS:
		if !strings.HasPrefix(c.Feed.WSURL, "ws://") && !strings.HasPrefix(c.Feed.WSURL, "wss://") {
			return &domain.ConfigError{Field: "feed.ws_url", Err: fmt.Errorf("invalid websocket URL: %q", c.Feed.WSURL)}
		}
	default:
		return &domain.ConfigError{Field: "feed.mode", Err: fmt.Errorf("unknown mode %q", c.Feed.Mode)}
	}
	if c.Feed.InboxSize <= 0 {
		return &domain.ConfigError{Field: "feed.inbox_size", Err: errors.New("must be positive")}
	}

	return nil
}

// overrideWithEnv overwrites settings with environment variables when set.
func overrideWithEnv(cfg *Config) {
	if v := os.Getenv("RESIN_FEED_MODE"); v != "" {
		cfg.Feed.Mode = v
	}
	if v := os.Getenv("RESIN_FEED_WS_URL"); v != "" {
		cfg.Feed.WSURL = v
	}
	if v := os.Getenv("RESIN_REPLAY_PATH"); v != "" {
		cfg.Feed.ReplayPath = v
	}
	if v := os.Getenv("RESIN_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("RESIN_METRICS_ADDR"); v != "" {
		cfg.Metrics.Addr = v
	}
	if v := os.Getenv("RESIN_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("RESIN_POSITION_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Trader.PositionLimit = n
		}
	}
}
