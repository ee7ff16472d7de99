// Package config loads client settings from defaults, an optional YAML file,
// a .env file and the process environment, in that order.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	ServerURL    string        `yaml:"server_url"`
	DragDelay    time.Duration `yaml:"drag_delay"`
	MoveInterval time.Duration `yaml:"move_interval"`
	HandInterval time.Duration `yaml:"hand_interval"`
	DebugAddr    string        `yaml:"debug_addr"`
	LogFile      string        `yaml:"log_file"`
	LogLevel     string        `yaml:"log_level"`
	CellWidth    int           `yaml:"cell_width"`
	CellHeight   int           `yaml:"cell_height"`
}

func Default() Config {
	return Config{
		ServerURL:    "ws://127.0.0.1:8080/ws/",
		DragDelay:    100 * time.Millisecond,
		MoveInterval: 50 * time.Millisecond,
		HandInterval: 50 * time.Millisecond,
		LogFile:      "tablesim.log",
		LogLevel:     "info",
		CellWidth:    8,
		CellHeight:   16,
	}
}

// Load builds the config. path may be empty; a missing .env is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment
	_ = godotenv.Load()

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.ServerURL, "TABLESIM_SERVER_URL")
	setString(&cfg.DebugAddr, "TABLESIM_DEBUG_ADDR")
	setString(&cfg.LogFile, "TABLESIM_LOG_FILE")
	setString(&cfg.LogLevel, "TABLESIM_LOG_LEVEL")

	for key, dst := range map[string]*time.Duration{
		"TABLESIM_DRAG_DELAY":    &cfg.DragDelay,
		"TABLESIM_MOVE_INTERVAL": &cfg.MoveInterval,
		"TABLESIM_HAND_INTERVAL": &cfg.HandInterval,
	} {
		if v, ok := os.LookupEnv(key); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
			}
			*dst = d
		}
	}

	for key, dst := range map[string]*int{
		"TABLESIM_CELL_WIDTH":  &cfg.CellWidth,
		"TABLESIM_CELL_HEIGHT": &cfg.CellHeight,
	} {
		if v, ok := os.LookupEnv(key); ok {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%w: %s: %v", ErrInvalid, key, err)
			}
			*dst = n
		}
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func (c Config) Validate() error {
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "ws" && u.Scheme != "wss") || u.Host == "" {
		return fmt.Errorf("%w: server url %q must be ws:// or wss://", ErrInvalid, c.ServerURL)
	}
	if c.DragDelay <= 0 || c.MoveInterval <= 0 || c.HandInterval <= 0 {
		return fmt.Errorf("%w: durations must be positive", ErrInvalid)
	}
	if c.CellWidth <= 0 || c.CellHeight <= 0 {
		return fmt.Errorf("%w: cell size must be positive", ErrInvalid)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: log level %q", ErrInvalid, c.LogLevel)
	}
	return nil
}
