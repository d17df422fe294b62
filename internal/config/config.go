package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"fenrir/internal/engine"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Stdio stands for stdin or stdout in place of a path.
const Stdio = "-"

const envPrefix = "MATCHER_"

var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrInputNotFound = errors.New("input file does not exist")
)

// Config holds the matcher's settings. Values come from the environment
// (MATCHER_ prefix, optionally through a .env file) and can be overridden by
// flags.
type Config struct {
	Input       string `env:"INPUT" envDefault:"-"`            // Order feed path
	Output      string `env:"OUTPUT" envDefault:"-"`           // Report path
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogConsole  bool   `env:"LOG_CONSOLE" envDefault:"true"`   // Human readable logs
	Live        bool   `env:"LIVE" envDefault:"false"`         // Report after every event
	PriceRule   string `env:"PRICE_RULE" envDefault:"consumed"` // consumed | resting
	MetricsAddr string `env:"METRICS_ADDR"`                    // Serve /metrics here when set
	BufferSize  int    `env:"BUFFER_SIZE" envDefault:"128"`    // Decoded events queued ahead of the book
}

// Load reads a .env file from the working directory if there is one, then
// the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("unable to load .env: %w", err)
	}
	return Parse(nil)
}

// Parse reads the config out of environment, or out of the process
// environment when it is nil.
func Parse(environment map[string]string) (Config, error) {
	var cfg Config
	opts := env.Options{
		Prefix:      envPrefix,
		Environment: environment,
	}
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// BindFlags registers a flag per field, defaulting to the current values.
func (c *Config) BindFlags(flags *flag.FlagSet) {
	flags.StringVar(&c.Input, "input", c.Input, "Order feed, JSON lines ('-' for stdin)")
	flags.StringVar(&c.Output, "output", c.Output, "Report destination ('-' for stdout)")
	flags.StringVar(&c.LogLevel, "log-level", c.LogLevel, "Log level: ['debug', 'info', 'warn', 'error']")
	flags.BoolVar(&c.LogConsole, "log-console", c.LogConsole, "Human readable logs instead of JSON")
	flags.BoolVar(&c.Live, "live", c.Live, "Report trades and the book after every event")
	flags.StringVar(&c.PriceRule, "price-rule", c.PriceRule, "Execution price: ['consumed', 'resting']")
	flags.StringVar(&c.MetricsAddr, "metrics-addr", c.MetricsAddr, "Serve Prometheus metrics on this address")
	flags.IntVar(&c.BufferSize, "buffer", c.BufferSize, "Events decoded ahead of the book")
}

// Validate checks every setting, including that the input file exists.
func (c Config) Validate() error {
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := c.Rule(); err != nil {
		return err
	}
	if c.BufferSize <= 0 {
		return fmt.Errorf("%w: buffer size must be positive, got %d", ErrInvalidConfig, c.BufferSize)
	}
	if c.Input == Stdio {
		return nil
	}

	info, err := os.Stat(c.Input)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s", ErrInputNotFound, c.Input)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: input %s is a directory", ErrInvalidConfig, c.Input)
	}
	return nil
}

func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return level, nil
}

func (c Config) Rule() (engine.PriceRule, error) {
	rule, err := engine.ParsePriceRule(c.PriceRule)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return rule, nil
}
