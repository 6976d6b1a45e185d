package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-yaml"
)

// Sentinel errors for config operations.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrConfigParse    = errors.New("failed to parse config")
	ErrConfigInvalid  = errors.New("invalid config")
)

// maxConfigSize caps the config file size; anything larger is a mistake,
// not a configuration.
const maxConfigSize = 1 << 20

// Config holds the conversion service configuration.
type Config struct {
	// Listen is the HTTP listen address.
	Listen string `yaml:"listen"`

	// Workers caps the converter pool size. 0 = derive from CPU count.
	Workers int `yaml:"workers"`

	// ChromePath points at the engine executable. Empty = auto-discover.
	ChromePath string `yaml:"chromePath"`

	// TempDir holds temporary pre-processing artifacts. Empty = system default.
	TempDir string `yaml:"tempDir"`

	// Timeout is the overall per-conversion deadline, e.g. "30s". Empty = none.
	Timeout string `yaml:"timeout"`

	// WaitTimeout bounds the wait-for-signal poll loop, e.g. "10s".
	WaitTimeout string `yaml:"waitTimeout"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Listen:  ":8090",
		Timeout: "30s",
	}
}

// LoadConfig reads a YAML config file. Decoding is strict: unknown
// fields are rejected so typos fail loudly instead of silently keeping
// a default.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- config path is user-provided
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if len(data) > maxConfigSize {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrConfigParse, path, maxConfigSize)
	}

	cfg := DefaultConfig()
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.Strict()); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfigParse, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks field values and duration syntax.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return fmt.Errorf("%w: listen address cannot be empty", ErrConfigInvalid)
	}
	if c.Workers < 0 {
		return fmt.Errorf("%w: workers cannot be negative", ErrConfigInvalid)
	}
	if _, err := c.timeout(); err != nil {
		return fmt.Errorf("%w: timeout: %v", ErrConfigInvalid, err)
	}
	if _, err := c.waitTimeout(); err != nil {
		return fmt.Errorf("%w: waitTimeout: %v", ErrConfigInvalid, err)
	}
	return nil
}

func (c *Config) timeout() (time.Duration, error) {
	return parseOptionalDuration(c.Timeout)
}

func (c *Config) waitTimeout() (time.Duration, error) {
	return parseOptionalDuration(c.WaitTimeout)
}

func parseOptionalDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration cannot be negative: %s", s)
	}
	return d, nil
}
