package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/sentryvault/sentryvault/internal/crypto"
	"github.com/sentryvault/sentryvault/internal/guard"
)

// DefaultFile is the per-directory configuration file name
const DefaultFile = ".sentryvault.yml"

// Config is the optional on-disk configuration. Every field has a working
// default; the file only needs to exist for overrides.
type Config struct {
	KDF struct {
		MemoryKiB   uint32 `yaml:"memory_kib"`
		Time        uint32 `yaml:"time"`
		Parallelism uint8  `yaml:"parallelism"`
	} `yaml:"kdf"`

	Guard struct {
		WindowStart     string `yaml:"window_start"`
		WindowEnd       string `yaml:"window_end"`
		MaxAttempts     int    `yaml:"max_attempts"`
		IntervalSeconds int    `yaml:"interval_seconds"`
	} `yaml:"guard"`

	Sharding struct {
		Shares    int `yaml:"shares"`
		Threshold int `yaml:"threshold"`
	} `yaml:"sharding"`
}

// Default returns the built-in configuration
func Default() *Config {
	c := &Config{}
	p := crypto.DefaultParams()
	c.KDF.MemoryKiB = p.Memory
	c.KDF.Time = p.Time
	c.KDF.Parallelism = p.Parallelism

	g := guard.DefaultPolicy()
	c.Guard.MaxAttempts = g.MaxAttempts
	c.Guard.IntervalSeconds = int(g.Interval / time.Second)
	return c
}

// Load reads configuration from path. A missing file yields the defaults;
// a present but invalid file is an error, never a silent fallback.
func Load(path string) (*Config, error) {
	c := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return c, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.UnmarshalStrict(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the loaded values against the same bounds the components
// enforce, so bad settings fail at startup instead of mid-operation
func (c *Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if _, err := guard.New(c.GuardPolicy()); err != nil {
		return err
	}
	if c.Sharding.Shares != 0 {
		if c.Sharding.Threshold < 1 || c.Sharding.Threshold > c.Sharding.Shares || c.Sharding.Shares > 255 {
			return fmt.Errorf("invalid sharding config: shares=%d threshold=%d",
				c.Sharding.Shares, c.Sharding.Threshold)
		}
	}
	return nil
}

// Params returns the configured derivation costs
func (c *Config) Params() crypto.Params {
	return crypto.Params{
		Memory:      c.KDF.MemoryKiB,
		Time:        c.KDF.Time,
		Parallelism: c.KDF.Parallelism,
	}
}

// GuardPolicy returns the configured access policy
func (c *Config) GuardPolicy() guard.Policy {
	return guard.Policy{
		WindowStart: c.Guard.WindowStart,
		WindowEnd:   c.Guard.WindowEnd,
		MaxAttempts: c.Guard.MaxAttempts,
		Interval:    time.Duration(c.Guard.IntervalSeconds) * time.Second,
	}
}
