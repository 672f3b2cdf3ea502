package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/jonwraymond/textops/diff"
	"github.com/jonwraymond/textops/memo"
	"github.com/jonwraymond/textops/observe"
	"github.com/jonwraymond/textops/secret"
)

// Store backends.
const (
	BackendMemory  = "memory"
	BackendRedis   = "redis"
	BackendLayered = "layered"
	BackendNone    = "none"
)

// ValidBackends lists valid store.backend values.
var ValidBackends = []string{BackendMemory, BackendRedis, BackendLayered, BackendNone}

// Config is the root textopsd configuration.
type Config struct {
	Service ServiceConfig  `yaml:"service"`
	Listen  ListenConfig   `yaml:"listen"`
	Store   StoreConfig    `yaml:"store"`
	Diff    DiffConfig     `yaml:"diff"`
	Observe observe.Config `yaml:"observe"`
	Auth    AuthConfig     `yaml:"auth"`
}

// ServiceConfig names the running service.
type ServiceConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
}

// ListenConfig configures the HTTP listener.
type ListenConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes"`

	// MaxConcurrent caps diff and transform requests in flight; 0 disables
	// the cap. MaxWait is how long a request waits for a free slot.
	MaxConcurrent int           `yaml:"max_concurrent"`
	MaxWait       time.Duration `yaml:"max_wait"`
}

// StoreConfig configures the memo cache.
type StoreConfig struct {
	Backend       string        `yaml:"backend"` // memory|redis|layered|none
	Namespace     string        `yaml:"namespace"`
	MaxEntries    int           `yaml:"max_entries"`
	FailurePolicy string        `yaml:"failure_policy"` // fail|bypass
	Timeout       time.Duration `yaml:"timeout"`
	Singleflight  bool          `yaml:"singleflight"`
	Breaker       BreakerConfig `yaml:"breaker"`
	Retry         RetryConfig   `yaml:"retry"`
	Redis         RedisConfig   `yaml:"redis"`
}

// BreakerConfig configures the store circuit breaker.
type BreakerConfig struct {
	Enabled   bool          `yaml:"enabled"`
	Threshold int           `yaml:"threshold"`
	Cooldown  time.Duration `yaml:"cooldown"`
}

// RetryConfig configures store call retries. Attempts <= 1 disables retry.
type RetryConfig struct {
	Attempts  int           `yaml:"attempts"`
	BaseDelay time.Duration `yaml:"base_delay"`
	MaxDelay  time.Duration `yaml:"max_delay"`
}

// RedisConfig configures the redis backend. Password may be a secretref.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// DiffConfig configures the diff engine.
type DiffConfig struct {
	Granularity   string `yaml:"granularity"` // auto|runes|lines
	RuneThreshold int    `yaml:"rune_threshold"`
	MaxCost       int    `yaml:"max_cost"`
	Semantic      bool   `yaml:"semantic"`
}

// AuthConfig configures bearer authentication. Secret may be a secretref.
type AuthConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Secret   string `yaml:"secret"`
	Issuer   string `yaml:"issuer"`
	Audience string `yaml:"audience"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Service: ServiceConfig{Name: "textopsd", Version: "dev"},
		Listen: ListenConfig{
			Addr:            ":8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    4 << 20,
			MaxConcurrent:   64,
			MaxWait:         100 * time.Millisecond,
		},
		Store: StoreConfig{
			Backend:       BackendMemory,
			Namespace:     "textops:",
			MaxEntries:    10000,
			FailurePolicy: memo.FailClosed.String(),
			Timeout:       500 * time.Millisecond,
			Breaker:       BreakerConfig{Threshold: 5, Cooldown: 30 * time.Second},
			Retry:         RetryConfig{Attempts: 1},
		},
		Diff: DiffConfig{
			Granularity:   diff.Auto.String(),
			RuneThreshold: diff.DefaultRuneThreshold,
			MaxCost:       diff.DefaultMaxCost,
		},
		Observe: observe.Config{
			ServiceName: "textopsd",
			Logging:     observe.LoggingConfig{Enabled: true, Level: "info"},
		},
	}
}

// Load reads and parses the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse overlays data on Default and validates the result. Empty input
// yields the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	if cfg.Observe.ServiceName == "" {
		cfg.Observe.ServiceName = cfg.Service.Name
	}
	if cfg.Observe.Version == "" {
		cfg.Observe.Version = cfg.Service.Version
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Listen.Addr == "" {
		return ErrMissingListenAddr
	}
	if c.Listen.MaxConcurrent < 0 || c.Listen.MaxWait < 0 {
		return fmt.Errorf("%w: listen concurrency", ErrNegativeValue)
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if _, err := diff.ParseGranularity(c.Diff.Granularity); err != nil {
		return fmt.Errorf("config: diff.granularity: %w", err)
	}
	if c.Diff.RuneThreshold < 0 || c.Diff.MaxCost < 0 {
		return fmt.Errorf("%w: diff thresholds", ErrNegativeValue)
	}
	if c.Auth.Enabled && c.Auth.Secret == "" {
		return ErrMissingAuthSecret
	}
	if err := c.Observe.Validate(); err != nil {
		return fmt.Errorf("config: observe: %w", err)
	}
	return nil
}

// Validate validates the store section.
func (s *StoreConfig) Validate() error {
	if !contains(ValidBackends, s.Backend) {
		return fmt.Errorf("%w: %q", ErrInvalidBackend, s.Backend)
	}
	if _, err := memo.ParseFailurePolicy(s.FailurePolicy); err != nil {
		return fmt.Errorf("config: store.failure_policy: %w", err)
	}
	if s.MaxEntries < 0 || s.Timeout < 0 || s.Retry.Attempts < 0 || s.Breaker.Threshold < 0 {
		return fmt.Errorf("%w: store", ErrNegativeValue)
	}
	if (s.Backend == BackendRedis || s.Backend == BackendLayered) && s.Redis.Addr == "" {
		return ErrMissingRedisAddr
	}
	return nil
}

// Policy returns the parsed failure policy. Call after Validate.
func (s *StoreConfig) Policy() memo.FailurePolicy {
	p, _ := memo.ParseFailurePolicy(s.FailurePolicy)
	return p
}

// Options returns the parsed diff options. Call after Validate.
func (d *DiffConfig) Options() diff.Options {
	g, _ := diff.ParseGranularity(d.Granularity)
	return diff.Options{
		Granularity:   g,
		RuneThreshold: d.RuneThreshold,
		MaxCost:       d.MaxCost,
		Semantic:      d.Semantic,
	}
}

// Resolve expands environment and secret references in the redis address,
// the redis password and the auth secret.
func (c *Config) Resolve(ctx context.Context, r *secret.Resolver) error {
	if err := r.ResolveAll(ctx, &c.Store.Redis.Addr, &c.Store.Redis.Password, &c.Auth.Secret); err != nil {
		return fmt.Errorf("config: resolve secrets: %w", err)
	}
	return nil
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
