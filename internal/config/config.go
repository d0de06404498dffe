// Package config provides Viper-based configuration loading for the game director.
package config

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// DatabaseConfig holds PostgreSQL connection settings for the event journal.
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Name            string        `mapstructure:"name"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// DSN returns the PostgreSQL connection string.
//
// Precondition: Host, Port, User, and Name must be non-empty.
// Postcondition: Returns a valid PostgreSQL DSN string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// LedgerConfig holds the ledger gateway connection settings.
type LedgerConfig struct {
	// Host is the gateway gRPC host.
	Host string `mapstructure:"host"`
	// Port is the gateway gRPC port.
	Port int `mapstructure:"port"`
	// CallTimeout bounds each unary call; streams are unbounded.
	CallTimeout time.Duration `mapstructure:"call_timeout"`
}

// Addr returns the "host:port" gateway address.
//
// Postcondition: Returns a non-empty string in "host:port" format.
func (l LedgerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", l.Host, l.Port)
}

// PacingConfig holds the live-play delay after each paced event kind.
type PacingConfig struct {
	LevelUp     time.Duration `mapstructure:"level_up"`
	Discovery   time.Duration `mapstructure:"discovery"`
	Obstacle    time.Duration `mapstructure:"obstacle"`
	Attack      time.Duration `mapstructure:"attack"`
	BeastAttack time.Duration `mapstructure:"beast_attack"`
	Flee        time.Duration `mapstructure:"flee"`
}

// DirectorConfig holds reconciliation settings.
type DirectorConfig struct {
	// VRFEnabled prepends a randomness request to entropy-consuming actions.
	VRFEnabled bool `mapstructure:"vrf_enabled"`
	// Journal persists live records to PostgreSQL when true.
	Journal bool         `mapstructure:"journal"`
	Pacing  PacingConfig `mapstructure:"pacing"`
}

// CacheConfig holds the Redis adventurer cache settings.
type CacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Ledger   LedgerConfig   `mapstructure:"ledger"`
	Director DirectorConfig `mapstructure:"director"`
	Database DatabaseConfig `mapstructure:"database"`
	Cache    CacheConfig    `mapstructure:"cache"`
}

// Validate checks all configuration invariants. Database settings are only
// checked when the journal is enabled, cache settings only when the cache is.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateLedger(c.Ledger); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validatePacing(c.Director.Pacing); err != nil {
		errs = append(errs, err.Error())
	}
	if c.Director.Journal {
		if err := validateDatabase(c.Database); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if c.Cache.Enabled {
		if err := validateCache(c.Cache); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateLedger(l LedgerConfig) error {
	var errs []string
	if l.Host == "" {
		errs = append(errs, "ledger.host must not be empty")
	}
	if l.Port < 1 || l.Port > 65535 {
		errs = append(errs, fmt.Sprintf("ledger.port must be 1-65535, got %d", l.Port))
	}
	if l.CallTimeout <= 0 {
		errs = append(errs, "ledger.call_timeout must be positive")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validatePacing(p PacingConfig) error {
	delays := map[string]time.Duration{
		"level_up":     p.LevelUp,
		"discovery":    p.Discovery,
		"obstacle":     p.Obstacle,
		"attack":       p.Attack,
		"beast_attack": p.BeastAttack,
		"flee":         p.Flee,
	}
	var bad []string
	for name, d := range delays {
		if d < 0 {
			bad = append(bad, name)
		}
	}
	if len(bad) > 0 {
		sort.Strings(bad)
		return fmt.Errorf("director.pacing must not be negative: %s", strings.Join(bad, ", "))
	}
	return nil
}

func validateDatabase(d DatabaseConfig) error {
	var errs []string
	if d.Host == "" {
		errs = append(errs, "database.host must not be empty")
	}
	if d.Port < 1 || d.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", d.Port))
	}
	if d.User == "" {
		errs = append(errs, "database.user must not be empty")
	}
	if d.Name == "" {
		errs = append(errs, "database.name must not be empty")
	}
	validSSL := map[string]bool{"disable": true, "require": true, "verify-ca": true, "verify-full": true}
	if !validSSL[d.SSLMode] {
		errs = append(errs, fmt.Sprintf("database.sslmode must be one of [disable, require, verify-ca, verify-full], got %q", d.SSLMode))
	}
	if d.MaxConns < 1 {
		errs = append(errs, fmt.Sprintf("database.max_conns must be >= 1, got %d", d.MaxConns))
	}
	if d.MinConns < 0 {
		errs = append(errs, fmt.Sprintf("database.min_conns must be >= 0, got %d", d.MinConns))
	}
	if d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must not exceed database.max_conns")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

func validateCache(c CacheConfig) error {
	if c.Addr == "" {
		return errors.New("cache.addr must not be empty")
	}
	if c.DB < 0 {
		return fmt.Errorf("cache.db must be >= 0, got %d", c.DB)
	}
	if c.TTL <= 0 {
		return errors.New("cache.ttl must be positive")
	}
	return nil
}

func validateLogging(l LoggingConfig) error {
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[l.Level] {
		return fmt.Errorf("logging.level must be one of [debug, info, warn, error], got %q", l.Level)
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("logging.format must be one of [json, console], got %q", l.Format)
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result. An empty path uses defaults and the
// environment only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with SURVIVOR_ prefix
	v.SetEnvPrefix("SURVIVOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}

	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper instance.
//
// Precondition: v must be non-nil and have configuration values set.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("ledger.host", "127.0.0.1")
	v.SetDefault("ledger.port", 50061)
	v.SetDefault("ledger.call_timeout", "30s")

	v.SetDefault("director.vrf_enabled", true)
	v.SetDefault("director.journal", false)
	v.SetDefault("director.pacing.level_up", "1s")
	v.SetDefault("director.pacing.discovery", "1s")
	v.SetDefault("director.pacing.obstacle", "1s")
	v.SetDefault("director.pacing.attack", "2s")
	v.SetDefault("director.pacing.beast_attack", "2s")
	v.SetDefault("director.pacing.flee", "1s")

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "survivor")
	v.SetDefault("database.password", "survivor")
	v.SetDefault("database.name", "survivor")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.ttl", "5s")
}
