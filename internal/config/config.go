// Package config provides Viper-based configuration loading for the dat importer.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/cory-johannsen/genie/internal/genie/version"
)

// InputConfig selects the dat file and the layout used to read it.
type InputConfig struct {
	// Path is the empires*.dat file to read.
	Path string `mapstructure:"path"`
	// Compressed is set when the file is a raw deflate stream.
	Compressed bool `mapstructure:"compressed"`
	// Edition is the game edition name, e.g. "aoc" or "aoe2de".
	Edition string `mapstructure:"edition"`
	// Expansions lists the expansion names enabled for the edition.
	Expansions []string `mapstructure:"expansions"`
	// Blocks names extra top-level blocks to read after the media section.
	Blocks []string `mapstructure:"blocks"`
}

// GameVersion parses Edition and Expansions.
//
// Postcondition: Returns the selector or an error naming the unknown value.
func (i InputConfig) GameVersion() (version.GameVersion, error) {
	return version.Parse(i.Edition, i.Expansions)
}

// ReaderConfig holds decoding settings.
type ReaderConfig struct {
	// Lazy defers lazily loadable records until they are accessed.
	Lazy bool `mapstructure:"lazy"`
	// LoaderCacheSize bounds the number of resident deferred records.
	LoaderCacheSize int `mapstructure:"loader_cache_size"`
}

// ExportConfig holds output settings.
type ExportConfig struct {
	// Dir receives one YAML file per section.
	Dir string `mapstructure:"dir"`
	// Script is an optional Lua inspection script run over the sections.
	Script string `mapstructure:"script"`
	// ScriptInstructionLimit caps the script's VM instructions. Zero disables the cap.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds PostgreSQL connection settings for snapshot storage.
type DatabaseConfig struct {
	// Enabled stores each imported section as a snapshot row.
	Enabled         bool          `mapstructure:"enabled"`
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

// Config is the top-level application configuration.
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Reader   ReaderConfig   `mapstructure:"reader"`
	Export   ExportConfig   `mapstructure:"export"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error describing all violations.
func (c Config) Validate() error {
	var errs []string

	for _, check := range []func() error{
		func() error { return validateInput(c.Input) },
		func() error { return validateReader(c.Reader) },
		func() error { return validateExport(c.Export) },
		func() error { return validateLogging(c.Logging) },
		func() error { return validateDatabase(c.Database) },
	} {
		if err := check(); err != nil {
			errs = append(errs, err.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func validateInput(i InputConfig) error {
	var errs []string
	if i.Path == "" {
		errs = append(errs, "input.path must not be empty")
	}
	if _, err := i.GameVersion(); err != nil {
		errs = append(errs, fmt.Sprintf("input: %v", err))
	}
	for _, b := range i.Blocks {
		if b == "" {
			errs = append(errs, "input.blocks must not contain empty names")
			break
		}
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

func validateReader(r ReaderConfig) error {
	if r.Lazy && r.LoaderCacheSize < 1 {
		return fmt.Errorf("reader.loader_cache_size must be >= 1 when reader.lazy is set, got %d", r.LoaderCacheSize)
	}
	if r.LoaderCacheSize < 0 {
		return fmt.Errorf("reader.loader_cache_size must be >= 0, got %d", r.LoaderCacheSize)
	}
	return nil
}

func validateExport(e ExportConfig) error {
	var errs []string
	if e.Dir == "" {
		errs = append(errs, "export.dir must not be empty")
	}
	if e.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("export.script_instruction_limit must be >= 0, got %d", e.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
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

// validateDatabase only checks connection settings when snapshots are enabled.
func validateDatabase(d DatabaseConfig) error {
	if !d.Enabled {
		return nil
	}
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
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies environment variable
// overrides, and validates the result.
//
// Precondition: path must be a valid file path to a YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := NewViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}
	return LoadFromViper(v)
}

// NewViper returns a Viper instance with defaults and GENIE_ environment
// overrides applied.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("GENIE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
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
	v.SetDefault("input.compressed", true)
	v.SetDefault("input.edition", "aoc")
	v.SetDefault("input.expansions", []string{})
	v.SetDefault("input.blocks", []string{})

	v.SetDefault("reader.lazy", false)
	v.SetDefault("reader.loader_cache_size", 256)

	v.SetDefault("export.dir", "out")
	v.SetDefault("export.script_instruction_limit", 1_000_000)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "genie")
	v.SetDefault("database.password", "genie")
	v.SetDefault("database.name", "genie")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")
}
