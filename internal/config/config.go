// Package config provides Viper-based configuration loading for Duskfall.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// DatabaseConfig holds PostgreSQL connection settings for the battle-report
// store. The store is optional; these are only validated when it is enabled.
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
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// CombatConfig holds the combat engine's tuning knobs.
type CombatConfig struct {
	// LogCapacity bounds the in-combat result log.
	LogCapacity int `mapstructure:"log_capacity"`
	// VarianceFactor is the +/- damage spread, in [0, 1).
	VarianceFactor float64 `mapstructure:"variance_factor"`
	// CritMultiplier is the fallback critical multiplier.
	CritMultiplier float64 `mapstructure:"crit_multiplier"`
	// ItemHeal is the placeholder item heal amount.
	ItemHeal int `mapstructure:"item_heal"`
	// ScriptInstructionLimit caps Lua opcodes per behavior VM; 0 uses the
	// scripting default.
	ScriptInstructionLimit int `mapstructure:"script_instruction_limit"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging  LoggingConfig  `mapstructure:"logging"`
	Database DatabaseConfig `mapstructure:"database"`
	Combat   CombatConfig   `mapstructure:"combat"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	if err := validateLogging(c.Logging); err != nil {
		errs = append(errs, err.Error())
	}
	if err := validateCombat(c.Combat); err != nil {
		errs = append(errs, err.Error())
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// ValidateDatabase checks the database section; called only by entry points
// that actually open a connection.
func (c Config) ValidateDatabase() error {
	var errs []string
	d := c.Database
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
	if d.MinConns < 0 || d.MinConns > d.MaxConns {
		errs = append(errs, "database.min_conns must be in [0, max_conns]")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
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

func validateCombat(cc CombatConfig) error {
	var errs []string
	if cc.LogCapacity < 1 {
		errs = append(errs, fmt.Sprintf("combat.log_capacity must be >= 1, got %d", cc.LogCapacity))
	}
	if cc.VarianceFactor < 0 || cc.VarianceFactor >= 1 {
		errs = append(errs, fmt.Sprintf("combat.variance_factor must be in [0, 1), got %v", cc.VarianceFactor))
	}
	if cc.CritMultiplier < 1 {
		errs = append(errs, fmt.Sprintf("combat.crit_multiplier must be >= 1, got %v", cc.CritMultiplier))
	}
	if cc.ItemHeal < 1 {
		errs = append(errs, fmt.Sprintf("combat.item_heal must be >= 1, got %d", cc.ItemHeal))
	}
	if cc.ScriptInstructionLimit < 0 {
		errs = append(errs, fmt.Sprintf("combat.script_instruction_limit must be >= 0, got %d", cc.ScriptInstructionLimit))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}

// setDefaults applies defaults for every optional key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 4)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", time.Hour)
	v.SetDefault("combat.log_capacity", 100)
	v.SetDefault("combat.variance_factor", 0.1)
	v.SetDefault("combat.crit_multiplier", 1.5)
	v.SetDefault("combat.item_heal", 30)
	v.SetDefault("combat.script_instruction_limit", 0)
}

// Load reads configuration from the given file path, applies environment
// variable overrides with the DUSKFALL_ prefix, and validates the result.
//
// Precondition: path must point to a readable YAML configuration file.
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	v.SetEnvPrefix("DUSKFALL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
