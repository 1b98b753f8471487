// Package config provides centralized configuration management using Viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Store backends.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
)

// EnvPrefix is the prefix of every environment override.
const EnvPrefix = "ONBOARD"

// Config holds all configuration values for onboard.
type Config struct {
	Addr        string `mapstructure:"addr" yaml:"addr"`
	MetricsAddr string `mapstructure:"metrics_addr" yaml:"metrics_addr"`
	LogLevel    string `mapstructure:"log_level" yaml:"log_level"`

	Endpoint       string            `mapstructure:"endpoint" yaml:"endpoint"`
	EndpointHeader map[string]string `mapstructure:"endpoint_headers" yaml:"endpoint_headers,omitempty"`
	SubmitTimeout  time.Duration     `mapstructure:"submit_timeout" yaml:"submit_timeout"`

	Store         string        `mapstructure:"store" yaml:"store"`
	StoreDir      string        `mapstructure:"store_dir" yaml:"store_dir"`
	RedisAddr     string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password" yaml:"redis_password,omitempty"`
	RedisDB       int           `mapstructure:"redis_db" yaml:"redis_db"`
	SessionTTL    time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	PostgresDSN   string        `mapstructure:"postgres_dsn" yaml:"postgres_dsn,omitempty"`
	EncryptionKey string        `mapstructure:"encryption_key" yaml:"encryption_key,omitempty"`

	NATSURL     string `mapstructure:"nats_url" yaml:"nats_url,omitempty"`
	NATSSubject string `mapstructure:"nats_subject" yaml:"nats_subject"`

	PreviewDir     string   `mapstructure:"preview_dir" yaml:"preview_dir,omitempty"`
	MaxUploadBytes int64    `mapstructure:"max_upload_bytes" yaml:"max_upload_bytes"`
	RedactPatterns []string `mapstructure:"redact_patterns" yaml:"redact_patterns,omitempty"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Addr:           ":8080",
		MetricsAddr:    ":2112",
		LogLevel:       "info",
		SubmitTimeout:  30 * time.Second,
		Store:          StoreMemory,
		StoreDir:       ".onboard/sessions",
		RedisAddr:      "localhost:6379",
		SessionTTL:     24 * time.Hour,
		NATSSubject:    "onboard.notifications",
		MaxUploadBytes: 10 << 20,
	}
}

// defaults lists every scalar key with its default, for viper.
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"addr":             d.Addr,
		"metrics_addr":     d.MetricsAddr,
		"log_level":        d.LogLevel,
		"endpoint":         d.Endpoint,
		"submit_timeout":   d.SubmitTimeout,
		"store":            d.Store,
		"store_dir":        d.StoreDir,
		"redis_addr":       d.RedisAddr,
		"redis_password":   d.RedisPassword,
		"redis_db":         d.RedisDB,
		"session_ttl":      d.SessionTTL,
		"postgres_dsn":     d.PostgresDSN,
		"encryption_key":   d.EncryptionKey,
		"nats_url":         d.NATSURL,
		"nats_subject":     d.NATSSubject,
		"preview_dir":      d.PreviewDir,
		"max_upload_bytes": d.MaxUploadBytes,
	}
}

// Load loads configuration with full precedence:
// flags > ENV vars > project config > XDG global config > defaults.
// flags may be nil.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	keys := defaults()
	for key, value := range keys {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key := range keys {
		if err := v.BindEnv(key, EnvPrefix+"_"+strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("binding %s env: %w", key, err)
		}
	}

	if globalPath := GlobalPath(); fileExists(globalPath) {
		v.SetConfigFile(globalPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading global config: %w", err)
		}
	}
	if projectPath := ProjectPath(); fileExists(projectPath) {
		v.SetConfigFile(projectPath)
		if err := v.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("merging project config: %w", err)
		}
	}

	if flags != nil {
		if err := bindFlags(v, flags, keys); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// bindFlags binds every known key to the flag of the same name, written
// with dashes (e.g. --metrics-addr).
func bindFlags(v *viper.Viper, flags *pflag.FlagSet, keys map[string]any) error {
	for key := range keys {
		if f := flags.Lookup(strings.ReplaceAll(key, "_", "-")); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("binding %s flag: %w", key, err)
			}
		}
	}
	return nil
}

// Validate checks the configuration for values no component accepts.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store {
	case StoreMemory, StoreFile, StoreRedis, StorePostgres:
	default:
		errs = append(errs, fmt.Errorf("store must be one of memory, file, redis, postgres; got %q", c.Store))
	}
	if c.Store == StorePostgres && c.PostgresDSN == "" {
		errs = append(errs, errors.New("postgres_dsn is required with the postgres store"))
	}
	if c.SubmitTimeout <= 0 {
		errs = append(errs, errors.New("submit_timeout must be positive"))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, errors.New("session_ttl must not be negative"))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, errors.New("max_upload_bytes must be positive"))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Exists returns true if any config file exists (global or project).
func Exists() bool {
	return fileExists(GlobalPath()) || fileExists(ProjectPath())
}

// GlobalPath returns the XDG global config path.
// Returns ~/.config/onboard/onboard.yml or $XDG_CONFIG_HOME/onboard/onboard.yml.
func GlobalPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "onboard", "onboard.yml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "onboard", "onboard.yml")
}

// ProjectPath returns the project-local config path.
func ProjectPath() string {
	return "onboard.yml"
}

// Marshal renders cfg as YAML, durations in their human form.
func Marshal(cfg *Config) ([]byte, error) {
	var node yaml.Node
	if err := node.Encode(cfg); err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	// Durations encode as integers; rewrite them as "30s", "24h0m0s".
	durations := map[string]time.Duration{
		"submit_timeout": cfg.SubmitTimeout,
		"session_ttl":    cfg.SessionTTL,
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if d, ok := durations[node.Content[i].Value]; ok {
			node.Content[i+1].Tag = "!!str"
			node.Content[i+1].Value = d.String()
		}
	}
	return yaml.Marshal(&node)
}

// WriteGlobal writes the config to the XDG global location.
func WriteGlobal(cfg *Config) error {
	path := GlobalPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	return write(path, cfg)
}

// WriteProject writes the config to the project-local location.
func WriteProject(cfg *Config) error {
	return write(ProjectPath(), cfg)
}

func write(path string, cfg *Config) error {
	data, err := Marshal(cfg)
	if err != nil {
		return err
	}
	// Files may carry secrets (encryption key, passwords).
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
