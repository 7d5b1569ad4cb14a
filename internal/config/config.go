// Package config loads Bodhi's runtime configuration.
//
// Configuration is loaded from multiple sources in this order:
// 1. A YAML config file (./configs/config.yaml, ./config.yaml, or
//    $BODHI_HOME/config.yaml)
// 2. Environment variables
// 3. Command line flags, which bind over the loaded Config after Load
//    returns (see cmd/bodhi)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Home    HomeConfig    `mapstructure:"home"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig controls the HTTP surface (spec.md §4.5, §6).
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	ShutdownTimeout int    `mapstructure:"shutdown_timeout_seconds"`
}

// HomeConfig locates Bodhi's on-disk state: the alias catalog, the
// conversation store, and the Hugging Face model cache.
type HomeConfig struct {
	BodhiHome string `mapstructure:"bodhi_home"`
	HFHome    string `mapstructure:"hf_home"`
}

// LoggingConfig holds the log level and format settings that pkg/logging's
// constructors accept; Load only reads them, and no caller in this module
// passes them on to pkg/logging.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks invariants Load cannot enforce through defaults alone.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in 1..=65535, got %d", c.Server.Port)
	}
	if c.Home.BodhiHome == "" {
		return errors.New("home.bodhi_home must not be empty")
	}
	if c.Home.HFHome == "" {
		return errors.New("home.hf_home must not be empty")
	}
	return nil
}

// Load reads configuration from .env, an optional YAML file, and the
// environment, applying Bodhi's defaults for anything left unset.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	bodhiHome, err := defaultBodhiHome()
	if err != nil {
		return nil, fmt.Errorf("resolve default bodhi home: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")
	viper.AddConfigPath(bodhiHome)

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	//nolint:errcheck // BindEnv only errors with invalid args, safe with string literals
	viper.BindEnv("server.host", "BODHI_HOST")
	viper.BindEnv("server.port", "BODHI_PORT", "BODHISERVER_PORT")
	viper.BindEnv("home.bodhi_home", "BODHI_HOME")
	viper.BindEnv("home.hf_home", "HF_HOME")
	viper.BindEnv("logging.level", "BODHI_LOG_LEVEL", "RUST_LOG")
	viper.BindEnv("logging.format", "BODHI_LOG_FORMAT")

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 1135)
	viper.SetDefault("server.shutdown_timeout_seconds", 30)
	viper.SetDefault("home.bodhi_home", bodhiHome)
	viper.SetDefault("home.hf_home", defaultHFHome())
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaultBodhiHome() (string, error) {
	if v := os.Getenv("BODHI_HOME"); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", "bodhi"), nil
}

func defaultHFHome() string {
	if v := os.Getenv("HF_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".cache/huggingface"
	}
	return filepath.Join(home, ".cache", "huggingface")
}
