// Package config loads run settings from an optional YAML file and the
// POLYREACT_* environment. Command-line flags are applied on top by the
// caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"polyreact/core/model"
)

// Config holds the settings shared by the polyreact commands.
type Config struct {
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	AssetDir     string `yaml:"asset_dir"`
	AssetDB      string `yaml:"asset_db"`
	Manifest     string `yaml:"manifest"`
	ORTLibrary   string `yaml:"ort_library"`
	NumberingCmd string `yaml:"numbering_cmd"`
	BatchSize    int    `yaml:"batch_size"`
	Parallel     bool   `yaml:"parallel"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: "text",
		AssetDir:  "models",
		BatchSize: model.DefaultBatchSize,
	}
}

// Load starts from Default, merges the YAML file at path (skipped when
// path is empty) and then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.LogLevel = getEnv("POLYREACT_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("POLYREACT_LOG_FORMAT", c.LogFormat)
	c.AssetDir = getEnv("POLYREACT_ASSET_DIR", c.AssetDir)
	c.AssetDB = getEnv("POLYREACT_ASSET_DB", c.AssetDB)
	c.Manifest = getEnv("POLYREACT_MANIFEST", c.Manifest)
	c.ORTLibrary = getEnv("POLYREACT_ORT_LIBRARY", c.ORTLibrary)
	c.NumberingCmd = getEnv("POLYREACT_NUMBERING_CMD", c.NumberingCmd)
	c.BatchSize = getEnvAsInt("POLYREACT_BATCH_SIZE", c.BatchSize)
	c.Parallel = getEnvAsBool("POLYREACT_PARALLEL", c.Parallel)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return errors.New("batch_size must be > 0")
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("log_format must be text or json, got %q", c.LogFormat)
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt retrieves an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
