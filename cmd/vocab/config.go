package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/vocab/persistence"
)

// Config holds CLI defaults.
//
// Precedence (highest first):
//  1. Command-line flags
//  2. Environment variables (VOCAB_*)
//  3. Config file (--config)
//  4. Built-in defaults
type Config struct {
	KeyWidth        int    `yaml:"key_width"`
	ProbeWidth      int    `yaml:"probe_width"`
	InitialCapacity int    `yaml:"initial_capacity"`
	Compression     string `yaml:"compression"`
	Workers         int    `yaml:"workers"`
	LogLevel        string `yaml:"log_level"`

	Resources struct {
		MemoryLimit string `yaml:"memory_limit"` // e.g. 2GB, 512MB, 0 for unlimited
		IOLimit     string `yaml:"io_limit"`     // bytes per second, same syntax
	} `yaml:"resources"`

	Store StoreConfig `yaml:"store"`
}

// StoreConfig selects the blob store used by publish and fetch.
type StoreConfig struct {
	Type string `yaml:"type"` // local, s3, minio, badger
	Path string `yaml:"path"` // local directory or badger directory

	Bucket        string `yaml:"bucket"`
	Prefix        string `yaml:"prefix"`
	Region        string `yaml:"region"`
	Endpoint      string `yaml:"endpoint"`
	DynamoDBTable string `yaml:"dynamodb_table"` // s3 only; enables conditional commits

	AccessKey string `yaml:"access_key"` // minio only
	SecretKey string `yaml:"secret_key"` // minio only
	Secure    bool   `yaml:"secure"`     // minio only
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	cfg := &Config{
		KeyWidth:    128,
		ProbeWidth:  1 << 16,
		Compression: "lz4",
		LogLevel:    "info",
	}
	cfg.Store.Type = "local"
	cfg.Store.Path = "./vocab-store"
	return cfg
}

// LoadConfig reads the defaults, then path (if non-empty), then VOCAB_*
// environment overrides.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.KeyWidth = getEnvInt("VOCAB_KEY_WIDTH", cfg.KeyWidth)
	cfg.ProbeWidth = getEnvInt("VOCAB_PROBE_WIDTH", cfg.ProbeWidth)
	cfg.InitialCapacity = getEnvInt("VOCAB_INITIAL_CAPACITY", cfg.InitialCapacity)
	cfg.Compression = getEnvStr("VOCAB_COMPRESSION", cfg.Compression)
	cfg.Workers = getEnvInt("VOCAB_WORKERS", cfg.Workers)
	cfg.LogLevel = getEnvStr("VOCAB_LOG_LEVEL", cfg.LogLevel)
	cfg.Resources.MemoryLimit = getEnvStr("VOCAB_MEMORY_LIMIT", cfg.Resources.MemoryLimit)
	cfg.Resources.IOLimit = getEnvStr("VOCAB_IO_LIMIT", cfg.Resources.IOLimit)

	cfg.Store.Type = getEnvStr("VOCAB_STORE", cfg.Store.Type)
	cfg.Store.Path = getEnvStr("VOCAB_STORE_PATH", cfg.Store.Path)
	cfg.Store.Bucket = getEnvStr("VOCAB_BUCKET", cfg.Store.Bucket)
	cfg.Store.Prefix = getEnvStr("VOCAB_PREFIX", cfg.Store.Prefix)
	cfg.Store.Region = getEnvStr("VOCAB_REGION", cfg.Store.Region)
	cfg.Store.Endpoint = getEnvStr("VOCAB_ENDPOINT", cfg.Store.Endpoint)
	cfg.Store.DynamoDBTable = getEnvStr("VOCAB_DYNAMODB_TABLE", cfg.Store.DynamoDBTable)
	cfg.Store.AccessKey = getEnvStr("VOCAB_ACCESS_KEY", cfg.Store.AccessKey)
	cfg.Store.SecretKey = getEnvStr("VOCAB_SECRET_KEY", cfg.Store.SecretKey)
	cfg.Store.Secure = getEnvBool("VOCAB_SECURE", cfg.Store.Secure)
}

// Validate checks the configuration for obviously invalid values.
func (c *Config) Validate() error {
	var errs []error
	if c.KeyWidth < 1 {
		errs = append(errs, fmt.Errorf("key_width must be positive, got %d", c.KeyWidth))
	}
	if c.ProbeWidth < 1 {
		errs = append(errs, fmt.Errorf("probe_width must be positive, got %d", c.ProbeWidth))
	}
	if _, err := persistence.ParseCompression(c.Compression); err != nil {
		errs = append(errs, err)
	}
	if _, err := parseMemorySize(c.Resources.MemoryLimit); err != nil {
		errs = append(errs, fmt.Errorf("memory_limit: %w", err))
	}
	if _, err := parseMemorySize(c.Resources.IOLimit); err != nil {
		errs = append(errs, fmt.Errorf("io_limit: %w", err))
	}
	switch c.Store.Type {
	case "local", "badger":
		if c.Store.Path == "" {
			errs = append(errs, fmt.Errorf("store.path is required for %s", c.Store.Type))
		}
	case "s3", "minio":
		if c.Store.Bucket == "" {
			errs = append(errs, fmt.Errorf("store.bucket is required for %s", c.Store.Type))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store type %q", c.Store.Type))
	}
	return errors.Join(errs...)
}

// parseMemorySize parses a human-readable size.
// Supports: "1024", "1KB", "1MB", "1GB", "1TB", "0", "unlimited".
func parseMemorySize(s string) (int64, error) {
	s = strings.TrimSpace(strings.ToUpper(s))
	if s == "" || s == "0" || s == "UNLIMITED" {
		return 0, nil
	}

	s = strings.TrimSuffix(s, "B")

	var multiplier int64 = 1
	switch {
	case strings.HasSuffix(s, "K"):
		multiplier = 1 << 10
		s = strings.TrimSuffix(s, "K")
	case strings.HasSuffix(s, "M"):
		multiplier = 1 << 20
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "G"):
		multiplier = 1 << 30
		s = strings.TrimSuffix(s, "G")
	case strings.HasSuffix(s, "T"):
		multiplier = 1 << 40
		s = strings.TrimSuffix(s, "T")
	}

	val, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size %q", s)
	}
	if val < 0 {
		return 0, fmt.Errorf("negative size %d", val)
	}
	return val * multiplier, nil
}

func getEnvStr(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		switch strings.ToLower(val) {
		case "true", "1", "yes", "on":
			return true
		case "false", "0", "no", "off":
			return false
		}
	}
	return defaultVal
}
