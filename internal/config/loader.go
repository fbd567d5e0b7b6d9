package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by Defaults.
type Config struct {
	Addr        string `json:"addr" yaml:"addr" toml:"addr" mapstructure:"addr"`
	StorageRoot string `json:"storage_root" yaml:"storage_root" toml:"storage_root" mapstructure:"storage_root"`
	// CatalogFile is an optional extra catalog searched before the built-ins.
	CatalogFile string `json:"catalog_file" yaml:"catalog_file" toml:"catalog_file" mapstructure:"catalog_file"`

	LogLevel  string `json:"log_level" yaml:"log_level" toml:"log_level" mapstructure:"log_level"`
	LogFormat string `json:"log_format" yaml:"log_format" toml:"log_format" mapstructure:"log_format"`
	LogFile   string `json:"log_file" yaml:"log_file" toml:"log_file" mapstructure:"log_file"`

	ChunkSizeBytes int `json:"chunk_size_bytes" yaml:"chunk_size_bytes" toml:"chunk_size_bytes" mapstructure:"chunk_size_bytes"`
	// Durations use Go syntax, e.g. "15m".
	SweepInterval string `json:"sweep_interval" yaml:"sweep_interval" toml:"sweep_interval" mapstructure:"sweep_interval"`
	OrphanGrace   string `json:"orphan_grace" yaml:"orphan_grace" toml:"orphan_grace" mapstructure:"orphan_grace"`

	CORSEnabled bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled" mapstructure:"cors_enabled"`
	CORSOrigins []string `json:"cors_origins" yaml:"cors_origins" toml:"cors_origins" mapstructure:"cors_origins"`
	CORSMethods []string `json:"cors_methods" yaml:"cors_methods" toml:"cors_methods" mapstructure:"cors_methods"`
	CORSHeaders []string `json:"cors_headers" yaml:"cors_headers" toml:"cors_headers" mapstructure:"cors_headers"`

	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes" mapstructure:"max_body_bytes"`
	LlamaCtx     int   `json:"llama_ctx" yaml:"llama_ctx" toml:"llama_ctx" mapstructure:"llama_ctx"`
	LlamaThreads int   `json:"llama_threads" yaml:"llama_threads" toml:"llama_threads" mapstructure:"llama_threads"`
}

// Defaults returns the configuration used when nothing is specified.
func Defaults() Config {
	return Config{
		Addr:           ":8080",
		StorageRoot:    "~/.modelhub/models",
		LogLevel:       "info",
		LogFormat:      "console",
		ChunkSizeBytes: 1 << 20,
		SweepInterval:  "15m",
		OrphanGrace:    "10m",
		CORSMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		CORSHeaders:    []string{"Content-Type", "X-Log-Level"},
		MaxBodyBytes:   1 << 20,
		LlamaCtx:       2048,
		LlamaThreads:   4,
	}
}

// Merge returns c with every non-zero field of o applied on top.
func (c Config) Merge(o Config) Config {
	if o.Addr != "" {
		c.Addr = o.Addr
	}
	if o.StorageRoot != "" {
		c.StorageRoot = o.StorageRoot
	}
	if o.CatalogFile != "" {
		c.CatalogFile = o.CatalogFile
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
	if o.LogFormat != "" {
		c.LogFormat = o.LogFormat
	}
	if o.LogFile != "" {
		c.LogFile = o.LogFile
	}
	if o.ChunkSizeBytes != 0 {
		c.ChunkSizeBytes = o.ChunkSizeBytes
	}
	if o.SweepInterval != "" {
		c.SweepInterval = o.SweepInterval
	}
	if o.OrphanGrace != "" {
		c.OrphanGrace = o.OrphanGrace
	}
	if o.CORSEnabled {
		c.CORSEnabled = true
	}
	if len(o.CORSOrigins) > 0 {
		c.CORSOrigins = o.CORSOrigins
	}
	if len(o.CORSMethods) > 0 {
		c.CORSMethods = o.CORSMethods
	}
	if len(o.CORSHeaders) > 0 {
		c.CORSHeaders = o.CORSHeaders
	}
	if o.MaxBodyBytes != 0 {
		c.MaxBodyBytes = o.MaxBodyBytes
	}
	if o.LlamaCtx != 0 {
		c.LlamaCtx = o.LlamaCtx
	}
	if o.LlamaThreads != 0 {
		c.LlamaThreads = o.LlamaThreads
	}
	return c
}

// Validate checks the fields that have no sensible fallback.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Addr) == "" {
		errs = append(errs, errors.New("addr is required"))
	}
	if strings.TrimSpace(c.StorageRoot) == "" {
		errs = append(errs, errors.New("storage_root is required"))
	}
	if c.ChunkSizeBytes < 0 {
		errs = append(errs, fmt.Errorf("chunk_size_bytes must not be negative: %d", c.ChunkSizeBytes))
	}
	if _, err := c.SweepEvery(); err != nil {
		errs = append(errs, err)
	}
	if _, err := c.OrphanGraceDuration(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// SweepEvery parses SweepInterval. Zero disables the periodic sweep.
func (c Config) SweepEvery() (time.Duration, error) {
	return parseDuration("sweep_interval", c.SweepInterval)
}

// OrphanGraceDuration parses OrphanGrace.
func (c Config) OrphanGraceDuration() (time.Duration, error) {
	return parseDuration("orphan_grace", c.OrphanGrace)
}

func parseDuration(field, v string) (time.Duration, error) {
	if strings.TrimSpace(v) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative: %s", field, v)
	}
	return d, nil
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
