package config

import (
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. MODELHUB_STORAGE_ROOT.
const EnvPrefix = "MODELHUB"

// NewViper returns a viper instance reading MODELHUB_* environment variables.
// Flags are attached by the caller with BindPFlag.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()
	return v
}

// Overrides collects the keys explicitly set on v (changed flags or
// environment) into a Config suitable for Merge. Unset keys stay zero.
func Overrides(v *viper.Viper) Config {
	var c Config
	str := func(key string, dst *string) {
		if v.IsSet(key) {
			*dst = v.GetString(key)
		}
	}
	list := func(key string, dst *[]string) {
		if !v.IsSet(key) {
			return
		}
		var out []string
		for _, s := range v.GetStringSlice(key) {
			for _, p := range strings.Split(s, ",") {
				if p = strings.TrimSpace(p); p != "" {
					out = append(out, p)
				}
			}
		}
		*dst = out
	}
	str("addr", &c.Addr)
	str("storage_root", &c.StorageRoot)
	str("catalog_file", &c.CatalogFile)
	str("log_level", &c.LogLevel)
	str("log_format", &c.LogFormat)
	str("log_file", &c.LogFile)
	str("sweep_interval", &c.SweepInterval)
	str("orphan_grace", &c.OrphanGrace)
	if v.IsSet("chunk_size_bytes") {
		c.ChunkSizeBytes = v.GetInt("chunk_size_bytes")
	}
	if v.IsSet("cors_enabled") {
		c.CORSEnabled = v.GetBool("cors_enabled")
	}
	list("cors_origins", &c.CORSOrigins)
	list("cors_methods", &c.CORSMethods)
	list("cors_headers", &c.CORSHeaders)
	if v.IsSet("max_body_bytes") {
		c.MaxBodyBytes = v.GetInt64("max_body_bytes")
	}
	if v.IsSet("llama_ctx") {
		c.LlamaCtx = v.GetInt("llama_ctx")
	}
	if v.IsSet("llama_threads") {
		c.LlamaThreads = v.GetInt("llama_threads")
	}
	return c
}
