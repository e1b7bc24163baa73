// Package config provides the configuration schema and loader for the
// Voxkey service.
package config

import (
	"github.com/voxkey/voxkey/pkg/types"
)

// LogLevel controls log verbosity for the Voxkey service.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// StorageDriver selects the settings store backend.
type StorageDriver string

const (
	// StorageSQLite stores settings in a local SQLite file. The default.
	StorageSQLite StorageDriver = "sqlite"

	// StoragePostgres stores settings in PostgreSQL, for caregiver-hosted
	// multi-device deployments.
	StoragePostgres StorageDriver = "postgres"

	// StorageMemory keeps settings in memory only. Nothing survives a
	// restart; intended for tests and demos.
	StorageMemory StorageDriver = "memory"
)

// IsValid reports whether d is a recognised storage driver.
func (d StorageDriver) IsValid() bool {
	switch d {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	}
	return false
}

// Config is the root configuration structure for Voxkey. It is typically
// loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Providers ProvidersConfig `yaml:"providers"`
	Storage   StorageConfig   `yaml:"storage"`
	Voice     VoiceConfig     `yaml:"voice"`
	Engine    EngineConfig    `yaml:"engine"`
}

// ServerConfig holds network and logging settings.
type ServerConfig struct {
	// MetricsAddr is the TCP address serving /metrics, /healthz and /readyz
	// (e.g., ":9090"). Empty disables the observability server.
	MetricsAddr string `yaml:"metrics_addr"`

	// LogLevel controls verbosity.
	LogLevel LogLevel `yaml:"log_level"`
}

// ProvidersConfig declares the remote providers. Both are optional: without
// a suggest provider the engine serves rule-based suggestions only, and
// without a speech provider sends are recorded but not spoken.
type ProvidersConfig struct {
	Suggest ProviderEntry `yaml:"suggest"`
	Speech  ProviderEntry `yaml:"speech"`
}

// ProviderEntry is the common configuration block shared by all provider
// kinds.
type ProviderEntry struct {
	// Name selects the provider implementation (e.g., "openai", "anyllm",
	// "elevenlabs"). Empty disables the provider.
	Name string `yaml:"name"`

	// APIKey is the authentication key for the provider's API if any.
	APIKey string `yaml:"api_key"`

	// Model selects a specific model within the provider (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// BaseURL overrides the provider's default API endpoint. Leave empty to
	// use the provider's built-in default.
	BaseURL string `yaml:"base_url"`
}

// StorageConfig selects and configures the settings store.
type StorageConfig struct {
	// Driver picks the backend. Defaults to "sqlite".
	Driver StorageDriver `yaml:"driver"`

	// Path is the SQLite database file path. Used by the sqlite driver.
	Path string `yaml:"path"`

	// DSN is the PostgreSQL connection string. Used by the postgres driver.
	DSN string `yaml:"dsn"`
}

// VoiceConfig holds the initial speech synthesis settings. Zero values fall
// back to [types.DefaultVoiceSettings]; values persisted in the store take
// precedence over both.
type VoiceConfig struct {
	VoiceID      string  `yaml:"voice_id"`
	ModelID      string  `yaml:"model_id"`
	OutputFormat string  `yaml:"output_format"`
	Speed        float64 `yaml:"speed"`
	Stability    float64 `yaml:"stability"`
}

// Settings merges v over the built-in defaults.
func (v VoiceConfig) Settings() types.VoiceSettings {
	s := types.DefaultVoiceSettings()
	if v.VoiceID != "" {
		s.VoiceID = v.VoiceID
	}
	if v.ModelID != "" {
		s.ModelID = v.ModelID
	}
	if v.OutputFormat != "" {
		s.OutputFormat = v.OutputFormat
	}
	if v.Speed != 0 {
		s.Speed = v.Speed
	}
	if v.Stability != 0 {
		s.Stability = v.Stability
	}
	return s
}

// EngineConfig tunes the suggestion engine.
type EngineConfig struct {
	// DebounceMs is the pause after the last keystroke before typing
	// suggestions are computed, in milliseconds. Defaults to 1200.
	DebounceMs int `yaml:"debounce_ms"`

	// Offline forces local-only suggestions even when a suggest provider is
	// configured.
	Offline bool `yaml:"offline"`
}
