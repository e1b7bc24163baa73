package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Speed and stability bounds accepted by the speech providers.
const (
	MinSpeed     = 0.5
	MaxSpeed     = 2.0
	MinStability = 0.0
	MaxStability = 1.0
)

// suggestProviders lists the known suggest provider names.
var suggestProviders = []string{"openai", "anyllm", "mock"}

// speechProviders lists the known speech provider names.
var speechProviders = []string{"elevenlabs", "mock"}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes and validates YAML config from r. Unknown fields
// are rejected so typos fail loudly instead of silently using defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg for errors, applies defaults, and logs warnings for
// suspicious but workable configurations. All errors are collected and
// returned joined rather than failing on the first one.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel == "" {
		cfg.Server.LogLevel = LogInfo
	}
	if !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("config: server.log_level %q is not one of debug, info, warn, error", cfg.Server.LogLevel))
	}

	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageSQLite
	}
	switch {
	case !cfg.Storage.Driver.IsValid():
		errs = append(errs, fmt.Errorf("config: storage.driver %q is not one of sqlite, postgres, memory", cfg.Storage.Driver))
	case cfg.Storage.Driver == StorageSQLite && cfg.Storage.Path == "":
		cfg.Storage.Path = "voxkey.db"
		slog.Warn("storage.path is empty; defaulting to voxkey.db in the working directory")
	case cfg.Storage.Driver == StoragePostgres && cfg.Storage.DSN == "":
		errs = append(errs, errors.New("config: storage.driver is postgres but storage.dsn is empty"))
	case cfg.Storage.Driver == StorageMemory:
		slog.Warn("storage.driver is memory; usage patterns and settings will not survive a restart")
	}

	errs = append(errs, validateProvider("suggest", cfg.Providers.Suggest, suggestProviders)...)
	errs = append(errs, validateProvider("speech", cfg.Providers.Speech, speechProviders)...)

	if cfg.Providers.Suggest.Name == "" {
		slog.Warn("no suggest provider configured; suggestions will be rule-based only")
	}
	if cfg.Providers.Speech.Name == "" {
		slog.Warn("no speech provider configured; messages will be recorded but not spoken")
	}

	if s := cfg.Voice.Speed; s != 0 && (s < MinSpeed || s > MaxSpeed) {
		errs = append(errs, fmt.Errorf("config: voice.speed %v is outside [%v, %v]", s, MinSpeed, MaxSpeed))
	}
	if s := cfg.Voice.Stability; s < MinStability || s > MaxStability {
		errs = append(errs, fmt.Errorf("config: voice.stability %v is outside [%v, %v]", s, MinStability, MaxStability))
	}

	if cfg.Engine.DebounceMs < 0 {
		errs = append(errs, fmt.Errorf("config: engine.debounce_ms %d must not be negative", cfg.Engine.DebounceMs))
	}

	return errors.Join(errs...)
}

// validateProvider checks one provider entry against the known names. An
// unknown name is only a warning so that compatible third-party endpoints
// keep working; a hosted provider without an api_key is an error.
func validateProvider(kind string, entry ProviderEntry, known []string) []error {
	if entry.Name == "" {
		return nil
	}

	recognised := false
	for _, name := range known {
		if entry.Name == name {
			recognised = true
			break
		}
	}
	if !recognised {
		slog.Warn("unknown provider name, may be a typo",
			"kind", kind, "name", entry.Name)
	}

	// The anyllm provider may target a local backend (ollama, llamacpp) that
	// needs no key, so only the hosted providers require one.
	switch entry.Name {
	case "openai", "elevenlabs":
		if entry.APIKey == "" {
			return []error{fmt.Errorf("config: providers.%s.name is %q but providers.%s.api_key is empty", kind, entry.Name, kind)}
		}
	}
	return nil
}
