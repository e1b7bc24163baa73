package config

import (
	"strings"
	"testing"
)

const validYAML = `
server:
  metrics_addr: ":9090"
  log_level: debug
providers:
  suggest:
    name: openai
    api_key: sk-test
    model: gpt-4o-mini
  speech:
    name: elevenlabs
    api_key: el-test
storage:
  driver: sqlite
  path: /tmp/voxkey-test.db
voice:
  speed: 1.2
  stability: 0.5
engine:
  debounce_ms: 800
`

func TestLoadFromReader_Valid(t *testing.T) {
	cfg, err := LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("LoadFromReader: %v", err)
	}

	if cfg.Server.LogLevel != LogDebug {
		t.Errorf("LogLevel = %q", cfg.Server.LogLevel)
	}
	if cfg.Providers.Suggest.Name != "openai" || cfg.Providers.Suggest.Model != "gpt-4o-mini" {
		t.Errorf("suggest provider = %+v", cfg.Providers.Suggest)
	}
	if cfg.Storage.Driver != StorageSQLite || cfg.Storage.Path != "/tmp/voxkey-test.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Engine.DebounceMs != 800 {
		t.Errorf("DebounceMs = %d", cfg.Engine.DebounceMs)
	}
}

func TestLoadFromReader_RejectsUnknownFields(t *testing.T) {
	_, err := LoadFromReader(strings.NewReader("server:\n  listen_port: 8080\n"))
	if err == nil {
		t.Fatal("unknown field was accepted")
	}
}

func TestValidate_AppliesDefaults(t *testing.T) {
	cfg := &Config{}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Server.LogLevel != LogInfo {
		t.Errorf("default LogLevel = %q, want info", cfg.Server.LogLevel)
	}
	if cfg.Storage.Driver != StorageSQLite {
		t.Errorf("default Driver = %q, want sqlite", cfg.Storage.Driver)
	}
	if cfg.Storage.Path == "" {
		t.Error("default sqlite path is empty")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := &Config{Server: ServerConfig{LogLevel: "loud"}}
	if err := Validate(cfg); err == nil {
		t.Fatal("invalid log level was accepted")
	}
}

func TestValidate_PostgresRequiresDSN(t *testing.T) {
	cfg := &Config{Storage: StorageConfig{Driver: StoragePostgres}}
	if err := Validate(cfg); err == nil {
		t.Fatal("postgres without dsn was accepted")
	}
}

func TestValidate_HostedProviderRequiresAPIKey(t *testing.T) {
	cfg := &Config{Providers: ProvidersConfig{
		Suggest: ProviderEntry{Name: "openai"},
	}}
	if err := Validate(cfg); err == nil {
		t.Fatal("openai without api_key was accepted")
	}
}

func TestValidate_AnyllmWithoutAPIKeyIsFine(t *testing.T) {
	cfg := &Config{Providers: ProvidersConfig{
		Suggest: ProviderEntry{Name: "anyllm", Model: "ollama/llama3"},
	}}
	if err := Validate(cfg); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestValidate_VoiceBounds(t *testing.T) {
	tests := []struct {
		name  string
		voice VoiceConfig
		ok    bool
	}{
		{"zero values pass", VoiceConfig{}, true},
		{"speed in range", VoiceConfig{Speed: 1.5, Stability: 0.7}, true},
		{"speed too fast", VoiceConfig{Speed: 2.5}, false},
		{"speed too slow", VoiceConfig{Speed: 0.1}, false},
		{"stability too high", VoiceConfig{Stability: 1.1}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Voice: tt.voice}
			err := Validate(cfg)
			if tt.ok && err != nil {
				t.Errorf("Validate: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("out-of-range voice settings were accepted")
			}
		})
	}
}

func TestValidate_NegativeDebounce(t *testing.T) {
	cfg := &Config{Engine: EngineConfig{DebounceMs: -5}}
	if err := Validate(cfg); err == nil {
		t.Fatal("negative debounce was accepted")
	}
}

func TestValidate_CollectsMultipleErrors(t *testing.T) {
	cfg := &Config{
		Server:  ServerConfig{LogLevel: "loud"},
		Engine:  EngineConfig{DebounceMs: -1},
		Storage: StorageConfig{Driver: "carrier-pigeon"},
	}
	err := Validate(cfg)
	if err == nil {
		t.Fatal("invalid config was accepted")
	}
	msg := err.Error()
	for _, frag := range []string{"log_level", "debounce_ms", "driver"} {
		if !strings.Contains(msg, frag) {
			t.Errorf("joined error is missing %q: %s", frag, msg)
		}
	}
}

func TestVoiceConfig_SettingsMergesDefaults(t *testing.T) {
	v := VoiceConfig{Speed: 1.4}
	s := v.Settings()

	if s.Speed != 1.4 {
		t.Errorf("Speed = %v, want override", s.Speed)
	}
	if s.VoiceID != "H7ZtEYgvMq3Y1gCSSZG4" || s.ModelID != "eleven_flash_v2_5" {
		t.Errorf("defaults not applied: %+v", s)
	}
	if s.Stability != 0.7 {
		t.Errorf("Stability = %v, want default 0.7", s.Stability)
	}
}
