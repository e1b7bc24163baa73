// Command voxkey runs the Voxkey AAC suggestion and speech service.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	anyllmlib "github.com/mozilla-ai/any-llm-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"

	"github.com/voxkey/voxkey/internal/app"
	"github.com/voxkey/voxkey/internal/config"
	"github.com/voxkey/voxkey/internal/health"
	"github.com/voxkey/voxkey/internal/observe"
	"github.com/voxkey/voxkey/internal/resilience"
	"github.com/voxkey/voxkey/pkg/provider/speech"
	"github.com/voxkey/voxkey/pkg/provider/speech/elevenlabs"
	speechmock "github.com/voxkey/voxkey/pkg/provider/speech/mock"
	"github.com/voxkey/voxkey/pkg/provider/suggest"
	"github.com/voxkey/voxkey/pkg/provider/suggest/anyllm"
	suggestmock "github.com/voxkey/voxkey/pkg/provider/suggest/mock"
	"github.com/voxkey/voxkey/pkg/provider/suggest/openai"
	"github.com/voxkey/voxkey/pkg/storage"
)

// version is stamped by the build (-ldflags "-X main.version=...").
var version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "voxkey: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "voxkey: %v\n", err)
		}
		return 1
	}

	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("voxkey starting",
		"version", version,
		"config", *configPath,
		"storage", cfg.Storage.Driver,
		"log_level", cfg.Server.LogLevel,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	shutdownTelemetry, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "voxkey",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()

	metrics, err := observe.NewMetrics(otel.GetMeterProvider())
	if err != nil {
		slog.Error("failed to create metrics", "err", err)
		return 1
	}

	// ── Store ─────────────────────────────────────────────────────────────────
	store, err := app.OpenStore(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to open settings store", "err", err)
		return 1
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Warn("store close error", "err", err)
		}
	}()

	// ── Providers ─────────────────────────────────────────────────────────────
	suggester, breaker, err := buildSuggester(ctx, cfg.Providers.Suggest, store, metrics)
	if err != nil {
		slog.Error("failed to build suggest provider", "err", err)
		return 1
	}
	speaker, err := buildSpeech(cfg.Providers.Speech)
	if err != nil {
		slog.Error("failed to build speech provider", "err", err)
		return 1
	}

	application, err := app.New(ctx, cfg, &app.Providers{Suggest: suggester, Speech: speaker},
		app.WithStore(store),
		app.WithMetrics(metrics),
		app.WithLogger(logger),
	)
	if err != nil {
		slog.Error("failed to initialise application", "err", err)
		return 1
	}
	defer func() {
		if err := application.Shutdown(); err != nil {
			slog.Error("shutdown error", "err", err)
		}
	}()

	// ── Observability server ──────────────────────────────────────────────────
	if cfg.Server.MetricsAddr != "" {
		checkers := []health.Checker{health.StoreChecker(store)}
		if breaker != nil {
			checkers = append(checkers, health.BreakerChecker("suggester", breaker))
		}

		mux := http.NewServeMux()
		mux.Handle("GET /metrics", promhttp.Handler())
		health.New(checkers...).Register(mux)

		srv := &http.Server{
			Addr:              cfg.Server.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			slog.Info("observability server listening", "addr", cfg.Server.MetricsAddr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("observability server error", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				slog.Warn("observability server shutdown error", "err", err)
			}
		}()
	}

	slog.Info("voxkey ready — press Ctrl+C to shut down")
	<-ctx.Done()

	slog.Info("shutdown signal received, stopping…")
	return 0
}

// buildSuggester constructs the configured suggest provider wrapped in a
// circuit breaker. Returns (nil, nil, nil) when no provider is configured.
//
// For the "anyllm" provider the model field selects the backend with a
// "backend/model" syntax, e.g. "ollama/llama3" or "anthropic/claude-sonnet-4-5".
func buildSuggester(ctx context.Context, entry config.ProviderEntry, store storage.Store, metrics *observe.Metrics) (suggest.Provider, *resilience.CircuitBreaker, error) {
	if entry.Name == "" {
		return nil, nil, nil
	}

	history := suggest.NewHistory(ctx, store)

	var inner suggest.Provider
	switch entry.Name {
	case "openai":
		var opts []openai.Option
		if entry.Model != "" {
			opts = append(opts, openai.WithModel(entry.Model))
		}
		if entry.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(entry.BaseURL))
		}
		opts = append(opts, openai.WithHistory(history))
		p, err := openai.New(entry.APIKey, opts...)
		if err != nil {
			return nil, nil, err
		}
		inner = p
	case "anyllm":
		backend, model := splitBackendModel(entry.Model)
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		p, err := anyllm.New(backend, model, history, opts...)
		if err != nil {
			return nil, nil, err
		}
		inner = p
	case "mock":
		inner = &suggestmock.Provider{}
	default:
		return nil, nil, fmt.Errorf("unknown suggest provider %q", entry.Name)
	}

	wrapped := resilience.NewSuggester(inner,
		resilience.CircuitBreakerConfig{Name: entry.Name},
		resilience.WithMetrics(metrics))
	return wrapped, wrapped.Breaker(), nil
}

// buildSpeech constructs the configured speech provider. Returns (nil, nil)
// when none is configured.
func buildSpeech(entry config.ProviderEntry) (speech.Provider, error) {
	switch entry.Name {
	case "":
		return nil, nil
	case "elevenlabs":
		var opts []elevenlabs.Option
		if entry.BaseURL != "" {
			opts = append(opts, elevenlabs.WithBaseURL(entry.BaseURL))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	case "mock":
		return &speechmock.Provider{}, nil
	default:
		return nil, fmt.Errorf("unknown speech provider %q", entry.Name)
	}
}

// splitBackendModel parses "backend/model". A bare model name defaults to
// the openai backend.
func splitBackendModel(s string) (backend, model string) {
	if i := strings.IndexByte(s, '/'); i > 0 {
		return s[:i], s[i+1:]
	}
	return "openai", s
}

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
