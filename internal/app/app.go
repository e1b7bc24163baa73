// Package app wires the Voxkey subsystems into a running application.
//
// The App struct owns the full lifecycle: New creates and connects the
// catalog, ledger, suggestion engine and providers, and Shutdown tears them
// down in order. The presentation layer (CLI, web frontend, device shell)
// talks to App only.
//
// For testing, inject mock implementations via functional options
// (WithStore, WithScheduler, etc.). When an option is not provided, New
// creates real implementations from the config.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/voxkey/voxkey/internal/catalog"
	"github.com/voxkey/voxkey/internal/config"
	"github.com/voxkey/voxkey/internal/engine"
	"github.com/voxkey/voxkey/internal/ledger"
	"github.com/voxkey/voxkey/internal/observe"
	"github.com/voxkey/voxkey/internal/ranker"
	"github.com/voxkey/voxkey/pkg/provider/speech"
	"github.com/voxkey/voxkey/pkg/provider/suggest"
	"github.com/voxkey/voxkey/pkg/storage"
	"github.com/voxkey/voxkey/pkg/types"
)

// historyLimit caps the persisted spoken-message history.
const historyLimit = 20

// ErrEmptyMessage is returned by [App.Send] for blank input.
var ErrEmptyMessage = errors.New("app: message is empty")

// ErrNoHistory is returned by [App.RepeatLast] when nothing has been spoken.
var ErrNoHistory = errors.New("app: no spoken message to repeat")

// Providers holds one interface value per provider slot. Nil means the
// provider is not configured. Populated by main.go from the config.
type Providers struct {
	Suggest suggest.Provider
	Speech  speech.Provider
}

// VoiceSettingsPatch is a partial update for [App.UpdateVoiceSettings]. Nil
// fields keep their current value.
type VoiceSettingsPatch struct {
	VoiceID      *string
	ModelID      *string
	OutputFormat *string
	Speed        *float64
	Stability    *float64
}

// App owns all subsystem lifetimes.
type App struct {
	cfg       *config.Config
	providers *Providers

	store   storage.Store
	catalog *catalog.Catalog
	ledger  *ledger.Ledger
	engine  *engine.Engine

	scheduler engine.Scheduler
	listener  engine.Listener
	logger    *slog.Logger
	metrics   *observe.Metrics

	mu        sync.Mutex
	voice     types.VoiceSettings
	history   []string
	muted     bool
	online    bool
	frequent  []types.Phrase
	lastSpoke string

	closers  []func() error
	stopOnce sync.Once
}

// Option is a functional option for New. Use these to inject test doubles.
type Option func(*App)

// WithStore injects a settings store instead of creating one from config.
// The injected store is not closed by Shutdown.
func WithStore(s storage.Store) Option {
	return func(a *App) { a.store = s }
}

// WithScheduler injects the engine's debounce scheduler.
func WithScheduler(s engine.Scheduler) Option {
	return func(a *App) { a.scheduler = s }
}

// WithSuggestionListener registers the consumer of published suggestion sets.
func WithSuggestionListener(fn engine.Listener) Option {
	return func(a *App) { a.listener = fn }
}

// WithLogger sets the structured logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(a *App) { a.logger = l }
}

// WithMetrics enables metric recording.
func WithMetrics(m *observe.Metrics) Option {
	return func(a *App) { a.metrics = m }
}

// New creates an App by wiring all subsystems together. The providers struct
// comes from main.go. Persisted state (voice settings, spoken history, mute
// flag, usage ledger) is loaded from the store before New returns.
func New(ctx context.Context, cfg *config.Config, providers *Providers, opts ...Option) (*App, error) {
	if providers == nil {
		providers = &Providers{}
	}
	a := &App{
		cfg:       cfg,
		providers: providers,
		catalog:   catalog.New(),
		scheduler: engine.TimerScheduler{},
		listener:  func(engine.SuggestionSet) {},
		logger:    slog.Default(),
		online:    !cfg.Engine.Offline,
	}
	for _, o := range opts {
		o(a)
	}

	if a.store == nil {
		store, err := OpenStore(ctx, cfg.Storage)
		if err != nil {
			return nil, err
		}
		a.store = store
		a.closers = append(a.closers, store.Close)
	}

	a.ledger = ledger.New(ctx,
		ledger.WithStore(a.store),
		ledger.WithChangeListener(a.onLedgerChange),
	)
	a.frequent = ranker.Compute(a.ledger.Events(), a.catalog)

	debounce := engine.DefaultDebounce
	if cfg.Engine.DebounceMs > 0 {
		debounce = time.Duration(cfg.Engine.DebounceMs) * time.Millisecond
	}
	a.engine = engine.New(a.catalog, a.ledger,
		engine.WithSuggester(providers.Suggest),
		engine.WithScheduler(a.scheduler),
		engine.WithOnline(a.Online),
		engine.WithDebounce(debounce),
		engine.WithListener(a.listener),
		engine.WithLogger(a.logger),
		engine.WithMetrics(a.metrics),
	)

	a.loadState(ctx)
	return a, nil
}

// loadState restores voice settings, spoken history and the mute flag from
// the store. Corrupt or missing values fall back to defaults.
func (a *App) loadState(ctx context.Context) {
	a.voice = a.cfg.Voice.Settings()
	if raw, ok, err := a.store.Get(ctx, storage.KeyVoiceSettings); err == nil && ok {
		var vs types.VoiceSettings
		if err := json.Unmarshal([]byte(raw), &vs); err != nil {
			a.logger.Warn("discarding corrupt voice settings", "error", err)
		} else {
			a.voice = vs
		}
	}

	if raw, ok, err := a.store.Get(ctx, storage.KeyMessageHistory); err == nil && ok {
		var hist []string
		if err := json.Unmarshal([]byte(raw), &hist); err != nil {
			a.logger.Warn("discarding corrupt spoken history", "error", err)
		} else {
			if len(hist) > historyLimit {
				hist = hist[:historyLimit]
			}
			a.history = hist
			if len(hist) > 0 {
				a.lastSpoke = hist[0]
			}
		}
	}

	if raw, ok, err := a.store.Get(ctx, storage.KeyMuted); err == nil && ok {
		a.muted = raw == "true"
	}
}

// Send speaks text and records its usage. The returned bytes are the
// synthesised audio; nil when muted or when no speech provider is
// configured. Synthesis failures are returned to the caller — the one error
// class the user sees — and nothing is recorded for the failed send.
func (a *App) Send(ctx context.Context, text string) ([]byte, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyMessage
	}

	var audio []byte
	a.mu.Lock()
	muted := a.muted
	settings := a.voice
	a.mu.Unlock()

	if !muted && a.providers.Speech != nil {
		start := time.Now()
		var err error
		audio, err = a.providers.Speech.Synthesize(ctx, text, settings)
		if a.metrics != nil {
			a.metrics.SpeakDuration.Record(ctx, time.Since(start).Seconds())
		}
		if err != nil {
			return nil, fmt.Errorf("app: speak %q: %w", text, err)
		}
	}

	a.recordSpoken(ctx, text)
	a.engine.AfterSend(ctx, text)
	return audio, nil
}

// TypingChanged forwards a composition-text change to the suggestion engine.
func (a *App) TypingChanged(ctx context.Context, partial string) {
	a.engine.TypingChanged(ctx, partial)
}

// RepeatLast re-speaks the most recent spoken message.
func (a *App) RepeatLast(ctx context.Context) ([]byte, error) {
	a.mu.Lock()
	last := a.lastSpoke
	a.mu.Unlock()
	if last == "" {
		return nil, ErrNoHistory
	}
	return a.Send(ctx, last)
}

// recordSpoken prepends text to the spoken history, trims it to
// [historyLimit], and persists it.
func (a *App) recordSpoken(ctx context.Context, text string) {
	a.mu.Lock()
	a.history = append([]string{text}, a.history...)
	if len(a.history) > historyLimit {
		a.history = a.history[:historyLimit]
	}
	a.lastSpoke = text
	snapshot := append([]string(nil), a.history...)
	a.mu.Unlock()

	a.persistJSON(ctx, storage.KeyMessageHistory, snapshot)
}

// History returns the spoken messages, newest first.
func (a *App) History() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.history...)
}

// ClearHistory drops the spoken history. The usage ledger is unaffected.
func (a *App) ClearHistory(ctx context.Context) {
	a.mu.Lock()
	a.history = nil
	a.lastSpoke = ""
	a.mu.Unlock()

	if err := a.store.Delete(ctx, storage.KeyMessageHistory); err != nil {
		a.logger.Warn("failed to clear spoken history", "error", err)
	}
}

// Muted reports the mute flag.
func (a *App) Muted() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.muted
}

// SetMuted sets and persists the mute flag. Muted sends skip synthesis but
// still record usage and refresh suggestions.
func (a *App) SetMuted(ctx context.Context, muted bool) {
	a.mu.Lock()
	a.muted = muted
	a.mu.Unlock()

	value := "false"
	if muted {
		value = "true"
	}
	if err := a.store.Set(ctx, storage.KeyMuted, value); err != nil {
		a.logger.Warn("failed to persist mute flag", "error", err)
	}
}

// Online reports the connectivity flag consulted by the suggestion engine.
func (a *App) Online() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.online
}

// SetOnline updates the connectivity flag. The presentation layer calls this
// from its platform's connectivity events.
func (a *App) SetOnline(online bool) {
	a.mu.Lock()
	a.online = online
	a.mu.Unlock()
	a.logger.Info("connectivity changed", "online", online)
}

// VoiceSettings returns the current speech synthesis settings.
func (a *App) VoiceSettings() types.VoiceSettings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.voice
}

// UpdateVoiceSettings applies a partial update, validates the result and
// persists it. On a validation error nothing changes.
func (a *App) UpdateVoiceSettings(ctx context.Context, patch VoiceSettingsPatch) (types.VoiceSettings, error) {
	a.mu.Lock()
	next := a.voice
	if patch.VoiceID != nil {
		next.VoiceID = *patch.VoiceID
	}
	if patch.ModelID != nil {
		next.ModelID = *patch.ModelID
	}
	if patch.OutputFormat != nil {
		next.OutputFormat = *patch.OutputFormat
	}
	if patch.Speed != nil {
		next.Speed = *patch.Speed
	}
	if patch.Stability != nil {
		next.Stability = *patch.Stability
	}

	if next.Speed < config.MinSpeed || next.Speed > config.MaxSpeed {
		a.mu.Unlock()
		return types.VoiceSettings{}, fmt.Errorf("app: voice speed %v is outside [%v, %v]", next.Speed, config.MinSpeed, config.MaxSpeed)
	}
	if next.Stability < config.MinStability || next.Stability > config.MaxStability {
		a.mu.Unlock()
		return types.VoiceSettings{}, fmt.Errorf("app: voice stability %v is outside [%v, %v]", next.Stability, config.MinStability, config.MaxStability)
	}
	a.voice = next
	a.mu.Unlock()

	a.persistJSON(ctx, storage.KeyVoiceSettings, next)
	return next, nil
}

// FrequentPhrases returns the most used catalog phrases, recomputed on every
// ledger change.
func (a *App) FrequentPhrases() []types.Phrase {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]types.Phrase(nil), a.frequent...)
}

// Catalog exposes the phrase catalog for the presentation layer.
func (a *App) Catalog() *catalog.Catalog {
	return a.catalog
}

// Suggestions returns the most recently published suggestion set.
func (a *App) Suggestions() engine.SuggestionSet {
	return a.engine.Current()
}

// Shutdown tears down subsystems in reverse construction order. Safe to call
// more than once.
func (a *App) Shutdown() error {
	var err error
	a.stopOnce.Do(func() {
		var errs []error
		for i := len(a.closers) - 1; i >= 0; i-- {
			if e := a.closers[i](); e != nil {
				errs = append(errs, e)
			}
		}
		err = errors.Join(errs...)
	})
	return err
}

func (a *App) onLedgerChange(events []types.UsageEvent) {
	frequent := ranker.Compute(events, a.catalog)
	a.mu.Lock()
	a.frequent = frequent
	a.mu.Unlock()
}

// persistJSON marshals v under key, logging and swallowing failures so that
// persistence trouble never interrupts the user.
func (a *App) persistJSON(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		a.logger.Warn("failed to encode state", "key", key, "error", err)
		return
	}
	if err := a.store.Set(ctx, key, string(raw)); err != nil {
		a.logger.Warn("failed to persist state", "key", key, "error", err)
	}
}
