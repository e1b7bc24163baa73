// Package ledger maintains the bounded, most-recent-first log of utterance
// events that the suggestion engine learns from. Each recorded event links to
// the text of the event that preceded it, forming a transition chain the
// engine uses to recall what the user typically says after a given utterance.
package ledger

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/voxkey/voxkey/pkg/storage"
	"github.com/voxkey/voxkey/pkg/types"
)

// maxEvents caps the ledger length. The oldest event (by insertion order, not
// timestamp) is evicted when a Record call would exceed it.
const maxEvents = 100

// similarMinLength is the minimum partial-text length before FindSimilar
// matches anything. Shorter fragments match too much to be useful.
const similarMinLength = 3

// Ledger is the append-only (prepend, really — index 0 is always the newest
// event) usage log. All methods are safe for concurrent use.
type Ledger struct {
	mu     sync.RWMutex
	events []types.UsageEvent

	store    storage.Store
	onChange func([]types.UsageEvent)
	now      func() time.Time
}

// Option is a functional option for [New].
type Option func(*Ledger)

// WithStore makes the ledger persist itself through store after every Record
// call, and load any previously persisted events at construction time.
func WithStore(store storage.Store) Option {
	return func(l *Ledger) { l.store = store }
}

// WithChangeListener registers fn to be called synchronously after every
// Record call, with a snapshot of the updated ledger. Record does not return
// until fn does, so consumers reading derived views immediately afterwards
// see an up-to-date projection.
func WithChangeListener(fn func([]types.UsageEvent)) Option {
	return func(l *Ledger) { l.onChange = fn }
}

// WithClock overrides the timestamp source. Intended for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// New creates a Ledger. When a store is configured, previously persisted
// events are loaded; a load failure is logged and the ledger starts empty
// rather than failing construction.
func New(ctx context.Context, opts ...Option) *Ledger {
	l := &Ledger{now: time.Now}
	for _, o := range opts {
		o(l)
	}
	if l.store != nil {
		l.load(ctx)
	}
	return l
}

// Record builds a new [types.UsageEvent] for text, prepends it, and evicts the
// oldest event if the ledger would exceed its cap. It never fails: persistence
// errors are logged and swallowed so that recording can never block a send.
//
// The change listener (if any) runs synchronously before Record returns.
func (l *Ledger) Record(ctx context.Context, text string, kind types.UsageKind) types.UsageEvent {
	l.mu.Lock()

	event := types.UsageEvent{
		Text:      text,
		Timestamp: l.now().UTC().Format(time.RFC3339),
		Kind:      kind,
	}
	if len(l.events) > 0 {
		event.PreviousText = l.events[0].Text
	}

	l.events = append([]types.UsageEvent{event}, l.events...)
	if len(l.events) > maxEvents {
		l.events = l.events[:maxEvents]
	}

	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	l.persist(ctx, snapshot)
	if l.onChange != nil {
		l.onChange(snapshot)
	}
	return event
}

// MostRecent returns the newest event, or ok=false when the ledger is empty.
func (l *Ledger) MostRecent() (types.UsageEvent, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.events) == 0 {
		return types.UsageEvent{}, false
	}
	return l.events[0], true
}

// FindByPreviousText returns all events whose PreviousText equals text,
// most-recent-first. Callers cap the result themselves (the engine keeps the
// first two).
func (l *Ledger) FindByPreviousText(text string) []types.UsageEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []types.UsageEvent
	for _, e := range l.events {
		if e.PreviousText == text {
			out = append(out, e)
		}
	}
	return out
}

// FindSimilar returns events whose text case-insensitively contains partial,
// most-recent-first. Partials of three characters or fewer match nothing.
func (l *Ledger) FindSimilar(partial string) []types.UsageEvent {
	if len(partial) <= similarMinLength {
		return nil
	}
	needle := strings.ToLower(partial)

	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []types.UsageEvent
	for _, e := range l.events {
		if strings.Contains(strings.ToLower(e.Text), needle) {
			out = append(out, e)
		}
	}
	return out
}

// Events returns a snapshot of the ledger, most-recent-first.
func (l *Ledger) Events() []types.UsageEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

// Len returns the current ledger length.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// snapshotLocked copies the event slice. Must be called with l.mu held.
func (l *Ledger) snapshotLocked() []types.UsageEvent {
	out := make([]types.UsageEvent, len(l.events))
	copy(out, l.events)
	return out
}

// persist serialises snapshot to the configured store, if any.
func (l *Ledger) persist(ctx context.Context, snapshot []types.UsageEvent) {
	if l.store == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("ledger: marshal events", "err", err)
		return
	}
	if err := l.store.Set(ctx, storage.KeyUsagePatterns, string(data)); err != nil {
		slog.Warn("ledger: persist events", "err", err)
	}
}

// load restores persisted events. Corrupt or missing data leaves the ledger
// empty.
func (l *Ledger) load(ctx context.Context) {
	raw, ok, err := l.store.Get(ctx, storage.KeyUsagePatterns)
	if err != nil {
		slog.Warn("ledger: load events", "err", err)
		return
	}
	if !ok {
		return
	}
	var events []types.UsageEvent
	if err := json.Unmarshal([]byte(raw), &events); err != nil {
		slog.Warn("ledger: parse persisted events", "err", err)
		return
	}
	if len(events) > maxEvents {
		events = events[:maxEvents]
	}
	l.events = events
}
