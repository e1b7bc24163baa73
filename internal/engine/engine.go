// Package engine computes context-aware message suggestions.
//
// The engine reacts to two triggers from the presentation layer: a message
// being sent (follow-up responses the conversation partner is likely to need
// next) and the composition text changing (completions of the partial
// message). Typing triggers are debounced so that remote providers are not
// called on every keystroke.
//
// When a remote suggester is configured and the device is online, remote
// results are merged with rule-based follow-ups and learned usage patterns.
// Any remote failure silently degrades to the local rules; suggestion
// computation never surfaces an error to the user.
//
// Concurrent triggers resolve by last-trigger-wins: each trigger takes a
// monotonically increasing sequence number, and a result is dropped at
// publish time if a newer trigger has started since. Stale results are never
// merged into newer ones.
package engine

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"golang.org/x/sync/errgroup"

	"github.com/voxkey/voxkey/internal/catalog"
	"github.com/voxkey/voxkey/internal/ledger"
	"github.com/voxkey/voxkey/internal/observe"
	"github.com/voxkey/voxkey/internal/rules"
	"github.com/voxkey/voxkey/pkg/provider/suggest"
	"github.com/voxkey/voxkey/pkg/types"
)

// DefaultDebounce is the pause after the last keystroke before a typing
// trigger fires.
const DefaultDebounce = 1200 * time.Millisecond

// relatedLimit caps how many learned usage patterns are merged into a
// suggestion set.
const relatedLimit = 2

// Trigger identifies which user action produced a suggestion set.
type Trigger string

const (
	TriggerAfterSend   Trigger = "after_send"
	TriggerWhileTyping Trigger = "while_typing"
)

// SuggestionSet is one published batch of suggestions. A new set replaces
// the previous one entirely; sets are never merged.
type SuggestionSet struct {
	// Trigger is the user action that produced this set.
	Trigger Trigger

	// Texts holds at most [suggest.MaxSuggestions] distinct suggestion
	// strings in presentation order. After-send sets are never empty;
	// while-typing sets may be.
	Texts []string

	// Remote reports whether a remote provider contributed to this set.
	Remote bool
}

// Listener receives each newly published [SuggestionSet]. It is invoked
// synchronously from the publishing goroutine and must not block.
type Listener func(SuggestionSet)

// Engine turns send and typing events into suggestion sets.
type Engine struct {
	catalog   *catalog.Catalog
	ledger    *ledger.Ledger
	suggester suggest.Provider
	scheduler Scheduler
	online    func() bool
	debounce  time.Duration
	listener  Listener
	logger    *slog.Logger
	metrics   *observe.Metrics

	mu            sync.Mutex
	seq           uint64
	last          SuggestionSet
	cancelPending func()
	pendingGen    uint64
}

// Option configures an [Engine].
type Option func(*Engine)

// WithSuggester sets the remote suggestion provider. Without one the engine
// serves rule-based suggestions only.
func WithSuggester(p suggest.Provider) Option {
	return func(e *Engine) { e.suggester = p }
}

// WithScheduler replaces the debounce scheduler. Tests use this to fire
// typing triggers deterministically.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithOnline sets the connectivity probe consulted before each remote call.
func WithOnline(fn func() bool) Option {
	return func(e *Engine) { e.online = fn }
}

// WithDebounce overrides [DefaultDebounce].
func WithDebounce(d time.Duration) Option {
	return func(e *Engine) { e.debounce = d }
}

// WithListener registers the suggestion consumer.
func WithListener(fn Listener) Option {
	return func(e *Engine) { e.listener = fn }
}

// WithLogger sets the structured logger. Defaults to [slog.Default].
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithMetrics enables metric recording.
func WithMetrics(m *observe.Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// New creates an [Engine] over the given phrase catalog and usage ledger.
func New(cat *catalog.Catalog, led *ledger.Ledger, opts ...Option) *Engine {
	e := &Engine{
		catalog:   cat,
		ledger:    led,
		scheduler: TimerScheduler{},
		online:    func() bool { return true },
		debounce:  DefaultDebounce,
		listener:  func(SuggestionSet) {},
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Current returns the most recently published suggestion set.
func (e *Engine) Current() SuggestionSet {
	e.mu.Lock()
	defer e.mu.Unlock()
	return SuggestionSet{
		Trigger: e.last.Trigger,
		Texts:   append([]string(nil), e.last.Texts...),
		Remote:  e.last.Remote,
	}
}

// AfterSend records the sent text in the usage ledger and computes follow-up
// suggestions asynchronously. The published set is never empty: the rule
// table has a default follow-up list for unmatched utterances.
//
// The event kind is derived from where the text came from: a catalog phrase,
// a member of the previously published suggestion set, or free-typed custom
// text.
func (e *Engine) AfterSend(ctx context.Context, text string) {
	e.mu.Lock()
	e.cancelPendingLocked()
	kind := e.classifyLocked(text)
	seq := e.nextSeqLocked()
	e.mu.Unlock()

	e.ledger.Record(ctx, text, kind)
	if e.metrics != nil {
		e.metrics.LedgerEvents.Record(ctx, int64(e.ledger.Len()))
	}

	go e.computeAfterSend(ctx, seq, text)
}

// TypingChanged reacts to a change of the composition text. Each call
// cancels any pending typing trigger; non-blank text schedules a new one
// after the debounce interval. Blank text only cancels: clearing the input
// must not outrank a send that is still computing its follow-ups.
func (e *Engine) TypingChanged(ctx context.Context, partial string) {
	e.mu.Lock()
	e.cancelPendingLocked()

	if strings.TrimSpace(partial) == "" {
		e.mu.Unlock()
		return
	}

	gen := e.pendingGen
	e.cancelPending = e.scheduler.Schedule(e.debounce, func() {
		e.mu.Lock()
		// A timer whose generation has been superseded was cancelled while
		// already firing. It no longer owns the pending slot and must not
		// compute for its stale partial.
		if e.pendingGen != gen {
			e.mu.Unlock()
			return
		}
		e.cancelPending = nil
		seq := e.nextSeqLocked()
		e.mu.Unlock()
		e.computeWhileTyping(ctx, seq, partial)
	})
	e.mu.Unlock()
}

// cancelPendingLocked cancels any pending typing trigger and advances the
// timer generation so a cancelled timer that already started firing returns
// without effect. Callers must hold e.mu.
func (e *Engine) cancelPendingLocked() {
	if e.cancelPending != nil {
		e.cancelPending()
		e.cancelPending = nil
	}
	e.pendingGen++
}

// classifyLocked determines the usage kind of a sent text. Callers must hold
// e.mu.
func (e *Engine) classifyLocked(text string) types.UsageKind {
	if e.catalog.Contains(text) {
		return types.UsagePhrase
	}
	for _, s := range e.last.Texts {
		if s == text {
			return types.UsageSuggestion
		}
	}
	return types.UsageCustom
}

// nextSeqLocked claims the next trigger sequence number. Callers must hold
// e.mu.
func (e *Engine) nextSeqLocked() uint64 {
	e.seq++
	return e.seq
}

func (e *Engine) computeAfterSend(ctx context.Context, seq uint64, text string) {
	start := time.Now()
	followUps := rules.FollowUpsFor(text)

	set := SuggestionSet{Trigger: TriggerAfterSend, Texts: followUps}
	if e.online() && e.suggester != nil {
		remote, err := e.suggester.SuggestResponses(ctx, text)
		if err != nil {
			e.logger.Warn("remote suggestions failed, using local rules",
				"trigger", TriggerAfterSend, "error", err)
		} else {
			related := eventTexts(e.ledger.FindByPreviousText(text), relatedLimit)
			set.Texts = orderedUnion(remote, followUps, related)
			set.Remote = true
		}
	}

	e.recordDuration(ctx, TriggerAfterSend, start)
	e.publish(ctx, seq, set)
}

func (e *Engine) computeWhileTyping(ctx context.Context, seq uint64, partial string) {
	start := time.Now()
	localCompletions := rules.CompletionsFor(partial)

	set := SuggestionSet{Trigger: TriggerWhileTyping, Texts: capTexts(localCompletions)}
	if e.online() && e.suggester != nil {
		var completed string
		var remote []string

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			completed, err = e.suggester.Complete(gctx, partial)
			return err
		})
		g.Go(func() error {
			var err error
			remote, err = e.suggester.SuggestResponses(gctx, partial)
			return err
		})

		if err := g.Wait(); err != nil {
			e.logger.Warn("remote suggestions failed, using local rules",
				"trigger", TriggerWhileTyping, "error", err)
		} else {
			similar := eventTexts(e.ledger.FindSimilar(partial), relatedLimit)

			var head []string
			if strings.TrimSpace(completed) != "" {
				head = []string{strings.TrimSpace(completed)}
			}
			set.Texts = orderedUnion(head, localCompletions, remote, similar)
			set.Remote = true
		}
	}

	e.recordDuration(ctx, TriggerWhileTyping, start)
	e.publish(ctx, seq, set)
}

// publish installs the set as current and notifies the listener, unless a
// newer trigger has started since seq was claimed. Stale sets are dropped
// whole.
func (e *Engine) publish(ctx context.Context, seq uint64, set SuggestionSet) {
	e.mu.Lock()
	if seq != e.seq {
		e.mu.Unlock()
		if e.metrics != nil {
			e.metrics.StaleResultsDropped.Add(ctx, 1)
		}
		e.logger.Debug("dropping stale suggestion set",
			"trigger", set.Trigger, "seq", seq)
		return
	}
	e.last = set
	listener := e.listener
	e.mu.Unlock()

	if e.metrics != nil {
		source := "local"
		if set.Remote {
			source = "remote"
		}
		e.metrics.SuggestionsPublished.Add(ctx, 1,
			metric.WithAttributes(
				attribute.String("trigger", string(set.Trigger)),
				attribute.String("source", source),
			))
	}
	listener(set)
}

func (e *Engine) recordDuration(ctx context.Context, trigger Trigger, start time.Time) {
	if e.metrics == nil {
		return
	}
	e.metrics.SuggestionDuration.Record(ctx, time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("trigger", string(trigger))))
}

// orderedUnion merges the groups in order, keeping the first occurrence of
// each distinct text and stopping at [suggest.MaxSuggestions].
func orderedUnion(groups ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0, suggest.MaxSuggestions)
	for _, group := range groups {
		for _, text := range group {
			if _, dup := seen[text]; dup {
				continue
			}
			seen[text] = struct{}{}
			out = append(out, text)
			if len(out) == suggest.MaxSuggestions {
				return out
			}
		}
	}
	return out
}

// capTexts copies texts, truncated to [suggest.MaxSuggestions].
func capTexts(texts []string) []string {
	if len(texts) > suggest.MaxSuggestions {
		texts = texts[:suggest.MaxSuggestions]
	}
	return append([]string(nil), texts...)
}

// eventTexts extracts up to limit distinct texts from ledger events, most
// recent first.
func eventTexts(events []types.UsageEvent, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{})
	for _, ev := range events {
		if _, dup := seen[ev.Text]; dup {
			continue
		}
		seen[ev.Text] = struct{}{}
		out = append(out, ev.Text)
		if len(out) == limit {
			break
		}
	}
	return out
}
