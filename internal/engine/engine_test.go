package engine_test

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/voxkey/voxkey/internal/catalog"
	"github.com/voxkey/voxkey/internal/engine"
	"github.com/voxkey/voxkey/internal/ledger"
	"github.com/voxkey/voxkey/pkg/provider/suggest/mock"
	"github.com/voxkey/voxkey/pkg/types"
)

// fakeScheduler captures scheduled functions so tests can fire the debounce
// deterministically.
type fakeScheduler struct {
	mu        sync.Mutex
	pending   *func()
	fns       []func()
	scheduled int
	cancelled int
}

func (s *fakeScheduler) Schedule(_ time.Duration, fn func()) (cancel func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduled++
	p := &fn
	s.pending = p
	s.fns = append(s.fns, fn)
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.pending == p {
			s.pending = nil
			s.cancelled++
		}
	}
}

// run invokes the i-th ever-scheduled function directly, the way a real
// timer callback still runs when Stop loses the race against it.
func (s *fakeScheduler) run(i int) {
	s.mu.Lock()
	fn := s.fns[i]
	s.mu.Unlock()
	fn()
}

// Fire runs the pending function, if any.
func (s *fakeScheduler) Fire() bool {
	s.mu.Lock()
	p := s.pending
	s.pending = nil
	s.mu.Unlock()
	if p == nil {
		return false
	}
	(*p)()
	return true
}

func (s *fakeScheduler) counts() (scheduled, cancelled int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduled, s.cancelled
}

// collector returns a listener that forwards published sets to a channel.
func collector() (engine.Listener, chan engine.SuggestionSet) {
	ch := make(chan engine.SuggestionSet, 16)
	return func(set engine.SuggestionSet) { ch <- set }, ch
}

func waitSet(t *testing.T, ch chan engine.SuggestionSet) engine.SuggestionSet {
	t.Helper()
	select {
	case set := <-ch:
		return set
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a suggestion set")
		return engine.SuggestionSet{}
	}
}

func assertNoSet(t *testing.T, ch chan engine.SuggestionSet) {
	t.Helper()
	select {
	case set := <-ch:
		t.Fatalf("unexpected suggestion set published: %+v", set)
	case <-time.After(150 * time.Millisecond):
	}
}

func offline() bool { return false }

func TestAfterSend_OfflinePublishesFollowUps(t *testing.T) {
	ctx := context.Background()
	listener, ch := collector()
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithOnline(offline),
		engine.WithListener(listener),
	)

	eng.AfterSend(ctx, "I'm in pain")

	set := waitSet(t, ch)
	if set.Trigger != engine.TriggerAfterSend {
		t.Errorf("Trigger = %q, want after_send", set.Trigger)
	}
	if set.Remote {
		t.Error("Remote = true on the offline path")
	}
	want := []string{"Where", "Scale 1-10", "Need medicine"}
	if !reflect.DeepEqual(set.Texts, want) {
		t.Errorf("Texts = %v, want %v", set.Texts, want)
	}
}

func TestAfterSend_NeverEmpty(t *testing.T) {
	ctx := context.Background()
	listener, ch := collector()
	// Remote returns an empty list; the rule defaults still fill the set.
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithSuggester(&mock.Provider{}),
		engine.WithListener(listener),
	)

	eng.AfterSend(ctx, "nothing matches this")

	set := waitSet(t, ch)
	if len(set.Texts) == 0 {
		t.Fatal("after-send set is empty")
	}
	want := []string{"Yes", "No", "Need more help", "That's enough"}
	if !reflect.DeepEqual(set.Texts, want) {
		t.Errorf("Texts = %v, want defaults %v", set.Texts, want)
	}
}

func TestAfterSend_MergesRemoteRulesAndLearnedPatterns(t *testing.T) {
	ctx := context.Background()
	led := ledger.New(ctx)
	// A previous "I need help" → "Reposition me" transition to learn from.
	led.Record(ctx, "I need help", types.UsagePhrase)
	led.Record(ctx, "Reposition me", types.UsageSuggestion)

	listener, ch := collector()
	provider := &mock.Provider{
		SuggestResponsesResult: []string{"Remote one", "Remote two"},
	}
	eng := engine.New(catalog.New(), led,
		engine.WithSuggester(provider),
		engine.WithListener(listener),
	)

	eng.AfterSend(ctx, "I need help")

	set := waitSet(t, ch)
	if !set.Remote {
		t.Error("Remote = false, want true")
	}
	// Remote first, then rule follow-ups, capped at five. "Reposition me"
	// appears once even though the learned pattern repeats it.
	want := []string{"Remote one", "Remote two", "Reposition me", "Can't breathe", "Need water"}
	if !reflect.DeepEqual(set.Texts, want) {
		t.Errorf("Texts = %v, want %v", set.Texts, want)
	}
}

func TestAfterSend_RemoteFailureFallsBackToRules(t *testing.T) {
	ctx := context.Background()
	listener, ch := collector()
	provider := &mock.Provider{
		SuggestResponsesErr: errors.New("network down"),
	}
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithSuggester(provider),
		engine.WithListener(listener),
	)

	eng.AfterSend(ctx, "thank you so much")

	set := waitSet(t, ch)
	if set.Remote {
		t.Error("Remote = true after a remote failure")
	}
	want := []string{"Much better", "Appreciate it", "Stay please"}
	if !reflect.DeepEqual(set.Texts, want) {
		t.Errorf("Texts = %v, want %v", set.Texts, want)
	}
}

func TestAfterSend_RecordsUsageKinds(t *testing.T) {
	ctx := context.Background()
	led := ledger.New(ctx)
	listener, ch := collector()
	eng := engine.New(catalog.New(), led,
		engine.WithOnline(offline),
		engine.WithListener(listener),
	)

	// A catalog phrase.
	eng.AfterSend(ctx, "Yes")
	if recent, _ := led.MostRecent(); recent.Kind != types.UsagePhrase {
		t.Errorf("kind = %q, want phrase", recent.Kind)
	}
	_ = waitSet(t, ch)

	// A member of the previously published suggestion set. "Need more help"
	// is a default follow-up that is not a catalog phrase, so the suggestion
	// classification applies.
	eng.AfterSend(ctx, "Need more help")
	if recent, _ := led.MostRecent(); recent.Kind != types.UsageSuggestion {
		t.Errorf("kind = %q, want suggestion", recent.Kind)
	}
	waitSet(t, ch)

	// Free-typed text.
	eng.AfterSend(ctx, "something entirely custom")
	if recent, _ := led.MostRecent(); recent.Kind != types.UsageCustom {
		t.Errorf("kind = %q, want custom", recent.Kind)
	}
}

func TestTypingChanged_DebouncesKeystrokes(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	listener, ch := collector()
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithOnline(offline),
		engine.WithScheduler(sched),
		engine.WithListener(listener),
	)

	eng.TypingChanged(ctx, "I nee")
	eng.TypingChanged(ctx, "I need w")

	scheduled, cancelled := sched.counts()
	if scheduled != 2 || cancelled != 1 {
		t.Errorf("scheduled = %d, cancelled = %d, want 2 and 1", scheduled, cancelled)
	}
	select {
	case set := <-ch:
		t.Fatalf("published before the debounce fired: %+v", set)
	default:
	}

	if !sched.Fire() {
		t.Fatal("no pending trigger to fire")
	}
	set := waitSet(t, ch)
	if set.Trigger != engine.TriggerWhileTyping {
		t.Errorf("Trigger = %q, want while_typing", set.Trigger)
	}
	want := []string{"I need bathroom", "I need repositioning", "I need medicine"}
	if !reflect.DeepEqual(set.Texts, want) {
		t.Errorf("Texts = %v, want %v", set.Texts, want)
	}
}

func TestTypingChanged_BlankOnlyCancelsPending(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	listener, ch := collector()
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithOnline(offline),
		engine.WithScheduler(sched),
		engine.WithListener(listener),
	)

	eng.TypingChanged(ctx, "I nee")
	eng.TypingChanged(ctx, "   ")

	scheduled, cancelled := sched.counts()
	if scheduled != 1 || cancelled != 1 {
		t.Errorf("scheduled = %d, cancelled = %d, want 1 and 1", scheduled, cancelled)
	}
	if sched.Fire() {
		t.Error("a typing trigger survived the blank input")
	}
	assertNoSet(t, ch)
}

func TestTypingCleared_KeepsInFlightSendResult(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	listener, ch := collector()

	entered := make(chan struct{})
	release := make(chan struct{})
	provider := &mock.Provider{
		SuggestResponsesFn: func(context.Context, string) ([]string, error) {
			close(entered)
			<-release
			return []string{"Remote"}, nil
		},
	}
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithSuggester(provider),
		engine.WithScheduler(sched),
		engine.WithListener(listener),
	)

	// A send starts and blocks inside the remote suggestion call.
	eng.AfterSend(ctx, "I need help")
	<-entered

	// The input box is cleared right after sending.
	eng.TypingChanged(ctx, "")
	close(release)

	set := waitSet(t, ch)
	if set.Trigger != engine.TriggerAfterSend {
		t.Fatalf("Trigger = %q, want after_send", set.Trigger)
	}
	if len(set.Texts) == 0 {
		t.Fatal("after-send set is empty")
	}
	if current := eng.Current(); current.Trigger != engine.TriggerAfterSend {
		t.Errorf("Current().Trigger = %q, clearing the input discarded the send result", current.Trigger)
	}
}

func TestCancelledTimerDoesNotClobberItsReplacement(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	listener, ch := collector()
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithOnline(offline),
		engine.WithScheduler(sched),
		engine.WithListener(listener),
	)

	eng.TypingChanged(ctx, "I nee")
	eng.TypingChanged(ctx, "I need w")

	// The first timer's callback runs anyway, as happens when the keystroke's
	// Stop races against a timer that already started firing. It no longer
	// owns the pending slot and must neither publish nor unregister the
	// second timer.
	sched.run(0)
	assertNoSet(t, ch)

	// The next keystroke can still cancel the second timer.
	eng.TypingChanged(ctx, "I need wa")
	scheduled, cancelled := sched.counts()
	if scheduled != 3 || cancelled != 2 {
		t.Errorf("scheduled = %d, cancelled = %d, want 3 and 2", scheduled, cancelled)
	}

	if !sched.Fire() {
		t.Fatal("no pending trigger to fire")
	}
	set := waitSet(t, ch)
	want := []string{"I need bathroom", "I need repositioning", "I need medicine"}
	if !reflect.DeepEqual(set.Texts, want) {
		t.Errorf("Texts = %v, want %v", set.Texts, want)
	}
}

func TestTypingChanged_UnmatchedPartialMayBeEmpty(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	listener, ch := collector()
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithOnline(offline),
		engine.WithScheduler(sched),
		engine.WithListener(listener),
	)

	eng.TypingChanged(ctx, "zzzz")
	sched.Fire()

	set := waitSet(t, ch)
	if len(set.Texts) != 0 {
		t.Errorf("Texts = %v, want empty for an unmatched partial", set.Texts)
	}
}

func TestTypingChanged_MergesCompletionLocalAndRemote(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	listener, ch := collector()
	provider := &mock.Provider{
		CompleteResult:         "I need water please",
		SuggestResponsesResult: []string{"Yes", "No"},
	}
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithSuggester(provider),
		engine.WithScheduler(sched),
		engine.WithListener(listener),
	)

	eng.TypingChanged(ctx, "I need wat")
	sched.Fire()

	set := waitSet(t, ch)
	if !set.Remote {
		t.Error("Remote = false, want true")
	}
	want := []string{"I need water please", "I need bathroom", "I need repositioning", "I need medicine", "Yes"}
	if !reflect.DeepEqual(set.Texts, want) {
		t.Errorf("Texts = %v, want %v", set.Texts, want)
	}
}

func TestTypingChanged_DedupesRemoteAgainstCompletion(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	listener, ch := collector()
	provider := &mock.Provider{
		CompleteResult:         "Yes please",
		SuggestResponsesResult: []string{"Yes please", "No"},
	}
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithSuggester(provider),
		engine.WithScheduler(sched),
		engine.WithListener(listener),
	)

	eng.TypingChanged(ctx, "zzzzz")
	sched.Fire()

	set := waitSet(t, ch)
	want := []string{"Yes please", "No"}
	if !reflect.DeepEqual(set.Texts, want) {
		t.Errorf("Texts = %v, want %v", set.Texts, want)
	}
}

func TestTypingChanged_RemoteFailureUsesLocalCompletions(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	listener, ch := collector()
	provider := &mock.Provider{
		CompleteErr:            errors.New("network down"),
		SuggestResponsesResult: []string{"Yes"},
	}
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithSuggester(provider),
		engine.WithScheduler(sched),
		engine.WithListener(listener),
	)

	eng.TypingChanged(ctx, "please hel")
	sched.Fire()

	set := waitSet(t, ch)
	if set.Remote {
		t.Error("Remote = true after a remote failure")
	}
	want := []string{"Please help sit up", "Please adjust blanket", "Please stay"}
	if !reflect.DeepEqual(set.Texts, want) {
		t.Errorf("Texts = %v, want %v", set.Texts, want)
	}
}

func TestStaleTypingResultIsDropped(t *testing.T) {
	ctx := context.Background()
	sched := &fakeScheduler{}
	listener, ch := collector()

	entered := make(chan struct{})
	release := make(chan struct{})
	provider := &mock.Provider{
		CompleteFn: func(context.Context, string) (string, error) {
			close(entered)
			<-release
			return "I need water please", nil
		},
		SuggestResponsesResult: []string{"Remote"},
	}
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithSuggester(provider),
		engine.WithScheduler(sched),
		engine.WithListener(listener),
	)

	// A typing trigger starts and blocks inside the remote completion call.
	eng.TypingChanged(ctx, "I need wat")
	go sched.Fire()
	<-entered

	// A send happens while the typing computation is still in flight.
	eng.AfterSend(ctx, "Yes")
	set := waitSet(t, ch)
	if set.Trigger != engine.TriggerAfterSend {
		t.Fatalf("Trigger = %q, want after_send", set.Trigger)
	}

	// Unblocking the stale typing computation must not publish anything.
	close(release)
	assertNoSet(t, ch)

	if current := eng.Current(); current.Trigger != engine.TriggerAfterSend {
		t.Errorf("Current().Trigger = %q, the stale result replaced the newer set", current.Trigger)
	}
}

func TestCurrent_ReturnsCopy(t *testing.T) {
	ctx := context.Background()
	listener, ch := collector()
	eng := engine.New(catalog.New(), ledger.New(ctx),
		engine.WithOnline(offline),
		engine.WithListener(listener),
	)

	eng.AfterSend(ctx, "I'm thirsty")
	waitSet(t, ch)

	got := eng.Current()
	got.Texts[0] = "tampered"
	if eng.Current().Texts[0] == "tampered" {
		t.Error("engine state mutated through Current()")
	}
}
