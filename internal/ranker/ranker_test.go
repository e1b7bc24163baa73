package ranker_test

import (
	"fmt"
	"testing"

	"github.com/voxkey/voxkey/internal/catalog"
	"github.com/voxkey/voxkey/internal/ranker"
	"github.com/voxkey/voxkey/pkg/types"
)

// phrase builds a phrase-kind event. Events lists are most-recent-first, the
// ledger's native order.
func phrase(text string) types.UsageEvent {
	return types.UsageEvent{Text: text, Kind: types.UsagePhrase}
}

func TestCompute_OrdersByCountDescending(t *testing.T) {
	events := []types.UsageEvent{
		phrase("Yes"),
		phrase("I need help"),
		phrase("Yes"),
		phrase("Thank you"),
		phrase("Yes"),
		phrase("Thank you"),
	}

	got := ranker.Compute(events, catalog.New())
	want := []string{"Yes", "Thank you", "I need help"}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i, text := range want {
		if got[i].Text != text {
			t.Errorf("rank %d = %q, want %q", i, got[i].Text, text)
		}
	}
}

func TestCompute_RecencyBreaksTies(t *testing.T) {
	// "No" and "Yes" are both used once; "No" is more recent (earlier in the
	// most-recent-first list) and must rank first.
	events := []types.UsageEvent{
		phrase("No"),
		phrase("Yes"),
	}

	got := ranker.Compute(events, catalog.New())
	if got[0].Text != "No" || got[1].Text != "Yes" {
		t.Errorf("ranks = [%q, %q], want [No, Yes]", got[0].Text, got[1].Text)
	}
}

func TestCompute_CapsAtTen(t *testing.T) {
	var events []types.UsageEvent
	for i := 0; i < 15; i++ {
		events = append(events, phrase(fmt.Sprintf("phrase %d", i)))
	}

	got := ranker.Compute(events, catalog.New())
	if len(got) != 10 {
		t.Errorf("len = %d, want 10", len(got))
	}
}

func TestCompute_IgnoresNonPhraseKinds(t *testing.T) {
	events := []types.UsageEvent{
		{Text: "free text", Kind: types.UsageCustom},
		{Text: "Need water", Kind: types.UsageSuggestion},
		phrase("Yes"),
	}

	got := ranker.Compute(events, catalog.New())
	if len(got) != 1 || got[0].Text != "Yes" {
		t.Errorf("Compute = %v, want only the phrase-kind event", got)
	}
}

func TestCompute_ResolvesCatalogPhrases(t *testing.T) {
	got := ranker.Compute([]types.UsageEvent{phrase("I need help")}, catalog.New())
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].ID != "1" || got[0].Category != "basic" {
		t.Errorf("resolved phrase = %+v, want catalog entry 1/basic", got[0])
	}
}

func TestCompute_SynthesizesUnknownPhrases(t *testing.T) {
	got := ranker.Compute([]types.UsageEvent{phrase("Turn down the thermostat")}, catalog.New())
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	p := got[0]
	if p.ID != "frequent-Turn down " {
		t.Errorf("ID = %q, want frequent- plus first ten characters", p.ID)
	}
	if p.Category != types.CategoryFrequent {
		t.Errorf("Category = %q, want %q", p.Category, types.CategoryFrequent)
	}
	if p.Text != "Turn down the thermostat" {
		t.Errorf("Text = %q", p.Text)
	}
}

func TestCompute_EmptyLedger(t *testing.T) {
	if got := ranker.Compute(nil, catalog.New()); len(got) != 0 {
		t.Errorf("Compute(nil) = %v, want empty", got)
	}
}
