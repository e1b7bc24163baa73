package suggest

import (
	"context"
	"fmt"
	"testing"

	"github.com/voxkey/voxkey/pkg/storage"
	"github.com/voxkey/voxkey/pkg/storage/memstore"
)

func TestHistory_TrimsToLimit(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(ctx, nil)

	for i := 0; i < 14; i++ {
		h.Append(ctx, "user", fmt.Sprintf("message %d", i))
	}

	if h.Len() != historyLimit {
		t.Errorf("Len() = %d, want %d", h.Len(), historyLimit)
	}
}

func TestHistory_RecentWindow(t *testing.T) {
	ctx := context.Background()
	h := NewHistory(ctx, nil)

	for i := 0; i < 8; i++ {
		h.Append(ctx, "user", fmt.Sprintf("message %d", i))
	}

	recent := h.Recent()
	if len(recent) != recentWindow {
		t.Fatalf("len(Recent()) = %d, want %d", len(recent), recentWindow)
	}
	// Oldest of the window first.
	if recent[0].Content != "message 3" || recent[4].Content != "message 7" {
		t.Errorf("window = [%q .. %q], want [message 3 .. message 7]",
			recent[0].Content, recent[4].Content)
	}
}

func TestHistory_PersistsAndReloads(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()

	h := NewHistory(ctx, store)
	h.Append(ctx, "user", "I'm thirsty")
	h.Append(ctx, "assistant", "With straw")

	reloaded := NewHistory(ctx, store)
	if reloaded.Len() != 2 {
		t.Fatalf("reloaded Len() = %d, want 2", reloaded.Len())
	}
	recent := reloaded.Recent()
	if recent[0].Role != "user" || recent[1].Content != "With straw" {
		t.Errorf("reloaded window = %v", recent)
	}
}

func TestNewHistory_ToleratesCorruptData(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	if err := store.Set(ctx, storage.KeyRecentMessages, "[broken"); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(ctx, store)
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after corrupt load", h.Len())
	}

	h.Append(ctx, "user", "Yes")
	if h.Len() != 1 {
		t.Errorf("Len() = %d after Append, want 1", h.Len())
	}
}
