package suggest

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/voxkey/voxkey/pkg/storage"
	"github.com/voxkey/voxkey/pkg/types"
)

// historyLimit bounds the rolling conversation window suggester backends keep
// to condition future calls.
const historyLimit = 10

// recentWindow is how many trailing history messages are injected into each
// backend request.
const recentWindow = 5

// History is the bounded rolling window of exchanged messages shared by
// suggester backends. It persists itself through an optional storage port so
// conversational context survives a restart. Safe for concurrent use.
type History struct {
	mu       sync.Mutex
	messages []types.Message
	store    storage.Store
}

// NewHistory creates a History. When store is non-nil, previously persisted
// messages are loaded; load failures start an empty window instead of failing.
func NewHistory(ctx context.Context, store storage.Store) *History {
	h := &History{store: store}
	if store == nil {
		return h
	}
	raw, ok, err := store.Get(ctx, storage.KeyRecentMessages)
	if err != nil {
		slog.Warn("suggest history: load", "err", err)
		return h
	}
	if !ok {
		return h
	}
	if err := json.Unmarshal([]byte(raw), &h.messages); err != nil {
		slog.Warn("suggest history: parse persisted messages", "err", err)
		h.messages = nil
	}
	if len(h.messages) > historyLimit {
		h.messages = h.messages[len(h.messages)-historyLimit:]
	}
	return h
}

// Append adds a message, trims the window to its limit, and persists the
// result. Persistence errors are logged and swallowed.
func (h *History) Append(ctx context.Context, role, content string) {
	h.mu.Lock()
	h.messages = append(h.messages, types.Message{Role: role, Content: content})
	if len(h.messages) > historyLimit {
		h.messages = h.messages[len(h.messages)-historyLimit:]
	}
	snapshot := make([]types.Message, len(h.messages))
	copy(snapshot, h.messages)
	h.mu.Unlock()

	if h.store == nil {
		return
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		slog.Error("suggest history: marshal", "err", err)
		return
	}
	if err := h.store.Set(ctx, storage.KeyRecentMessages, string(data)); err != nil {
		slog.Warn("suggest history: persist", "err", err)
	}
}

// Recent returns the last [recentWindow] messages, oldest first.
func (h *History) Recent() []types.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	start := 0
	if len(h.messages) > recentWindow {
		start = len(h.messages) - recentWindow
	}
	out := make([]types.Message, len(h.messages)-start)
	copy(out, h.messages[start:])
	return out
}

// Len returns the number of retained messages. Intended for tests.
func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}
