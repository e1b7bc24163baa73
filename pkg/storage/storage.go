// Package storage defines the key-value persistence port used by Voxkey.
//
// All persisted values are strings; callers JSON-encode structured values
// before storing them. The interface is deliberately small so that backends
// range from an in-memory map ([github.com/voxkey/voxkey/pkg/storage/memstore])
// through an on-device SQLite file
// ([github.com/voxkey/voxkey/pkg/storage/sqlite]) up to a caregiver-hosted
// PostgreSQL instance ([github.com/voxkey/voxkey/pkg/storage/postgres]).
//
// Every implementation must be safe for concurrent use.
package storage

import "context"

// Well-known keys round-tripped by the application. Other packages may define
// additional keys; these are listed here because more than one package touches
// them.
const (
	// KeyUsagePatterns holds the JSON-encoded usage ledger.
	KeyUsagePatterns = "usagePatterns"

	// KeyVoiceSettings holds the JSON-encoded voice settings.
	KeyVoiceSettings = "voiceSettings"

	// KeyMessageHistory holds the JSON-encoded spoken-text history.
	KeyMessageHistory = "messageHistory"

	// KeyRecentMessages holds the remote suggester's JSON-encoded rolling
	// conversation window.
	KeyRecentMessages = "recentAIMessages"

	// KeyMuted holds "true" or "false" for the mute toggle.
	KeyMuted = "isMuted"
)

// Store is the key-value persistence port.
//
// Get reports ok=false when the key has never been set; an absent key is not
// an error. Set overwrites any existing value.
type Store interface {
	// Get returns the value stored under key, or ok=false if the key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources. The store must not be used afterwards.
	Close() error
}
