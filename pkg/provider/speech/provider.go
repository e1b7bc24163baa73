// Package speech defines the Provider interface for Text-to-Speech backends.
//
// The suggestion core never calls a speech provider itself: the application
// layer invokes it once a send action has been validated, passing the user's
// voice settings through opaquely. Synthesis failures are the one error class
// that is surfaced to the user rather than silently degraded — a speak that
// fails must be visible, unlike a suggestion that fails.
//
// Implementations must be safe for concurrent use.
package speech

import (
	"context"

	"github.com/voxkey/voxkey/pkg/types"
)

// Voice describes one synthesis voice offered by a provider.
type Voice struct {
	// ID is the provider-specific voice identifier.
	ID string

	// Name is the human-readable voice name.
	Name string

	// Provider identifies which backend this voice belongs to.
	Provider string

	// Metadata holds provider-specific voice attributes (gender, age, accent…).
	Metadata map[string]string
}

// Provider is the abstraction over any TTS backend.
type Provider interface {
	// Synthesize renders text to a single encoded audio clip using the given
	// voice settings. The encoding matches settings.OutputFormat. Returns an
	// error when the backend rejects the request or cannot be reached.
	Synthesize(ctx context.Context, text string, settings types.VoiceSettings) ([]byte, error)

	// SynthesizeStream consumes text fragments from the text channel and
	// returns a channel emitting raw audio chunks as they are synthesised,
	// for low-latency playback of long utterances. The returned channel is
	// closed when all text has been synthesised or ctx is cancelled; callers
	// must drain it. Returns a non-nil error only if the stream cannot be
	// started.
	SynthesizeStream(ctx context.Context, text <-chan string, settings types.VoiceSettings) (<-chan []byte, error)

	// ListVoices returns the provider's current voice catalogue.
	ListVoices(ctx context.Context) ([]Voice, error)
}
