// Package mock provides a test double for the speech.Provider interface.
package mock

import (
	"context"
	"sync"

	"github.com/voxkey/voxkey/pkg/provider/speech"
	"github.com/voxkey/voxkey/pkg/types"
)

// Compile-time interface check.
var _ speech.Provider = (*Provider)(nil)

// SynthesizeCall records a single invocation of Synthesize.
type SynthesizeCall struct {
	// Text is the text passed to Synthesize.
	Text string
	// Settings is the voice configuration passed to Synthesize.
	Settings types.VoiceSettings
}

// Provider is a mock implementation of speech.Provider.
// Zero values make every method return zero values and nil errors.
// All methods are safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// SynthesizeResult is the audio returned by Synthesize.
	SynthesizeResult []byte

	// SynthesizeErr, if non-nil, is returned as the error from Synthesize.
	SynthesizeErr error

	// StreamChunks is the sequence of audio chunks emitted on the channel
	// returned by SynthesizeStream. The input text channel is drained first.
	StreamChunks [][]byte

	// StreamErr, if non-nil, is returned as the error from SynthesizeStream.
	StreamErr error

	// Voices is returned by ListVoices.
	Voices []speech.Voice

	// ListVoicesErr, if non-nil, is returned as the error from ListVoices.
	ListVoicesErr error

	// SynthesizeCalls records every invocation of Synthesize in order.
	SynthesizeCalls []SynthesizeCall
}

// Synthesize implements speech.Provider.
func (p *Provider) Synthesize(_ context.Context, text string, settings types.VoiceSettings) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.SynthesizeCalls = append(p.SynthesizeCalls, SynthesizeCall{Text: text, Settings: settings})
	return p.SynthesizeResult, p.SynthesizeErr
}

// SynthesizeStream implements speech.Provider.
func (p *Provider) SynthesizeStream(ctx context.Context, text <-chan string, _ types.VoiceSettings) (<-chan []byte, error) {
	p.mu.Lock()
	chunks := p.StreamChunks
	err := p.StreamErr
	p.mu.Unlock()

	if err != nil {
		return nil, err
	}

	out := make(chan []byte, len(chunks))
	go func() {
		defer close(out)
		for range text {
		}
		for _, c := range chunks {
			select {
			case out <- c:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// ListVoices implements speech.Provider.
func (p *Provider) ListVoices(context.Context) ([]speech.Voice, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Voices, p.ListVoicesErr
}
