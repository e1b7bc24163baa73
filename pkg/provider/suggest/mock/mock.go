// Package mock provides a test double for the suggest.Provider interface.
//
// Use Provider in unit tests to feed controlled suggestions into the engine
// without a live backend and to verify what the engine asked for.
//
// Example:
//
//	p := &mock.Provider{
//	    SuggestResponsesResult: []string{"Need water please", "Too cold"},
//	}
//	out, err := p.SuggestResponses(ctx, "I'm thirsty")
package mock

import (
	"context"
	"sync"

	"github.com/voxkey/voxkey/pkg/provider/suggest"
)

// Compile-time interface check.
var _ suggest.Provider = (*Provider)(nil)

// Provider is a mock implementation of suggest.Provider.
// Zero values make every method return zero values and nil errors.
// Set Err fields to inject errors. All methods are safe for concurrent use.
type Provider struct {
	mu sync.Mutex

	// --- Configurable responses ---

	// CompleteResult is returned by Complete.
	CompleteResult string

	// CompleteErr, if non-nil, is returned as the error from Complete.
	CompleteErr error

	// CompleteFn, if non-nil, is called instead of returning CompleteResult.
	// Useful for blocking a call until the test releases it.
	CompleteFn func(ctx context.Context, partialText string) (string, error)

	// SuggestResponsesResult is returned by SuggestResponses.
	SuggestResponsesResult []string

	// SuggestResponsesErr, if non-nil, is returned as the error from SuggestResponses.
	SuggestResponsesErr error

	// SuggestResponsesFn, if non-nil, is called instead of returning
	// SuggestResponsesResult.
	SuggestResponsesFn func(ctx context.Context, spoken string) ([]string, error)

	// --- Call records (read after test) ---

	// CompleteCalls records the partialText argument of every Complete call.
	CompleteCalls []string

	// SuggestResponsesCalls records the spoken argument of every
	// SuggestResponses call.
	SuggestResponsesCalls []string
}

// Complete implements suggest.Provider.
func (p *Provider) Complete(ctx context.Context, partialText string) (string, error) {
	p.mu.Lock()
	p.CompleteCalls = append(p.CompleteCalls, partialText)
	fn := p.CompleteFn
	result, err := p.CompleteResult, p.CompleteErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, partialText)
	}
	return result, err
}

// SuggestResponses implements suggest.Provider.
func (p *Provider) SuggestResponses(ctx context.Context, spoken string) ([]string, error) {
	p.mu.Lock()
	p.SuggestResponsesCalls = append(p.SuggestResponsesCalls, spoken)
	fn := p.SuggestResponsesFn
	result, err := p.SuggestResponsesResult, p.SuggestResponsesErr
	p.mu.Unlock()

	if fn != nil {
		return fn(ctx, spoken)
	}
	return result, err
}
