// Package suggest defines the Provider interface for remote phrase suggesters.
//
// A suggester wraps a large-language-model backend and produces two kinds of
// predictive assistance: a single best completion of partial text the user is
// still composing, and a short list of phrases the user might want to say
// next given what was just spoken.
//
// The suggestion engine treats every provider as best-effort: a provider error
// degrades the engine to its local rule tables and never reaches the user.
// Implementations must be safe for concurrent use — the engine may issue
// Complete and SuggestResponses concurrently within a single trigger.
package suggest

import "context"

// MaxSuggestions is the upper bound on phrases returned by SuggestResponses.
const MaxSuggestions = 5

// Provider is the abstraction over any remote suggestion backend.
type Provider interface {
	// Complete returns the single best completion of partialText, phrased from
	// the user's perspective and kept short. Returns an error when the backend
	// cannot be reached or rejects the request; callers must treat errors as a
	// signal to fall back to local suggestions.
	Complete(ctx context.Context, partialText string) (string, error)

	// SuggestResponses returns up to [MaxSuggestions] short (2–5 word) phrases
	// the user might want to say next, given the utterance they just
	// communicated. Implementations strip numbering and bullets and substitute
	// a built-in fallback list on their own internal errors, so a non-nil
	// error return is reserved for failures the implementation cannot absorb.
	SuggestResponses(ctx context.Context, spoken string) ([]string, error)
}
