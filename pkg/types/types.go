// Package types defines the shared types used across all Voxkey packages.
//
// These types form the lingua franca between the phrase catalog, the usage
// ledger, the suggestion engine, and the provider ports. They are intentionally
// minimal — each package defines its own domain types, but cross-cutting data
// structures live here to avoid circular imports.
package types

// Phrase is a single canned utterance from the phrase catalog.
// Phrases are immutable reference data created at process start; a Phrase value
// with category [CategoryFrequent] may also be synthesised from usage statistics.
type Phrase struct {
	// ID uniquely identifies the phrase. Catalog phrases use stable numeric
	// string IDs; synthesised frequent phrases use a "frequent-" prefix derived
	// from the text.
	ID string `json:"id"`

	// Text is the utterance spoken aloud when the phrase is selected. Never empty.
	Text string `json:"text"`

	// Category is the catalog category ID this phrase belongs to.
	Category string `json:"category"`
}

// Category groups catalog phrases for presentation.
type Category struct {
	// ID is the stable category identifier (e.g., "basic", "medical").
	ID string `json:"id"`

	// Name is the human-readable category label.
	Name string `json:"name"`

	// Icon is a presentation hint for the rendering layer; the core never
	// interprets it.
	Icon string `json:"icon"`
}

// CategoryFrequent is the synthetic category ID assigned to phrases surfaced
// by the frequency ranker that do not exist in the catalog.
const CategoryFrequent = "frequent"

// UsageKind classifies how an utterance was produced.
type UsageKind string

const (
	// UsagePhrase marks an utterance selected from the phrase catalog.
	UsagePhrase UsageKind = "phrase"

	// UsageCustom marks free text typed by the user.
	UsageCustom UsageKind = "custom"

	// UsageSuggestion marks an utterance picked from the suggestion list.
	UsageSuggestion UsageKind = "suggestion"
)

// IsValid reports whether k is a recognised usage kind.
func (k UsageKind) IsValid() bool {
	switch k {
	case UsagePhrase, UsageCustom, UsageSuggestion:
		return true
	}
	return false
}

// UsageEvent is a single entry in the usage ledger. Events are created exactly
// once per send action and are never mutated after insertion.
type UsageEvent struct {
	// Text is the utterance that was sent.
	Text string `json:"text"`

	// Timestamp is the creation instant in ISO-8601 (RFC 3339) form.
	Timestamp string `json:"timestamp"`

	// Kind records how the utterance was produced.
	Kind UsageKind `json:"type"`

	// PreviousText is the text of the event that was most recent when this one
	// was recorded, or empty for the first event ever recorded. The resulting
	// chain is what the engine uses to recall "what the user typically says
	// after X".
	PreviousText string `json:"previousText"`
}

// VoiceSettings configures speech synthesis. The suggestion core never reads
// these values — they are owned by the application and forwarded opaquely to
// the speech provider.
type VoiceSettings struct {
	// VoiceID is the provider-specific voice identifier.
	VoiceID string `json:"voiceId"`

	// ModelID selects the synthesis model (e.g., "eleven_flash_v2_5").
	ModelID string `json:"modelId"`

	// OutputFormat is the requested audio encoding (e.g., "mp3_44100_128").
	OutputFormat string `json:"outputFormat"`

	// Speed adjusts speaking rate in the range [0.5, 2.0]. 1.0 means default.
	Speed float64 `json:"speed"`

	// Stability controls synthesis variance in the range [0.0, 1.0].
	Stability float64 `json:"stability"`
}

// DefaultVoiceSettings returns the voice configuration used when none has been
// persisted yet.
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		VoiceID:      "H7ZtEYgvMq3Y1gCSSZG4",
		ModelID:      "eleven_flash_v2_5",
		OutputFormat: "mp3_44100_128",
		Speed:        1.0,
		Stability:    0.7,
	}
}

// Message represents a single message in a suggester conversation history.
// The remote suggester keeps a bounded rolling window of these to condition
// future completions.
type Message struct {
	// Role is one of "system", "user", or "assistant".
	Role string `json:"role"`

	// Content is the text content of the message.
	Content string `json:"content"`
}
