package suggest

import (
	"fmt"
	"strings"
)

// Tuning shared by all suggester backends. The values trade a little fluency
// for latency: suggestions race the user's next keystroke.
const (
	// CompleteMaxTokens caps the completion response length.
	CompleteMaxTokens = 50

	// CompleteTemperature is the sampling temperature for completions.
	CompleteTemperature = 0.7

	// SuggestMaxTokens caps the phrase-suggestion response length.
	SuggestMaxTokens = 150

	// SuggestTemperature is the sampling temperature for phrase suggestions.
	SuggestTemperature = 0.8

	// maxSuggestionLength drops model output lines that are too long to be a
	// usable one-tap phrase.
	maxSuggestionLength = 30

	// minUsableSuggestions is the threshold below which parsed output is
	// padded from the fallback pool.
	minUsableSuggestions = 3
)

// CompleteSystemPrompt instructs the model to finish the user's sentence.
const CompleteSystemPrompt = "You are an assistant helping an ALS patient communicate. " +
	"Complete their sentences naturally and briefly. Keep responses under 15 words " +
	"unless absolutely necessary. The patient is typing and needs help completing their thought."

// SuggestSystemPrompt instructs the model to propose next phrases.
const SuggestSystemPrompt = `You are an assistant helping an ALS patient communicate. Generate 5 EXTREMELY BRIEF phrases (2-5 words each) that the patient might want to say next.

CRITICAL RULES:
1. Each phrase MUST be 2-5 words only
2. Each phrase MUST be practical for someone with limited mobility
3. Focus on immediate needs, comfort requests, and simple responses
4. DO NOT bundle multiple phrases together
5. DO NOT use complete sentences when shorter phrases work
6. DO NOT include numbering or formatting in your response
7. ONLY return the 5 phrases, one per line

Examples of GOOD phrases:
- Need water please
- Adjust my pillow
- Too cold
- Call nurse
- Thank you
- Yes please
- Turn TV on
- Need bathroom now`

// CompleteUserPrompt builds the user-turn message asking for a completion.
func CompleteUserPrompt(partialText string) string {
	return fmt.Sprintf("Complete this sentence or thought from the patient's perspective: %q", partialText)
}

// SuggestUserPrompt builds the user-turn message asking for next phrases.
func SuggestUserPrompt(spoken string) string {
	return fmt.Sprintf("The patient just communicated: %q. Suggest 5 brief phrases they might want to say next.", spoken)
}

// padFallbacks tops up short suggestion lists.
var padFallbacks = []string{"Yes", "No", "Thank you", "Need help", "Not now"}

// ErrorFallbacks is the suggestion list substituted when a backend call fails
// outright. Exposed so the engine's tests can assert the degraded output.
var ErrorFallbacks = []string{"Need help", "Yes", "No", "Thank you", "Please wait"}

// Fallbacks returns a copy of [ErrorFallbacks].
func Fallbacks() []string {
	out := make([]string, len(ErrorFallbacks))
	copy(out, ErrorFallbacks)
	return out
}

// ParseSuggestions converts raw model output into a clean suggestion list:
// one suggestion per line, trimmed, leading numbering and bullets stripped,
// over-long lines dropped, capped at [MaxSuggestions]. When fewer than three
// usable lines survive, the list is padded from a fixed fallback pool so the
// user always has enough to tap.
func ParseSuggestions(content string) []string {
	var suggestions []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || len(line) > maxSuggestionLength {
			continue
		}
		line = stripListMarker(line)
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == MaxSuggestions {
			break
		}
	}

	if len(suggestions) < minUsableSuggestions {
		for _, fb := range padFallbacks {
			if len(suggestions) == MaxSuggestions {
				break
			}
			if !contains(suggestions, fb) {
				suggestions = append(suggestions, fb)
			}
		}
	}
	return suggestions
}

// stripListMarker removes a leading "1.", "*", or "-" marker.
func stripListMarker(line string) string {
	trimmed := strings.TrimLeft(line, "0123456789")
	if len(trimmed) < len(line) && strings.HasPrefix(trimmed, ".") {
		return strings.TrimSpace(trimmed[1:])
	}
	if strings.HasPrefix(line, "*") || strings.HasPrefix(line, "-") {
		return strings.TrimSpace(line[1:])
	}
	return line
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
