// Package rules implements the deterministic keyword → suggestion tables.
//
// Two independent tables exist: follow-up rules applied after an utterance is
// sent, and completion rules applied to partial text while the user is still
// composing. Both are evaluated in a fixed order with first-match-wins
// semantics — an utterance containing keywords from two rules resolves to
// whichever rule appears first in the table, so the table order is part of the
// contract and is covered by tests.
//
// Both entry points are pure functions: total, side-effect free, and cheap
// enough to run on every trigger without debouncing.
package rules

import "strings"

// rule pairs a keyword set with the fixed response set returned when any
// keyword is found in the (lower-cased) input.
type rule struct {
	keywords  []string
	responses []string
}

// matches reports whether any of the rule's keywords occurs in text.
// text must already be lower-cased.
func (r rule) matches(text string) bool {
	for _, kw := range r.keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// followUpRules maps just-spoken context to likely next utterances.
// Order matters: "I need help, I'm thirsty" resolves to the help rule.
var followUpRules = []rule{
	{keywords: []string{"pain", "hurt"}, responses: []string{"Where", "Scale 1-10", "Need medicine"}},
	{keywords: []string{"help"}, responses: []string{"Reposition me", "Can't breathe", "Need water"}},
	{keywords: []string{"thirsty", "water"}, responses: []string{"With straw", "Just a little", "Ice chips"}},
	{keywords: []string{"position", "uncomfortable"}, responses: []string{"Move up", "Turn left", "Turn right", "Adjust pillow"}},
	{keywords: []string{"thank"}, responses: []string{"Much better", "Appreciate it", "Stay please"}},
	{keywords: []string{"breathe", "breathing"}, responses: []string{"Need suction", "Adjust vent", "Raise head", "Anxious"}},
	{keywords: []string{"tired", "rest"}, responses: []string{"Sleep now", "Lights off", "Too hot/cold", "Close curtains"}},
	{keywords: []string{"family", "call"}, responses: []string{"Call spouse", "Video call", "Show photos", "Read messages"}},
}

// defaultFollowUps is returned when no follow-up rule matches. FollowUpsFor is
// therefore never empty — it is the engine's guaranteed local fallback.
var defaultFollowUps = []string{"Yes", "No", "Need more help", "That's enough"}

// completionRules map partial input fragments to finished phrases. Unlike the
// follow-up table there is no default: an unmatched partial yields nothing.
var completionRules = []rule{
	{keywords: []string{"i need"}, responses: []string{"I need bathroom", "I need repositioning", "I need medicine"}},
	{keywords: []string{"can you"}, responses: []string{"Can you adjust pillow", "Can you turn TV", "Can you call family"}},
	{keywords: []string{"i feel"}, responses: []string{"I feel uncomfortable", "I feel pain", "I feel anxious", "I feel tired"}},
	{keywords: []string{"i want"}, responses: []string{"I want water", "I want rest", "I want family"}},
	{keywords: []string{"please"}, responses: []string{"Please help sit up", "Please adjust blanket", "Please stay"}},
	{keywords: []string{"i'm having"}, responses: []string{"I'm having trouble breathing", "I'm having pain", "I'm having anxiety"}},
	{keywords: []string{"too"}, responses: []string{"Too hot", "Too cold", "Too bright", "Too loud", "Too uncomfortable"}},
	{keywords: []string{"need"}, responses: []string{"Need bathroom", "Need medicine", "Need water", "Need rest"}},
}

// FollowUpsFor returns the follow-up suggestions for a just-sent utterance.
// The result is never empty: when no rule matches, the default set is
// returned. The returned slice is a fresh copy on every call.
func FollowUpsFor(utterance string) []string {
	lower := strings.ToLower(utterance)
	for _, r := range followUpRules {
		if r.matches(lower) {
			return copyOf(r.responses)
		}
	}
	return copyOf(defaultFollowUps)
}

// CompletionsFor returns completion suggestions for partial input, or nil when
// no rule matches. The returned slice is a fresh copy on every call.
func CompletionsFor(partialText string) []string {
	lower := strings.ToLower(partialText)
	for _, r := range completionRules {
		if r.matches(lower) {
			return copyOf(r.responses)
		}
	}
	return nil
}

// copyOf returns a copy of s so callers can never mutate the rule tables.
func copyOf(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
