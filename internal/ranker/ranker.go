// Package ranker projects the usage ledger into a ranked "frequent phrases"
// list. The projection is recomputed from scratch whenever the ledger changes
// and is never mutated in place.
package ranker

import (
	"sort"

	"github.com/voxkey/voxkey/pkg/types"
)

// maxFrequent caps the ranked list length.
const maxFrequent = 10

// frequentIDPrefixLen is how much of the text is folded into a synthesised
// phrase ID when the text has no catalog entry.
const frequentIDPrefixLen = 10

// Resolver resolves a phrase text to its catalog entry. Satisfied by
// *catalog.Catalog.
type Resolver interface {
	ByText(text string) (types.Phrase, bool)
}

// Compute counts how often each catalog-kind utterance appears in events and
// returns up to ten phrases ordered by count, descending.
//
// events must be most-recent-first (the ledger's native order). Ties are
// broken by first appearance in events — among equally counted phrases, the
// one used more recently ranks first. This is a deliberate recency tie-break.
//
// Texts that match a catalog phrase reuse its ID and category; others
// synthesise a deterministic "frequent-" ID and the frequent category.
func Compute(events []types.UsageEvent, resolver Resolver) []types.Phrase {
	type tally struct {
		text      string
		count     int
		firstSeen int // index of the most recent use in events
	}

	counts := make(map[string]*tally)
	var order []*tally

	for i, e := range events {
		if e.Kind != types.UsagePhrase {
			continue
		}
		t, ok := counts[e.Text]
		if !ok {
			t = &tally{text: e.Text, firstSeen: i}
			counts[e.Text] = t
			order = append(order, t)
		}
		t.count++
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].firstSeen < order[j].firstSeen
	})

	if len(order) > maxFrequent {
		order = order[:maxFrequent]
	}

	out := make([]types.Phrase, 0, len(order))
	for _, t := range order {
		if p, ok := resolver.ByText(t.text); ok {
			out = append(out, p)
			continue
		}
		out = append(out, synthesize(t.text))
	}
	return out
}

// synthesize builds a Phrase for a frequently used text that has no catalog
// entry.
func synthesize(text string) types.Phrase {
	prefix := text
	if len(prefix) > frequentIDPrefixLen {
		prefix = prefix[:frequentIDPrefixLen]
	}
	return types.Phrase{
		ID:       "frequent-" + prefix,
		Text:     text,
		Category: types.CategoryFrequent,
	}
}
