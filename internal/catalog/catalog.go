// Package catalog holds the canned phrase bank: a fixed set of categories and
// short utterances built into the aid. The catalog is immutable reference
// data created at process start — the usage ledger and frequency ranker
// resolve against it but never modify it.
package catalog

import "github.com/voxkey/voxkey/pkg/types"

// Catalog is the immutable phrase bank. All methods are safe for concurrent
// use because nothing is ever mutated after construction.
type Catalog struct {
	categories []types.Category
	phrases    []types.Phrase
	byText     map[string]types.Phrase
	byID       map[string]types.Phrase
}

// New builds a Catalog from the built-in phrase bank.
func New() *Catalog {
	return fromData(defaultCategories, defaultPhrases)
}

// fromData builds a Catalog from explicit slices. Split out so tests can
// construct small catalogs.
func fromData(categories []types.Category, phrases []types.Phrase) *Catalog {
	c := &Catalog{
		categories: categories,
		phrases:    phrases,
		byText:     make(map[string]types.Phrase, len(phrases)),
		byID:       make(map[string]types.Phrase, len(phrases)),
	}
	for _, p := range phrases {
		c.byText[p.Text] = p
		c.byID[p.ID] = p
	}
	return c
}

// Phrases returns all catalog phrases in catalog order. The returned slice is
// a copy; callers may reorder it freely.
func (c *Catalog) Phrases() []types.Phrase {
	out := make([]types.Phrase, len(c.phrases))
	copy(out, c.phrases)
	return out
}

// Categories returns all categories in presentation order.
func (c *Catalog) Categories() []types.Category {
	out := make([]types.Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// ByCategory returns the phrases belonging to the given category ID, in
// catalog order. Unknown category IDs yield an empty slice.
func (c *Catalog) ByCategory(categoryID string) []types.Phrase {
	var out []types.Phrase
	for _, p := range c.phrases {
		if p.Category == categoryID {
			out = append(out, p)
		}
	}
	return out
}

// ByText returns the catalog phrase whose text exactly matches text.
func (c *Catalog) ByText(text string) (types.Phrase, bool) {
	p, ok := c.byText[text]
	return p, ok
}

// ByID returns the catalog phrase with the given ID.
func (c *Catalog) ByID(id string) (types.Phrase, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Contains reports whether text exactly matches a catalog phrase. The
// suggestion engine uses this to classify sent utterances.
func (c *Catalog) Contains(text string) bool {
	_, ok := c.byText[text]
	return ok
}

// QuickPhrases returns the first n phrases of the "basic" category, used by
// the presentation layer as always-visible one-tap buttons.
func (c *Catalog) QuickPhrases(n int) []types.Phrase {
	basic := c.ByCategory("basic")
	if len(basic) > n {
		basic = basic[:n]
	}
	return basic
}
