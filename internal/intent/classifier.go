package intent

import "strings"

// Classifier selects exactly one intent for a user message.
type Classifier struct {
	catalog *Catalog
}

// NewClassifier returns a classifier over c.
func NewClassifier(c *Catalog) *Classifier {
	return &Classifier{catalog: c}
}

// Catalog returns the catalog the classifier matches against.
func (c *Classifier) Catalog() *Catalog { return c.catalog }

// Classify walks the catalog's priority list and returns the first intent
// whose turn gate is satisfied and one of whose patterns matches the
// lower-cased text. Punctuation is left in place so patterns may rely on
// it. When nothing matches the fallback intent is returned.
func (c *Classifier) Classify(text string, turnCount int) string {
	lower := strings.ToLower(text)

	for _, name := range c.catalog.priority {
		in := c.catalog.intents[name]
		if turnCount < in.RequiredTurns {
			continue
		}
		for _, re := range in.Patterns {
			if re.MatchString(lower) {
				return name
			}
		}
	}
	return c.catalog.fallback
}
