// Package intent holds the conversational intent catalog and the
// rule-based classifier that picks one intent per user turn.
package intent

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
)

// Intent names used by the default catalog.
const (
	Greeting           = "greeting"
	SharingEmotion     = "sharing_emotion"
	AttachmentAnxious  = "attachment_anxious"
	AttachmentAvoidant = "attachment_avoidant"
	SelfReflection     = "self_reflection"
	Closure            = "closure"
	General            = "general"
)

// Intent is a named category of user utterance with its matchers and
// canned replies.
type Intent struct {
	Name          string
	Patterns      []*regexp.Regexp
	Responses     []string
	FollowUps     []string
	RequiredTurns int
}

// Catalog is an immutable set of intents plus the order in which the
// classifier tries them.
type Catalog struct {
	intents  map[string]*Intent
	priority []string
	fallback string
}

// NewCatalog validates intents and builds a catalog. priority lists the
// names to try in order; fallback names the intent returned when nothing
// matches. The fallback must have no patterns and no turn gate.
func NewCatalog(intents []Intent, priority []string, fallback string) (*Catalog, error) {
	c := &Catalog{
		intents:  make(map[string]*Intent, len(intents)),
		priority: append([]string(nil), priority...),
		fallback: fallback,
	}

	for i := range intents {
		in := intents[i]
		if in.Name == "" {
			return nil, errors.New("intent with empty name")
		}
		if _, dup := c.intents[in.Name]; dup {
			return nil, fmt.Errorf("duplicate intent %q", in.Name)
		}
		if len(in.Responses) == 0 {
			return nil, fmt.Errorf("intent %q has no responses", in.Name)
		}
		if in.RequiredTurns < 0 {
			return nil, fmt.Errorf("intent %q has negative required turns", in.Name)
		}
		c.intents[in.Name] = &in
	}

	fb, ok := c.intents[fallback]
	if !ok {
		return nil, fmt.Errorf("fallback intent %q not in catalog", fallback)
	}
	if len(fb.Patterns) != 0 || fb.RequiredTurns != 0 {
		return nil, fmt.Errorf("fallback intent %q must have no patterns and zero required turns", fallback)
	}

	for _, name := range c.priority {
		if _, ok := c.intents[name]; !ok {
			return nil, fmt.Errorf("priority names unknown intent %q", name)
		}
	}
	return c, nil
}

// Get returns the named intent.
func (c *Catalog) Get(name string) (*Intent, bool) {
	in, ok := c.intents[name]
	return in, ok
}

// Has reports whether name is in the catalog.
func (c *Catalog) Has(name string) bool {
	_, ok := c.intents[name]
	return ok
}

// Fallback returns the name of the catch-all intent.
func (c *Catalog) Fallback() string { return c.fallback }

// Names returns the intent names in priority order, followed by any
// intents not listed in the priority.
func (c *Catalog) Names() []string {
	out := make([]string, 0, len(c.intents))
	seen := make(map[string]bool, len(c.intents))
	for _, n := range c.priority {
		out = append(out, n)
		seen[n] = true
	}
	var rest []string
	for n := range c.intents {
		if !seen[n] {
			rest = append(rest, n)
		}
	}
	slices.Sort(rest)
	return append(out, rest...)
}
