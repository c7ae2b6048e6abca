package fsharpstyle

import (
	"fmt"
	"slices"
)

// Catalog is an ordered, read-only collection of rules. Insertion order is
// presentation order. A Catalog is safe for concurrent use.
type Catalog struct {
	rules []Rule
	byTag map[Tag][]int // indexes into rules, ascending
}

// NewCatalog builds a catalog holding rules in the given order. Every rule
// must have been built with NewRule.
func NewCatalog(rules ...Rule) (*Catalog, error) {
	c := &Catalog{
		rules: make([]Rule, 0, len(rules)),
		byTag: make(map[Tag][]int),
	}
	for i, r := range rules {
		if !r.valid() {
			return nil, fmt.Errorf("rule %d: %w", i, ErrEmptyRuleText)
		}
		c.byTag[r.tag] = append(c.byTag[r.tag], len(c.rules))
		c.rules = append(c.rules, r)
	}
	return c, nil
}

// MustCatalog is like NewCatalog but panics on error.
func MustCatalog(rules ...Rule) *Catalog {
	c, err := NewCatalog(rules...)
	if err != nil {
		panic(err)
	}
	return c
}

// AllRules returns every rule in catalog order.
func (c *Catalog) AllRules() []Rule {
	return slices.Clone(c.rules)
}

// RulesByTag returns the rules tagged tag, in catalog order. A valid tag with
// no rules yields an empty slice and no error.
func (c *Catalog) RulesByTag(tag Tag) ([]Rule, error) {
	if !tag.Valid() {
		return nil, &InvalidTagError{Tag: tag}
	}
	idx := c.byTag[tag]
	out := make([]Rule, 0, len(idx))
	for _, i := range idx {
		out = append(out, c.rules[i])
	}
	return out, nil
}

// Len returns the number of rules.
func (c *Catalog) Len() int { return len(c.rules) }

// Tags returns the distinct tags present, in order of first appearance.
func (c *Catalog) Tags() []Tag {
	var tags []Tag
	seen := make(map[Tag]bool, len(c.byTag))
	for _, r := range c.rules {
		if !seen[r.tag] {
			seen[r.tag] = true
			tags = append(tags, r.tag)
		}
	}
	return tags
}

// Concat returns a new catalog holding c's rules followed by each of others'.
func (c *Catalog) Concat(others ...*Catalog) *Catalog {
	rules := slices.Clone(c.rules)
	for _, o := range others {
		rules = append(rules, o.rules...)
	}
	return MustCatalog(rules...)
}
