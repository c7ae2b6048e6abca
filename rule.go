package fsharpstyle

import (
	"fmt"
	"strings"
)

// Rule is an immutable labelled instruction. Construct it with NewRule; the
// zero value is not a valid rule.
type Rule struct {
	tag  Tag
	text string
}

// NewRule returns a rule with surrounding whitespace trimmed from text.
func NewRule(tag Tag, text string) (Rule, error) {
	if !tag.Valid() {
		return Rule{}, &InvalidTagError{Tag: tag}
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return Rule{}, fmt.Errorf("%s rule: %w", tag, ErrEmptyRuleText)
	}
	return Rule{tag: tag, text: text}, nil
}

// MustRule is like NewRule but panics on error. It is meant for literal
// catalogs built at init time.
func MustRule(tag Tag, text string) Rule {
	r, err := NewRule(tag, text)
	if err != nil {
		panic(err)
	}
	return r
}

func (r Rule) Tag() Tag     { return r.tag }
func (r Rule) Text() string { return r.text }

// String renders the rule as "tag: text".
func (r Rule) String() string {
	return r.tag.String() + ": " + r.text
}

// valid reports whether r was built by NewRule.
func (r Rule) valid() bool {
	return r.tag.Valid() && r.text != ""
}
