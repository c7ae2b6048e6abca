package fsharpstyle

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Composer joins the rules selected by a tag sequence into one instruction
// block. It holds no mutable state and is safe for concurrent use.
type Composer struct {
	catalog   *Catalog
	policy    DuplicatePolicy
	sep       string
	renderers *RendererRegistry
	logger    *zap.Logger
}

func NewComposer(catalog *Catalog, opts ...func(*Composer)) *Composer {
	c := &Composer{
		catalog:   catalog,
		policy:    DuplicateSkip,
		sep:       "\n",
		renderers: DefaultRenderers(),
		logger:    zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func WithDuplicatePolicy(p DuplicatePolicy) func(*Composer) {
	return func(c *Composer) { c.policy = p }
}

// WithSeparator replaces the line break placed between rule texts.
func WithSeparator(sep string) func(*Composer) {
	return func(c *Composer) { c.sep = sep }
}

func WithRenderers(r *RendererRegistry) func(*Composer) {
	return func(c *Composer) { c.renderers = r }
}

func WithLogger(l *zap.Logger) func(*Composer) {
	return func(c *Composer) {
		if l != nil {
			c.logger = l
		}
	}
}

// Sections resolves tags against the catalog in request order. Tags with no
// rules are left out.
func (c *Composer) Sections(tags ...Tag) ([]Section, error) {
	if len(tags) == 0 {
		return nil, ErrEmptyTagSet
	}
	seen := make(map[Tag]bool, len(tags))
	var sections []Section
	for _, t := range tags {
		rules, err := c.catalog.RulesByTag(t)
		if err != nil {
			return nil, err
		}
		if seen[t] && c.policy == DuplicateSkip {
			continue
		}
		seen[t] = true
		if len(rules) == 0 {
			continue
		}
		sections = append(sections, Section{Tag: t, Rules: rules})
	}
	return sections, nil
}

// Compose returns the texts of each requested tag's rules joined by line
// breaks. It fails with ErrEmptyTagSet when no tag is given.
func (c *Composer) Compose(tags ...Tag) (string, error) {
	return c.Render("plain", tags...)
}

// Render is Compose with the output produced by the named renderer.
func (c *Composer) Render(format string, tags ...Tag) (string, error) {
	sections, err := c.Sections(tags...)
	if err != nil {
		return "", err
	}
	r, ok := c.renderers.get(format)
	if !ok {
		return "", fmt.Errorf("%w %q", ErrUnknownFormat, format)
	}
	out, err := r.Render(sections, c.sep)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", format, err)
	}
	c.logger.Debug("composed instruction block",
		zap.String("format", format),
		zap.Stringers("tags", tags),
		zap.Int("sections", len(sections)),
		zap.Int("bytes", len(out)))
	return out, nil
}

// Prompt prepends the composed block to request, separated by a blank line.
// When the selected tags carry no rules the trimmed request is returned alone.
func (c *Composer) Prompt(request string, tags ...Tag) (string, error) {
	request = strings.TrimSpace(request)
	if request == "" {
		return "", ErrEmptyRequest
	}
	block, err := c.Compose(tags...)
	if err != nil {
		return "", err
	}
	if block == "" {
		return request, nil
	}
	return block + "\n\n" + request, nil
}

var defaultComposer = NewComposer(Default())

// Compose composes tags against the default catalog.
func Compose(tags ...Tag) (string, error) {
	return defaultComposer.Compose(tags...)
}
