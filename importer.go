package fsharpstyle

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
	"go.uber.org/zap"
)

// Importer builds a catalog from a markdown document laid out the way the
// golden prompts are published: one heading per topic, rules as bullets.
//
// The level of the first heading that names a tag becomes the section level.
// A heading that names no tag closes the open section when it is at or above
// that level and is ignored when deeper. Bullets outside a section are ignored.
type Importer struct {
	policy     UnknownHeadingPolicy
	validators *ValidatorRegistry
	logger     *zap.Logger
	md         goldmark.Markdown
}

func NewImporter(opts ...func(*Importer)) *Importer {
	im := &Importer{policy: UnknownDrop, logger: zap.NewNop(), md: goldmark.New()}
	for _, o := range opts {
		o(im)
	}
	return im
}

func WithUnknownHeadingPolicy(p UnknownHeadingPolicy) func(*Importer) {
	return func(im *Importer) { im.policy = p }
}

func WithImportValidators(v *ValidatorRegistry) func(*Importer) {
	return func(im *Importer) { im.validators = v }
}

func WithImporterLogger(l *zap.Logger) func(*Importer) {
	return func(im *Importer) {
		if l != nil {
			im.logger = l
		}
	}
}

// Import reads markdown from r and returns its rules in document order.
func (im *Importer) Import(r io.Reader) (*Catalog, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	doc := im.md.Parser().Parse(text.NewReader(src))

	var (
		rules   []Rule
		current *Tag
		level   int
	)
	for n := doc.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			heading := strings.TrimSpace(inlineText(node, src))
			tag, ok := findTag(heading)
			switch {
			case ok:
				if level == 0 || node.Level < level {
					level = node.Level
				}
				current = &tag
			case level == 0 || node.Level > level:
				// title before the first section, or a sub-heading inside one
			case node.Level < level:
				current = nil
			default:
				current = nil
				if im.policy == UnknownFail {
					return nil, NewUnknownHeadingError(blockPosition(node, src), heading, string(src))
				}
				im.logger.Debug("dropping section", zap.String("heading", heading))
			}

		case *ast.List:
			if current == nil {
				continue
			}
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				r, err := im.ruleFromItem(*current, item, src)
				if err != nil {
					return nil, err
				}
				if r.valid() {
					rules = append(rules, r)
				}
			}
		}
	}

	c, err := NewCatalog(rules...)
	if err != nil {
		return nil, err
	}
	im.logger.Debug("imported markdown catalog", zap.Int("rules", c.Len()))
	return c, nil
}

func (im *Importer) ruleFromItem(tag Tag, item ast.Node, src []byte) (Rule, error) {
	var parts []string
	var first ast.Node
	for b := item.FirstChild(); b != nil; b = b.NextSibling() {
		switch b.Kind() {
		case ast.KindParagraph, ast.KindTextBlock:
			if first == nil {
				first = b
			}
			if t := strings.TrimSpace(inlineText(b, src)); t != "" {
				parts = append(parts, t)
			}
		}
	}
	body := strings.Join(parts, " ")
	if body == "" {
		return Rule{}, nil
	}
	pos := Position{}
	if first != nil {
		pos = blockPosition(first, src)
	}
	if err := im.validators.ValidateRule(tag, body, pos); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) && ve.Context == "" {
			ve.Context = extractContext(string(src), ve.Pos)
		}
		return Rule{}, err
	}
	return NewRule(tag, body)
}

// inlineText flattens the inline children of n back to rule text. Code
// spans, emphasis and raw HTML such as `Option<T>` keep their source
// delimiters; backslash escapes are resolved outside code spans.
func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	writeInline(&sb, n, src)
	return sb.String()
}

func writeInline(sb *strings.Builder, n ast.Node, src []byte) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch v := c.(type) {
		case *ast.Text:
			sb.Write(util.UnescapePunctuations(v.Segment.Value(src)))
			if v.SoftLineBreak() || v.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(v.Value)
		case *ast.CodeSpan:
			sb.WriteByte('`')
			for t := v.FirstChild(); t != nil; t = t.NextSibling() {
				if seg, ok := t.(*ast.Text); ok {
					sb.Write(seg.Segment.Value(src))
				}
			}
			sb.WriteByte('`')
		case *ast.RawHTML:
			for i := 0; i < v.Segments.Len(); i++ {
				seg := v.Segments.At(i)
				sb.Write(seg.Value(src))
			}
		case *ast.AutoLink:
			sb.WriteString("<" + string(v.Label(src)) + ">")
		case *ast.Emphasis:
			marker := strings.Repeat(string(emphasisMarker(v, src)), v.Level)
			sb.WriteString(marker)
			writeInline(sb, v, src)
			sb.WriteString(marker)
		default:
			writeInline(sb, c, src)
		}
	}
}

// emphasisMarker returns the delimiter character an emphasis was written with.
func emphasisMarker(n *ast.Emphasis, src []byte) byte {
	if t, ok := n.FirstChild().(*ast.Text); ok && t.Segment.Start > 0 && src[t.Segment.Start-1] == '_' {
		return '_'
	}
	return '*'
}

// blockPosition converts the first line segment of a block node to a Position.
func blockPosition(n ast.Node, src []byte) Position {
	lines := n.Lines()
	if lines == nil || lines.Len() == 0 {
		return Position{}
	}
	offset := lines.At(0).Start
	if offset > len(src) {
		offset = len(src)
	}
	before := src[:offset]
	line := bytes.Count(before, []byte("\n")) + 1
	col := offset - (bytes.LastIndexByte(before, '\n') + 1) + 1
	return Position{Line: line, Column: col}
}
