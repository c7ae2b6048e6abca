package fsharpstyle

import (
	"bytes"
	"encoding/xml"
	"strings"
)

// Section is the rules selected for one tag, in catalog order.
type Section struct {
	Tag   Tag
	Rules []Rule
}

// Renderer turns composed sections into a single instruction block.
type Renderer interface {
	// Names returns the format names handled by this renderer (e.g., ["markdown", "md"]).
	Names() []string
	// Render is called with the non-empty sections in request order.
	Render(sections []Section, sep string) (string, error)
}

type RendererRegistry struct {
	byName map[string]Renderer
}

func NewRendererRegistry() *RendererRegistry {
	return &RendererRegistry{byName: map[string]Renderer{}}
}

// DefaultRenderers returns a registry with the plain, markdown and xml renderers.
func DefaultRenderers() *RendererRegistry {
	r := NewRendererRegistry()
	r.Register(PlainRenderer{})
	r.Register(MarkdownRenderer{})
	r.Register(XMLRenderer{})
	return r
}

func (r *RendererRegistry) Register(p Renderer) {
	for _, n := range p.Names() {
		r.byName[strings.ToLower(n)] = p
	}
}

func (r *RendererRegistry) get(name string) (Renderer, bool) {
	p, ok := r.byName[strings.ToLower(name)]
	return p, ok
}

// PlainRenderer joins rule texts with the separator. Compose uses it.
type PlainRenderer struct{}

func (PlainRenderer) Names() []string { return []string{"plain", "text"} }

func (PlainRenderer) Render(sections []Section, sep string) (string, error) {
	var texts []string
	for _, s := range sections {
		for _, r := range s.Rules {
			texts = append(texts, r.Text())
		}
	}
	return strings.Join(texts, sep), nil
}

// MarkdownRenderer emits a level-2 heading per tag followed by a bullet list.
// Markup characters outside code spans are backslash-escaped, so the output
// reads back unchanged with an Importer.
type MarkdownRenderer struct{}

func (MarkdownRenderer) Names() []string { return []string{"markdown", "md"} }

func (MarkdownRenderer) Render(sections []Section, _ string) (string, error) {
	var sb strings.Builder
	for i, s := range sections {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString("## " + s.Tag.Title() + "\n\n")
		for _, r := range s.Rules {
			sb.WriteString("- " + escapeMarkdown(r.Text()) + "\n")
		}
	}
	return strings.TrimSuffix(sb.String(), "\n"), nil
}

// XMLRenderer wraps each tag's rules in an element named after the tag, the
// shape prompt parsers expect for sectioned instructions.
type XMLRenderer struct{}

func (XMLRenderer) Names() []string { return []string{"xml"} }

func (XMLRenderer) Render(sections []Section, sep string) (string, error) {
	var buf bytes.Buffer
	for i, s := range sections {
		if i > 0 {
			buf.WriteString(sep)
		}
		name := s.Tag.String()
		buf.WriteString("<" + name + ">\n")
		for _, r := range s.Rules {
			if err := xml.EscapeText(&buf, []byte(r.Text())); err != nil {
				return "", err
			}
			buf.WriteString("\n")
		}
		buf.WriteString("</" + name + ">")
	}
	return buf.String(), nil
}

// escapeMarkdown escapes the characters that would turn rule text into inline
// markup or a nested block. Code spans are copied as they are.
func escapeMarkdown(text string) string {
	var sb strings.Builder
	i := 0
	// a leading marker would open a heading, list or quote inside the item
	if digits := len(text) - len(strings.TrimLeft(text, "0123456789")); digits > 0 {
		if digits < len(text) && (text[digits] == '.' || text[digits] == ')') {
			sb.WriteString(text[:digits] + "\\")
			i = digits
		}
	} else if text != "" && strings.IndexByte("#-+>=", text[0]) >= 0 {
		sb.WriteByte('\\')
	}
	for i < len(text) {
		c := text[i]
		switch c {
		case '`':
			run := len(text[i:]) - len(strings.TrimLeft(text[i:], "`"))
			fence := text[i : i+run]
			if end := strings.Index(text[i+run:], fence); end >= 0 {
				n := i + run + end + run
				sb.WriteString(text[i:n])
				i = n
				continue
			}
			sb.WriteString(strings.Repeat("\\`", run))
			i += run
			continue
		case '\\', '*', '_', '<', '[', ']', '&':
			sb.WriteByte('\\')
		}
		sb.WriteByte(c)
		i++
	}
	return sb.String()
}
