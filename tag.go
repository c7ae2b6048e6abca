package fsharpstyle

import (
	"strconv"
	"strings"
	"unicode"

	"gopkg.in/yaml.v3"
)

// Tag classifies a rule by the functional-programming pattern it targets.
// The zero value is StructuralModelling; values outside AllTags are invalid.
type Tag int

const (
	StructuralModelling Tag = iota // discriminated unions, records
	Exhaustiveness                 // never-checked switches
	DomainSafety                   // branded types, units of measure
	ErrorHandling                  // Option / Result
	LogicStructure                 // pipelines, active patterns
	Organisation                   // modules, file layout
)

var tagNames = [...]string{
	StructuralModelling: "structural-modelling",
	Exhaustiveness:      "exhaustiveness",
	DomainSafety:        "domain-safety",
	ErrorHandling:       "error-handling",
	LogicStructure:      "logic-structure",
	Organisation:        "organisation",
}

var tagTitles = [...]string{
	StructuralModelling: "Structural Modelling",
	Exhaustiveness:      "Exhaustiveness",
	DomainSafety:        "Domain Safety",
	ErrorHandling:       "Error Handling",
	LogicStructure:      "Logic Structure",
	Organisation:        "Organisation",
}

// tagSpellings lists normalized spellings (lowercase letters only) in the
// order they are tried when searching free text for a tag.
var tagSpellings = []struct {
	key string
	tag Tag
}{
	{"structuralmodelling", StructuralModelling},
	{"structuralmodeling", StructuralModelling},
	{"exhaustiveness", Exhaustiveness},
	{"domainsafety", DomainSafety},
	{"errorhandling", ErrorHandling},
	{"logicstructure", LogicStructure},
	{"organisation", Organisation},
	{"organization", Organisation},
}

var tagAliases = func() map[string]Tag {
	m := make(map[string]Tag, len(tagSpellings))
	for _, s := range tagSpellings {
		m[s.key] = s.tag
	}
	return m
}()

// AllTags returns every tag in enumeration order.
func AllTags() []Tag {
	return []Tag{StructuralModelling, Exhaustiveness, DomainSafety, ErrorHandling, LogicStructure, Organisation}
}

// Valid reports whether t is one of the enumerated tags.
func (t Tag) Valid() bool {
	return t >= StructuralModelling && t <= Organisation
}

// String returns the canonical kebab-case name.
func (t Tag) String() string {
	if !t.Valid() {
		return "tag(" + strconv.Itoa(int(t)) + ")"
	}
	return tagNames[t]
}

// Title returns a human-readable heading for t.
func (t Tag) Title() string {
	if !t.Valid() {
		return t.String()
	}
	return tagTitles[t]
}

// ParseTag resolves s to a Tag. Matching ignores case, spaces, dashes and
// underscores, and accepts US spellings.
func ParseTag(s string) (Tag, error) {
	if t, ok := tagAliases[normalizeTagName(s)]; ok {
		return t, nil
	}
	return 0, &InvalidTagError{Value: s}
}

// MustParseTag is like ParseTag but panics on error.
func MustParseTag(s string) Tag {
	t, err := ParseTag(s)
	if err != nil {
		panic(err)
	}
	return t
}

// ParseTags resolves every element of names, stopping at the first failure.
func ParseTags(names []string) ([]Tag, error) {
	tags := make([]Tag, 0, len(names))
	for _, n := range names {
		t, err := ParseTag(n)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, nil
}

// MarshalText implements encoding.TextMarshaler.
func (t Tag) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, &InvalidTagError{Tag: t}
	}
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tag) UnmarshalText(b []byte) error {
	parsed, err := ParseTag(string(b))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// UnmarshalYAML decodes a scalar tag name and reports its position on failure.
func (t *Tag) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return &InvalidTagError{
			Value: node.Value,
			Pos:   Position{Line: node.Line, Column: node.Column},
		}
	}
	parsed, err := ParseTag(node.Value)
	if err != nil {
		return &InvalidTagError{
			Value: node.Value,
			Pos:   Position{Line: node.Line, Column: node.Column},
		}
	}
	*t = parsed
	return nil
}

// MarshalYAML encodes t by its canonical name.
func (t Tag) MarshalYAML() (any, error) {
	if !t.Valid() {
		return nil, &InvalidTagError{Tag: t}
	}
	return t.String(), nil
}

func normalizeTagName(s string) string {
	var sb strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// findTag returns the first tag whose spelling occurs in free text such as
// "2. Exhaustiveness (the never trick)".
func findTag(text string) (Tag, bool) {
	norm := normalizeTagName(text)
	if t, ok := tagAliases[norm]; ok {
		return t, true
	}
	for _, s := range tagSpellings {
		if strings.Contains(norm, s.key) {
			return s.tag, true
		}
	}
	return 0, false
}
