package fsharpstyle

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"slices"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// catalogDoc is the YAML shape of a catalog file.
type catalogDoc struct {
	Rules []ruleDoc `yaml:"rules"`
}

type ruleDoc struct {
	Tag  Tag    `yaml:"tag"`
	Text string `yaml:"text"`
}

// Loader reads catalogs from YAML files.
type Loader struct {
	validators *ValidatorRegistry
	logger     *zap.Logger
}

func NewLoader(opts ...func(*Loader)) *Loader {
	l := &Loader{logger: zap.NewNop()}
	for _, o := range opts {
		o(l)
	}
	return l
}

// WithValidators runs v against every rule read by the loader.
func WithValidators(v *ValidatorRegistry) func(*Loader) {
	return func(l *Loader) { l.validators = v }
}

func WithLoaderLogger(lg *zap.Logger) func(*Loader) {
	return func(l *Loader) {
		if lg != nil {
			l.logger = lg
		}
	}
}

// LoadYAML reads a catalog document from r with a default Loader.
func LoadYAML(r io.Reader) (*Catalog, error) {
	return NewLoader().Read(r, "")
}

// LoadFile reads a catalog file with a default Loader.
func LoadFile(path string) (*Catalog, error) {
	return NewLoader().LoadFile(path)
}

// Read parses a catalog document. source names the input in errors.
func (l *Loader) Read(r io.Reader, source string) (*Catalog, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	p := &yamlParser{src: string(src), source: source, validators: l.validators}
	c, err := p.parse(src)
	if err != nil {
		return nil, err
	}
	l.logger.Debug("loaded catalog", zap.String("source", source), zap.Int("rules", c.Len()))
	return c, nil
}

// LoadFile reads the catalog stored at path.
func (l *Loader) LoadFile(path string) (*Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return l.Read(f, path)
}

// LoadGlob loads every file matched by patterns and concatenates them. Each
// pattern's matches are taken in lexical order; a file matched twice is read
// once. A pattern without glob syntax must name an existing file.
func (l *Loader) LoadGlob(patterns ...string) (*Catalog, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		if len(matches) == 0 && !hasMeta(pattern) {
			return nil, fmt.Errorf("catalog %s: %w", pattern, fs.ErrNotExist)
		}
		slices.Sort(matches)
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	catalogs := make([]*Catalog, 0, len(files))
	for _, f := range files {
		c, err := l.LoadFile(f)
		if err != nil {
			return nil, err
		}
		catalogs = append(catalogs, c)
	}
	l.logger.Debug("loaded catalog files", zap.Strings("files", files))
	return MustCatalog().Concat(catalogs...), nil
}

// WriteYAML encodes c as a catalog document that LoadYAML reads back.
func WriteYAML(w io.Writer, c *Catalog) error {
	doc := catalogDoc{Rules: make([]ruleDoc, 0, c.Len())}
	for _, r := range c.AllRules() {
		doc.Rules = append(doc.Rules, ruleDoc{Tag: r.Tag(), Text: r.Text()})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	return enc.Close()
}

func hasMeta(pattern string) bool {
	for _, c := range pattern {
		switch c {
		case '*', '?', '[', '{', '\\':
			return true
		}
	}
	return false
}

// yamlParser walks the node tree so errors can carry line and column.
type yamlParser struct {
	src        string
	source     string
	validators *ValidatorRegistry
}

func (p *yamlParser) errorAt(n *yaml.Node, message string, cause error) *ParseError {
	pos := Position{Line: n.Line, Column: n.Column}
	return &ParseError{
		Source:  p.source,
		Pos:     pos,
		Message: message,
		Context: extractContext(p.src, pos),
		Err:     cause,
	}
}

func (p *yamlParser) parse(src []byte) (*Catalog, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, &ParseError{Source: p.source, Message: "malformed yaml: " + err.Error(), Err: err}
	}
	if len(doc.Content) == 0 {
		return MustCatalog(), nil
	}
	root := doc.Content[0]
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return MustCatalog(), nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, p.errorAt(root, "catalog document must be a mapping", nil)
	}

	var rulesNode *yaml.Node
	for i := 0; i+1 < len(root.Content); i += 2 {
		key, val := root.Content[i], root.Content[i+1]
		if key.Value != "rules" {
			return nil, p.errorAt(key, fmt.Sprintf("unknown key %q", key.Value), nil)
		}
		rulesNode = val
	}
	if rulesNode == nil || (rulesNode.Kind == yaml.ScalarNode && rulesNode.Tag == "!!null") {
		return MustCatalog(), nil
	}
	if rulesNode.Kind != yaml.SequenceNode {
		return nil, p.errorAt(rulesNode, "rules must be a sequence", nil)
	}

	rules := make([]Rule, 0, len(rulesNode.Content))
	for _, item := range rulesNode.Content {
		r, err := p.parseRule(item)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return NewCatalog(rules...)
}

func (p *yamlParser) parseRule(item *yaml.Node) (Rule, error) {
	if item.Kind != yaml.MappingNode {
		return Rule{}, p.errorAt(item, "rule must be a mapping with tag and text", nil)
	}
	var tagNode, textNode *yaml.Node
	for i := 0; i+1 < len(item.Content); i += 2 {
		key, val := item.Content[i], item.Content[i+1]
		switch key.Value {
		case "tag":
			tagNode = val
		case "text":
			textNode = val
		default:
			return Rule{}, p.errorAt(key, fmt.Sprintf("unknown rule key %q", key.Value), nil)
		}
	}
	if tagNode == nil {
		return Rule{}, p.errorAt(item, "rule has no tag", nil)
	}
	if textNode == nil {
		return Rule{}, p.errorAt(item, "rule has no text", ErrEmptyRuleText)
	}

	var tag Tag
	if err := tag.UnmarshalYAML(tagNode); err != nil {
		return Rule{}, p.errorAt(tagNode, err.Error(), err)
	}
	if textNode.Kind != yaml.ScalarNode {
		return Rule{}, p.errorAt(textNode, "rule text must be a string", nil)
	}
	r, err := NewRule(tag, textNode.Value)
	if err != nil {
		return Rule{}, p.errorAt(textNode, err.Error(), err)
	}

	pos := Position{Line: textNode.Line, Column: textNode.Column}
	if err := p.validators.ValidateRule(tag, r.Text(), pos); err != nil {
		var ve *ValidationError
		if errors.As(err, &ve) && ve.Context == "" {
			ve.Context = extractContext(p.src, ve.Pos)
			ve.Source = p.source
		}
		return Rule{}, err
	}
	return r, nil
}
