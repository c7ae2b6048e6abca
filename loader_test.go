package fsharpstyle

import (
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chunkedReader simulates a slow stream in tests.
type chunkedReader struct {
	data  []byte
	pos   int
	chunk int
}

func (c *chunkedReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.data) {
		return 0, io.EOF
	}
	n := min(c.chunk, len(c.data)-c.pos, len(p))
	copy(p, c.data[c.pos:c.pos+n])
	c.pos += n
	return n, nil
}

const sampleYAML = `rules:
  - tag: exhaustiveness
    text: Add a default branch.
  - tag: Domain Safety
    text: |
      Brand every identifier.
  - tag: exhaustiveness
    text: Switch on kind.
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func Test_LoadYAML(t *testing.T) {
	t.Run("should load rules in document order", func(t *testing.T) {
		c, err := LoadYAML(&chunkedReader{data: []byte(sampleYAML), chunk: 7})
		require.NoError(t, err)
		want := []Rule{
			MustRule(Exhaustiveness, "Add a default branch."),
			MustRule(DomainSafety, "Brand every identifier."),
			MustRule(Exhaustiveness, "Switch on kind."),
		}
		if diff := cmp.Diff(want, c.AllRules(), ruleCmp); diff != "" {
			t.Errorf("LoadYAML mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should treat an empty document as an empty catalog", func(t *testing.T) {
		for _, in := range []string{"", "\n", "rules:\n", "rules: []\n"} {
			c, err := LoadYAML(strings.NewReader(in))
			require.NoError(t, err, "%q", in)
			assert.Equal(t, 0, c.Len())
		}
	})

	t.Run("should report an unknown tag with its position", func(t *testing.T) {
		in := "rules:\n  - tag: exhaustiveness\n    text: ok\n  - tag: currying\n    text: nope\n"
		_, err := LoadYAML(strings.NewReader(in))
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, Position{Line: 4, Column: 10}, pe.Pos)
		assert.Contains(t, pe.Context, "-> 4:")
		assert.ErrorIs(t, err, ErrInvalidTag)
	})

	t.Run("should reject unknown keys", func(t *testing.T) {
		_, err := LoadYAML(strings.NewReader("rules:\n  - tag: exhaustiveness\n    text: ok\n    weight: 2\n"))
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Contains(t, pe.Message, `unknown rule key "weight"`)
		assert.Equal(t, 4, pe.Pos.Line)

		_, err = LoadYAML(strings.NewReader("prompts: []\n"))
		require.ErrorAs(t, err, &pe)
		assert.Contains(t, pe.Message, `unknown key "prompts"`)
	})

	t.Run("should reject blank and missing text", func(t *testing.T) {
		_, err := LoadYAML(strings.NewReader("rules:\n  - tag: exhaustiveness\n    text: '  '\n"))
		assert.ErrorIs(t, err, ErrEmptyRuleText)

		_, err = LoadYAML(strings.NewReader("rules:\n  - tag: exhaustiveness\n"))
		assert.ErrorIs(t, err, ErrEmptyRuleText)
	})

	t.Run("should reject the wrong shapes", func(t *testing.T) {
		for _, in := range []string{"- a\n- b\n", "rules: 3\n", "rules:\n  - just text\n", "rules:\n  - text: x\n"} {
			_, err := LoadYAML(strings.NewReader(in))
			var pe *ParseError
			assert.ErrorAs(t, err, &pe, "%q", in)
		}
	})

	t.Run("should report malformed yaml", func(t *testing.T) {
		_, err := LoadYAML(strings.NewReader("rules: [\n"))
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Contains(t, pe.Message, "malformed yaml")
	})

	t.Run("should run validators with the text position", func(t *testing.T) {
		v := NewValidatorRegistry()
		v.RegisterAll(MaxLength(10))
		_, err := NewLoader(WithValidators(v)).Read(strings.NewReader(sampleYAML), "sample.yaml")
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, Exhaustiveness, ve.Tag)
		assert.Equal(t, Position{Line: 3, Column: 11}, ve.Pos)
		assert.Equal(t, "sample.yaml", ve.Source)
		assert.NotEmpty(t, ve.Context)
	})
}

func Test_WriteYAML(t *testing.T) {
	t.Run("should round trip the default catalog", func(t *testing.T) {
		var buf bytes.Buffer
		require.NoError(t, WriteYAML(&buf, Default()))
		assert.True(t, strings.HasPrefix(buf.String(), "rules:\n"))
		assert.Contains(t, buf.String(), "tag: structural-modelling\n")

		back, err := LoadYAML(&buf)
		require.NoError(t, err)
		if diff := cmp.Diff(Default().AllRules(), back.AllRules(), ruleCmp); diff != "" {
			t.Errorf("round trip mismatch (-want +got):\n%s", diff)
		}
	})
}

func Test_LoadGlob(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b.yaml", "rules:\n  - tag: organisation\n    text: B\n")
	writeFile(t, dir, "a.yaml", "rules:\n  - tag: organisation\n    text: A\n")
	writeFile(t, dir, "nested/c.yaml", "rules:\n  - tag: logic-structure\n    text: C\n")
	writeFile(t, dir, "notes.txt", "not a catalog")

	ruleTexts := func(c *Catalog) []string {
		var out []string
		for _, r := range c.AllRules() {
			out = append(out, r.Text())
		}
		return out
	}

	t.Run("should load matches in lexical order", func(t *testing.T) {
		c, err := NewLoader().LoadGlob(filepath.Join(dir, "*.yaml"))
		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B"}, ruleTexts(c))
	})

	t.Run("should recurse with double star and read each file once", func(t *testing.T) {
		c, err := NewLoader().LoadGlob(filepath.Join(dir, "nested", "c.yaml"), filepath.Join(dir, "**", "*.yaml"))
		require.NoError(t, err)
		assert.Equal(t, []string{"C", "A", "B"}, ruleTexts(c))
	})

	t.Run("should fail for a missing explicit file", func(t *testing.T) {
		_, err := NewLoader().LoadGlob(filepath.Join(dir, "missing.yaml"))
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("should accept a glob with no matches", func(t *testing.T) {
		c, err := NewLoader().LoadGlob(filepath.Join(dir, "*.yml"))
		require.NoError(t, err)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("should name the file in parse errors", func(t *testing.T) {
		bad := writeFile(t, t.TempDir(), "bad.yaml", "rules:\n  - tag: nope\n    text: x\n")
		_, err := LoadFile(bad)
		var pe *ParseError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, bad, pe.Source)
		assert.Contains(t, err.Error(), bad)
	})
}
