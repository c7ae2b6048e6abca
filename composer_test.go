package fsharpstyle

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func texts(t *testing.T, c *Catalog, tag Tag) []string {
	t.Helper()
	rules, err := c.RulesByTag(tag)
	require.NoError(t, err)
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Text()
	}
	return out
}

func Test_Composer(t *testing.T) {
	t.Run("should return the single rule text for a one-rule catalog", func(t *testing.T) {
		c := NewComposer(MustCatalog(MustRule(Exhaustiveness, "Add a default branch.")))
		out, err := c.Compose(Exhaustiveness)
		require.NoError(t, err)
		assert.Equal(t, "Add a default branch.", out)
	})

	t.Run("should equal the line-break join of RulesByTag for any single tag", func(t *testing.T) {
		c := NewComposer(Default())
		for _, tag := range AllTags() {
			out, err := c.Compose(tag)
			require.NoError(t, err)
			assert.Equal(t, strings.Join(texts(t, Default(), tag), "\n"), out, tag.String())
		}
	})

	t.Run("should fail with ErrEmptyTagSet when no tags are given", func(t *testing.T) {
		_, err := NewComposer(Default()).Compose()
		assert.ErrorIs(t, err, ErrEmptyTagSet)

		_, err = Compose()
		assert.ErrorIs(t, err, ErrEmptyTagSet)
	})

	t.Run("should follow caller tag order, not catalog order", func(t *testing.T) {
		c := NewComposer(newTestCatalog(t))
		out, err := c.Compose(Organisation, Exhaustiveness)
		require.NoError(t, err)
		assert.Equal(t, "One module per concept.\nAdd a default branch.\nSwitch on kind.", out)
	})

	t.Run("should skip tags that yield no rules", func(t *testing.T) {
		c := NewComposer(newTestCatalog(t))
		out, err := c.Compose(DomainSafety, StructuralModelling, ErrorHandling)
		require.NoError(t, err)
		assert.Equal(t, "Use unions.", out)

		out, err = c.Compose(DomainSafety)
		require.NoError(t, err)
		assert.Equal(t, "", out)
	})

	t.Run("should fail on an invalid tag", func(t *testing.T) {
		_, err := NewComposer(Default()).Compose(Exhaustiveness, Tag(17))
		assert.ErrorIs(t, err, ErrInvalidTag)
	})

	t.Run("should emit repeated tags once by default", func(t *testing.T) {
		c := NewComposer(newTestCatalog(t))
		out, err := c.Compose(StructuralModelling, StructuralModelling)
		require.NoError(t, err)
		assert.Equal(t, "Use unions.", out)
	})

	t.Run("should repeat duplicated tags when asked to", func(t *testing.T) {
		c := NewComposer(newTestCatalog(t), WithDuplicatePolicy(DuplicateRepeat))
		out, err := c.Compose(StructuralModelling, StructuralModelling)
		require.NoError(t, err)
		assert.Equal(t, "Use unions.\nUse unions.", out)
	})

	t.Run("should use a custom separator", func(t *testing.T) {
		c := NewComposer(newTestCatalog(t), WithSeparator(" "))
		out, err := c.Compose(Exhaustiveness)
		require.NoError(t, err)
		assert.Equal(t, "Add a default branch. Switch on kind.", out)
	})

	t.Run("should be deterministic", func(t *testing.T) {
		tags := []Tag{LogicStructure, ErrorHandling, StructuralModelling}
		first, err := Compose(tags...)
		require.NoError(t, err)
		for i := 0; i < 5; i++ {
			again, err := Compose(tags...)
			require.NoError(t, err)
			assert.Equal(t, first, again)
		}
	})

	t.Run("should log each composition at debug level", func(t *testing.T) {
		core, logs := observer.New(zap.DebugLevel)
		c := NewComposer(newTestCatalog(t), WithLogger(zap.New(core)))
		_, err := c.Compose(Exhaustiveness)
		require.NoError(t, err)
		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		assert.Equal(t, "composed instruction block", entry.Message)
		assert.Equal(t, "plain", entry.ContextMap()["format"])
	})

	t.Run("should compose concurrently", func(t *testing.T) {
		c := NewComposer(Default())
		want, err := c.Compose(AllTags()...)
		require.NoError(t, err)
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				got, err := c.Compose(AllTags()...)
				assert.NoError(t, err)
				assert.Equal(t, want, got)
			}()
		}
		wg.Wait()
	})
}

func Test_Composer_Prompt(t *testing.T) {
	c := NewComposer(newTestCatalog(t))

	t.Run("should put the block before the request", func(t *testing.T) {
		out, err := c.Prompt("  Write an area function.\n", StructuralModelling)
		require.NoError(t, err)
		assert.Equal(t, "Use unions.\n\nWrite an area function.", out)
	})

	t.Run("should return the bare request when no rule matches", func(t *testing.T) {
		out, err := c.Prompt("Write it.", DomainSafety)
		require.NoError(t, err)
		assert.Equal(t, "Write it.", out)
	})

	t.Run("should reject an empty request", func(t *testing.T) {
		_, err := c.Prompt("   ", StructuralModelling)
		assert.ErrorIs(t, err, ErrEmptyRequest)
	})

	t.Run("should reject an empty tag set", func(t *testing.T) {
		_, err := c.Prompt("Write it.")
		assert.ErrorIs(t, err, ErrEmptyTagSet)
	})
}
