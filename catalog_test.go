package fsharpstyle

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ruleCmp = cmp.AllowUnexported(Rule{})

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := NewCatalog(
		MustRule(Exhaustiveness, "Add a default branch."),
		MustRule(StructuralModelling, "Use unions."),
		MustRule(Exhaustiveness, "Switch on kind."),
		MustRule(Organisation, "One module per concept."),
	)
	require.NoError(t, err)
	return c
}

func Test_Rule(t *testing.T) {
	t.Run("should trim text and keep the tag", func(t *testing.T) {
		r, err := NewRule(ErrorHandling, "  Return a Result.\n")
		require.NoError(t, err)
		assert.Equal(t, ErrorHandling, r.Tag())
		assert.Equal(t, "Return a Result.", r.Text())
		assert.Equal(t, "error-handling: Return a Result.", r.String())
	})

	t.Run("should reject blank text", func(t *testing.T) {
		_, err := NewRule(ErrorHandling, " \t\n")
		assert.ErrorIs(t, err, ErrEmptyRuleText)
	})

	t.Run("should reject an invalid tag", func(t *testing.T) {
		_, err := NewRule(Tag(9), "text")
		assert.ErrorIs(t, err, ErrInvalidTag)
	})

	t.Run("should panic in MustRule on bad input", func(t *testing.T) {
		assert.Panics(t, func() { MustRule(DomainSafety, "") })
	})
}

func Test_Catalog(t *testing.T) {
	t.Run("should return all rules in insertion order", func(t *testing.T) {
		c := newTestCatalog(t)
		texts := []string{}
		for _, r := range c.AllRules() {
			texts = append(texts, r.Text())
		}
		assert.Equal(t, []string{"Add a default branch.", "Use unions.", "Switch on kind.", "One module per concept."}, texts)
		assert.Equal(t, 4, c.Len())
	})

	t.Run("should not let callers mutate the catalog through AllRules", func(t *testing.T) {
		c := newTestCatalog(t)
		rules := c.AllRules()
		rules[0] = MustRule(DomainSafety, "changed")
		assert.Equal(t, "Add a default branch.", c.AllRules()[0].Text())
	})

	t.Run("should filter by tag preserving order", func(t *testing.T) {
		c := newTestCatalog(t)
		got, err := c.RulesByTag(Exhaustiveness)
		require.NoError(t, err)
		want := []Rule{MustRule(Exhaustiveness, "Add a default branch."), MustRule(Exhaustiveness, "Switch on kind.")}
		if diff := cmp.Diff(want, got, ruleCmp); diff != "" {
			t.Errorf("RulesByTag mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("should return an empty slice for a valid tag without rules", func(t *testing.T) {
		c := newTestCatalog(t)
		got, err := c.RulesByTag(DomainSafety)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("should fail with InvalidTagError outside the enumeration", func(t *testing.T) {
		c := newTestCatalog(t)
		_, err := c.RulesByTag(Tag(6))
		var ite *InvalidTagError
		require.ErrorAs(t, err, &ite)
		assert.Equal(t, Tag(6), ite.Tag)
	})

	t.Run("should only return rules carrying the requested tag", func(t *testing.T) {
		for _, c := range []*Catalog{newTestCatalog(t), Default()} {
			for _, tag := range AllTags() {
				rules, err := c.RulesByTag(tag)
				require.NoError(t, err)
				for _, r := range rules {
					assert.Equal(t, tag, r.Tag())
				}
			}
		}
	})

	t.Run("should partition AllRules exactly across tags", func(t *testing.T) {
		for _, c := range []*Catalog{newTestCatalog(t), Default()} {
			perTag := map[Tag][]Rule{}
			total := 0
			for _, tag := range AllTags() {
				rules, err := c.RulesByTag(tag)
				require.NoError(t, err)
				perTag[tag] = rules
				total += len(rules)
			}
			assert.Equal(t, c.Len(), total)

			// Re-interleave the per-tag lists in catalog order.
			var merged []Rule
			next := map[Tag]int{}
			for _, r := range c.AllRules() {
				merged = append(merged, perTag[r.Tag()][next[r.Tag()]])
				next[r.Tag()]++
			}
			if diff := cmp.Diff(c.AllRules(), merged, ruleCmp); diff != "" {
				t.Errorf("partition mismatch (-want +got):\n%s", diff)
			}
		}
	})

	t.Run("should be idempotent", func(t *testing.T) {
		c := Default()
		for _, tag := range AllTags() {
			a, err := c.RulesByTag(tag)
			require.NoError(t, err)
			b, err := c.RulesByTag(tag)
			require.NoError(t, err)
			assert.True(t, cmp.Equal(a, b, ruleCmp))
		}
	})

	t.Run("should report distinct tags in first-appearance order", func(t *testing.T) {
		assert.Equal(t, []Tag{Exhaustiveness, StructuralModelling, Organisation}, newTestCatalog(t).Tags())
		assert.Equal(t, AllTags(), Default().Tags())
	})

	t.Run("should reject zero-value rules", func(t *testing.T) {
		_, err := NewCatalog(MustRule(Exhaustiveness, "ok"), Rule{})
		assert.ErrorIs(t, err, ErrEmptyRuleText)
	})

	t.Run("should concatenate without touching the inputs", func(t *testing.T) {
		a := newTestCatalog(t)
		b := MustCatalog(MustRule(DomainSafety, "Brand ids."))
		c := a.Concat(b)
		assert.Equal(t, 5, c.Len())
		assert.Equal(t, 4, a.Len())
		assert.Equal(t, "Brand ids.", c.AllRules()[4].Text())
	})

	t.Run("should serve concurrent readers", func(t *testing.T) {
		c := Default()
		want := c.AllRules()
		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func(tag Tag) {
				defer wg.Done()
				for j := 0; j < 100; j++ {
					if _, err := c.RulesByTag(tag); err != nil {
						t.Error(err)
						return
					}
					if !cmp.Equal(want, c.AllRules(), ruleCmp) {
						t.Error("AllRules changed under concurrent reads")
						return
					}
				}
			}(AllTags()[i%len(AllTags())])
		}
		wg.Wait()
	})
}
