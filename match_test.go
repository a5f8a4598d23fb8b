package bunpo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ikanakereba is 行かなければならない segmented the way the IPA
// dictionary segments it.
func ikanakereba() []Token {
	return []Token{
		{Surface: "行か", Lemma: "行く", POS: "動詞", Conj: "未然形"},
		{Surface: "なければ", Lemma: "ない", POS: "助動詞", Conj: "仮定形"},
		{Surface: "ならない", Lemma: "なる", POS: "動詞", Conj: "基本形"},
	}
}

func mustStore(t *testing.T, rules ...Rule) *RuleStore {
	t.Helper()
	s, err := NewRuleStore(rules)
	require.NoError(t, err)
	return s
}

func TestMatchNakerebanaranai(t *testing.T) {
	s := mustStore(t, Rule{
		ID:      "n4_nakerebanaranai",
		Name:    "〜なければならない",
		Level:   "N4",
		Meaning: "必须……",
		Pattern: []Condition{
			{{FieldConj, "未然形"}},
			{{FieldSurface, "なければ"}},
			{{FieldSurface, "ならない"}},
		},
	})

	matches := s.Match(ikanakereba())
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "n4_nakerebanaranai", m.RuleID)
	assert.Equal(t, "N4", m.Level)
	assert.Equal(t, "必须……", m.Meaning)
	assert.Equal(t, []string{"行か", "なければ", "ならない"}, m.Structure)
	assert.Equal(t, 0, m.TokenStart)
	assert.Equal(t, 3, m.TokenEnd)
	assert.Equal(t, Span{Start: 0, End: 10}, m.Span)
}

func TestMatchEmptyTokens(t *testing.T) {
	s := mustStore(t, Rule{ID: "r1", Pattern: []Condition{{}}})
	assert.Empty(t, s.Match(nil))
	assert.Empty(t, s.Match([]Token{}))
}

func TestMatchWildcardCondition(t *testing.T) {
	// An empty condition matches every token, so a one-condition rule
	// matches at every position.
	s := mustStore(t, Rule{ID: "any", Pattern: []Condition{{}}})
	tokens := ikanakereba()

	matches := s.Match(tokens)
	require.Len(t, matches, len(tokens))
	for i, m := range matches {
		assert.Equal(t, i, m.TokenStart)
		assert.Equal(t, i+1, m.TokenEnd)
	}
}

func TestMatchExactFieldEquality(t *testing.T) {
	tokens := ikanakereba()
	tests := []struct {
		name string
		cond Condition
		want int // number of matches over ikanakereba
	}{
		{"pos exact", Condition{{FieldPOS, "動詞"}}, 2},
		{"pos miss", Condition{{FieldPOS, "名詞"}}, 0},
		{"lemma exact", Condition{{FieldLemma, "行く"}}, 1},
		{"surface exact", Condition{{FieldSurface, "なければ"}}, 1},
		{"conj exact", Condition{{FieldConj, "仮定形"}}, 1},
		{"two fields both", Condition{{FieldPOS, "動詞"}, {FieldConj, "未然形"}}, 1},
		{"two fields one miss", Condition{{FieldPOS, "動詞"}, {FieldConj, "仮定形"}}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustStore(t, Rule{ID: "r", Pattern: []Condition{tt.cond}})
			assert.Len(t, s.Match(tokens), tt.want)
		})
	}
}

func TestMatchConjSentinel(t *testing.T) {
	tokens := []Token{
		{Surface: "学校", Lemma: "学校", POS: "名詞", Conj: ConjNone},
		{Surface: "行く", Lemma: "行く", POS: "動詞", Conj: "基本形"},
	}
	s := mustStore(t, Rule{ID: "uninflected", Pattern: []Condition{{{FieldConj, ConjNone}}}})

	matches := s.Match(tokens)
	require.Len(t, matches, 1)
	assert.Equal(t, 0, matches[0].TokenStart)
}

func TestMatchWindowBeyondEnd(t *testing.T) {
	// A pattern longer than the remaining tokens cannot start there.
	s := mustStore(t, Rule{ID: "long", Pattern: []Condition{{}, {}, {}, {}}})
	assert.Empty(t, s.Match(ikanakereba()))
}

func TestMatchOverlappingRulesOrdering(t *testing.T) {
	// Two rules match overlapping ranges: both must be reported,
	// ordered by start index, then by load order within a start index.
	verb := Rule{ID: "verb", Pattern: []Condition{{{FieldPOS, "動詞"}}}}
	pair := Rule{ID: "pair", Pattern: []Condition{{{FieldPOS, "動詞"}}, {{FieldPOS, "助動詞"}}}}
	s := mustStore(t, verb, pair)

	matches := s.Match(ikanakereba())
	require.Len(t, matches, 3)
	assert.Equal(t, "verb", matches[0].RuleID)
	assert.Equal(t, 0, matches[0].TokenStart)
	assert.Equal(t, "pair", matches[1].RuleID)
	assert.Equal(t, 0, matches[1].TokenStart)
	assert.Equal(t, "verb", matches[2].RuleID)
	assert.Equal(t, 2, matches[2].TokenStart)
}

func TestMatchNoSuppressionOfNestedMatches(t *testing.T) {
	// The same rule matching at several positions is reported once per
	// position, never deduplicated.
	s := mustStore(t, Rule{ID: "na", Pattern: []Condition{{{FieldLemma, "ない"}}}})
	tokens := []Token{
		{Surface: "ない", Lemma: "ない", POS: "助動詞", Conj: "基本形"},
		{Surface: "ない", Lemma: "ない", POS: "助動詞", Conj: "基本形"},
	}
	matches := s.Match(tokens)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].TokenStart)
	assert.Equal(t, 1, matches[1].TokenStart)
}

func TestMatchDeterminism(t *testing.T) {
	s := mustStore(t,
		Rule{ID: "a", Pattern: []Condition{{{FieldPOS, "動詞"}}}},
		Rule{ID: "b", Pattern: []Condition{{}, {}}},
	)
	tokens := ikanakereba()

	first := s.Match(tokens)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, s.Match(tokens))
	}
}
