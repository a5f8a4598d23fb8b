package bunpo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleStoreValidation(t *testing.T) {
	valid := Rule{ID: "ok", Pattern: []Condition{{}}}

	tests := []struct {
		name  string
		rules []Rule
	}{
		{"empty id", []Rule{{Pattern: []Condition{{}}}}},
		{"empty pattern", []Rule{{ID: "r1"}}},
		{"duplicate id", []Rule{valid, valid}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRuleStore(tt.rules)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfig)
		})
	}

	s, err := NewRuleStore([]Rule{valid})
	require.NoError(t, err)
	assert.Equal(t, 1, s.Len())
}

func TestNewRuleStoreEmpty(t *testing.T) {
	// A rule set with no rules is valid; it just never matches.
	s, err := NewRuleStore(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, s.Match(ikanakereba()))
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "pos", FieldPOS.String())
	assert.Equal(t, "lemma", FieldLemma.String())
	assert.Equal(t, "surface", FieldSurface.String())
	assert.Equal(t, "conj", FieldConj.String())
}
