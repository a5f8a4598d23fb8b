package bunpo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// ErrConfig marks a malformed rule or vocabulary source detected at load
// time. Loading is all-or-nothing: a store is either fully validated or
// not constructed, so the process never serves requests over a partial
// store.
var ErrConfig = errors.New("invalid configuration")

// conditionFields is the canonical field order used when converting a
// source condition object; it keeps Condition layout deterministic
// regardless of JSON key order.
var conditionFields = [...]Field{FieldPOS, FieldLemma, FieldSurface, FieldConj}

// ruleSource mirrors one entry of the grammar_rules.json contract.
type ruleSource struct {
	ID      string              `json:"id"`
	Name    string              `json:"name"`
	Level   string              `json:"level"`
	Meaning string              `json:"meaning"`
	Pattern []map[string]string `json:"pattern"`
}

// LoadRules reads and validates a grammar rule file.
func LoadRules(path string) (*RuleStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	store, err := ParseRules(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// ParseRules decodes a JSON array of rules and validates it: unique
// non-empty ids, non-empty patterns, condition keys restricted to
// pos/lemma/surface/conj with string values.
func ParseRules(r io.Reader) (*RuleStore, error) {
	var sources []ruleSource
	if err := decodeStrict(r, &sources); err != nil {
		return nil, fmt.Errorf("%w: parse rules: %v", ErrConfig, err)
	}

	rules := make([]Rule, 0, len(sources))
	for _, src := range sources {
		pattern := make([]Condition, 0, len(src.Pattern))
		for i, condSrc := range src.Pattern {
			cond, err := parseCondition(condSrc)
			if err != nil {
				return nil, fmt.Errorf("%w: rule %q: condition %d: %v", ErrConfig, src.ID, i, err)
			}
			pattern = append(pattern, cond)
		}
		rules = append(rules, Rule{
			ID:      src.ID,
			Name:    src.Name,
			Level:   src.Level,
			Meaning: src.Meaning,
			Pattern: pattern,
		})
	}
	return NewRuleStore(rules)
}

// parseCondition converts a source condition object into field tests in
// canonical order, rejecting unknown keys.
func parseCondition(src map[string]string) (Condition, error) {
	for key := range src {
		if _, ok := fieldOf(key); !ok {
			return nil, fmt.Errorf("unknown field %q", key)
		}
	}
	cond := make(Condition, 0, len(src))
	for _, f := range conditionFields {
		if want, ok := src[f.String()]; ok {
			cond = append(cond, FieldTest{Field: f, Want: want})
		}
	}
	return cond, nil
}

// LoadVocabulary reads and validates a vocabulary level file.
func LoadVocabulary(path string) (*VocabularyStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	store, err := ParseVocabulary(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return store, nil
}

// ParseVocabulary decodes a flat JSON object mapping word form to level
// label. Non-string values fail with ErrConfig.
func ParseVocabulary(r io.Reader) (*VocabularyStore, error) {
	var entries map[string]string
	if err := decodeStrict(r, &entries); err != nil {
		return nil, fmt.Errorf("%w: parse vocabulary: %v", ErrConfig, err)
	}
	return NewVocabularyStore(entries), nil
}

// decodeStrict decodes a single JSON value and rejects trailing content.
func decodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	if err := dec.Decode(v); err != nil {
		return err
	}
	if _, err := dec.Token(); err != io.EOF {
		return errors.New("trailing data after JSON document")
	}
	return nil
}
