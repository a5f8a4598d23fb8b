package bunpo

import "fmt"

// Field identifies a token field a condition can test.
type Field uint8

const (
	FieldPOS Field = iota
	FieldLemma
	FieldSurface
	FieldConj
)

// String returns the JSON key for the field.
func (f Field) String() string {
	switch f {
	case FieldPOS:
		return "pos"
	case FieldLemma:
		return "lemma"
	case FieldSurface:
		return "surface"
	case FieldConj:
		return "conj"
	default:
		return "unknown"
	}
}

// fieldOf maps a rule-source key to its Field.
func fieldOf(key string) (Field, bool) {
	switch key {
	case "pos":
		return FieldPOS, true
	case "lemma":
		return FieldLemma, true
	case "surface":
		return FieldSurface, true
	case "conj":
		return FieldConj, true
	default:
		return 0, false
	}
}

// FieldTest is a single (field, expected value) requirement.
type FieldTest struct {
	Field Field
	Want  string
}

// Condition is the requirement one token position must satisfy: every
// listed field must equal its expected value exactly. Fields not listed
// are wildcards. An empty Condition matches any token.
type Condition []FieldTest

// Matches reports whether t satisfies every test in the condition.
// Comparison is exact string equality on the raw token fields.
func (c Condition) Matches(t Token) bool {
	for _, ft := range c {
		var got string
		switch ft.Field {
		case FieldPOS:
			got = t.POS
		case FieldLemma:
			got = t.Lemma
		case FieldSurface:
			got = t.Surface
		case FieldConj:
			got = t.Conj
		}
		if got != ft.Want {
			return false
		}
	}
	return true
}

// Rule is one grammar construction to detect: an ordered sequence of
// conditions, one per consecutive token, plus descriptive metadata that
// is opaque to matching.
type Rule struct {
	ID      string
	Name    string
	Level   string
	Meaning string
	Pattern []Condition
}

// RuleStore is the validated, immutable rule collection. It is built once
// at startup and read by every request without locking; iteration order
// is load order, which is also the tie-break order for match results.
type RuleStore struct {
	rules []Rule
}

// NewRuleStore validates rules and returns a store over them. It fails
// with an ErrConfig-wrapped error on an empty or duplicate rule id or an
// empty pattern. The slice is not copied; callers hand over ownership.
func NewRuleStore(rules []Rule) (*RuleStore, error) {
	seen := make(map[string]struct{}, len(rules))
	for i, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("%w: rule %d: empty id", ErrConfig, i)
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate rule id %q", ErrConfig, r.ID)
		}
		seen[r.ID] = struct{}{}
		if len(r.Pattern) == 0 {
			return nil, fmt.Errorf("%w: rule %q: empty pattern", ErrConfig, r.ID)
		}
	}
	return &RuleStore{rules: rules}, nil
}

// Rules returns the rules in load order. The returned slice is shared;
// callers must not modify it.
func (s *RuleStore) Rules() []Rule {
	return s.rules
}

// Len returns the number of loaded rules.
func (s *RuleStore) Len() int {
	return len(s.rules)
}
