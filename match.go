package bunpo

// Match is one detected grammar pattern: the rule's metadata plus where
// it occurred. TokenStart/TokenEnd delimit the half-open token range; the
// Span is the corresponding character range in the sentence.
type Match struct {
	RuleID  string `json:"id"`
	Name    string `json:"name"`
	Level   string `json:"level"`
	Meaning string `json:"meaning"`
	// Structure lists the matched surfaces in order.
	Structure  []string `json:"structure"`
	Span       Span     `json:"span"`
	TokenStart int      `json:"token_start"`
	TokenEnd   int      `json:"token_end"`
}

// Match finds every (rule, start position) pair whose conditions are
// satisfied by consecutive tokens. Sliding window, exhaustive:
// overlapping and nested matches are all reported, none ranked or
// deduplicated. Results are ordered by start index ascending, then by
// rule load order — exactly the iteration order of the two loops.
//
// The operation is pure and total: any token sequence (including an
// empty one) over a validated store produces a result without error.
func (s *RuleStore) Match(tokens []Token) []Match {
	if len(tokens) == 0 {
		return nil
	}
	spans := NewSpanIndex(tokens)

	var matches []Match
	for start := range tokens {
		for _, r := range s.rules {
			end := start + len(r.Pattern)
			if end > len(tokens) {
				continue
			}
			if !windowMatches(tokens, start, r.Pattern) {
				continue
			}
			structure := make([]string, 0, len(r.Pattern))
			for _, t := range tokens[start:end] {
				structure = append(structure, t.Surface)
			}
			matches = append(matches, Match{
				RuleID:     r.ID,
				Name:       r.Name,
				Level:      r.Level,
				Meaning:    r.Meaning,
				Structure:  structure,
				Span:       spans.Span(start, end),
				TokenStart: start,
				TokenEnd:   end,
			})
		}
	}
	return matches
}

// windowMatches reports whether tokens[start:start+len(pattern)] satisfy
// the pattern condition by condition. The caller has already checked
// that the window fits.
func windowMatches(tokens []Token, start int, pattern []Condition) bool {
	for k, cond := range pattern {
		if !cond.Matches(tokens[start+k]) {
			return false
		}
	}
	return true
}
