package bunpo

import "unicode/utf8"

// Span is a half-open character range [Start, End) in the original
// sentence. Offsets count code points, not bytes: Japanese text is
// multi-byte in UTF-8 and byte offsets would land inside characters.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// SpanIndex resolves token ranges to character spans. Index i holds the
// cumulative rune count of tokens[0..i); the span of token range [i, j)
// is therefore [SpanIndex[i], SpanIndex[j]). Built once per request.
//
// Correct only while the reconstruction invariant holds (token surfaces
// concatenate to the exact sentence); see Reconstructs.
type SpanIndex []int

// NewSpanIndex precomputes the prefix sums for tokens.
func NewSpanIndex(tokens []Token) SpanIndex {
	prefix := make(SpanIndex, len(tokens)+1)
	for i, t := range tokens {
		prefix[i+1] = prefix[i] + utf8.RuneCountInString(t.Surface)
	}
	return prefix
}

// Span returns the character span of the token range [i, j).
func (x SpanIndex) Span(i, j int) Span {
	return Span{Start: x[i], End: x[j]}
}
