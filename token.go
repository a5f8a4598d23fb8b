package bunpo

import (
	"context"
	"strings"
)

// ConjNone is the conjugation-form value carried by tokens that do not
// inflect (nouns, particles, symbols). It follows the IPA dictionary
// convention of marking empty feature slots with "*". A rule condition
// that specifies conj "*" therefore matches only non-inflecting tokens.
const ConjNone = "*"

// Token is one morphological unit of a sentence as produced by the
// tokenizer. Tokens are plain values; nothing in this package mutates
// them after creation.
type Token struct {
	// Surface is the exact substring of the input sentence.
	Surface string `json:"surface"`
	// Lemma is the dictionary (citation) form. The tokenizer adapter
	// guarantees it is never empty: unknown words carry their surface.
	Lemma string `json:"lemma"`
	// POS is the part-of-speech tag, e.g. 動詞, 助詞, 助動詞.
	POS string `json:"pos"`
	// Conj is the conjugation-form tag, e.g. 未然形, 連用形, or
	// ConjNone for tokens that do not inflect.
	Conj string `json:"conj"`
}

// Tokenizer is the external morphological analyzer. Implementations must
// return tokens whose concatenated surfaces reproduce the input sentence
// exactly; span computation depends on it. The context cancels an
// in-flight analysis — tokenization is the only suspension point in the
// whole pipeline.
type Tokenizer interface {
	Tokenize(ctx context.Context, sentence string) ([]Token, error)
}

// Reconstructs reports whether concatenating the token surfaces in order
// reproduces sentence exactly. Callers use it to detect tokenizers that
// drop or normalize characters, which would silently misalign spans.
func Reconstructs(sentence string, tokens []Token) bool {
	var b strings.Builder
	b.Grow(len(sentence))
	for _, t := range tokens {
		b.WriteString(t.Surface)
	}
	return b.String() == sentence
}
