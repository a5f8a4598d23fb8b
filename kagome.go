package bunpo

import (
	"context"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// KagomeTokenizer is the production Tokenizer: the kagome morphological
// analyzer with the IPA dictionary. kagome segments text into the same
// surface/base-form/POS/inflection-form features this package matches
// against, and never drops or normalizes characters, so its output
// satisfies the reconstruction invariant.
type KagomeTokenizer struct {
	t *tokenizer.Tokenizer
}

// NewKagomeTokenizer builds the analyzer with the embedded IPA
// dictionary. Construction is expensive (the dictionary is loaded into
// memory); build one and share it, it is safe for concurrent use.
func NewKagomeTokenizer() (*KagomeTokenizer, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &KagomeTokenizer{t: t}, nil
}

// Tokenize analyzes sentence into tokens. Feature slots the dictionary
// leaves empty are normalized at this boundary: a missing base form
// falls back to the surface so Lemma is always a usable lookup key, and
// a missing inflection form becomes ConjNone.
func (k *KagomeTokenizer) Tokenize(ctx context.Context, sentence string) ([]Token, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if sentence == "" {
		return nil, nil
	}

	morphemes := k.t.Tokenize(sentence)
	tokens := make([]Token, 0, len(morphemes))
	for _, m := range morphemes {
		if m.Class == tokenizer.DUMMY || m.Surface == "" {
			continue
		}

		pos := ConjNone
		if p := m.POS(); len(p) > 0 && p[0] != "" {
			pos = p[0]
		}

		conj, ok := m.InflectionalForm()
		if !ok || conj == "" {
			conj = ConjNone
		}

		lemma, ok := m.BaseForm()
		if !ok || lemma == "" || lemma == "*" {
			lemma = m.Surface
		}

		tokens = append(tokens, Token{
			Surface: m.Surface,
			Lemma:   lemma,
			POS:     pos,
			Conj:    conj,
		})
	}
	return tokens, nil
}
