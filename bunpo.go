// Package bunpo annotates Japanese sentences with the grammar patterns
// they exhibit and the JLPT proficiency level of each word, given the
// morphological token sequence of an external analyzer.
//
// The rule set and vocabulary map are loaded once at startup, validated,
// and then shared read-only across all requests. Per request the engine
// slides every rule over the token sequence, reporting every satisfied
// (rule, start) pair with its character span, and merges per-token
// vocabulary levels into the final Analysis.
package bunpo

import "context"

// AnnotatedToken is a token plus its resolved vocabulary level.
// JLPTLevel is empty when neither surface nor lemma is in the store.
type AnnotatedToken struct {
	Token
	JLPTLevel string `json:"jlpt_level,omitempty"`
}

// Analysis is the result of analyzing one sentence. It is constructed
// once, never mutated, and owned by the request that produced it.
type Analysis struct {
	Sentence string           `json:"sentence"`
	Tokens   []AnnotatedToken `json:"tokens"`
	Matches  []Match          `json:"grammar_patterns"`
	// SpansReliable is false when the token surfaces do not reconstruct
	// the sentence exactly; the match spans are then best-effort and
	// must not be trusted for highlighting.
	SpansReliable bool `json:"spans_reliable"`
}

// Analyzer ties the tokenizer, rule store, and vocabulary store
// together. All three are set at construction and never replaced, so an
// Analyzer is safe for arbitrarily many concurrent Analyze calls.
type Analyzer struct {
	tokenizer Tokenizer
	rules     *RuleStore
	vocab     *VocabularyStore
}

// NewAnalyzer returns an Analyzer over the given collaborators.
func NewAnalyzer(tokenizer Tokenizer, rules *RuleStore, vocab *VocabularyStore) *Analyzer {
	return &Analyzer{tokenizer: tokenizer, rules: rules, vocab: vocab}
}

// Rules exposes the loaded rule store.
func (a *Analyzer) Rules() *RuleStore {
	return a.rules
}

// Vocabulary exposes the loaded vocabulary store.
func (a *Analyzer) Vocabulary() *VocabularyStore {
	return a.vocab
}

// Analyze tokenizes sentence and annotates the result. The tokenizer
// call is the only operation that can fail or block; ctx cancellation
// propagates to it and the partial result is abandoned.
func (a *Analyzer) Analyze(ctx context.Context, sentence string) (*Analysis, error) {
	tokens, err := a.tokenizer.Tokenize(ctx, sentence)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeTokens(sentence, tokens), nil
}

// AnalyzeTokens annotates an already-tokenized sentence. Pure function
// of its inputs: same tokens and stores always yield an identical
// Analysis.
func (a *Analyzer) AnalyzeTokens(sentence string, tokens []Token) *Analysis {
	annotated := make([]AnnotatedToken, 0, len(tokens))
	for _, t := range tokens {
		at := AnnotatedToken{Token: t}
		if level, ok := a.vocab.LevelFor(t); ok {
			at.JLPTLevel = level
		}
		annotated = append(annotated, at)
	}
	return &Analysis{
		Sentence:      sentence,
		Tokens:        annotated,
		Matches:       a.rules.Match(tokens),
		SpansReliable: Reconstructs(sentence, tokens),
	}
}
