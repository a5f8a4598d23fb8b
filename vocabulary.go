package bunpo

// VocabularyStore maps word forms to JLPT proficiency levels (N5 easiest
// through N1 hardest). Lookup is exact-string and form-sensitive. The
// store is immutable after construction and safe for concurrent reads.
type VocabularyStore struct {
	levels map[string]string
}

// NewVocabularyStore builds a store over entries. The map is not copied;
// callers hand over ownership.
func NewVocabularyStore(entries map[string]string) *VocabularyStore {
	if entries == nil {
		entries = map[string]string{}
	}
	return &VocabularyStore{levels: entries}
}

// Lookup returns the level for an exact word form.
func (v *VocabularyStore) Lookup(word string) (string, bool) {
	level, ok := v.levels[word]
	return level, ok
}

// LevelFor resolves a token's level: the surface form first, then the
// lemma. An inflected form listed in the vocabulary wins over its
// dictionary form; otherwise the lemma carries the level for every
// inflection of the word.
func (v *VocabularyStore) LevelFor(t Token) (string, bool) {
	if level, ok := v.levels[t.Surface]; ok {
		return level, true
	}
	level, ok := v.levels[t.Lemma]
	return level, ok
}

// Len returns the number of vocabulary entries.
func (v *VocabularyStore) Len() int {
	return len(v.levels)
}
