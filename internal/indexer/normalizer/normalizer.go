// Package normalizer turns raw text into the stem sequence that both the
// index builder and the query executor operate on. A single Normalizer must
// be shared by both paths; any divergence between them breaks matching.
package normalizer

import "strings"

// Normalizer splits text on whitespace, case-folds each word, strips every
// character that is not an ASCII letter, stems what is left and drops empty
// results. It holds no mutable state and is safe for concurrent use.
type Normalizer struct {
	stemmer Stemmer
}

// New returns a Normalizer using the given stemmer. A nil stemmer means no
// stemming.
func New(stemmer Stemmer) *Normalizer {
	if stemmer == nil {
		stemmer = None
	}
	return &Normalizer{stemmer: stemmer}
}

// NewByName resolves a stemmer by its configured name.
func NewByName(name string) (*Normalizer, error) {
	s, err := ByName(name)
	if err != nil {
		return nil, err
	}
	return New(s), nil
}

// Normalize returns the terms of text in order, duplicates retained.
func (n *Normalizer) Normalize(text string) []string {
	words := strings.Fields(text)
	terms := make([]string, 0, len(words))
	for _, word := range words {
		word = lettersOnly(strings.ToLower(word))
		if word == "" {
			continue
		}
		term := n.stemmer.Stem(word)
		if term == "" {
			continue
		}
		terms = append(terms, term)
	}
	return terms
}

// lettersOnly removes everything outside a-z, wherever it occurs in the word.
func lettersOnly(word string) string {
	clean := true
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			clean = false
			break
		}
	}
	if clean {
		return word
	}
	var b strings.Builder
	b.Grow(len(word))
	for i := 0; i < len(word); i++ {
		if c := word[i]; c >= 'a' && c <= 'z' {
			b.WriteByte(c)
		}
	}
	return b.String()
}
