package index

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
)

// Builder accumulates normalized documents and turns them into an Index.
// It is not safe for concurrent use.
type Builder struct {
	counts   map[string]map[string]int
	maxCount map[string]int
	docFreq  map[string]int
}

func NewBuilder() *Builder {
	return &Builder{
		counts:   make(map[string]map[string]int),
		maxCount: make(map[string]int),
		docFreq:  make(map[string]int),
	}
}

// Add records one document's terms. Raw counts are gathered in a single pass
// into a map owned by this document alone; df is bumped once per distinct
// term.
func (b *Builder) Add(docID string, terms []string) error {
	if docID == "" {
		return apperrors.Invalid("document id must not be empty")
	}
	if strings.ContainsFunc(docID, unicode.IsSpace) {
		return apperrors.Invalid("document id %q contains whitespace", docID)
	}
	if _, exists := b.counts[docID]; exists {
		return fmt.Errorf("adding document %q: %w", docID, apperrors.ErrDocumentExists)
	}

	counts := make(map[string]int, len(terms))
	maxCount := 0
	for _, term := range terms {
		counts[term]++
		if counts[term] > maxCount {
			maxCount = counts[term]
		}
	}
	for term := range counts {
		b.docFreq[term]++
	}
	b.counts[docID] = counts
	b.maxCount[docID] = maxCount
	return nil
}

// Len returns the number of documents added so far.
func (b *Builder) Len() int {
	return len(b.counts)
}

// Build computes idf over all added documents and the max-normalized tf
// vector of each one.
func (b *Builder) Build() *Index {
	n := float64(len(b.counts))
	idf := make(IdfTable, len(b.docFreq))
	for term, df := range b.docFreq {
		idf[term] = math.Log(n / float64(df))
	}

	docs := make(map[string]DocVector, len(b.counts))
	for docID, counts := range b.counts {
		vec := make(DocVector, len(counts))
		maxCount := float64(b.maxCount[docID])
		for term, c := range counts {
			vec[term] = float64(c) / maxCount
		}
		docs[docID] = vec
	}
	return New(idf, docs)
}

// Build indexes a complete corpus of already normalized documents.
func Build(corpus map[string][]string) (*Index, error) {
	b := NewBuilder()
	for docID, terms := range corpus {
		if err := b.Add(docID, terms); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
