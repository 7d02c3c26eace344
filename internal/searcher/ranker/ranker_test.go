package ranker

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
)

type idfMap map[string]float64

func (m idfMap) IDF(term string) (float64, bool) {
	v, ok := m[term]
	return v, ok
}

func TestQueryVector(t *testing.T) {
	idf := idfMap{"cat": math.Log(2), "dog": 0, "bird": 1.5}

	vec := QueryVector([]string{"cat", "cat", "cat", "dog", "fish", "bird"}, idf)

	assert.Len(t, vec, 3, "unknown terms are dropped")
	assert.InDelta(t, (1+math.Log(3))*math.Log(2), vec["cat"], 1e-12)
	assert.Equal(t, 1.5, vec["bird"])
	w, ok := vec["dog"]
	assert.True(t, ok, "zero-idf terms stay with weight 0")
	assert.Equal(t, 0.0, w)
}

func TestQueryVectorEmpty(t *testing.T) {
	assert.Empty(t, QueryVector(nil, idfMap{"a": 1}))
	assert.Empty(t, QueryVector([]string{"x", "y"}, idfMap{"a": 1}))
}

func TestCosineUsesRawTFOnDocumentSide(t *testing.T) {
	query := map[string]float64{"cat": 2}
	doc := index.DocVector{"cat": 1.0, "dog": 0.5}

	got := Cosine(query, Norm(query), doc, doc.Norm())

	// tf only: 2*1 / (2 * sqrt(1.25)); a tf-idf document side would differ
	assert.InDelta(t, 1/math.Sqrt(1.25), got, 1e-12)
}

func TestCosineZeroNorms(t *testing.T) {
	doc := index.DocVector{"cat": 1}
	assert.Equal(t, 0.0, Cosine(map[string]float64{"cat": 0}, 0, doc, 1))
	assert.Equal(t, 0.0, Cosine(map[string]float64{"cat": 1}, 1, index.DocVector{}, 0))
	assert.Equal(t, 0.0, Cosine(nil, 0, nil, 0))
}

func TestCosineIteratesEitherSide(t *testing.T) {
	query := map[string]float64{"a": 1, "b": 2, "c": 3}
	small := index.DocVector{"b": 0.5}
	large := index.DocVector{"a": 1, "b": 0.5, "c": 0.25, "d": 1, "e": 1}

	assert.InDelta(t, 1.0/Norm(query)/small.Norm(), Cosine(query, Norm(query), small, small.Norm()), 1e-12)
	want := (1*1 + 2*0.5 + 3*0.25) / (Norm(query) * large.Norm())
	assert.InDelta(t, want, Cosine(query, Norm(query), large, large.Norm()), 1e-12)
}

func TestRank(t *testing.T) {
	scored := []ScoredDoc{
		{"d", 0.5},
		{"a", 0},
		{"c", 0.9},
		{"b", 0.5},
		{"e", 0.1},
	}
	got := Rank(scored, 3)
	assert.Equal(t, []ScoredDoc{{"c", 0.9}, {"b", 0.5}, {"d", 0.5}}, got)
}

func TestRankDropsZerosInsideWindow(t *testing.T) {
	got := Rank([]ScoredDoc{{"x", 0}, {"y", 0.2}, {"z", 0}}, DefaultLimit)
	assert.Equal(t, []ScoredDoc{{"y", 0.2}}, got)
}

func TestRankUnlimited(t *testing.T) {
	scored := make([]ScoredDoc, 0, 25)
	for i := 0; i < 25; i++ {
		scored = append(scored, ScoredDoc{DocID: string(rune('a' + i)), Score: float64(i + 1)})
	}
	assert.Len(t, Rank(scored, 0), 25)
}
