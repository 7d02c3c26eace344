// Package ranker implements cosine scoring between an idf-weighted query
// vector and plain tf document vectors, and the top-K cut over the scores.
package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
)

// DefaultLimit is the number of results a query returns unless told otherwise.
const DefaultLimit = 10

type ScoredDoc struct {
	DocID string  `json:"doc_id"`
	Score float64 `json:"score"`
}

// IDFSource resolves a term to its idf.
type IDFSource interface {
	IDF(term string) (float64, bool)
}

// QueryVector weights every distinct term known to idf as
// (1 + ln(count)) * idf(term). Unknown terms are dropped. Terms whose idf is
// 0 stay in the vector with weight 0.
func QueryVector(terms []string, idf IDFSource) map[string]float64 {
	counts := make(map[string]int, len(terms))
	for _, term := range terms {
		counts[term]++
	}
	vec := make(map[string]float64, len(counts))
	for term, count := range counts {
		w, ok := idf.IDF(term)
		if !ok {
			continue
		}
		vec[term] = (1 + math.Log(float64(count))) * w
	}
	return vec
}

// Norm is the Euclidean norm over the stored entries of a sparse vector.
func Norm(vec map[string]float64) float64 {
	var sum float64
	for _, w := range vec {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Cosine scores a document against the query. The document side carries raw
// tf, only the query side is idf-weighted. Returns 0 when either norm is 0.
func Cosine(query map[string]float64, queryNorm float64, doc index.DocVector, docNorm float64) float64 {
	denominator := queryNorm * docNorm
	if denominator == 0 {
		return 0
	}
	var numerator float64
	// iterate the smaller side
	if len(query) <= len(doc) {
		for term, q := range query {
			if tf, ok := doc[term]; ok {
				numerator += q * tf
			}
		}
	} else {
		for term, tf := range doc {
			if q, ok := query[term]; ok {
				numerator += q * tf
			}
		}
	}
	return numerator / denominator
}

// Rank orders scored documents by score descending, DocID ascending on ties,
// drops every score that is not strictly positive and keeps at most limit
// entries. A limit below 1 keeps everything. The input slice is reordered.
func Rank(scored []ScoredDoc, limit int) []ScoredDoc {
	result := scored[:0]
	for _, sd := range scored {
		if sd.Score > 0 {
			result = append(result, sd)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Score != result[j].Score {
			return result[i].Score > result[j].Score
		}
		return result[i].DocID < result[j].DocID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result
}
