// Package index holds the tf-idf tables and the corpus indexer that builds
// them. An Index is immutable once built or loaded and may be shared by any
// number of concurrent readers without locking.
package index

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"
	"sort"
)

// IdfTable maps a term to ln(N / df(term)).
type IdfTable map[string]float64

// DocVector maps a term to its max-normalized frequency within one document.
// Only terms present in the document are stored.
type DocVector map[string]float64

// Norm returns the Euclidean norm over the stored entries.
func (v DocVector) Norm() float64 {
	var sum float64
	for _, w := range v {
		sum += w * w
	}
	return math.Sqrt(sum)
}

// Index pairs the idf table with every document's tf vector.
type Index struct {
	idf    IdfTable
	docs   map[string]DocVector
	norms  map[string]float64
	docIDs []string
	terms  []string
	pairs  int
}

// New wraps already computed tables. The Index takes ownership of both maps;
// callers must not modify them afterwards.
func New(idf IdfTable, docs map[string]DocVector) *Index {
	if idf == nil {
		idf = IdfTable{}
	}
	if docs == nil {
		docs = map[string]DocVector{}
	}
	ix := &Index{
		idf:    idf,
		docs:   docs,
		norms:  make(map[string]float64, len(docs)),
		docIDs: make([]string, 0, len(docs)),
		terms:  make([]string, 0, len(idf)),
	}
	for id, vec := range docs {
		ix.docIDs = append(ix.docIDs, id)
		ix.norms[id] = vec.Norm()
		ix.pairs += len(vec)
	}
	for term := range idf {
		ix.terms = append(ix.terms, term)
	}
	sort.Strings(ix.docIDs)
	sort.Strings(ix.terms)
	return ix
}

// IDF returns the idf of term and whether the term is known.
func (ix *Index) IDF(term string) (float64, bool) {
	v, ok := ix.idf[term]
	return v, ok
}

// Doc returns the tf vector of a document, nil if the id is unknown.
func (ix *Index) Doc(docID string) DocVector {
	return ix.docs[docID]
}

// Norm returns the precomputed Euclidean norm of a document's tf vector.
func (ix *Index) Norm(docID string) float64 {
	return ix.norms[docID]
}

// DocIDs returns every document id in ascending order. The slice is shared.
func (ix *Index) DocIDs() []string {
	return ix.docIDs
}

// Terms returns every indexed term in ascending order. The slice is shared.
func (ix *Index) Terms() []string {
	return ix.terms
}

func (ix *Index) DocCount() int {
	return len(ix.docIDs)
}

func (ix *Index) TermCount() int {
	return len(ix.terms)
}

// PairCount is the number of stored (document, term) entries.
func (ix *Index) PairCount() int {
	return ix.pairs
}

// Fingerprint is a hex digest of the full table contents. Two indexes share
// a fingerprint only when every idf and tf entry is equal.
func (ix *Index) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte
	writeFloat := func(v float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		h.Write(buf[:])
	}
	for _, term := range ix.terms {
		h.Write([]byte(term))
		h.Write([]byte{0})
		writeFloat(ix.idf[term])
	}
	h.Write([]byte{1})
	for _, id := range ix.docIDs {
		vec := ix.docs[id]
		h.Write([]byte(id))
		h.Write([]byte{0})
		terms := make([]string, 0, len(vec))
		for term := range vec {
			terms = append(terms, term)
		}
		sort.Strings(terms)
		for _, term := range terms {
			h.Write([]byte(term))
			h.Write([]byte{0})
			writeFloat(vec[term])
		}
		h.Write([]byte{1})
	}
	return hex.EncodeToString(h.Sum(nil))
}
