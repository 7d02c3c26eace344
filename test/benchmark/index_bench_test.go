// Package benchmark measures index build, persistence, normalization and
// query throughput over a synthetic corpus.
package benchmark

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/store"
)

var vocabulary = strings.Fields(`search engine index document query term frequency
inverse cosine similarity vector ranking corpus collection token stem word
paragraph newspaper article report market election weather sport science
government court police school hospital city country world business bank`)

// syntheticCorpus returns docs documents of wordsPerDoc terms drawn from a
// skewed distribution so common terms appear in most documents.
func syntheticCorpus(docs, wordsPerDoc int) map[string][]string {
	r := rand.New(rand.NewPCG(1, 2))
	corpus := make(map[string][]string, docs)
	for i := 0; i < docs; i++ {
		terms := make([]string, wordsPerDoc)
		for j := range terms {
			k := int(float64(len(vocabulary)) * r.Float64() * r.Float64())
			terms[j] = vocabulary[k]
		}
		corpus[fmt.Sprintf("doc%06d", i)] = terms
	}
	return corpus
}

func BenchmarkBuilderAdd(b *testing.B) {
	corpus := syntheticCorpus(1000, 200)
	ids := make([]string, 0, len(corpus))
	for id := range corpus {
		ids = append(ids, id)
	}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		builder := index.NewBuilder()
		for _, id := range ids {
			builder.Add(id, corpus[id])
		}
	}
}

func BenchmarkBuild(b *testing.B) {
	for _, docs := range []int{100, 1000, 10000} {
		corpus := syntheticCorpus(docs, 150)
		b.Run(fmt.Sprintf("docs_%d", docs), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := index.Build(corpus); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkStoreSaveLoad(b *testing.B) {
	ix, err := index.Build(syntheticCorpus(2000, 150))
	if err != nil {
		b.Fatal(err)
	}
	st := store.New(b.TempDir(), "bench")

	b.Run("save", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			if err := st.Save(ix); err != nil {
				b.Fatal(err)
			}
		}
	})
	b.Run("load", func(b *testing.B) {
		b.ReportAllocs()
		for i := 0; i < b.N; i++ {
			if _, err := st.Load(); err != nil {
				b.Fatal(err)
			}
		}
	})
}
