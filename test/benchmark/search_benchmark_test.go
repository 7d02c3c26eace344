package benchmark

import (
	"context"
	"fmt"
	"testing"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/normalizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
)

func benchIndex(b *testing.B, docs int) *index.Index {
	b.Helper()
	ix, err := index.Build(syntheticCorpus(docs, 150))
	if err != nil {
		b.Fatal(err)
	}
	return ix
}

func BenchmarkExecute(b *testing.B) {
	ix := benchIndex(b, 20000)
	norm := normalizer.New(normalizer.None)
	for _, workers := range []int{1, 4, 8} {
		exec := executor.New(ix, norm, executor.Options{Workers: workers})
		b.Run(fmt.Sprintf("workers_%d", workers), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				if _, err := exec.Execute(context.Background(), "cosine similarity of election reports"); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkExecuteParallel(b *testing.B) {
	exec := executor.New(benchIndex(b, 20000), normalizer.New(normalizer.None), executor.Options{Workers: 1})
	b.ReportAllocs()
	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			exec.ExecuteQuery("bank market business")
		}
	})
}

func BenchmarkRank(b *testing.B) {
	scored := make([]ranker.ScoredDoc, 20000)
	for i := range scored {
		scored[i] = ranker.ScoredDoc{DocID: fmt.Sprintf("doc%06d", i), Score: float64((i*7919)%1000) / 1000}
	}
	buf := make([]ranker.ScoredDoc, len(scored))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		copy(buf, scored)
		ranker.Rank(buf, ranker.DefaultLimit)
	}
}
