// Package indexer builds a tf-idf index from a document source and persists
// it as the collection's .idf and .tf files.
package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/normalizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/source"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/store"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
)

// progressEvery is how many documents pass between progress log lines.
const progressEvery = 10000

type Options struct {
	Collection string
	// Workers normalizing documents concurrently; at least 1.
	Workers int
	// Metrics and Publisher are optional.
	Metrics   *metrics.Metrics
	Publisher kafka.Publisher
}

type Engine struct {
	normalizer *normalizer.Normalizer
	store      *store.Store
	opts       Options
	logger     *slog.Logger
}

type normalized struct {
	id    string
	terms []string
}

func NewEngine(norm *normalizer.Normalizer, st *store.Store, opts Options) *Engine {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Engine{
		normalizer: norm,
		store:      st,
		opts:       opts,
		logger:     slog.Default().With("component", "indexer", "collection", opts.Collection),
	}
}

// Build reads every document of src, builds the index, saves it and
// announces the result. Nothing is written when any step before Save fails.
func (e *Engine) Build(ctx context.Context, src source.Source) (*index.Index, error) {
	start := time.Now()
	ix, err := e.build(ctx, src)
	if err == nil {
		err = e.store.Save(ix)
	}
	elapsed := time.Since(start)
	if err != nil {
		e.recordBuild("error", elapsed, nil)
		return nil, fmt.Errorf("building index %s: %w", e.opts.Collection, err)
	}
	e.recordBuild("success", elapsed, ix)

	e.logger.Info("index built",
		"documents", ix.DocCount(),
		"terms", ix.TermCount(),
		"pairs", ix.PairCount(),
		"duration_ms", elapsed.Milliseconds(),
		"idf_path", e.store.IDFPath(),
		"tf_path", e.store.TFPath(),
	)
	e.announce(ctx, ix, elapsed)
	return ix, nil
}

// build fans documents out to the normalizing workers and feeds their
// output into a single Builder.
func (e *Engine) build(ctx context.Context, src source.Source) (*index.Index, error) {
	g, ctx := errgroup.WithContext(ctx)
	docs := make(chan source.Document, e.opts.Workers*4)
	out := make(chan normalized, e.opts.Workers*4)

	g.Go(func() error {
		defer close(docs)
		return src.Documents(ctx, func(d source.Document) error {
			select {
			case docs <- d:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
	})

	workers, wctx := errgroup.WithContext(ctx)
	for i := 0; i < e.opts.Workers; i++ {
		workers.Go(func() error {
			for d := range docs {
				n := normalized{id: d.ID, terms: e.normalizer.Normalize(d.Text)}
				select {
				case out <- n:
				case <-wctx.Done():
					return wctx.Err()
				}
			}
			return nil
		})
	}
	g.Go(func() error {
		defer close(out)
		return workers.Wait()
	})

	builder := index.NewBuilder()
	g.Go(func() error {
		for n := range out {
			if err := builder.Add(n.id, n.terms); err != nil {
				return err
			}
			if e.opts.Metrics != nil {
				e.opts.Metrics.DocsIndexedTotal.Inc()
			}
			if builder.Len()%progressEvery == 0 {
				e.logger.Info("indexing progress", "documents", builder.Len())
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return builder.Build(), nil
}

func (e *Engine) recordBuild(status string, elapsed time.Duration, ix *index.Index) {
	m := e.opts.Metrics
	if m == nil {
		return
	}
	m.IndexBuildsTotal.WithLabelValues(status).Inc()
	m.IndexBuildDuration.Observe(elapsed.Seconds())
	if ix != nil {
		m.IndexDocuments.Set(float64(ix.DocCount()))
		m.IndexTerms.Set(float64(ix.TermCount()))
	}
}

// announce publishes an IndexCompleteEvent. The index is already on disk,
// so a publish failure is only logged.
func (e *Engine) announce(ctx context.Context, ix *index.Index, elapsed time.Duration) {
	if e.opts.Publisher == nil {
		return
	}
	event := analytics.IndexCompleteEvent{
		Type:       analytics.EventIndexComplete,
		Collection: e.opts.Collection,
		Documents:  ix.DocCount(),
		Terms:      ix.TermCount(),
		Pairs:      ix.PairCount(),
		DurationMs: elapsed.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	if err := e.opts.Publisher.Publish(ctx, kafka.Event{Key: e.opts.Collection, Value: event}); err != nil {
		e.logger.Error("failed to publish index complete event", "error", err)
	}
}
