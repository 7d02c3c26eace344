package executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/normalizer"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/resilience"
)

// minDocsPerWorker keeps tiny corpora on a single goroutine.
const minDocsPerWorker = 512

// ctxCheckEvery is how many documents a worker scores between cancellation checks.
const ctxCheckEvery = 256

type SearchResult struct {
	Query     string             `json:"query"`
	Terms     []string           `json:"terms"`
	TotalHits int                `json:"total_hits"`
	Results   []ranker.ScoredDoc `json:"results"`
}

// Options bound the work a single query may do.
type Options struct {
	// Limit is the result count used by Execute; defaults to ranker.DefaultLimit.
	Limit int
	// MaxScanDocs caps how many documents, in ascending id order, one query
	// scores. 0 scores the whole corpus.
	MaxScanDocs int
	// Workers is the number of goroutines scoring partitions of the corpus.
	Workers int
	// Timeout bounds Execute; 0 disables it.
	Timeout time.Duration
}

// Executor answers free-text queries against a loaded index. The index is
// read-only, so one Executor serves any number of concurrent queries.
type Executor struct {
	index      *index.Index
	normalizer *normalizer.Normalizer
	opts       Options
	logger     *slog.Logger
}

func New(ix *index.Index, norm *normalizer.Normalizer, opts Options) *Executor {
	if opts.Limit <= 0 {
		opts.Limit = ranker.DefaultLimit
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &Executor{
		index:      ix,
		normalizer: norm,
		opts:       opts,
		logger:     slog.Default().With("component", "query-executor"),
	}
}

// Index exposes the index the executor scores against.
func (e *Executor) Index() *index.Index {
	return e.index
}

// Terms returns the normalized terms a query is scored with.
func (e *Executor) Terms(rawQuery string) []string {
	return e.normalizer.Normalize(rawQuery)
}

// Execute runs a query with the configured limit.
func (e *Executor) Execute(ctx context.Context, rawQuery string) (*SearchResult, error) {
	return e.ExecuteLimit(ctx, rawQuery, e.opts.Limit)
}

// ExecuteLimit runs a query returning at most limit results, all with a
// strictly positive score, best first. A query without any indexed term
// yields an empty result, not an error.
func (e *Executor) ExecuteLimit(ctx context.Context, rawQuery string, limit int) (*SearchResult, error) {
	var result *SearchResult
	err := resilience.WithTimeout(ctx, e.opts.Timeout, "query", func(ctx context.Context) error {
		var err error
		result, err = e.search(ctx, rawQuery, limit)
		return err
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("executing query %q: %w: %w", rawQuery, apperrors.ErrTimeout, err)
		}
		return nil, fmt.Errorf("executing query %q: %w", rawQuery, err)
	}
	return result, nil
}

// ExecuteQuery is the synchronous form: the ten best (DocID, score) pairs.
// It scores on the calling goroutine and cannot be cancelled.
func (e *Executor) ExecuteQuery(rawQuery string) []ranker.ScoredDoc {
	query := ranker.QueryVector(e.Terms(rawQuery), e.index)
	queryNorm := ranker.Norm(query)
	if queryNorm == 0 {
		return []ranker.ScoredDoc{}
	}
	docIDs := e.scanIDs()
	scored := make([]ranker.ScoredDoc, len(docIDs))
	e.scoreRange(query, queryNorm, docIDs, scored)
	return ranker.Rank(scored, ranker.DefaultLimit)
}

func (e *Executor) search(ctx context.Context, rawQuery string, limit int) (*SearchResult, error) {
	terms := e.Terms(rawQuery)
	result := &SearchResult{
		Query:   rawQuery,
		Terms:   terms,
		Results: []ranker.ScoredDoc{},
	}
	query := ranker.QueryVector(terms, e.index)
	queryNorm := ranker.Norm(query)
	if queryNorm == 0 {
		e.logger.Debug("query has no weighted terms",
			"query", rawQuery,
			"terms", terms,
		)
		return result, nil
	}

	scored, err := e.score(ctx, query, queryNorm)
	if err != nil {
		return nil, err
	}
	for _, sd := range scored {
		if sd.Score > 0 {
			result.TotalHits++
		}
	}
	result.Results = ranker.Rank(scored, limit)
	e.logger.Debug("query executed",
		"query", rawQuery,
		"terms", terms,
		"scanned", len(scored),
		"hits", result.TotalHits,
		"results", len(result.Results),
	)
	return result, nil
}

// score computes the cosine of every scanned document. Workers fill disjoint
// ranges of one slice, so no locking is needed.
func (e *Executor) score(ctx context.Context, query map[string]float64, queryNorm float64) ([]ranker.ScoredDoc, error) {
	docIDs := e.scanIDs()
	scored := make([]ranker.ScoredDoc, len(docIDs))

	workers := min(e.opts.Workers, max(1, len(docIDs)/minDocsPerWorker))
	chunk := (len(docIDs) + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for start := 0; start < len(docIDs); start += chunk {
		end := min(start+chunk, len(docIDs))
		g.Go(func() error {
			for i := start; i < end; i += ctxCheckEvery {
				if err := gctx.Err(); err != nil {
					return err
				}
				j := min(i+ctxCheckEvery, end)
				e.scoreRange(query, queryNorm, docIDs[i:j], scored[i:j])
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scored, nil
}

// scanIDs returns the documents one query scores, in ascending id order.
func (e *Executor) scanIDs() []string {
	docIDs := e.index.DocIDs()
	if e.opts.MaxScanDocs > 0 && len(docIDs) > e.opts.MaxScanDocs {
		docIDs = docIDs[:e.opts.MaxScanDocs]
	}
	return docIDs
}

// scoreRange writes the cosine of docIDs[i] into out[i].
func (e *Executor) scoreRange(query map[string]float64, queryNorm float64, docIDs []string, out []ranker.ScoredDoc) {
	for i, id := range docIDs {
		out[i] = ranker.ScoredDoc{
			DocID: id,
			Score: ranker.Cosine(query, queryNorm, e.index.Doc(id), e.index.Norm(id)),
		}
	}
}
