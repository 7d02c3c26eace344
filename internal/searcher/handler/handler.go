// Package handler serves the search HTTP API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/cache"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/ranker"
	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/metrics"
)

type SearchExecutor interface {
	Terms(rawQuery string) []string
	ExecuteLimit(ctx context.Context, rawQuery string, limit int) (*executor.SearchResult, error)
	Index() *index.Index
}

// Tracker receives search events; *analytics.Collector implements it.
type Tracker interface {
	Track(event any)
}

// Options wires the optional collaborators. Nil fields are skipped.
type Options struct {
	Collection   string
	DefaultLimit int
	MaxResults   int
	Cache        *cache.QueryCache
	Tracker      Tracker
	Aggregator   *analytics.Aggregator
	Metrics      *metrics.Metrics
}

type Handler struct {
	executor SearchExecutor
	opts     Options
	logger   *slog.Logger
}

type IndexStats struct {
	Collection string `json:"collection"`
	Documents  int    `json:"documents"`
	Terms      int    `json:"terms"`
	Pairs      int    `json:"pairs"`
}

func New(exec SearchExecutor, opts Options) *Handler {
	if opts.MaxResults <= 0 {
		opts.MaxResults = ranker.DefaultLimit
	}
	if opts.DefaultLimit <= 0 || opts.DefaultLimit > opts.MaxResults {
		opts.DefaultLimit = opts.MaxResults
	}
	return &Handler{
		executor: exec,
		opts:     opts,
		logger:   slog.Default().With("component", "search-handler"),
	}
}

// Routes registers the API on mux.
func (h *Handler) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/index/stats", h.IndexStats)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics/stats", h.AnalyticsStats)
}

// Search answers GET /api/v1/search?q=...&limit=... . A blank query is not an
// error; it simply matches nothing.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	limit, err := h.parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.writeError(w, err)
		return
	}

	terms := h.executor.Terms(query)
	if len(terms) == 0 {
		h.finish(ctx, w, start, &executor.SearchResult{Query: query, Terms: terms, Results: []ranker.ScoredDoc{}}, "skipped")
		return
	}

	var result *executor.SearchResult
	cacheStatus := "disabled"
	if h.opts.Cache != nil {
		var hit bool
		result, hit, err = h.opts.Cache.GetOrCompute(ctx, terms, limit, func(ctx context.Context) (*executor.SearchResult, error) {
			return h.executor.ExecuteLimit(ctx, query, limit)
		})
		cacheStatus = "miss"
		if hit {
			cacheStatus = "hit"
		}
		if err == nil {
			h.recordCache(hit)
		}
	} else {
		result, err = h.executor.ExecuteLimit(ctx, query, limit)
	}
	if err != nil {
		log.Error("search execution failed", "query", query, "error", err)
		if h.opts.Metrics != nil {
			h.opts.Metrics.SearchQueriesTotal.WithLabelValues(metrics.ResultError).Inc()
		}
		h.writeError(w, err)
		return
	}

	// a cached result may have been computed for a differently spelled query
	if result.Query != query {
		shown := *result
		shown.Query = query
		result = &shown
	}
	h.finish(ctx, w, start, result, cacheStatus)
}

func (h *Handler) finish(ctx context.Context, w http.ResponseWriter, start time.Time, result *executor.SearchResult, cacheStatus string) {
	latency := time.Since(start)
	if m := h.opts.Metrics; m != nil {
		resultType := metrics.ResultHit
		if len(result.Results) == 0 {
			resultType = metrics.ResultZeroResult
		}
		m.SearchQueriesTotal.WithLabelValues(resultType).Inc()
		m.SearchLatency.WithLabelValues(cacheStatus).Observe(latency.Seconds())
		m.SearchResultsCount.Observe(float64(len(result.Results)))
	}

	logger.FromContext(ctx).Info("search completed",
		"query", result.Query,
		"terms", result.Terms,
		"total_hits", result.TotalHits,
		"returned", len(result.Results),
		"cache", cacheStatus,
		"latency_ms", latency.Milliseconds(),
	)

	var topDocID string
	if len(result.Results) > 0 {
		topDocID = result.Results[0].DocID
	}
	event := analytics.NewSearchEvent(result.Query, result.Terms, result.TotalHits, len(result.Results),
		topDocID, latency, cacheStatus == "hit", logger.RequestID(ctx))
	if h.opts.Aggregator != nil {
		h.opts.Aggregator.Record(event)
	}
	if h.opts.Tracker != nil {
		h.opts.Tracker.Track(event)
	}

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) parseLimit(raw string) (int, error) {
	if raw == "" {
		return h.opts.DefaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 {
		return 0, apperrors.Invalid("limit must be a positive integer, got %q", raw)
	}
	return min(limit, h.opts.MaxResults), nil
}

func (h *Handler) recordCache(hit bool) {
	if h.opts.Metrics == nil {
		return
	}
	if hit {
		h.opts.Metrics.CacheHitsTotal.Inc()
	} else {
		h.opts.Metrics.CacheMissesTotal.Inc()
	}
}

func (h *Handler) IndexStats(w http.ResponseWriter, r *http.Request) {
	ix := h.executor.Index()
	h.writeJSON(w, http.StatusOK, IndexStats{
		Collection: h.opts.Collection,
		Documents:  ix.DocCount(),
		Terms:      ix.TermCount(),
		Pairs:      ix.PairCount(),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.opts.Cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.opts.Cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.opts.Cache == nil {
		h.writeError(w, apperrors.New(apperrors.ErrUnavailable, http.StatusServiceUnavailable, "caching is disabled"))
		return
	}
	deleted, err := h.opts.Cache.Invalidate(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, fmt.Errorf("%w: %w", apperrors.ErrUnavailable, err))
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"status": "invalidated", "keys_deleted": deleted})
}

func (h *Handler) AnalyticsStats(w http.ResponseWriter, r *http.Request) {
	if h.opts.Aggregator == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}
	h.writeJSON(w, http.StatusOK, h.opts.Aggregator.Stats())
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

// writeError maps err to its HTTP status. Only AppError messages reach the
// client; anything else is reported by its status text.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := apperrors.HTTPStatusCode(err)
	message := http.StatusText(status)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}
	h.writeJSON(w, status, map[string]string{"error": message})
}
