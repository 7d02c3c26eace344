// Package cache memoizes search results in Redis. Concurrent misses for the
// same key are collapsed into one computation. Keys are namespaced by the
// index they were computed against, so searchers over different collections
// or builds can share one Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer/index"
	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/searcher/executor"
	pkgredis "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/redis"
)

const keyPrefix = "search:"

// Backend is the subset of the Redis client the cache uses.
type Backend interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	FlushByPattern(ctx context.Context, pattern string) (int64, error)
}

type QueryCache struct {
	backend   Backend
	namespace string
	ttl       time.Duration
	group     singleflight.Group
	logger    *slog.Logger
	hits      atomic.Int64
	misses    atomic.Int64
}

// New creates a cache whose entries belong to namespace; see Namespace.
func New(backend Backend, namespace string, ttl time.Duration) *QueryCache {
	return &QueryCache{
		backend:   backend,
		namespace: namespace,
		ttl:       ttl,
		logger:    slog.Default().With("component", "query-cache", "namespace", namespace),
	}
}

// Namespace identifies one build of one collection.
func Namespace(collection string, ix *index.Index) string {
	return fmt.Sprintf("%s:%s", collection, ix.Fingerprint()[:16])
}

// Get looks up the result cached for the normalized query terms. Backend
// failures count as misses.
func (c *QueryCache) Get(ctx context.Context, terms []string, limit int) (*executor.SearchResult, bool) {
	key := c.key(terms, limit)
	data, err := c.backend.Get(ctx, key)
	if err != nil {
		if !pkgredis.IsNilError(err) {
			c.logger.Error("cache get failed", "key", key, "error", err)
		}
		c.misses.Add(1)
		return nil, false
	}
	var result executor.SearchResult
	if err := json.Unmarshal([]byte(data), &result); err != nil {
		c.logger.Error("cache unmarshal failed", "key", key, "error", err)
		c.misses.Add(1)
		return nil, false
	}
	c.hits.Add(1)
	c.logger.Debug("cache hit", "key", key)
	return &result, true
}

func (c *QueryCache) Set(ctx context.Context, terms []string, limit int, result *executor.SearchResult) {
	key := c.key(terms, limit)
	data, err := json.Marshal(result)
	if err != nil {
		c.logger.Error("cache marshal failed", "key", key, "error", err)
		return
	}
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.Error("cache set failed", "key", key, "error", err)
	}
}

// GetOrCompute returns the cached result or runs computeFn once per key
// across concurrent callers. The bool reports a cache hit. computeFn runs on
// a context that ignores ctx's cancellation; a caller whose ctx ends stops
// waiting while the shared computation carries on.
func (c *QueryCache) GetOrCompute(
	ctx context.Context,
	terms []string,
	limit int,
	computeFn func(ctx context.Context) (*executor.SearchResult, error),
) (*executor.SearchResult, bool, error) {
	if result, ok := c.Get(ctx, terms, limit); ok {
		return result, true, nil
	}
	detached := context.WithoutCancel(ctx)
	ch := c.group.DoChan(c.key(terms, limit), func() (any, error) {
		result, err := computeFn(detached)
		if err != nil {
			return nil, err
		}
		c.Set(detached, terms, limit, result)
		return result, nil
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, false, res.Err
		}
		return res.Val.(*executor.SearchResult), false, nil
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

// Invalidate drops every result cached for this namespace, returning how
// many keys went away.
func (c *QueryCache) Invalidate(ctx context.Context) (int64, error) {
	deleted, err := c.backend.FlushByPattern(ctx, keyPrefix+c.namespace+":*")
	if err != nil {
		return deleted, fmt.Errorf("invalidating cache: %w", err)
	}
	c.logger.Info("cache invalidate", "keys_deleted", deleted)
	return deleted, nil
}

func (c *QueryCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *QueryCache) key(terms []string, limit int) string {
	return fmt.Sprintf("%s%s:%s", keyPrefix, c.namespace, BuildKey(terms, limit))
}

// BuildKey hashes the sorted term multiset and the limit, so queries that
// normalize to the same terms in any order share an entry.
func BuildKey(terms []string, limit int) string {
	sorted := slices.Clone(terms)
	slices.Sort(sorted)
	raw := fmt.Sprintf("%s|limit=%d", strings.Join(sorted, ","), limit)
	hash := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("%x", hash[:16])
}
