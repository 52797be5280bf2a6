package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/signalgraph/signalgraph/internal/metrics"
	"github.com/signalgraph/signalgraph/pkg/graph"
	"github.com/signalgraph/signalgraph/pkg/logger"

	"golang.org/x/sync/singleflight"
)

// BuildFunc produces a fresh graph.
type BuildFunc func(ctx context.Context) (*graph.Result, error)

// GraphCache keeps the latest successful build for a TTL. Concurrent misses
// share one build, and a build keeps running when the request that started
// it goes away. Failed builds are never cached.
type GraphCache struct {
	build   BuildFunc
	ttl     time.Duration
	now     func() time.Time
	metrics *metrics.Metrics

	group singleflight.Group

	mu       sync.RWMutex
	result   *graph.Result
	builtAt  time.Time
	builtGen uint64
	gen      uint64
}

type NewGraphCacheParams struct {
	Build   BuildFunc
	TTL     time.Duration
	Metrics *metrics.Metrics
	// Now defaults to time.Now.
	Now func() time.Time
}

func NewGraphCache(params NewGraphCacheParams) (*GraphCache, error) {
	if params.Build == nil {
		return nil, errors.New("cache: nil build func")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &GraphCache{
		build:   params.Build,
		ttl:     params.TTL,
		now:     now,
		metrics: params.Metrics,
	}, nil
}

// Get returns the cached build while it is fresh and rebuilds otherwise.
func (c *GraphCache) Get(ctx context.Context) (*graph.Result, error) {
	if res := c.fresh(); res != nil {
		c.metrics.CacheHit()
		return res, nil
	}
	c.metrics.CacheMiss()

	ch := c.group.DoChan("graph", func() (any, error) {
		return c.rebuild(context.WithoutCancel(ctx))
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.(*graph.Result), nil
	}
}

// Invalidate forces the next Get to rebuild. A build already running when
// Invalidate is called is served to its waiters but not cached as fresh.
func (c *GraphCache) Invalidate() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
	logger.Debug("[Cache] Invalidated")
}

// Latest returns the last successful build regardless of its age, or nil.
func (c *GraphCache) Latest() *graph.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.result
}

func (c *GraphCache) fresh() *graph.Result {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.result == nil || c.builtGen != c.gen {
		return nil
	}
	if c.now().Sub(c.builtAt) >= c.ttl {
		return nil
	}
	return c.result
}

func (c *GraphCache) rebuild(ctx context.Context) (*graph.Result, error) {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	start := c.now()
	res, err := c.build(ctx)
	if err != nil {
		c.metrics.BuildFailed(c.now().Sub(start))
		logger.Error("[Cache] Graph build failed", "err", err)
		return nil, err
	}

	r := res.Report
	c.metrics.BuildSucceeded(r.Duration, len(r.Failures), countsOf(r.NodesByType), countsOf(r.LinksByType))

	c.mu.Lock()
	c.result = res
	c.builtAt = c.now()
	c.builtGen = gen
	c.mu.Unlock()
	return res, nil
}

func countsOf[K ~string](m map[K]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[string(k)] = v
	}
	return out
}
