package authz

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// DefaultCacheSize is used when the configured size is not positive.
const DefaultCacheSize = 4096

// CachingChecker wraps a Checker with an expiring LRU of recent decisions.
//
// The cache is a latency optimization, not part of the correctness contract:
// invalidation is age-based only, so a grant change becomes visible after at
// most the configured TTL. Errors are never cached. Audit entries are only
// produced on cache misses; callers that need a full per-call trail should
// use the unwrapped Service.
type CachingChecker struct {
	inner Checker
	cache *expirable.LRU[string, Decision]
}

// NewCachingChecker wraps inner with a decision cache of the given size and TTL.
func NewCachingChecker(inner Checker, size int, ttl time.Duration) *CachingChecker {
	if size <= 0 {
		size = DefaultCacheSize
	}

	return &CachingChecker{
		inner: inner,
		cache: expirable.NewLRU[string, Decision](size, nil, ttl),
	}
}

// CheckPermission returns a cached decision when available, delegating to the
// wrapped checker otherwise.
func (c *CachingChecker) CheckPermission(ctx context.Context, req CheckRequest) (Decision, error) {
	key := cacheKey(req)

	if decision, ok := c.cache.Get(key); ok {
		metricCacheHits.Inc()

		return decision, nil
	}

	metricCacheMisses.Inc()

	decision, err := c.inner.CheckPermission(ctx, req)
	if err != nil {
		return decision, err
	}

	c.cache.Add(key, decision)

	return decision, nil
}

// Purge drops all cached decisions. Admin mutations that must take effect
// immediately call this.
func (c *CachingChecker) Purge() {
	c.cache.Purge()
}

// cacheKey builds a deterministic key from the decision-relevant request
// fields. Audit-only fields (IP, endpoint, user agent) are excluded.
func cacheKey(req CheckRequest) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%d|%s|%s", req.UserID, req.PermissionCode, req.Resource)

	if len(req.Context) > 0 {
		keys := make([]string, 0, len(req.Context))
		for k := range req.Context {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		for _, k := range keys {
			fmt.Fprintf(&b, "|%s=%s", k, req.Context[k])
		}
	}

	return b.String()
}
