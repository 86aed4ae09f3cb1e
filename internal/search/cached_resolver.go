package search

import (
	"context"
	"errors"
	"time"

	"github.com/nfrund/semsearch/internal/domain"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// CacheObserver is notified about cache lookups. It may be nil.
type CacheObserver interface {
	CacheHit()
	CacheMiss()
}

// CachedResolver caches successful resolutions by normalized query and
// collapses concurrent identical misses into a single call.
type CachedResolver struct {
	next     domain.Resolver
	cache    *cache.Cache
	group    singleflight.Group
	observer CacheObserver
}

// NewCachedResolver wraps next with a cache whose entries live for ttl.
func NewCachedResolver(next domain.Resolver, ttl time.Duration, observer CacheObserver) *CachedResolver {
	return &CachedResolver{
		next:     next,
		cache:    cache.New(ttl, 2*ttl),
		observer: observer,
	}
}

// Resolve implements domain.Resolver.
func (r *CachedResolver) Resolve(ctx context.Context, query string) ([]domain.Result, error) {
	key := Normalize(query)

	if v, ok := r.cache.Get(key); ok {
		if r.observer != nil {
			r.observer.CacheHit()
		}
		return v.([]domain.Result), nil
	}
	if r.observer != nil {
		r.observer.CacheMiss()
	}

	ch := r.group.DoChan(key, func() (any, error) {
		results, err := r.next.Resolve(ctx, query)
		if err != nil {
			return nil, err
		}
		r.cache.SetDefault(key, results)
		return results, nil
	})

	select {
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case res := <-ch:
		if res.Err != nil {
			// The shared call ran under another caller's context. If that one
			// was cancelled but ours is still live, resolve on our own.
			if isContextErr(res.Err) && ctx.Err() == nil {
				return r.next.Resolve(ctx, query)
			}
			return nil, res.Err
		}
		return res.Val.([]domain.Result), nil
	}
}

// Flush drops every cached resolution.
func (r *CachedResolver) Flush() {
	r.cache.Flush()
}

func isContextErr(err error) bool {
	return errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, domain.ErrSuperseded)
}
