package search

import (
	"time"

	"github.com/nfrund/semsearch/internal/domain"
	"github.com/nfrund/semsearch/internal/metrics"
)

// NewResolver assembles the resolver chain used by the page:
// instrumentation, then the cache when ttl > 0, then catalog ranking.
// The returned flush func drops cached results and is a no-op without a cache.
func NewResolver(source ImageSource, maxResults int, ttl time.Duration, m *metrics.SearchMetrics) (domain.Resolver, func()) {
	var r domain.Resolver = NewCatalogResolver(source, maxResults)

	flush := func() {}
	if ttl > 0 {
		cached := NewCachedResolver(r, ttl, m)
		flush = cached.Flush
		r = cached
	}

	return NewInstrumentedResolver(r, m), flush
}
