package search

import (
	"context"
	"sort"

	"github.com/nfrund/semsearch/internal/domain"
)

// DefaultMaxResults caps the result list when no positive limit is given.
const DefaultMaxResults = 24

// Term weights. A title hit outranks a description or tag hit.
const (
	titleWeight = 2
	otherWeight = 1
)

// ImageSource provides the current catalog snapshot.
type ImageSource interface {
	Images() []domain.Image
}

// CatalogResolver ranks catalog images by term overlap with the query.
// It is a local stand-in for a semantic ranking engine.
type CatalogResolver struct {
	source     ImageSource
	maxResults int
}

// NewCatalogResolver creates a resolver over source returning at most
// maxResults results. A non-positive maxResults means DefaultMaxResults.
func NewCatalogResolver(source ImageSource, maxResults int) *CatalogResolver {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	return &CatalogResolver{source: source, maxResults: maxResults}
}

// Resolve implements domain.Resolver. An empty query returns the first
// images of the catalog in order, each with a score of zero.
func (r *CatalogResolver) Resolve(ctx context.Context, query string) ([]domain.Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, context.Cause(ctx)
	}

	images := r.source.Images()
	terms := unique(Terms(query))

	if len(terms) == 0 {
		n := min(len(images), r.maxResults)
		results := make([]domain.Result, n)
		for i := range n {
			results[i] = domain.Result{Image: images[i]}
		}
		return results, nil
	}

	maxScore := float64(titleWeight * len(terms))
	results := make([]domain.Result, 0)
	for i := range images {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, context.Cause(ctx)
			}
		}
		if s := score(&images[i], terms); s > 0 {
			results = append(results, domain.Result{Image: images[i], Score: float64(s) / maxScore})
		}
	}

	sort.SliceStable(results, func(a, b int) bool {
		return results[a].Score > results[b].Score
	})
	if len(results) > r.maxResults {
		results = results[:r.maxResults]
	}
	return results, nil
}

func score(img *domain.Image, terms []string) int {
	title := set(Terms(img.Title))
	other := set(Terms(img.Description))
	for _, tag := range img.Tags {
		for _, t := range Terms(tag) {
			other[t] = struct{}{}
		}
	}

	total := 0
	for _, t := range terms {
		if _, ok := title[t]; ok {
			total += titleWeight
		} else if _, ok := other[t]; ok {
			total += otherWeight
		}
	}
	return total
}

func set(terms []string) map[string]struct{} {
	m := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		m[t] = struct{}{}
	}
	return m
}

func unique(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := terms[:0]
	for _, t := range terms {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
