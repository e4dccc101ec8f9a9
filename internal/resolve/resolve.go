// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package resolve looks a document up by any of its identifier kinds. The
// storage key is usually one of DOI, PMCID, or PMID, but records without a
// natural identifier carry positional fallback keys, so a direct lookup
// alone is insufficient: a miss falls back to a disjunctive search over the
// three identifier fields.
package resolve

import (
	"context"
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/organa/search-engine/internal/esindex"
	"github.com/organa/search-engine/pkg/types"
)

// DefaultCacheSize bounds the resolved-document cache.
const DefaultCacheSize = 512

// Index is the slice of the index service the resolver needs.
type Index interface {
	Get(ctx context.Context, id string) (*types.Article, error)
	Search(ctx context.Context, query any) (*types.SearchResponse, error)
}

// Resolver resolves documents by identifier with an LRU cache in front.
type Resolver struct {
	index Index
	cache *lru.Cache[string, types.Article]
}

// New returns a Resolver. cacheSize <= 0 selects DefaultCacheSize.
func New(index Index, cacheSize int) *Resolver {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, _ := lru.New[string, types.Article](cacheSize)
	return &Resolver{index: index, cache: cache}
}

// Resolve returns the document whose storage key or identifier equals id.
// Only a direct-lookup miss triggers the fallback search; any other error
// propagates. A document found by neither tier yields esindex.ErrNotFound.
func (r *Resolver) Resolve(ctx context.Context, id string) (*types.Article, error) {
	if a, ok := r.cache.Get(id); ok {
		return &a, nil
	}

	a, err := r.index.Get(ctx, id)
	switch {
	case err == nil:
		r.cache.Add(id, *a)
		return a, nil
	case !errors.Is(err, esindex.ErrNotFound):
		return nil, err
	}

	a, err = r.searchByIdentifier(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache.Add(id, *a)
	return a, nil
}

// searchByIdentifier runs the disjunctive exact-match fallback over the
// three identifier fields and returns the first hit.
func (r *Resolver) searchByIdentifier(ctx context.Context, id string) (*types.Article, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{"term": map[string]any{"doi": id}},
					map[string]any{"term": map[string]any{"pmcid": id}},
					map[string]any{"term": map[string]any{"pmid": id}},
				},
			},
		},
		"size": 1,
	}

	resp, err := r.index.Search(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("identifier search for %s: %w", id, err)
	}
	if len(resp.Hits) == 0 {
		return nil, esindex.ErrNotFound
	}
	return &resp.Hits[0].Source, nil
}
