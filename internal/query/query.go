// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package query builds ranked, filtered, highlighted article searches and
// shapes raw index hits into result records.
package query

import (
	"context"
	"fmt"
	"strings"

	"github.com/organa/search-engine/pkg/types"
)

// Field weights for the best-fields disjunction. A document scores by its
// best-matching field plus tieBreaker times the other matching fields, so
// multi-field matches outrank single-field matches of equal top score.
var searchFields = []string{
	"title^4",
	"abstract^3",
	"keywords^3",
	"authors.full_name^2",
	"full_text^1",
}

const (
	tieBreaker    = 0.3
	fragmentSize  = 150
	highlightPre  = "<mark>"
	highlightPost = "</mark>"
)

// Searcher executes a query body against the document index.
type Searcher interface {
	Search(ctx context.Context, query any) (*types.SearchResponse, error)
}

// Build translates a query string plus optional filters into the index
// query body. Filters apply as a conjunctive post-filter independent of
// scoring. The full body text is used for scoring and highlighting but
// excluded from returned documents.
func Build(text string, filters *types.SearchFilters, page, size int) map[string]any {
	boolQuery := map[string]any{
		"must": []any{
			map[string]any{
				"multi_match": map[string]any{
					"query":       text,
					"fields":      searchFields,
					"type":        "best_fields",
					"tie_breaker": tieBreaker,
				},
			},
		},
	}
	if clauses := filterClauses(filters); len(clauses) > 0 {
		boolQuery["filter"] = clauses
	}

	return map[string]any{
		"query": map[string]any{"bool": boolQuery},
		"highlight": map[string]any{
			"fields": map[string]any{
				"title":     map[string]any{"number_of_fragments": 0},
				"abstract":  map[string]any{"fragment_size": fragmentSize, "number_of_fragments": 2},
				"full_text": map[string]any{"fragment_size": fragmentSize, "number_of_fragments": 1},
			},
			"pre_tags":  []string{highlightPre},
			"post_tags": []string{highlightPost},
		},
		"_source": map[string]any{"excludes": []string{"full_text"}},
		"from":    (page - 1) * size,
		"size":    size,
	}
}

// filterClauses renders the set filters as index filter clauses, combined
// by the caller as a logical AND.
func filterClauses(f *types.SearchFilters) []any {
	if f.IsEmpty() {
		return nil
	}

	var clauses []any
	if f.ArticleType != "" {
		clauses = append(clauses, map[string]any{
			"term": map[string]any{"article_type": f.ArticleType},
		})
	}
	if f.Journal != "" {
		// Exact key match on the preserved journal title, not full-text.
		clauses = append(clauses, map[string]any{
			"term": map[string]any{"journal.title.keyword": f.Journal},
		})
	}
	if f.Author != "" {
		// At least one author whose name matches.
		clauses = append(clauses, map[string]any{
			"nested": map[string]any{
				"path": "authors",
				"query": map[string]any{
					"match": map[string]any{"authors.full_name": f.Author},
				},
			},
		})
	}
	if f.DateFrom != "" || f.DateTo != "" {
		dateRange := map[string]any{}
		if f.DateFrom != "" {
			dateRange["gte"] = f.DateFrom
		}
		if f.DateTo != "" {
			dateRange["lte"] = f.DateTo
		}
		clauses = append(clauses, map[string]any{
			"range": map[string]any{"publication_date": dateRange},
		})
	}
	return clauses
}

// Run executes the query and returns one shaped result page.
func Run(ctx context.Context, s Searcher, text string, filters *types.SearchFilters, page, size int) (*types.SearchPage, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("query is empty")
	}
	if page < 1 {
		page = 1
	}

	resp, err := s.Search(ctx, Build(text, filters, page, size))
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	return &types.SearchPage{
		Results: Shape(resp.Hits),
		Total:   resp.Total,
		Page:    page,
		Size:    size,
		Query:   text,
	}, nil
}

// Shape copies every source field into result records, attaching the
// relevance score and any highlight snippets. Full text never appears in
// results.
func Shape(hits []types.Hit) []types.SearchResult {
	results := make([]types.SearchResult, 0, len(hits))
	for _, h := range hits {
		results = append(results, types.SearchResult{
			DOI:             h.Source.DOI,
			PMCID:           h.Source.PMCID,
			PMID:            h.Source.PMID,
			Title:           h.Source.Title,
			Abstract:        h.Source.Abstract,
			Authors:         h.Source.Authors,
			Journal:         h.Source.Journal,
			PublicationDate: h.Source.PublicationDate,
			ArticleType:     h.Source.ArticleType,
			Keywords:        h.Source.Keywords,
			Score:           h.Score,
			Highlights:      h.Highlight,
		})
	}
	return results
}
