// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sanitize validates and bounds article records before indexing.
// Sanitization is a pure, total function: it either returns an index-safe
// copy of the record or rejects it, and it never panics out of a batch.
package sanitize

import (
	"strings"
	"unicode/utf8"

	"github.com/organa/search-engine/pkg/types"
)

// Field bounds enforced on every sanitized record.
const (
	MaxTitleLen    = 500
	MaxAbstractLen = 5000
	MaxFullTextLen = 100000
	MaxAuthors     = 20
	MaxAuthorLen   = 100
	MaxKeywords    = 20
	MaxJournalLen  = 200
)

// Sanitize returns a bounded copy of the record, or ok=false when the
// record fails the identifier/title invariant. Sanitizing an already
// sanitized record with a natural identifier is a no-op. Any internal
// failure is treated as a rejection rather than a crash.
func Sanitize(a *types.Article) (out *types.Article, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			out, ok = nil, false
		}
	}()

	if a == nil {
		return nil, false
	}

	// Cheapest reject first: the identifier/title invariant. Identifier
	// presence is judged on the raw values, before trimming: a
	// whitespace-only identifier satisfies presence but sanitizes to empty
	// below, leaving key assignment to the loader's positional fallback.
	if a.DOI == "" && a.PMCID == "" && a.PMID == "" {
		return nil, false
	}
	title := truncate(strings.TrimSpace(a.Title), MaxTitleLen)
	if title == "" {
		return nil, false
	}

	s := &types.Article{
		DOI:             strings.TrimSpace(a.DOI),
		PMCID:           strings.TrimSpace(a.PMCID),
		PMID:            strings.TrimSpace(a.PMID),
		Title:           title,
		Abstract:        truncate(strings.TrimSpace(a.Abstract), MaxAbstractLen),
		FullText:        truncate(strings.TrimSpace(a.FullText), MaxFullTextLen),
		Authors:         sanitizeAuthors(a.Authors),
		Journal:         sanitizeJournal(a.Journal),
		PublicationDate: sanitizeDate(a.PublicationDate),
		ArticleType:     strings.TrimSpace(a.ArticleType),
		Keywords:        sanitizeKeywords(a.Keywords),
		ProcessedAt:     a.ProcessedAt,
	}
	if s.ArticleType == "" {
		s.ArticleType = "research-article"
	}
	return s, true
}

// sanitizeAuthors keeps the first MaxAuthors contributors with non-empty
// names, in original order. No reordering, no relevance selection.
func sanitizeAuthors(authors []types.Author) []types.Author {
	clean := make([]types.Author, 0, min(len(authors), MaxAuthors))
	for _, a := range authors {
		if len(clean) == MaxAuthors {
			break
		}
		name := truncate(strings.TrimSpace(a.FullName), MaxAuthorLen)
		if name == "" {
			continue
		}
		clean = append(clean, types.Author{
			FullName: name,
			ORCID:    strings.TrimSpace(a.ORCID),
		})
	}
	return clean
}

func sanitizeJournal(j types.Journal) types.Journal {
	title := truncate(strings.TrimSpace(j.Title), MaxJournalLen)
	if title == "" {
		title = "Unknown Journal"
	}
	return types.Journal{Title: title, ISSN: strings.TrimSpace(j.ISSN)}
}

// sanitizeDate keeps the date only when it has the exact YYYY-MM-DD shape.
func sanitizeDate(date string) string {
	date = strings.TrimSpace(date)
	if len(date) == 10 && strings.Contains(date, "-") {
		return date
	}
	return ""
}

// sanitizeKeywords keeps the first MaxKeywords non-empty keywords in
// original order.
func sanitizeKeywords(keywords []string) []string {
	clean := make([]string, 0, min(len(keywords), MaxKeywords))
	for _, k := range keywords {
		if len(clean) == MaxKeywords {
			break
		}
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		clean = append(clean, k)
	}
	return clean
}

// truncate clips s to at most n characters.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
