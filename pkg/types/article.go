// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the search-engine pipeline:
// the canonical article record produced by extraction, the sanitized form
// loaded into the index, and the search/ingest result shapes.
package types

import "time"

// Author is one article contributor in document order.
type Author struct {
	// FullName is "given surname", or surname alone when no given names exist.
	FullName string `json:"full_name" yaml:"full_name"`

	// ORCID is the contributor's ORCID identifier, when present.
	ORCID string `json:"orcid,omitempty" yaml:"orcid,omitempty"`
}

// Journal holds the publication venue of an article.
type Journal struct {
	// Title is the journal title, "Unknown Journal" when the source omits it.
	Title string `json:"title" yaml:"title"`

	ISSN string `json:"issn,omitempty" yaml:"issn,omitempty"`
}

// Article is the canonical record shared by extraction, sanitization, and
// indexing. The extractor emits one per source file; the sanitizer returns a
// bounded copy. Records are never mutated after creation; every stage
// transforms and replaces.
type Article struct {
	// Identifiers. At least one must be non-empty for the record to be valid.
	DOI   string `json:"doi" yaml:"doi"`
	PMCID string `json:"pmcid" yaml:"pmcid"`
	PMID  string `json:"pmid" yaml:"pmid"`

	// Title is required; a record without one is rejected.
	Title string `json:"title" yaml:"title"`

	// Abstract is the cleaned abstract text, possibly empty.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// FullText is the cleaned abstract followed by the cleaned body text.
	// It is indexed for scoring and highlighting but never echoed back in
	// search responses.
	FullText string `json:"full_text,omitempty" yaml:"full_text,omitempty"`

	// Authors lists contributors in document order.
	Authors []Author `json:"authors" yaml:"authors"`

	Journal Journal `json:"journal" yaml:"journal"`

	// PublicationDate is an exact YYYY-MM-DD string, or empty when the
	// source carries no usable year.
	PublicationDate string `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`

	// ArticleType defaults to "research-article".
	ArticleType string `json:"article_type" yaml:"article_type"`

	// Keywords are collected in document order, de-duplicated case-sensitively.
	Keywords []string `json:"keywords" yaml:"keywords"`

	// ProcessedAt records when the record was extracted.
	ProcessedAt time.Time `json:"processed_at" yaml:"processed_at"`
}

// HasIdentifier reports whether at least one of DOI, PMCID, or PMID is set.
func (a *Article) HasIdentifier() bool {
	return a.DOI != "" || a.PMCID != "" || a.PMID != ""
}

// PrimaryID returns the first available natural identifier in the fixed
// preference order DOI, PMCID, PMID, or "" when the record has none. The
// bulk loader uses this as the index document key, so the mapping from
// record to key is deterministic.
func (a *Article) PrimaryID() string {
	switch {
	case a.DOI != "":
		return a.DOI
	case a.PMCID != "":
		return a.PMCID
	case a.PMID != "":
		return a.PMID
	}
	return ""
}

// IndexAction pairs a document key with the sanitized record to write under it.
type IndexAction struct {
	DocumentID string  `json:"document_id"`
	Document   Article `json:"document"`
}

// BulkOutcome is the per-document result of a bulk write. Outcomes are values
// aggregated by the caller; a failed document never aborts its chunk.
type BulkOutcome struct {
	DocumentID string `json:"document_id"`
	OK         bool   `json:"ok"`

	// Status is the HTTP-style status the index reported for this document,
	// zero when the chunk itself could not be delivered.
	Status int `json:"status,omitempty"`

	// Reason describes the failure, empty on success.
	Reason string `json:"reason,omitempty"`
}
