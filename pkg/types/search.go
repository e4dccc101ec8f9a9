// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// SearchFilters narrows a search query. All fields are independently
// optional; set fields combine as a logical AND, applied as a post-filter
// that never affects relevance scoring.
type SearchFilters struct {
	// ArticleType matches the article type exactly (e.g. "research-article").
	ArticleType string `json:"article_type,omitempty" yaml:"article_type,omitempty"`

	// Journal matches the journal title exactly, case and shape preserving.
	Journal string `json:"journal,omitempty" yaml:"journal,omitempty"`

	// Author requires at least one author whose name matches.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// DateFrom and DateTo bound the publication date inclusively; either
	// side may be omitted.
	DateFrom string `json:"date_from,omitempty" yaml:"date_from,omitempty"`
	DateTo   string `json:"date_to,omitempty" yaml:"date_to,omitempty"`
}

// IsEmpty reports whether no filter field is set.
func (f *SearchFilters) IsEmpty() bool {
	return f == nil || (f.ArticleType == "" && f.Journal == "" && f.Author == "" &&
		f.DateFrom == "" && f.DateTo == "")
}

// SearchResult is one ranked hit. It carries every sanitized field except
// the full body text, plus the relevance score and any highlight snippets.
type SearchResult struct {
	DOI             string              `json:"doi,omitempty" yaml:"doi,omitempty"`
	PMCID           string              `json:"pmcid,omitempty" yaml:"pmcid,omitempty"`
	PMID            string              `json:"pmid,omitempty" yaml:"pmid,omitempty"`
	Title           string              `json:"title" yaml:"title"`
	Abstract        string              `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Authors         []Author            `json:"authors,omitempty" yaml:"authors,omitempty"`
	Journal         Journal             `json:"journal" yaml:"journal"`
	PublicationDate string              `json:"publication_date,omitempty" yaml:"publication_date,omitempty"`
	ArticleType     string              `json:"article_type,omitempty" yaml:"article_type,omitempty"`
	Keywords        []string            `json:"keywords,omitempty" yaml:"keywords,omitempty"`
	Score           float64             `json:"score" yaml:"score"`
	Highlights      map[string][]string `json:"highlights,omitempty" yaml:"highlights,omitempty"`
}

// SearchPage is one page of ranked results.
type SearchPage struct {
	Results []SearchResult `json:"results" yaml:"results"`

	// Total is the number of documents matching across all pages.
	Total int `json:"total" yaml:"total"`

	Page int `json:"page" yaml:"page"`
	Size int `json:"size" yaml:"size"`

	Query string `json:"query" yaml:"query"`
}

// Hit is one raw index hit before shaping.
type Hit struct {
	Source    Article
	Score     float64
	Highlight map[string][]string
}

// SearchResponse is the raw outcome of an index search.
type SearchResponse struct {
	Hits  []Hit
	Total int
}

// IndexStats reports the size of the document index.
type IndexStats struct {
	DocumentCount int64 `json:"document_count" yaml:"document_count"`
	SizeBytes     int64 `json:"index_size_bytes" yaml:"index_size_bytes"`
}

// SizeMB returns the index size in megabytes.
func (s IndexStats) SizeMB() float64 {
	return float64(s.SizeBytes) / (1024 * 1024)
}

// LoadStats accumulates per-record outcomes across a bulk load.
type LoadStats struct {
	// Succeeded counts documents the index accepted.
	Succeeded int `json:"succeeded" yaml:"succeeded"`

	// Failed counts documents the index rejected or that could not be
	// delivered after retries.
	Failed int `json:"failed" yaml:"failed"`

	// Skipped counts records rejected by sanitization before submission.
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Add accumulates another batch's counts.
func (s *LoadStats) Add(o LoadStats) {
	s.Succeeded += o.Succeeded
	s.Failed += o.Failed
	s.Skipped += o.Skipped
}

// Total returns the total number of records accounted for.
func (s LoadStats) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// HasFailures reports whether any document failed.
func (s LoadStats) HasFailures() bool {
	return s.Failed > 0
}

// IngestSummary is the aggregate outcome of a directory ingest run.
type IngestSummary struct {
	LoadStats `yaml:",inline"`

	// Files is the number of source files enumerated.
	Files int `json:"files" yaml:"files"`

	// ParseFailures counts files that could not be extracted at all.
	ParseFailures int `json:"parse_failures" yaml:"parse_failures"`

	// Resumed counts files skipped because a previous run already parsed them.
	Resumed int `json:"resumed,omitempty" yaml:"resumed,omitempty"`

	// Batches is the number of bulk flushes performed.
	Batches int `json:"batches" yaml:"batches"`
}

// Completion is the result of one LLM generation call.
type Completion struct {
	Text             string `json:"text" yaml:"text"`
	ModelName        string `json:"model_name" yaml:"model_name"`
	PromptTokens     int    `json:"prompt_tokens,omitempty" yaml:"prompt_tokens,omitempty"`
	CompletionTokens int    `json:"completion_tokens,omitempty" yaml:"completion_tokens,omitempty"`
}
