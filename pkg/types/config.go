// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// ElasticsearchConfig holds connection settings for the document index.
type ElasticsearchConfig struct {
	// Addresses lists the Elasticsearch node URLs (default http://localhost:9200).
	Addresses []string `json:"addresses" yaml:"addresses"`

	// Index is the document index name (default "pmc_articles").
	Index string `json:"index" yaml:"index"`

	// Username and Password enable basic auth when set.
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
	Password string `json:"password,omitempty" yaml:"password,omitempty"`

	// APIKey enables API-key auth when set; takes precedence over basic auth.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds each request attempt (default 30s).
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// IngestConfig holds settings for directory ingestion and bulk loading.
type IngestConfig struct {
	// BatchSize is how many extracted records accumulate before a flush
	// (default 20).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// ChunkSize is how many documents go into one bulk sub-request
	// (default 500).
	ChunkSize int `json:"chunk_size" yaml:"chunk_size"`

	// MaxRetries is the number of retry attempts per bulk chunk (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxInFlight bounds how many bulk chunks may be in flight at once
	// (default 2).
	MaxInFlight int `json:"max_in_flight" yaml:"max_in_flight"`

	// LedgerPath is the SQLite ingest ledger location (default
	// "ingest/ledger.db"). Empty disables the ledger.
	LedgerPath string `json:"ledger_path" yaml:"ledger_path"`

	// ReportDir is where per-run YAML reports are written (default
	// "ingest/reports"). Empty disables reports.
	ReportDir string `json:"report_dir" yaml:"report_dir"`

	// BatchPause is the pacing delay between consecutive flushes
	// (default 100ms).
	BatchPause time.Duration `json:"batch_pause" yaml:"batch_pause"`
}

// SearchConfig holds settings for the query surface.
type SearchConfig struct {
	// PageSize is the default number of results per page (default 10).
	PageSize int `json:"page_size" yaml:"page_size"`

	// MaxPageSize caps the per-page result count (default 50).
	MaxPageSize int `json:"max_page_size" yaml:"max_page_size"`
}

// LLMConfig holds settings for the completion collaborator.
type LLMConfig struct {
	// BaseURL is the Ollama server URL (default http://localhost:11434).
	BaseURL string `json:"base_url" yaml:"base_url"`

	// Model is the completion model identifier (default "qwen:0.5b").
	Model string `json:"model" yaml:"model"`

	// Temperature for generation (default 0.7).
	Temperature float64 `json:"temperature" yaml:"temperature"`

	// MaxTokens caps generated output length (default 500).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`
}

// Config groups all stage configurations.
type Config struct {
	Elasticsearch ElasticsearchConfig `json:"elasticsearch" yaml:"elasticsearch"`
	Ingest        IngestConfig        `json:"ingest" yaml:"ingest"`
	Search        SearchConfig        `json:"search" yaml:"search"`
	LLM           LLMConfig           `json:"llm" yaml:"llm"`
}

// ApplyDefaults fills zero-valued fields with their documented defaults.
func (c *Config) ApplyDefaults() {
	if len(c.Elasticsearch.Addresses) == 0 {
		c.Elasticsearch.Addresses = []string{"http://localhost:9200"}
	}
	if c.Elasticsearch.Index == "" {
		c.Elasticsearch.Index = "pmc_articles"
	}
	if c.Elasticsearch.Timeout <= 0 {
		c.Elasticsearch.Timeout = 30 * time.Second
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 20
	}
	if c.Ingest.ChunkSize <= 0 {
		c.Ingest.ChunkSize = 500
	}
	if c.Ingest.MaxRetries <= 0 {
		c.Ingest.MaxRetries = 3
	}
	if c.Ingest.MaxInFlight <= 0 {
		c.Ingest.MaxInFlight = 2
	}
	if c.Ingest.BatchPause <= 0 {
		c.Ingest.BatchPause = 100 * time.Millisecond
	}
	if c.Search.PageSize <= 0 {
		c.Search.PageSize = 10
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 50
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "http://localhost:11434"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "qwen:0.5b"
	}
	if c.LLM.Temperature <= 0 {
		c.LLM.Temperature = 0.7
	}
	if c.LLM.MaxTokens <= 0 {
		c.LLM.MaxTokens = 500
	}
}
