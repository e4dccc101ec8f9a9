// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "testing"

func TestPrimaryID(t *testing.T) {
	tests := []struct {
		name    string
		article Article
		want    string
	}{
		{"doi wins", Article{DOI: "10.1/a", PMCID: "PMC1", PMID: "2"}, "10.1/a"},
		{"pmcid next", Article{PMCID: "PMC1", PMID: "2"}, "PMC1"},
		{"pmid last", Article{PMID: "2"}, "2"},
		{"none", Article{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.article.PrimaryID(); got != tt.want {
				t.Errorf("PrimaryID() = %q, want %q", got, tt.want)
			}
			if tt.article.HasIdentifier() != (tt.want != "") {
				t.Errorf("HasIdentifier() disagrees with PrimaryID()")
			}
		})
	}
}

func TestLoadStats(t *testing.T) {
	var s LoadStats
	s.Add(LoadStats{Succeeded: 3, Failed: 1})
	s.Add(LoadStats{Succeeded: 2, Skipped: 4})

	if s.Total() != 10 {
		t.Errorf("Total() = %d, want 10", s.Total())
	}
	if !s.HasFailures() {
		t.Error("HasFailures() = false with a failed document")
	}
	if (LoadStats{Succeeded: 5}).HasFailures() {
		t.Error("HasFailures() = true with no failures")
	}
}

func TestApplyDefaults(t *testing.T) {
	var c Config
	c.ApplyDefaults()

	if len(c.Elasticsearch.Addresses) != 1 || c.Elasticsearch.Addresses[0] != "http://localhost:9200" {
		t.Errorf("Addresses = %v", c.Elasticsearch.Addresses)
	}
	if c.Elasticsearch.Index != "pmc_articles" {
		t.Errorf("Index = %q", c.Elasticsearch.Index)
	}
	if c.Ingest.BatchSize != 20 || c.Ingest.ChunkSize != 500 || c.Ingest.MaxRetries != 3 {
		t.Errorf("Ingest defaults = %+v", c.Ingest)
	}
	if c.Search.PageSize != 10 || c.Search.MaxPageSize != 50 {
		t.Errorf("Search defaults = %+v", c.Search)
	}

	// Explicit settings survive.
	c = Config{Ingest: IngestConfig{BatchSize: 7}}
	c.ApplyDefaults()
	if c.Ingest.BatchSize != 7 {
		t.Errorf("BatchSize = %d, want explicit 7", c.Ingest.BatchSize)
	}
}
