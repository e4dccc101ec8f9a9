// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package esindex is the Elasticsearch-backed document index service. It
// exposes the index primitives the pipeline builds on: ping, index
// administration, key lookup, search, chunked bulk writes, and stats. The
// index's own storage and scoring stay opaque behind this client.
package esindex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"github.com/organa/search-engine/pkg/types"
)

// ErrNotFound reports a key lookup that missed. Callers that want fallback
// behavior must match this sentinel; every other error propagates.
var ErrNotFound = errors.New("document not found")

// Client talks to one Elasticsearch index.
type Client struct {
	es          *elasticsearch.Client
	index       string
	timeout     time.Duration
	chunkSize   int
	maxRetries  int
	maxInFlight int
	log         *zap.Logger
}

// New builds a Client from configuration. It does not contact the cluster;
// use Ping to verify connectivity.
func New(cfg types.ElasticsearchConfig, ingest types.IngestConfig, log *zap.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
		APIKey:    cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("creating elasticsearch client: %w", err)
	}

	return &Client{
		es:          es,
		index:       cfg.Index,
		timeout:     cfg.Timeout,
		chunkSize:   ingest.ChunkSize,
		maxRetries:  ingest.MaxRetries,
		maxInFlight: ingest.MaxInFlight,
		log:         log,
	}, nil
}

// Index returns the index name this client operates on.
func (c *Client) Index() string { return c.index }

// Ping reports whether the cluster answers.
func (c *Client) Ping(ctx context.Context) bool {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Ping(c.es.Ping.WithContext(ctx))
	if err != nil {
		return false
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	return !res.IsError()
}

// IndexExists reports whether the configured index exists.
func (c *Client) IndexExists(ctx context.Context) (bool, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Indices.Exists([]string{c.index}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return false, fmt.Errorf("checking index %s: %w", c.index, err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)

	switch res.StatusCode {
	case 200:
		return true, nil
	case 404:
		return false, nil
	}
	return false, fmt.Errorf("checking index %s: %s", c.index, res.Status())
}

// CreateIndex creates the configured index with the article schema.
func (c *Client) CreateIndex(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Indices.Create(c.index,
		c.es.Indices.Create.WithContext(ctx),
		c.es.Indices.Create.WithBody(bytes.NewReader([]byte(articleMapping))),
	)
	if err != nil {
		return fmt.Errorf("creating index %s: %w", c.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("creating index %s: %s", c.index, responseReason(res))
	}
	io.Copy(io.Discard, res.Body)
	c.log.Info("created index", zap.String("index", c.index))
	return nil
}

// DeleteIndex removes the configured index.
func (c *Client) DeleteIndex(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Indices.Delete([]string{c.index}, c.es.Indices.Delete.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("deleting index %s: %w", c.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("deleting index %s: %s", c.index, responseReason(res))
	}
	io.Copy(io.Discard, res.Body)
	c.log.Info("deleted index", zap.String("index", c.index))
	return nil
}

// Refresh makes recent writes visible to search.
func (c *Client) Refresh(ctx context.Context) error {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Indices.Refresh(
		c.es.Indices.Refresh.WithIndex(c.index),
		c.es.Indices.Refresh.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("refreshing index %s: %w", c.index, err)
	}
	defer res.Body.Close()
	io.Copy(io.Discard, res.Body)
	if res.IsError() {
		return fmt.Errorf("refreshing index %s: %s", c.index, res.Status())
	}
	return nil
}

// Get looks a document up by its storage key. A miss returns ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (*types.Article, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Get(c.index, id, c.es.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("getting document %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == 404 {
		io.Copy(io.Discard, res.Body)
		return nil, ErrNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("getting document %s: %s", id, responseReason(res))
	}

	var body struct {
		Source types.Article `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decoding document %s: %w", id, err)
	}
	return &body.Source, nil
}

// Search executes a query body against the index and returns the raw hits.
func (c *Client) Search(ctx context.Context, query any) (*types.SearchResponse, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("encoding query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(c.index),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("searching %s: %w", c.index, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("searching %s: %s", c.index, responseReason(res))
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source    types.Article       `json:"_source"`
				Score     float64             `json:"_score"`
				Highlight map[string][]string `json:"highlight"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decoding search response: %w", err)
	}

	out := &types.SearchResponse{Total: parsed.Hits.Total.Value}
	for _, h := range parsed.Hits.Hits {
		out.Hits = append(out.Hits, types.Hit{
			Source:    h.Source,
			Score:     h.Score,
			Highlight: h.Highlight,
		})
	}
	return out, nil
}

// Stats returns the document count and on-disk size of the index.
func (c *Client) Stats(ctx context.Context) (*types.IndexStats, error) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Count(c.es.Count.WithIndex(c.index), c.es.Count.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("counting documents: %w", err)
	}
	var count struct {
		Count int64 `json:"count"`
	}
	decodeErr := json.NewDecoder(res.Body).Decode(&count)
	res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("counting documents: %s", res.Status())
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("decoding count response: %w", decodeErr)
	}

	res, err = c.es.Indices.Stats(
		c.es.Indices.Stats.WithIndex(c.index),
		c.es.Indices.Stats.WithContext(ctx),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching index stats: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("fetching index stats: %s", res.Status())
	}

	var stats struct {
		Indices map[string]struct {
			Total struct {
				Store struct {
					SizeInBytes int64 `json:"size_in_bytes"`
				} `json:"store"`
			} `json:"total"`
		} `json:"indices"`
	}
	if err := json.NewDecoder(res.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decoding stats response: %w", err)
	}

	out := &types.IndexStats{DocumentCount: count.Count}
	if idx, ok := stats.Indices[c.index]; ok {
		out.SizeBytes = idx.Total.Store.SizeInBytes
	}
	return out, nil
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

// responseReason extracts the error reason from an Elasticsearch error
// body, falling back to the HTTP status line.
func responseReason(res *esapi.Response) string {
	var body struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err == nil && body.Error.Reason != "" {
		return fmt.Sprintf("%s: %s", body.Error.Type, body.Error.Reason)
	}
	return res.Status()
}
