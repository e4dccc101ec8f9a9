// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package esindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/organa/search-engine/pkg/types"
)

// Backoff bounds for bulk chunk retries. The delay starts at RetryBaseDelay
// and doubles per attempt, capped at RetryMaxDelay. Tests override these to
// avoid real sleeps.
var (
	RetryBaseDelay = 2 * time.Second
	RetryMaxDelay  = 600 * time.Second
)

// BulkWrite submits the actions as fixed-size chunks and reports one outcome
// per document. Chunks are dispatched with bounded pipelining; document keys
// are unique within a batch by construction, so concurrent chunks never race
// on the same key. A chunk whose request cannot be completed after retries
// marks every document it carries as failed rather than aborting the batch.
// The returned error is non-nil only when the context is cancelled.
func (c *Client) BulkWrite(ctx context.Context, actions []types.IndexAction) ([]types.BulkOutcome, error) {
	if len(actions) == 0 {
		return nil, nil
	}

	chunkSize := c.chunkSize
	if chunkSize <= 0 {
		chunkSize = 500
	}

	var chunks [][]types.IndexAction
	for start := 0; start < len(actions); start += chunkSize {
		end := start + chunkSize
		if end > len(actions) {
			end = len(actions)
		}
		chunks = append(chunks, actions[start:end])
	}

	maxInFlight := c.maxInFlight
	if maxInFlight <= 0 {
		maxInFlight = 2
	}

	results := make([][]types.BulkOutcome, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxInFlight)

	for i, chunk := range chunks {
		g.Go(func() error {
			outcomes, err := c.writeChunk(gctx, chunk)
			results[i] = outcomes
			return err
		})
	}
	err := g.Wait()

	outcomes := make([]types.BulkOutcome, 0, len(actions))
	for i, r := range results {
		if r == nil {
			// Chunk never completed (cancellation); account for its documents.
			r = failChunk(chunks[i], "bulk write cancelled")
		}
		outcomes = append(outcomes, r...)
	}
	return outcomes, err
}

// writeChunk submits one bulk sub-request, retrying transient failures with
// exponential backoff. It always returns one outcome per action; the error
// is non-nil only on context cancellation.
func (c *Client) writeChunk(ctx context.Context, chunk []types.IndexAction) ([]types.BulkOutcome, error) {
	body, err := encodeChunk(chunk)
	if err != nil {
		return failChunk(chunk, fmt.Sprintf("encoding bulk chunk: %v", err)), nil
	}

	var lastErr string
	for attempt := 0; ; attempt++ {
		outcomes, retryable, err := c.submitChunk(ctx, chunk, body)
		if err == nil {
			return outcomes, nil
		}
		if ctx.Err() != nil {
			return failChunk(chunk, "bulk write cancelled"), ctx.Err()
		}
		lastErr = err.Error()
		if !retryable || attempt >= c.maxRetries {
			break
		}

		delay := RetryBaseDelay << attempt
		if delay > RetryMaxDelay {
			delay = RetryMaxDelay
		}
		c.log.Warn("bulk chunk failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_retries", c.maxRetries),
			zap.Duration("backoff", delay),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return failChunk(chunk, "bulk write cancelled"), ctx.Err()
		case <-time.After(delay):
		}
	}

	return failChunk(chunk, lastErr), nil
}

// submitChunk performs a single bulk request attempt. retryable reports
// whether a failure is transient (transport error, 429, or 5xx).
func (c *Client) submitChunk(ctx context.Context, chunk []types.IndexAction, body []byte) (outcomes []types.BulkOutcome, retryable bool, err error) {
	attemptCtx, cancel := c.withTimeout(ctx)
	defer cancel()

	res, err := c.es.Bulk(bytes.NewReader(body),
		c.es.Bulk.WithIndex(c.index),
		c.es.Bulk.WithContext(attemptCtx),
	)
	if err != nil {
		return nil, true, fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		retryable := res.StatusCode == 429 || res.StatusCode >= 500
		return nil, retryable, fmt.Errorf("bulk request: %s", responseReason(res))
	}

	var parsed struct {
		Items []map[string]struct {
			ID     string `json:"_id"`
			Status int    `json:"status"`
			Error  *struct {
				Type   string `json:"type"`
				Reason string `json:"reason"`
			} `json:"error"`
		} `json:"items"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, true, fmt.Errorf("decoding bulk response: %w", err)
	}

	// Per-document outcomes: a rejected document never aborts its chunk.
	outcomes = make([]types.BulkOutcome, 0, len(chunk))
	for i, item := range parsed.Items {
		for _, detail := range item {
			o := types.BulkOutcome{DocumentID: detail.ID, Status: detail.Status}
			if o.DocumentID == "" && i < len(chunk) {
				o.DocumentID = chunk[i].DocumentID
			}
			if detail.Status >= 200 && detail.Status < 300 {
				o.OK = true
			} else if detail.Error != nil {
				o.Reason = fmt.Sprintf("%s: %s", detail.Error.Type, detail.Error.Reason)
			} else {
				o.Reason = fmt.Sprintf("status %d", detail.Status)
			}
			outcomes = append(outcomes, o)
		}
	}

	// Anything the response did not account for is a failure.
	for i := len(outcomes); i < len(chunk); i++ {
		outcomes = append(outcomes, types.BulkOutcome{
			DocumentID: chunk[i].DocumentID,
			Reason:     "missing from bulk response",
		})
	}
	return outcomes, false, nil
}

// encodeChunk renders the chunk as bulk NDJSON: one action line and one
// document line per entry.
func encodeChunk(chunk []types.IndexAction) ([]byte, error) {
	var buf bytes.Buffer
	for _, action := range chunk {
		meta := map[string]map[string]string{"index": {"_id": action.DocumentID}}
		if err := json.NewEncoder(&buf).Encode(meta); err != nil {
			return nil, err
		}
		if err := json.NewEncoder(&buf).Encode(action.Document); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

func failChunk(chunk []types.IndexAction, reason string) []types.BulkOutcome {
	outcomes := make([]types.BulkOutcome, len(chunk))
	for i, action := range chunk {
		outcomes[i] = types.BulkOutcome{DocumentID: action.DocumentID, Reason: reason}
	}
	return outcomes
}
