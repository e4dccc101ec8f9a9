// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package esindex

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/organa/search-engine/pkg/types"
)

func init() {
	// Use tiny backoffs so retry tests finish quickly.
	RetryBaseDelay = 1 * time.Millisecond
	RetryMaxDelay = 10 * time.Millisecond
}

func testActions(n int) []types.IndexAction {
	actions := make([]types.IndexAction, n)
	for i := range actions {
		id := fmt.Sprintf("10.1/doc%d", i)
		actions[i] = types.IndexAction{
			DocumentID: id,
			Document:   types.Article{DOI: id, Title: fmt.Sprintf("Doc %d", i)},
		}
	}
	return actions
}

// bulkOK writes a success response covering every action line in the request.
func bulkOK(w http.ResponseWriter, r *http.Request) {
	var items []string
	sc := bufio.NewScanner(r.Body)
	line := 0
	for sc.Scan() {
		if line%2 == 0 {
			var meta struct {
				Index struct {
					ID string `json:"_id"`
				} `json:"index"`
			}
			if err := json.Unmarshal(sc.Bytes(), &meta); err == nil {
				items = append(items, fmt.Sprintf(`{"index":{"_id":%q,"status":201}}`, meta.Index.ID))
			}
		}
		line++
	}
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"errors":false,"items":[%s]}`, strings.Join(items, ","))
}

func TestBulkWrite_AllSucceed(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/articles/_bulk", r.URL.Path)
		bulkOK(w, r)
	})

	outcomes, err := c.BulkWrite(context.Background(), testActions(3))
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	for i, o := range outcomes {
		assert.True(t, o.OK, "outcome %d", i)
		assert.Equal(t, fmt.Sprintf("10.1/doc%d", i), o.DocumentID)
		assert.Equal(t, 201, o.Status)
	}
}

func TestBulkWrite_EmptyBatch(t *testing.T) {
	c, _ := newTestClient(t, func(_ http.ResponseWriter, _ *http.Request) {
		t.Error("no request expected for an empty batch")
	})

	outcomes, err := c.BulkWrite(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestBulkWrite_ChunksLargeBatches(t *testing.T) {
	var mu sync.Mutex
	var requests int
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		bulkOK(w, r)
	})
	c.chunkSize = 2
	c.maxInFlight = 2

	outcomes, err := c.BulkWrite(context.Background(), testActions(5))
	require.NoError(t, err)
	require.Len(t, outcomes, 5)

	// 5 documents at 2 per chunk is 3 requests.
	assert.Equal(t, 3, requests)

	// Outcomes keep batch order even with concurrent chunks.
	for i, o := range outcomes {
		assert.Equal(t, fmt.Sprintf("10.1/doc%d", i), o.DocumentID)
		assert.True(t, o.OK)
	}
}

func TestBulkWrite_ZeroInFlightLimitDefaulted(t *testing.T) {
	c, _ := newTestClient(t, bulkOK)
	c.chunkSize = 1
	c.maxInFlight = 0

	// An undefaulted limit must not deadlock the dispatch loop.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	outcomes, err := c.BulkWrite(ctx, testActions(3))
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	for _, o := range outcomes {
		assert.True(t, o.OK)
	}
}

func TestBulkWrite_RetriesTransientThenSucceeds(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		bulkOK(w, r)
	})

	outcomes, err := c.BulkWrite(context.Background(), testActions(2))
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.True(t, o.OK)
	}
}

func TestBulkWrite_ExhaustedRetriesFailChunk(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	})

	outcomes, err := c.BulkWrite(context.Background(), testActions(2))
	require.NoError(t, err)
	// 1 initial + 3 retries = 4 attempts.
	assert.Equal(t, int32(4), atomic.LoadInt32(&calls))
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.False(t, o.OK)
		assert.NotEmpty(t, o.Reason)
	}
}

func TestBulkWrite_ClientErrorDoesNotRetry(t *testing.T) {
	var calls int32
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error": {"type": "illegal_argument_exception", "reason": "malformed"}}`))
	})

	outcomes, err := c.BulkWrite(context.Background(), testActions(2))
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.False(t, o.OK)
		assert.Contains(t, o.Reason, "illegal_argument_exception")
	}
}

func TestBulkWrite_PerDocumentRejection(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors":true,"items":[
			{"index":{"_id":"10.1/doc0","status":201}},
			{"index":{"_id":"10.1/doc1","status":400,"error":{"type":"mapper_parsing_exception","reason":"failed to parse field"}}},
			{"index":{"_id":"10.1/doc2","status":201}}
		]}`))
	})

	outcomes, err := c.BulkWrite(context.Background(), testActions(3))
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].OK)
	assert.False(t, outcomes[1].OK)
	assert.Contains(t, outcomes[1].Reason, "mapper_parsing_exception")
	assert.True(t, outcomes[2].OK)
}

func TestBulkWrite_ShortResponseFailsMissingDocs(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"errors":false,"items":[{"index":{"_id":"10.1/doc0","status":201}}]}`))
	})

	outcomes, err := c.BulkWrite(context.Background(), testActions(3))
	require.NoError(t, err)
	require.Len(t, outcomes, 3)
	assert.True(t, outcomes[0].OK)
	assert.Equal(t, "missing from bulk response", outcomes[1].Reason)
	assert.Equal(t, "missing from bulk response", outcomes[2].Reason)
}

func TestBulkWrite_ContextCancelled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	// Stretch the backoff so cancellation lands during the wait.
	oldBase, oldMax := RetryBaseDelay, RetryMaxDelay
	RetryBaseDelay, RetryMaxDelay = 500*time.Millisecond, 500*time.Millisecond
	defer func() { RetryBaseDelay, RetryMaxDelay = oldBase, oldMax }()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	outcomes, err := c.BulkWrite(ctx, testActions(2))
	assert.Error(t, err)
	require.Len(t, outcomes, 2)
	for _, o := range outcomes {
		assert.False(t, o.OK)
	}
}

func TestEncodeChunk(t *testing.T) {
	body, err := encodeChunk(testActions(2))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(body)), "\n")
	require.Len(t, lines, 4)
	assert.JSONEq(t, `{"index":{"_id":"10.1/doc0"}}`, lines[0])
	assert.Contains(t, lines[1], `"title":"Doc 0"`)
	assert.JSONEq(t, `{"index":{"_id":"10.1/doc1"}}`, lines[2])
}
