// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package load drives sanitized article records into the document index
// and accounts for every record: succeeded, failed, or skipped.
package load

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/organa/search-engine/internal/sanitize"
	"github.com/organa/search-engine/pkg/types"
)

// errorLogCap bounds per-document error logging per batch. Past the cap only
// the aggregate count grows, so systemic failures cannot flood the log.
const errorLogCap = 10

// BulkWriter submits index actions and reports one outcome per document.
type BulkWriter interface {
	BulkWrite(ctx context.Context, actions []types.IndexAction) ([]types.BulkOutcome, error)
}

// Loader sanitizes records, assigns document keys, and bulk-writes batches.
type Loader struct {
	writer BulkWriter
	log    *zap.Logger

	// Quiet suppresses the per-batch summary log.
	Quiet bool
}

// New returns a Loader writing through w.
func New(w BulkWriter, log *zap.Logger) *Loader {
	return &Loader{writer: w, log: log}
}

// Load sanitizes every record, assigns document keys (first available of
// DOI, PMCID, PMID, else a positional doc_<n> fallback), and submits the
// batch. Records rejected by sanitization count as skipped; submitted
// documents count as succeeded or failed per the index's outcome.
func (l *Loader) Load(ctx context.Context, records []*types.Article) (types.LoadStats, error) {
	var stats types.LoadStats
	actions := make([]types.IndexAction, 0, len(records))

	for i, record := range records {
		clean, ok := sanitize.Sanitize(record)
		if !ok {
			stats.Skipped++
			continue
		}

		id := clean.PrimaryID()
		if id == "" {
			// Positional fallback: unique within this batch, not across runs.
			id = fmt.Sprintf("doc_%d", i)
		}
		actions = append(actions, types.IndexAction{DocumentID: id, Document: *clean})
	}

	if len(actions) == 0 {
		l.log.Warn("no valid documents to index", zap.Int("skipped", stats.Skipped))
		return stats, nil
	}

	outcomes, err := l.writer.BulkWrite(ctx, actions)
	logged := 0
	for _, o := range outcomes {
		if o.OK {
			stats.Succeeded++
			continue
		}
		stats.Failed++
		if logged < errorLogCap {
			logged++
			l.log.Error("error indexing document",
				zap.String("document_id", o.DocumentID),
				zap.Int("status", o.Status),
				zap.String("reason", o.Reason))
		}
	}
	if stats.Failed > logged {
		l.log.Error("further indexing errors suppressed",
			zap.Int("logged", logged),
			zap.Int("failed", stats.Failed))
	}

	if !l.Quiet {
		l.log.Info("bulk load finished",
			zap.Int("succeeded", stats.Succeeded),
			zap.Int("failed", stats.Failed),
			zap.Int("skipped", stats.Skipped))
	}
	if err != nil {
		return stats, fmt.Errorf("bulk write: %w", err)
	}
	return stats, nil
}
