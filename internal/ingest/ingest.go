// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ingest walks a directory of article XML files, extracts each one,
// and drives batches through the bulk loader. Per-file failures are logged
// and counted, never fatal; the run always ends with explicit accounting.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/organa/search-engine/internal/extract"
	"github.com/organa/search-engine/internal/ledger"
	"github.com/organa/search-engine/pkg/types"
)

// Flusher loads one batch of extracted records into the index.
type Flusher interface {
	Load(ctx context.Context, records []*types.Article) (types.LoadStats, error)
}

// Pinger reports whether the index service answers.
type Pinger interface {
	Ping(ctx context.Context) bool
}

// Runner orchestrates a directory ingest.
type Runner struct {
	extractor *extract.Extractor
	loader    Flusher
	pinger    Pinger
	ledger    *ledger.Store
	limiter   *rate.Limiter
	log       *zap.Logger
	w         io.Writer
	batchSize int
	reportDir string

	// Force re-parses files the ledger already recorded as parsed.
	Force bool
}

// NewRunner builds a Runner. The ledger may be nil, which disables resume
// tracking; pinger may be nil to skip the connectivity pre-flight (tests).
func NewRunner(cfg types.IngestConfig, loader Flusher, pinger Pinger, led *ledger.Store, log *zap.Logger, w io.Writer) *Runner {
	pause := cfg.BatchPause
	if pause <= 0 {
		pause = 100 * time.Millisecond
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 20
	}
	return &Runner{
		extractor: extract.New(),
		loader:    loader,
		pinger:    pinger,
		ledger:    led,
		limiter:   rate.NewLimiter(rate.Every(pause), 1),
		log:       log,
		w:         w,
		batchSize: batchSize,
		reportDir: cfg.ReportDir,
	}
}

// Run ingests every *.xml file under dir in enumeration order, flushing
// whenever the in-memory batch reaches the batch size and once at the end.
// It aborts early only when the index service is unreachable at the start
// or the context is cancelled between flushes; already-flushed batches
// stay indexed.
func (r *Runner) Run(ctx context.Context, dir string) (types.IngestSummary, error) {
	var sum types.IngestSummary
	start := time.Now()

	if r.pinger != nil && !r.pinger.Ping(ctx) {
		return sum, fmt.Errorf("index service is unreachable, aborting ingest")
	}

	if _, err := os.Stat(dir); err != nil {
		return sum, fmt.Errorf("reading ingest directory: %w", err)
	}
	files, err := filepath.Glob(filepath.Join(dir, "*.xml"))
	if err != nil {
		return sum, fmt.Errorf("listing %s: %w", dir, err)
	}
	sum.Files = len(files)
	fmt.Fprintf(r.w, "found %d XML files in %s\n", len(files), dir)

	var runID int64
	if r.ledger != nil {
		if runID, err = r.ledger.BeginRun(ctx); err != nil {
			return sum, err
		}
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetWriter(r.w),
		progressbar.OptionSetDescription("ingesting"),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(40),
	)

	batch := make([]*types.Article, 0, r.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := r.limiter.Wait(ctx); err != nil {
			return err
		}
		r.log.Info("flushing batch", zap.Int("documents", len(batch)))
		stats, err := r.loader.Load(ctx, batch)
		sum.Add(stats)
		sum.Batches++
		batch = batch[:0]
		if err != nil {
			return err
		}
		// Cancellation is honored between flushes, never mid-batch.
		return ctx.Err()
	}

	for _, path := range files {
		if r.ledger != nil && !r.Force {
			done, err := r.ledger.AlreadyParsed(ctx, path)
			if err != nil {
				return sum, err
			}
			if done {
				sum.Resumed++
				bar.Add(1)
				continue
			}
		}

		article, err := r.extractor.ExtractFile(path)
		bar.Add(1)
		if err != nil {
			sum.ParseFailures++
			r.log.Error("failed to extract file",
				zap.String("file", filepath.Base(path)),
				zap.Error(err))
			r.recordFile(ctx, runID, path, "", ledger.StatusParseFailed, err.Error())
			continue
		}

		r.recordFile(ctx, runID, path, article.PrimaryID(), ledger.StatusParsed, "")
		batch = append(batch, article)
		if len(batch) >= r.batchSize {
			if err := flush(); err != nil {
				r.finishRun(runID, sum)
				return sum, err
			}
		}
	}

	if err := flush(); err != nil {
		r.finishRun(runID, sum)
		return sum, err
	}

	r.finishRun(runID, sum)
	fmt.Fprintf(r.w, "\ncompleted: %d succeeded, %d failed, %d skipped, %d parse failures\n",
		sum.Succeeded, sum.Failed, sum.Skipped, sum.ParseFailures)

	if r.reportDir != "" {
		path, err := writeReport(r.reportDir, dir, sum, start)
		if err != nil {
			r.log.Warn("could not write ingest report", zap.Error(err))
		} else {
			r.log.Info("wrote ingest report", zap.String("path", path))
		}
	}
	return sum, nil
}

func (r *Runner) recordFile(ctx context.Context, runID int64, path, docID, status, errMsg string) {
	if r.ledger == nil {
		return
	}
	if err := r.ledger.RecordFile(ctx, runID, path, docID, status, errMsg); err != nil {
		r.log.Warn("could not record file in ledger",
			zap.String("file", path), zap.Error(err))
	}
}

func (r *Runner) finishRun(runID int64, sum types.IngestSummary) {
	if r.ledger == nil {
		return
	}
	if err := r.ledger.FinishRun(context.Background(), runID, sum); err != nil {
		r.log.Warn("could not record run in ledger", zap.Error(err))
	}
}
