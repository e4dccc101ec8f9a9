// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ledger

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/organa/search-engine/pkg/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "ledger.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	s.Close()
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	n, err := s.RunCount(ctx)
	if err != nil || n != 0 {
		t.Fatalf("RunCount() = %d, %v, want 0, nil", n, err)
	}

	runID, err := s.BeginRun(ctx)
	if err != nil {
		t.Fatalf("BeginRun() error = %v", err)
	}
	if runID == 0 {
		t.Error("BeginRun() returned zero id")
	}

	sum := types.IngestSummary{
		Files:         10,
		ParseFailures: 1,
		LoadStats:     types.LoadStats{Succeeded: 8, Failed: 0, Skipped: 1},
	}
	if err := s.FinishRun(ctx, runID, sum); err != nil {
		t.Fatalf("FinishRun() error = %v", err)
	}

	n, err = s.RunCount(ctx)
	if err != nil || n != 1 {
		t.Errorf("RunCount() = %d, %v, want 1, nil", n, err)
	}
}

func TestRecordFileAndAlreadyParsed(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	runID, err := s.BeginRun(ctx)
	if err != nil {
		t.Fatal(err)
	}

	done, err := s.AlreadyParsed(ctx, "data/a.xml")
	if err != nil {
		t.Fatalf("AlreadyParsed() error = %v", err)
	}
	if done {
		t.Error("AlreadyParsed() = true for unseen file")
	}

	if err := s.RecordFile(ctx, runID, "data/a.xml", "10.1/a", StatusParsed, ""); err != nil {
		t.Fatalf("RecordFile() error = %v", err)
	}
	done, err = s.AlreadyParsed(ctx, "data/a.xml")
	if err != nil || !done {
		t.Errorf("AlreadyParsed() = %v, %v after successful parse", done, err)
	}

	// A parse failure is recorded but does not count as parsed.
	if err := s.RecordFile(ctx, runID, "data/b.xml", "", StatusParseFailed, "bad xml"); err != nil {
		t.Fatalf("RecordFile() error = %v", err)
	}
	done, err = s.AlreadyParsed(ctx, "data/b.xml")
	if err != nil || done {
		t.Errorf("AlreadyParsed() = %v, %v for parse failure", done, err)
	}
}

func TestRecordFile_UpsertsOnRetry(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	runID, err := s.BeginRun(ctx)
	if err != nil {
		t.Fatal(err)
	}

	// First attempt fails, a later run succeeds: the newest outcome wins.
	if err := s.RecordFile(ctx, runID, "data/c.xml", "", StatusParseFailed, "truncated"); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordFile(ctx, runID, "data/c.xml", "PMC1", StatusParsed, ""); err != nil {
		t.Fatal(err)
	}

	done, err := s.AlreadyParsed(ctx, "data/c.xml")
	if err != nil || !done {
		t.Errorf("AlreadyParsed() = %v, %v after upsert to parsed", done, err)
	}
}

func TestOpen_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "ledger.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	runID, err := s.BeginRun(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.RecordFile(ctx, runID, "data/d.xml", "10.1/d", StatusParsed, ""); err != nil {
		t.Fatal(err)
	}
	s.Close()

	// State survives reopen.
	s, err = Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	done, err := s.AlreadyParsed(ctx, "data/d.xml")
	if err != nil || !done {
		t.Errorf("AlreadyParsed() = %v, %v after reopen", done, err)
	}
	n, err := s.RunCount(ctx)
	if err != nil || n != 1 {
		t.Errorf("RunCount() = %d, %v after reopen", n, err)
	}
}
