// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/organa/search-engine/internal/esindex"
	"github.com/organa/search-engine/internal/ingest"
	"github.com/organa/search-engine/internal/ledger"
	"github.com/organa/search-engine/internal/load"
	"github.com/organa/search-engine/internal/logging"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [directory]",
	Short: "Ingest a directory of article XML files into the index",
	Long: `Ingest walks a directory of PMC-style article XML files, extracts each
into a canonical record, and bulk-loads sanitized batches into the index.

Per-file extraction failures are logged and counted without stopping the
walk. Files a previous run already parsed are skipped unless --force is
given. The run finishes with explicit succeeded/failed/skipped accounting
and writes a YAML report.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().Int("batch-size", 0, "records per bulk flush (default from config)")
	ingestCmd.Flags().Bool("force", false, "re-parse files a previous run already ingested")
	ingestCmd.Flags().Bool("quiet", false, "suppress per-batch summaries")
	ingestCmd.Flags().Bool("no-ledger", false, "disable the ingest ledger for this run")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := loadConfig()

	if n, _ := cmd.Flags().GetInt("batch-size"); n > 0 {
		cfg.Ingest.BatchSize = n
	}
	force, _ := cmd.Flags().GetBool("force")
	quiet, _ := cmd.Flags().GetBool("quiet")
	noLedger, _ := cmd.Flags().GetBool("no-ledger")

	log, err := logging.New(debugEnabled(cmd))
	if err != nil {
		return err
	}
	defer log.Sync()

	client, err := esindex.New(cfg.Elasticsearch, cfg.Ingest, log)
	if err != nil {
		return err
	}

	// Reaching a down index is a setup failure: abort before partial work.
	if !client.Ping(ctx) {
		return fmt.Errorf("cannot reach index service at %v", cfg.Elasticsearch.Addresses)
	}
	exists, err := client.IndexExists(ctx)
	if err != nil {
		return err
	}
	if !exists {
		fmt.Fprintf(os.Stderr, "index %s does not exist, creating\n", client.Index())
		if err := client.CreateIndex(ctx); err != nil {
			return err
		}
	}

	loader := load.New(client, log)
	loader.Quiet = quiet

	var led *ledger.Store
	if !noLedger && cfg.Ingest.LedgerPath != "" {
		if led, err = ledger.Open(cfg.Ingest.LedgerPath); err != nil {
			return err
		}
		defer led.Close()
	}

	runner := ingest.NewRunner(cfg.Ingest, loader, client, led, log, os.Stderr)
	runner.Force = force

	sum, err := runner.Run(ctx, args[0])
	if err != nil {
		return err
	}

	if err := client.Refresh(ctx); err != nil {
		log.Warn("could not refresh index: " + err.Error())
	}

	color.Green("indexed %d document(s)", sum.Succeeded)
	if sum.Skipped > 0 {
		color.Yellow("skipped %d invalid record(s)", sum.Skipped)
	}
	if sum.ParseFailures > 0 {
		color.Yellow("%d file(s) failed extraction", sum.ParseFailures)
	}
	if sum.Resumed > 0 {
		fmt.Printf("resumed past %d previously ingested file(s)\n", sum.Resumed)
	}
	if sum.HasFailures() {
		color.Red("%d document(s) failed indexing", sum.Failed)
		return fmt.Errorf("%d document(s) failed indexing", sum.Failed)
	}
	return nil
}
