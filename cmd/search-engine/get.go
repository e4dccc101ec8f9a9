// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/organa/search-engine/internal/esindex"
	"github.com/organa/search-engine/internal/logging"
	"github.com/organa/search-engine/internal/resolve"
)

var getCmd = &cobra.Command{
	Use:   "get [identifier]",
	Short: "Retrieve one article by DOI, PMCID, or PMID",
	Long: `Get resolves a single article by any of its identifiers. It tries a
direct key lookup first and falls back to an exact-match search across the
identifier fields, covering documents stored under positional fallback keys.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().Bool("json", false, "output the article as JSON")

	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	cfg := loadConfig()

	log, err := logging.New(debugEnabled(cmd))
	if err != nil {
		return err
	}
	defer log.Sync()

	client, err := esindex.New(cfg.Elasticsearch, cfg.Ingest, log)
	if err != nil {
		return err
	}

	resolver := resolve.New(client, 0)
	article, err := resolver.Resolve(ctx, args[0])
	if errors.Is(err, esindex.ErrNotFound) {
		return fmt.Errorf("article %q not found", args[0])
	}
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(article)
	}

	data, err := yaml.Marshal(article)
	if err != nil {
		return err
	}
	os.Stdout.Write(data)
	return nil
}
