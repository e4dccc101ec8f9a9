// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/organa/search-engine/internal/esindex"
	"github.com/organa/search-engine/internal/logging"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Manage the document index (create, delete, stats)",
}

var indexCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create the document index with the article schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := indexClient(cmd)
		if err != nil {
			return err
		}

		exists, err := client.IndexExists(ctx)
		if err != nil {
			return err
		}
		if exists {
			force, _ := cmd.Flags().GetBool("force")
			if !force {
				return fmt.Errorf("index %s already exists (use --force to recreate)", client.Index())
			}
			if err := client.DeleteIndex(ctx); err != nil {
				return err
			}
			fmt.Printf("deleted existing index %s\n", client.Index())
		}

		if err := client.CreateIndex(ctx); err != nil {
			return err
		}
		color.Green("created index %s", client.Index())
		return nil
	},
}

var indexDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete the document index",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := indexClient(cmd)
		if err != nil {
			return err
		}
		if err := client.DeleteIndex(ctx); err != nil {
			return err
		}
		color.Green("deleted index %s", client.Index())
		return nil
	},
}

var indexStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print document count and index size",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		client, err := indexClient(cmd)
		if err != nil {
			return err
		}

		stats, err := client.Stats(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("index:     %s\n", client.Index())
		fmt.Printf("documents: %d\n", stats.DocumentCount)
		fmt.Printf("size:      %.2f MB\n", stats.SizeMB())
		return nil
	},
}

var indexPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Check connectivity to the index service",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := indexClient(cmd)
		if err != nil {
			return err
		}
		if !client.Ping(context.Background()) {
			return fmt.Errorf("index service is unreachable")
		}
		color.Green("index service is up")
		return nil
	},
}

func indexClient(cmd *cobra.Command) (*esindex.Client, error) {
	cfg := loadConfig()
	log, err := logging.New(debugEnabled(cmd))
	if err != nil {
		return nil, err
	}
	return esindex.New(cfg.Elasticsearch, cfg.Ingest, log)
}

func init() {
	indexCreateCmd.Flags().Bool("force", false, "delete and recreate an existing index")

	indexCmd.AddCommand(indexCreateCmd)
	indexCmd.AddCommand(indexDeleteCmd)
	indexCmd.AddCommand(indexStatsCmd)
	indexCmd.AddCommand(indexPingCmd)
	rootCmd.AddCommand(indexCmd)
}
