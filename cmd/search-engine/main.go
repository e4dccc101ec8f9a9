// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the search-engine CLI. The pipeline
// ingests scientific-article XML into a document index and serves ranked,
// filtered, highlighted search plus identifier-based lookup over it.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/organa/search-engine/internal/secrets"
	"github.com/organa/search-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds credentials loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// rootCmd is the base command for the search-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "search-engine",
	Short: "Ingest and search scientific-article XML",
	Long: `search-engine loads PMC-style article XML into a document index and
serves ranked full-text search over it.

Each pipeline surface is a subcommand: ingest walks a directory of article
files into the index, search runs ranked filtered queries, get resolves a
single article by any identifier, and index manages the index itself.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./search-engine.yaml or ~/.config/search-engine/config.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "verbose console logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("search-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "search-engine"))
		}
	}

	viper.SetEnvPrefix("SEARCH_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// loadConfig assembles the typed configuration from viper and the secrets
// directory, then applies defaults.
func loadConfig() types.Config {
	var cfg types.Config

	cfg.Elasticsearch.Addresses = viper.GetStringSlice("elasticsearch.addresses")
	cfg.Elasticsearch.Index = viper.GetString("elasticsearch.index")
	cfg.Elasticsearch.Username = viper.GetString("elasticsearch.username")
	cfg.Elasticsearch.Password = viper.GetString("elasticsearch.password")
	cfg.Elasticsearch.APIKey = viper.GetString("elasticsearch.api_key")
	cfg.Elasticsearch.Timeout = viper.GetDuration("elasticsearch.timeout")

	cfg.Ingest.BatchSize = viper.GetInt("ingest.batch_size")
	cfg.Ingest.ChunkSize = viper.GetInt("ingest.chunk_size")
	cfg.Ingest.MaxRetries = viper.GetInt("ingest.max_retries")
	cfg.Ingest.MaxInFlight = viper.GetInt("ingest.max_in_flight")
	cfg.Ingest.LedgerPath = viper.GetString("ingest.ledger_path")
	cfg.Ingest.ReportDir = viper.GetString("ingest.report_dir")
	cfg.Ingest.BatchPause = viper.GetDuration("ingest.batch_pause")

	cfg.Search.PageSize = viper.GetInt("search.page_size")
	cfg.Search.MaxPageSize = viper.GetInt("search.max_page_size")

	cfg.LLM.BaseURL = viper.GetString("llm.base_url")
	cfg.LLM.Model = viper.GetString("llm.model")
	cfg.LLM.Temperature = viper.GetFloat64("llm.temperature")
	cfg.LLM.MaxTokens = viper.GetInt("llm.max_tokens")

	if cfg.Ingest.LedgerPath == "" {
		cfg.Ingest.LedgerPath = filepath.Join("ingest", "ledger.db")
	}
	if cfg.Ingest.ReportDir == "" {
		cfg.Ingest.ReportDir = filepath.Join("ingest", "reports")
	}

	// Secrets fill credentials the config file leaves empty.
	secrets.Fill(&cfg, loadedSecrets)

	cfg.ApplyDefaults()
	return cfg
}

func debugEnabled(cmd *cobra.Command) bool {
	debug, _ := cmd.Flags().GetBool("debug")
	return debug
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
