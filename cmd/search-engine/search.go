// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/organa/search-engine/internal/esindex"
	"github.com/organa/search-engine/internal/llm"
	"github.com/organa/search-engine/internal/logging"
	"github.com/organa/search-engine/internal/query"
	"github.com/organa/search-engine/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed articles",
	Long: `Search runs a ranked best-fields query over titles, abstracts, keywords,
author names, and body text, with optional exact filters on article type,
journal, author, and publication date range. Matched passages are
highlighted. With --overview the top results are synthesized into a short
answer by the completion collaborator.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().Int("page", 1, "result page number")
	searchCmd.Flags().Int("size", 0, "results per page (default from config)")
	searchCmd.Flags().String("article-type", "", "filter by article type")
	searchCmd.Flags().String("journal", "", "filter by exact journal title")
	searchCmd.Flags().String("author", "", "filter by author name")
	searchCmd.Flags().String("from", "", "publication date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "publication date range end (YYYY-MM-DD)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().Bool("overview", false, "generate an LLM overview of the top results")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
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

	page, _ := cmd.Flags().GetInt("page")
	size, _ := cmd.Flags().GetInt("size")
	if size <= 0 {
		size = cfg.Search.PageSize
	}
	if size > cfg.Search.MaxPageSize {
		size = cfg.Search.MaxPageSize
	}

	filters := filtersFromFlags(cmd)
	text := strings.Join(args, " ")

	result, err := query.Run(ctx, client, text, filters, page, size)
	if err != nil {
		return err
	}

	if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(result); err != nil {
			return err
		}
	} else {
		printResults(result)
	}

	if overview, _ := cmd.Flags().GetBool("overview"); overview {
		return printOverview(ctx, cfg.LLM, text, result.Results)
	}
	return nil
}

func filtersFromFlags(cmd *cobra.Command) *types.SearchFilters {
	articleType, _ := cmd.Flags().GetString("article-type")
	journal, _ := cmd.Flags().GetString("journal")
	author, _ := cmd.Flags().GetString("author")
	from, _ := cmd.Flags().GetString("from")
	to, _ := cmd.Flags().GetString("to")

	return &types.SearchFilters{
		ArticleType: articleType,
		Journal:     journal,
		Author:      author,
		DateFrom:    from,
		DateTo:      to,
	}
}

func printResults(page *types.SearchPage) {
	if len(page.Results) == 0 {
		fmt.Println("no results")
		return
	}
	fmt.Printf("%d result(s), showing page %d\n\n", page.Total, page.Page)

	bold := color.New(color.Bold)
	rank := (page.Page-1)*page.Size + 1
	for i, r := range page.Results {
		bold.Printf("%d. %s\n", rank+i, r.Title)
		fmt.Printf("   %s | %s", identifierLine(r), r.Journal.Title)
		if r.PublicationDate != "" {
			fmt.Printf(", %s", r.PublicationDate)
		}
		fmt.Printf(" (score %.2f)\n", r.Score)
		for _, field := range []string{"abstract", "full_text"} {
			for _, snippet := range r.Highlights[field] {
				fmt.Printf("   … %s\n", snippet)
			}
		}
		fmt.Println()
	}
}

func identifierLine(r types.SearchResult) string {
	switch {
	case r.DOI != "":
		return "doi:" + r.DOI
	case r.PMCID != "":
		return "pmcid:" + r.PMCID
	case r.PMID != "":
		return "pmid:" + r.PMID
	}
	return "no identifier"
}

func printOverview(ctx context.Context, cfg types.LLMConfig, text string, results []types.SearchResult) error {
	client, err := llm.New(cfg)
	if err != nil {
		return err
	}
	completion, err := client.Overview(ctx, text, results)
	if err != nil {
		return err
	}
	color.Cyan("overview (%s):", completion.ModelName)
	fmt.Println(completion.Text)
	return nil
}
