// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm is the client for the external completion collaborator. It
// only produces prompts and interprets responses; the completion service
// itself stays outside this module.
package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/organa/search-engine/pkg/types"
)

// Client generates completions through an Ollama-compatible endpoint.
type Client struct {
	model llms.Model
	cfg   types.LLMConfig
}

// New builds a Client from configuration.
func New(cfg types.LLMConfig) (*Client, error) {
	model, err := ollama.New(
		ollama.WithModel(cfg.Model),
		ollama.WithServerURL(cfg.BaseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing completion client: %w", err)
	}
	return &Client{model: model, cfg: cfg}, nil
}

// Generate produces one completion for the prompt.
func (c *Client) Generate(ctx context.Context, prompt string, temperature float64, maxTokens int) (*types.Completion, error) {
	resp, err := c.model.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return nil, fmt.Errorf("generating completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("completion returned no choices")
	}

	choice := resp.Choices[0]
	return &types.Completion{
		Text:             choice.Content,
		ModelName:        c.cfg.Model,
		PromptTokens:     intFrom(choice.GenerationInfo, "PromptTokens"),
		CompletionTokens: intFrom(choice.GenerationInfo, "CompletionTokens"),
	}, nil
}

// Overview generates a short synthesis of the top search results for a
// query, using each result's title and abstract as context.
func (c *Client) Overview(ctx context.Context, queryText string, results []types.SearchResult) (*types.Completion, error) {
	if len(results) == 0 {
		return nil, fmt.Errorf("no results to summarize")
	}

	var b strings.Builder
	for i, r := range results {
		abstract := r.Abstract
		if abstract == "" {
			abstract = "No abstract available"
		}
		fmt.Fprintf(&b, "Document %d: %s\nAbstract: %s\n\n", i+1, r.Title, abstract)
	}

	prompt := fmt.Sprintf(
		"You are a scientific literature assistant. Based on the documents below, "+
			"write a concise overview answering the query %q. Cite documents by number.\n\n%s",
		queryText, b.String())

	return c.Generate(ctx, prompt, c.cfg.Temperature, c.cfg.MaxTokens)
}

func intFrom(info map[string]any, key string) int {
	if info == nil {
		return 0
	}
	switch v := info[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return 0
}
