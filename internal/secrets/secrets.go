// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials from a directory of plain-text files.
// Each file in the directory represents one secret: the filename is the key name and the
// file contents (trimmed) are the value.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/organa/search-engine/pkg/types"
)

// Credential key files the pipeline recognizes.
const (
	KeyESUsername = "elasticsearch-username"
	KeyESPassword = "elasticsearch-password"
	KeyESAPIKey   = "elasticsearch-api-key"
	KeyOllamaURL  = "ollama-base-url"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", name, err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// Fill copies the recognized credentials into configuration fields the
// config file left empty. Explicit configuration always wins over the
// secrets directory.
func Fill(cfg *types.Config, secrets map[string]string) {
	if cfg.Elasticsearch.Username == "" {
		cfg.Elasticsearch.Username = secrets[KeyESUsername]
	}
	if cfg.Elasticsearch.Password == "" {
		cfg.Elasticsearch.Password = secrets[KeyESPassword]
	}
	if cfg.Elasticsearch.APIKey == "" {
		cfg.Elasticsearch.APIKey = secrets[KeyESAPIKey]
	}
	if cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = secrets[KeyOllamaURL]
	}
}
