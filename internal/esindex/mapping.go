// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package esindex

// articleMapping is the index schema for article documents: keyword
// identifiers, analyzed text for the searchable content with keyword
// sub-fields where filters need exact matching, nested authors, and a
// strict-format publication date that tolerates malformed values.
const articleMapping = `{
  "mappings": {
    "properties": {
      "doi": {"type": "keyword"},
      "pmcid": {"type": "keyword"},
      "pmid": {"type": "keyword"},
      "title": {
        "type": "text",
        "analyzer": "standard",
        "fields": {
          "keyword": {"type": "keyword", "ignore_above": 512}
        }
      },
      "abstract": {"type": "text", "analyzer": "standard"},
      "full_text": {"type": "text", "analyzer": "standard"},
      "authors": {
        "type": "nested",
        "properties": {
          "full_name": {
            "type": "text",
            "fields": {
              "keyword": {"type": "keyword", "ignore_above": 256}
            }
          },
          "orcid": {"type": "keyword"}
        }
      },
      "journal": {
        "properties": {
          "title": {
            "type": "text",
            "fields": {
              "keyword": {"type": "keyword", "ignore_above": 512}
            }
          },
          "issn": {"type": "keyword"}
        }
      },
      "publication_date": {
        "type": "date",
        "format": "yyyy-MM-dd",
        "ignore_malformed": true
      },
      "article_type": {"type": "keyword"},
      "keywords": {"type": "keyword"},
      "processed_at": {"type": "date"}
    }
  },
  "settings": {
    "number_of_shards": 1,
    "number_of_replicas": 0,
    "index": {
      "max_result_window": 50000
    },
    "analysis": {
      "analyzer": {
        "scientific_analyzer": {
          "type": "custom",
          "tokenizer": "standard",
          "filter": ["lowercase", "stop"]
        }
      }
    }
  }
}`
