// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract parses JATS article XML into canonical article records.
// A record is emitted only when the source carries at least one identifier
// (DOI, PMCID, or PMID) and a title; anything else yields an error the
// caller logs and counts, never a stopped batch.
package extract

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/organa/search-engine/pkg/types"
)

// Rejection reasons for sources that parse but yield no record.
var (
	ErrNoIdentifier = errors.New("no doi, pmcid, or pmid")
	ErrNoTitle      = errors.New("no article title")
)

// Extractor turns JATS XML documents into article records.
type Extractor struct {
	now func() time.Time
}

// New returns an Extractor. The extraction timestamp uses the wall clock.
func New() *Extractor {
	return &Extractor{now: time.Now}
}

// ExtractFile parses one XML file and extracts its article record.
func (e *Extractor) ExtractFile(path string) (*types.Article, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return e.Extract(doc)
}

// ExtractBytes parses XML from memory and extracts its article record.
func (e *Extractor) ExtractBytes(data []byte) (*types.Article, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing document: %w", err)
	}
	return e.Extract(doc)
}

// Extract walks a parsed document tree and builds the canonical record.
func (e *Extractor) Extract(doc *etree.Document) (*types.Article, error) {
	root := doc.Root()
	if root == nil {
		return nil, errors.New("empty document")
	}

	a := &types.Article{
		DOI:   articleID(root, "doi"),
		PMCID: articleID(root, "pmc"),
		PMID:  articleID(root, "pmid"),
	}
	if !a.HasIdentifier() {
		return nil, ErrNoIdentifier
	}

	a.Title = cleanText(textContent(root.FindElement("//article-title")))
	if a.Title == "" {
		return nil, ErrNoTitle
	}

	a.Abstract = cleanText(textContent(root.FindElement("//abstract")))
	a.FullText = fullText(root, a.Abstract)
	a.Authors = extractAuthors(root)
	a.Journal = extractJournal(root)
	a.PublicationDate = extractPublicationDate(root)
	a.ArticleType = extractArticleType(root)
	a.Keywords = extractKeywords(root)
	a.ProcessedAt = e.now()

	return a, nil
}

// articleID returns the trimmed text of the article-id element with the
// given pub-id-type, or "".
func articleID(root *etree.Element, idType string) string {
	return trimmedText(root.FindElement(fmt.Sprintf("//article-id[@pub-id-type='%s']", idType)))
}

// fullText concatenates the cleaned abstract with the cleaned body text.
// The body is located structurally, independent of the abstract content.
func fullText(root *etree.Element, abstract string) string {
	body := cleanText(textContent(root.FindElement("//body")))
	switch {
	case abstract == "":
		return body
	case body == "":
		return abstract
	}
	return abstract + " " + body
}

// extractAuthors walks the contributor group in document order. A
// contributor is kept only when it yields a non-empty "given surname"
// (or surname alone) string.
func extractAuthors(root *etree.Element) []types.Author {
	var authors []types.Author
	group := root.FindElement("//contrib-group")
	if group == nil {
		return authors
	}

	for _, contrib := range group.FindElements(".//contrib[@contrib-type='author']") {
		name := contrib.FindElement(".//name")
		if name == nil {
			continue
		}
		given := trimmedText(name.FindElement("given-names"))
		surname := trimmedText(name.FindElement("surname"))
		full := strings.TrimSpace(given + " " + surname)
		if full == "" {
			continue
		}

		author := types.Author{FullName: full}
		if orcid := trimmedText(contrib.FindElement(".//contrib-id[@contrib-id-type='orcid']")); orcid != "" {
			author.ORCID = orcid
		}
		authors = append(authors, author)
	}
	return authors
}

// extractJournal reads the journal title and ISSN. A missing title is
// recorded as "Unknown Journal"; distinguishing missing from explicitly
// unknown is deliberately not modeled.
func extractJournal(root *etree.Element) types.Journal {
	j := types.Journal{Title: trimmedText(root.FindElement("//journal-title"))}
	if j.Title == "" {
		j.Title = "Unknown Journal"
	}
	j.ISSN = trimmedText(root.FindElement("//issn"))
	return j
}

// extractArticleType reads the article-type attribute from the article
// element, defaulting to "research-article".
func extractArticleType(root *etree.Element) string {
	el := root
	if el.Tag != "article" {
		el = root.FindElement("//article")
	}
	if el != nil {
		if t := strings.TrimSpace(el.SelectAttrValue("article-type", "")); t != "" {
			return t
		}
	}
	return "research-article"
}

// extractKeywords collects keywords in document order across all keyword
// groups, de-duplicating by exact string match.
func extractKeywords(root *etree.Element) []string {
	var keywords []string
	seen := make(map[string]struct{})
	for _, group := range root.FindElements("//kwd-group") {
		for _, kwd := range group.FindElements(".//kwd") {
			k := trimmedText(kwd)
			if k == "" {
				continue
			}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			keywords = append(keywords, k)
		}
	}
	return keywords
}

// trimmedText returns the element's immediate text, trimmed, or "" for nil.
func trimmedText(el *etree.Element) string {
	if el == nil {
		return ""
	}
	return strings.TrimSpace(el.Text())
}
