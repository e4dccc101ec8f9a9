// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/beevik/etree"
)

var (
	controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)
	whitespace   = regexp.MustCompile(`\s+`)
	manyPeriods  = regexp.MustCompile(`\.{3,}`)
)

// textContent joins every text node under el, including tail text between
// sibling elements, with single spaces, preserving document order.
func textContent(el *etree.Element) string {
	if el == nil {
		return ""
	}
	var parts []string
	collectText(el, &parts)
	return strings.Join(parts, " ")
}

func collectText(el *etree.Element, parts *[]string) {
	for _, tok := range el.Child {
		switch t := tok.(type) {
		case *etree.CharData:
			if t.Data != "" {
				*parts = append(*parts, t.Data)
			}
		case *etree.Element:
			collectText(t, parts)
		}
	}
}

// cleanText strips ASCII control characters, collapses whitespace runs to a
// single space, collapses 3+ consecutive periods to an ellipsis, and trims.
func cleanText(s string) string {
	if s == "" {
		return ""
	}
	s = controlChars.ReplaceAllString(s, "")
	s = whitespace.ReplaceAllString(s, " ")
	s = manyPeriods.ReplaceAllString(s, "...")
	return strings.TrimSpace(s)
}

// extractPublicationDate picks the publication date node by fixed priority:
// date-type "pub", then pub-type "epub", then any pub-date. Missing month or
// day default to "01"; a date that fails calendar validation falls back to
// YYYY-01-01; no year means no date at all.
func extractPublicationDate(root *etree.Element) string {
	pubDate := root.FindElement("//pub-date[@date-type='pub']")
	if pubDate == nil {
		pubDate = root.FindElement("//pub-date[@pub-type='epub']")
	}
	if pubDate == nil {
		pubDate = root.FindElement("//pub-date")
	}
	if pubDate == nil {
		return ""
	}
	return parseDate(pubDate)
}

func parseDate(dateEl *etree.Element) string {
	year := trimmedText(dateEl.FindElement("year"))
	if year == "" {
		return ""
	}
	month := trimmedText(dateEl.FindElement("month"))
	if month == "" {
		month = "01"
	}
	day := trimmedText(dateEl.FindElement("day"))
	if day == "" {
		day = "01"
	}

	dateStr := year + "-" + pad2(month) + "-" + pad2(day)
	if _, err := time.Parse("2006-01-02", dateStr); err != nil {
		return year + "-01-01"
	}
	return dateStr
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}
