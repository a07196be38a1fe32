package parser

import (
	"bytes"
	"fmt"

	"github.com/PuerkitoBio/goquery"

	"NotebookValidator/internal/ports"
)

// LinkParser collects hyperlink targets from HTML pages and JATS XML.
type LinkParser struct{}

var _ ports.LinkParser = LinkParser{}

// NewLinkParser builds a parser.
func NewLinkParser() LinkParser {
	return LinkParser{}
}

// ParseLinks returns the href of every a and ext-link element, falling back
// to xlink:href, in document order.
func (LinkParser) ParseLinks(content []byte) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var targets []string
	doc.Find("a, ext-link").Each(func(_ int, sel *goquery.Selection) {
		if target := linkTarget(sel); target != "" {
			targets = append(targets, target)
		}
	})
	return targets, nil
}

// linkTarget returns href, or xlink:href when href is absent or empty. The
// value is kept verbatim so duplicates compare by exact string.
func linkTarget(sel *goquery.Selection) string {
	if href, ok := sel.Attr("href"); ok && href != "" {
		return href
	}
	href, _ := sel.Attr("xlink:href")
	return href
}
