package seo

import (
	"io"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a parsed HTML page. It is built once per fetched route, shared
// read-only by every check, and dropped when the checks are done.
type Document struct {
	doc *goquery.Document
}

// Parse reads body into a Document. The HTML5 parser recovers from most
// malformed markup, so an error here almost always means the reader failed.
func Parse(body io.Reader) (*Document, error) {
	root, err := html.Parse(body)
	if err != nil {
		return nil, err
	}
	return &Document{doc: goquery.NewDocumentFromNode(root)}, nil
}

// Count returns the number of elements matching a CSS selector.
func (d *Document) Count(selector string) int {
	return d.doc.Find(selector).Length()
}

// Has reports whether at least one element matches selector.
func (d *Document) Has(selector string) bool {
	return d.Count(selector) > 0
}
