// Package readability recovers page metadata with go-shiori/go-readability.
package readability

import (
	"strings"

	"github.com/fwojciec/probdoc"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements probdoc.Extractor at compile time.
var _ probdoc.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract the title, excerpt and main
// content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the page metadata.
func (e *Extractor) Extract(rawHTML string) (*probdoc.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, probdoc.Errorf(probdoc.EINVALID, "empty HTML input")
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), nil)
	if err != nil {
		return nil, probdoc.WrapError(probdoc.EPARSE, err, "readability failed")
	}

	return &probdoc.ExtractResult{
		Title:       probdoc.CleanPageTitle(article.Title, article.SiteName),
		Description: strings.TrimSpace(article.Excerpt),
		ContentHTML: article.Content,
	}, nil
}
