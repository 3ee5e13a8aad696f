// Package trafilatura recovers page metadata with markusmobius/go-trafilatura.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/probdoc"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements probdoc.Extractor at compile time.
var _ probdoc.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to extract metadata and main content from HTML.
type Extractor struct {
	fallback bool
}

// NewExtractor creates a new Extractor with the readability fallback enabled.
func NewExtractor() *Extractor {
	return &Extractor{fallback: true}
}

// Extract processes raw HTML and returns the page metadata.
func (e *Extractor) Extract(rawHTML string) (*probdoc.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, probdoc.Errorf(probdoc.EINVALID, "empty HTML input")
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), trafilatura.Options{
		EnableFallback: e.fallback,
	})
	if err != nil {
		return nil, probdoc.WrapError(probdoc.EPARSE, err, "trafilatura failed")
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, probdoc.WrapError(probdoc.EPARSE, err, "failed to render content")
		}
	}

	return &probdoc.ExtractResult{
		Title:       probdoc.CleanPageTitle(result.Metadata.Title, result.Metadata.Sitename),
		Description: strings.TrimSpace(result.Metadata.Description),
		ContentHTML: contentHTML,
	}, nil
}

func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
