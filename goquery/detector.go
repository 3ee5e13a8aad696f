package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Layout identifies which markup variant a problem page uses.
type Layout int

const (
	// LayoutUnknown means the page has no recognizable content container.
	LayoutUnknown Layout = iota
	// LayoutMethods means the page splits its solutions under "Method N" headers.
	LayoutMethods
	// LayoutFlat means the page lists code and output blocks without method headers.
	LayoutFlat
)

// String returns a short name for the layout.
func (l Layout) String() string {
	switch l {
	case LayoutMethods:
		return "methods"
	case LayoutFlat:
		return "flat"
	default:
		return "unknown"
	}
}

// Detector identifies the markup variant of a problem page.
type Detector struct {
	containerSelector string
	walker            walker
}

// NewDetector creates a new Detector using the default selectors.
func NewDetector() *Detector {
	return &Detector{
		containerSelector: DefaultContainerSelector,
		walker:            walker{endSelector: DefaultEndSelector},
	}
}

// Detect analyzes HTML and returns the identified layout.
// Returns LayoutUnknown if the page has no content container.
func (d *Detector) Detect(html string) Layout {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return LayoutUnknown
	}
	content := contentRoot(doc, d.containerSelector)
	if content == nil {
		return LayoutUnknown
	}
	return d.detect(content)
}

func (d *Detector) detect(content *goquery.Selection) Layout {
	for _, node := range d.walker.flatten(content) {
		if d.walker.classify(node) == kindMethodHeader {
			return LayoutMethods
		}
	}
	return LayoutFlat
}

// contentRoot returns the element whose children hold the article body,
// or nil when the page has no recognizable container.
func contentRoot(doc *goquery.Document, containerSelector string) *goquery.Selection {
	container := doc.Find(containerSelector).First()
	if container.Length() == 0 {
		return nil
	}
	if inner := container.Find(".entry-content").First(); inner.Length() > 0 {
		return inner
	}
	return container
}
