// Package goquery implements the HTML parsers with PuerkitoBio/goquery.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/probdoc"
	"golang.org/x/net/html/atom"
)

// DefaultTOCSelector locates the in-page anchors of the catalog's table of contents.
const DefaultTOCSelector = ".sf-toc a[href^='#']"

// Ensure CatalogParser implements probdoc.CatalogParser at compile time.
var _ probdoc.CatalogParser = (*CatalogParser)(nil)

// CatalogParser extracts topics and problem links from a catalog page.
type CatalogParser struct {
	base        *url.URL
	tocSelector string
}

// NewCatalogParser creates a parser that keeps only links on the same site
// as baseURL. Relative links are resolved against baseURL.
func NewCatalogParser(baseURL string) (*CatalogParser, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, probdoc.Errorf(probdoc.EINVALID, "invalid catalog URL %q", baseURL)
	}
	return &CatalogParser{base: base, tocSelector: DefaultTOCSelector}, nil
}

// ParseCatalog returns topics in table-of-contents order.
func (p *CatalogParser) ParseCatalog(html string) ([]probdoc.Topic, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, probdoc.WrapError(probdoc.EPARSE, err, "failed to parse catalog page")
	}

	anchors := doc.Find(p.tocSelector)
	if anchors.Length() == 0 {
		return nil, probdoc.Errorf(probdoc.EPARSE, "catalog page has no table of contents")
	}

	seen := make(map[string]bool)
	topics := []probdoc.Topic{}
	anchors.Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		id := strings.TrimPrefix(strings.TrimSpace(href), "#")
		name := cleanText(a.Text())
		if id == "" || name == "" || seen[id] {
			return
		}
		seen[id] = true

		section := doc.Find(`[id="` + strings.ReplaceAll(id, `"`, `\"`) + `"]`).First()
		if section.Length() == 0 {
			return
		}

		links := p.links(p.listFor(section))
		if len(links) == 0 {
			return
		}
		topics = append(topics, probdoc.Topic{Name: name, ID: id, Links: links})
	})

	return topics, nil
}

// listFor finds the list of problem links belonging to section: a list
// inside a block section, else the nearest list among the following
// siblings up to the next heading, else the first list of the nearest enclosing block below <body>.
func (p *CatalogParser) listFor(section *goquery.Selection) *goquery.Selection {
	// Anchors are sometimes nested inside the heading they name.
	if parent := section.Parent(); !isHeadingTag(tagOf(section)) && isHeadingTag(tagOf(parent)) {
		section = parent
	}
	if !isHeadingTag(tagOf(section)) {
		if list := section.Find("ul, ol").First(); list.Length() > 0 {
			return list
		}
	}

	for next := section.Next(); next.Length() > 0; next = next.Next() {
		if isHeadingTag(tagOf(next)) || next.Find("[id]").Is("h1, h2, h3, h4, h5, h6") {
			break
		}
		switch tagOf(next) {
		case atom.Ul, atom.Ol:
			return next
		}
		if list := next.Find("ul, ol").First(); list.Length() > 0 {
			return list
		}
	}

	for block := section.Parent(); block.Length() > 0; block = block.Parent() {
		switch tagOf(block) {
		case atom.Body, atom.Html:
			return nil
		}
		if list := block.Find("ul, ol").First(); list.Length() > 0 {
			return list
		}
	}
	return nil
}

func (p *CatalogParser) links(list *goquery.Selection) []probdoc.ProblemLink {
	if list == nil {
		return nil
	}
	var links []probdoc.ProblemLink
	list.Find("li a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		resolved := resolveURL(p.base, href)
		if resolved == "" || !isSameSite(p.base, resolved) {
			return
		}
		title := cleanText(a.Text())
		if title == "" {
			return
		}
		links = append(links, probdoc.ProblemLink{Title: title, URL: resolved})
	})
	return links
}
