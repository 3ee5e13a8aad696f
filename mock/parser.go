package mock

import "github.com/fwojciec/probdoc"

var (
	_ probdoc.CatalogParser = (*CatalogParser)(nil)
	_ probdoc.ProblemParser = (*ProblemParser)(nil)
)

// CatalogParser is a mock implementation of probdoc.CatalogParser.
type CatalogParser struct {
	ParseCatalogFn func(html string) ([]probdoc.Topic, error)
}

func (p *CatalogParser) ParseCatalog(html string) ([]probdoc.Topic, error) {
	return p.ParseCatalogFn(html)
}

// ProblemParser is a mock implementation of probdoc.ProblemParser.
type ProblemParser struct {
	ParseProblemFn func(html, url string) (*probdoc.ProblemRecord, error)
}

func (p *ProblemParser) ParseProblem(html, url string) (*probdoc.ProblemRecord, error) {
	return p.ParseProblemFn(html, url)
}
