package mock

import "github.com/fwojciec/probdoc"

var _ probdoc.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of probdoc.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*probdoc.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*probdoc.ExtractResult, error) {
	return e.ExtractFn(html)
}
