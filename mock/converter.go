package mock

import "github.com/fwojciec/probdoc"

var _ probdoc.Converter = (*Converter)(nil)

// Converter is a mock implementation of probdoc.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
