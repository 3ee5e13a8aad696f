// Package goldmark checks generated Markdown with yuin/goldmark.
package goldmark

import (
	"strings"

	"github.com/fwojciec/probdoc"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// Ensure Validator implements probdoc.OutputValidator at compile time.
var _ probdoc.OutputValidator = (*Validator)(nil)

// Validator parses Markdown into an AST and checks its headings. Lines that
// look like headings inside fenced code are not headings and are ignored.
type Validator struct {
	md goldmark.Markdown
}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{md: goldmark.New()}
}

// Sections returns every ATX or setext heading in document order.
func (v *Validator) Sections(markdown string) []probdoc.Section {
	src := []byte(markdown)
	doc := v.md.Parser().Parse(text.NewReader(src))

	var sections []probdoc.Section
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok {
			sections = append(sections, probdoc.NewSection(h.Level, inlineText(h, src)))
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return sections
}

// Validate returns EOUTPUT naming every checklist heading markdown lacks.
func (v *Validator) Validate(markdown string, list probdoc.Checklist) error {
	if strings.TrimSpace(markdown) == "" {
		return probdoc.Errorf(probdoc.EOUTPUT, "output is empty")
	}

	missing := list.Missing(v.Sections(markdown))
	if len(missing) == 0 {
		return nil
	}

	names := make([]string, len(missing))
	for i, spec := range missing {
		names[i] = strings.TrimSpace(spec.Heading())
	}
	return probdoc.Errorf(probdoc.EOUTPUT, "missing required sections: %s", strings.Join(names, ", "))
}

// inlineText concatenates the literal text under n.
func inlineText(n ast.Node, src []byte) string {
	var sb strings.Builder
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch t := c.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				sb.WriteByte(' ')
			}
		case *ast.String:
			sb.Write(t.Value)
		default:
			sb.WriteString(inlineText(c, src))
		}
	}
	return sb.String()
}
