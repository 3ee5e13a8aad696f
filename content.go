package probdoc

import "time"

// Content is what gets exported: either the parsed record as-is, or a
// Markdown body derived from it. The record is always reachable so callers
// can fall back to it.
type Content interface {
	Record() *ProblemRecord
	content()
}

// Original wraps a record that has not been transformed.
type Original struct {
	ProblemRecord *ProblemRecord
}

// Record returns the wrapped record.
func (c *Original) Record() *ProblemRecord { return c.ProblemRecord }

func (*Original) content() {}

// Enhanced holds a rendered Markdown body alongside the record it came from.
type Enhanced struct {
	Original       *ProblemRecord
	Markdown       string
	Template       TemplateKind
	ProcessingTime time.Duration

	// Generated is false when the body came from the deterministic renderer.
	Generated bool
}

// Record returns the record the body was derived from.
func (c *Enhanced) Record() *ProblemRecord { return c.Original }

func (*Enhanced) content() {}
