package mock

import (
	"context"

	"github.com/fwojciec/probdoc"
)

var (
	_ probdoc.Transformer     = (*Transformer)(nil)
	_ probdoc.PromptBuilder   = (*PromptBuilder)(nil)
	_ probdoc.Completer       = (*Completer)(nil)
	_ probdoc.OutputValidator = (*OutputValidator)(nil)
)

// Transformer is a mock implementation of probdoc.Transformer.
type Transformer struct {
	TransformFn func(ctx context.Context, rec *probdoc.ProblemRecord, opts probdoc.TransformOptions) *probdoc.TransformResult
	EnhanceFn   func(ctx context.Context, rec *probdoc.ProblemRecord, opts probdoc.TransformOptions) (*probdoc.Enhanced, *probdoc.TransformResult, error)
}

func (t *Transformer) Transform(ctx context.Context, rec *probdoc.ProblemRecord, opts probdoc.TransformOptions) *probdoc.TransformResult {
	return t.TransformFn(ctx, rec, opts)
}

func (t *Transformer) Enhance(ctx context.Context, rec *probdoc.ProblemRecord, opts probdoc.TransformOptions) (*probdoc.Enhanced, *probdoc.TransformResult, error) {
	return t.EnhanceFn(ctx, rec, opts)
}

// PromptBuilder is a mock implementation of probdoc.PromptBuilder.
type PromptBuilder struct {
	BuildPromptFn func(rec *probdoc.ProblemRecord, kind probdoc.TemplateKind, opts probdoc.TransformOptions) (string, error)
}

func (b *PromptBuilder) BuildPrompt(rec *probdoc.ProblemRecord, kind probdoc.TemplateKind, opts probdoc.TransformOptions) (string, error) {
	return b.BuildPromptFn(rec, kind, opts)
}

// Completer is a mock implementation of probdoc.Completer.
type Completer struct {
	CompleteFn func(ctx context.Context, req probdoc.CompletionRequest) (string, error)
	StreamFn   func(ctx context.Context, req probdoc.CompletionRequest, onChunk func(string)) (string, error)
}

func (c *Completer) Complete(ctx context.Context, req probdoc.CompletionRequest) (string, error) {
	return c.CompleteFn(ctx, req)
}

func (c *Completer) Stream(ctx context.Context, req probdoc.CompletionRequest, onChunk func(string)) (string, error) {
	return c.StreamFn(ctx, req, onChunk)
}

// OutputValidator is a mock implementation of probdoc.OutputValidator.
type OutputValidator struct {
	ValidateFn func(markdown string, list probdoc.Checklist) error
	SectionsFn func(markdown string) []probdoc.Section
}

func (v *OutputValidator) Validate(markdown string, list probdoc.Checklist) error {
	return v.ValidateFn(markdown, list)
}

func (v *OutputValidator) Sections(markdown string) []probdoc.Section {
	return v.SectionsFn(markdown)
}
