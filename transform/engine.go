// Package transform turns parsed problem records into Markdown documents,
// either through a completion endpoint or the deterministic renderer.
package transform

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/probdoc"
)

// Ensure Engine implements probdoc.Transformer at compile time.
var _ probdoc.Transformer = (*Engine)(nil)

// Engine runs the generative transform and validates its output. When the
// options do not enable AI it renders the record deterministically.
type Engine struct {
	prompts    probdoc.PromptBuilder
	completer  probdoc.Completer
	validator  probdoc.OutputValidator
	checklists probdoc.Checklists
	tokens     probdoc.TokenCounter
	now        func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithChecklists replaces the default section checklists.
func WithChecklists(c probdoc.Checklists) Option {
	return func(e *Engine) {
		e.checklists = c
	}
}

// WithTokenCounter records the prompt size in the result metadata.
func WithTokenCounter(tc probdoc.TokenCounter) Option {
	return func(e *Engine) {
		e.tokens = tc
	}
}

// WithClock sets the time source used to measure processing time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a new Engine.
func NewEngine(prompts probdoc.PromptBuilder, completer probdoc.Completer, validator probdoc.OutputValidator, opts ...Option) *Engine {
	e := &Engine{
		prompts:    prompts,
		completer:  completer,
		validator:  validator,
		checklists: probdoc.DefaultChecklists(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Transform runs one attempt for rec. With AI enabled, upstream and output
// validation failures are reported in the result, never papered over.
func (e *Engine) Transform(ctx context.Context, rec *probdoc.ProblemRecord, opts probdoc.TransformOptions) *probdoc.TransformResult {
	return e.run(ctx, rec, opts, nil)
}

// TransformStream is like Transform but reports generated chunks to onChunk
// as they arrive. The deterministic path reports the whole body once. The
// final body goes through the same validation as Transform.
func (e *Engine) TransformStream(ctx context.Context, rec *probdoc.ProblemRecord, opts probdoc.TransformOptions, onChunk func(string)) *probdoc.TransformResult {
	if onChunk == nil {
		onChunk = func(string) {}
	}
	return e.run(ctx, rec, opts, onChunk)
}

// Enhance transforms rec and falls back to the deterministic renderer when
// the generative attempt fails. The returned result is the attempt's own,
// so callers can report why a fallback happened.
func (e *Engine) Enhance(ctx context.Context, rec *probdoc.ProblemRecord, opts probdoc.TransformOptions) (*probdoc.Enhanced, *probdoc.TransformResult, error) {
	res := e.Transform(ctx, rec, opts)
	if res.Success {
		return &probdoc.Enhanced{
			Original:       rec,
			Markdown:       res.Data,
			Template:       opts.Template,
			ProcessingTime: res.ProcessingTime,
			Generated:      res.Metadata != nil && res.Metadata.Generated,
		}, res, nil
	}

	if err := ctx.Err(); err != nil {
		return nil, res, err
	}
	switch res.Code {
	case probdoc.EOPTIONS, probdoc.EINVALID:
		return nil, res, res.Err()
	}

	start := e.now()
	md, err := e.render(rec, opts)
	if err != nil {
		return nil, res, err
	}
	return &probdoc.Enhanced{
		Original:       rec,
		Markdown:       md,
		Template:       opts.Template,
		ProcessingTime: e.now().Sub(start),
	}, res, nil
}

func (e *Engine) run(ctx context.Context, rec *probdoc.ProblemRecord, opts probdoc.TransformOptions, onChunk func(string)) *probdoc.TransformResult {
	start := e.now()
	md, meta, err := e.transform(ctx, rec, opts, onChunk)
	res := &probdoc.TransformResult{
		ProcessingTime: e.now().Sub(start),
		Metadata:       meta,
	}
	if err != nil {
		res.Code = probdoc.ErrorCode(err)
		res.Error = probdoc.ErrorMessage(err)
		return res
	}
	res.Success = true
	res.Data = md
	return res
}

func (e *Engine) transform(ctx context.Context, rec *probdoc.ProblemRecord, opts probdoc.TransformOptions, onChunk func(string)) (string, *probdoc.Metadata, error) {
	if err := rec.Validate(); err != nil {
		return "", nil, err
	}
	if !opts.Template.Valid() {
		return "", nil, probdoc.Errorf(probdoc.EINVALID, "unknown template kind %d", int(opts.Template))
	}
	if err := ctx.Err(); err != nil {
		return "", nil, err
	}

	if !opts.AIEnabled() {
		md, err := e.render(rec, opts)
		if err != nil {
			return "", nil, err
		}
		if onChunk != nil {
			onChunk(md)
		}
		return md, ExtractMetadata(md, opts), nil
	}

	prompt, err := e.prompts.BuildPrompt(rec, opts.Template, opts)
	if err != nil {
		return "", nil, err
	}

	cfg := opts.Policy.Config()
	req := probdoc.CompletionRequest{
		APIKey:      opts.APIKey,
		Model:       opts.Model,
		Prompt:      prompt,
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
	}

	var text string
	if onChunk != nil {
		text, err = e.completer.Stream(ctx, req, onChunk)
	} else {
		text, err = e.completer.Complete(ctx, req)
	}
	if err != nil {
		return "", nil, upstreamError(ctx, err)
	}

	md := StripFence(text)
	if err := e.validator.Validate(md, e.checklists.For(opts.Template)); err != nil {
		return "", nil, err
	}

	meta := ExtractMetadata(md, opts)
	meta.Generated = true
	meta.Model = opts.Model
	meta.Policy = opts.Policy
	if e.tokens != nil {
		if n, err := e.tokens.CountTokens(ctx, prompt); err == nil {
			meta.PromptTokens = n
		}
	}
	return md, meta, nil
}

func (e *Engine) render(rec *probdoc.ProblemRecord, opts probdoc.TransformOptions) (string, error) {
	return probdoc.Render(rec, opts.Template, e.checklists.For(opts.Template), probdoc.RenderOptions{
		Translate: opts.Translate,
		Signature: opts.Signature,
	})
}

// upstreamError keeps cancellation and application errors as they are and
// classifies anything else as an upstream failure.
func upstreamError(ctx context.Context, err error) error {
	if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return err
	}
	var appErr *probdoc.Error
	if errors.As(err, &appErr) {
		return err
	}
	return probdoc.WrapError(probdoc.EUPSTREAM, err, "completion failed")
}

// StripFence removes a ```markdown fence wrapped around a whole document.
func StripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") {
		return s
	}
	first, rest, ok := strings.Cut(s, "\n")
	if !ok {
		return s
	}
	switch strings.ToLower(strings.TrimSpace(strings.TrimPrefix(first, "```"))) {
	case "", "markdown", "md":
	default:
		return s
	}
	body := strings.TrimSuffix(rest, "```")
	return strings.TrimSpace(body)
}
