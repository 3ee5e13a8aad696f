// Package gemini provides a completion backend and a token counter built on
// Google's genai SDK.
package gemini

import (
	"context"
	"iter"
	"strings"
	"sync"

	"github.com/fwojciec/probdoc"
	"google.golang.org/genai"
)

// DefaultModel is used when a request names no model.
const DefaultModel = "gemini-2.5-flash"

const systemInstruction = "You rewrite programming exercises into structured Markdown documents. " +
	"Follow the formatting rules in the prompt exactly and output only the document."

// Ensure Completer implements probdoc.Completer at compile time.
var _ probdoc.Completer = (*Completer)(nil)

// Generator is the part of *genai.Models the completer uses.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// GeneratorFactory builds a Generator for an API key.
type GeneratorFactory func(ctx context.Context, apiKey string) (Generator, error)

// NewGenerator creates a Gemini API client for apiKey.
func NewGenerator(ctx context.Context, apiKey string) (Generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}
	return client.Models, nil
}

// Completer implements probdoc.Completer using Google Gemini. Clients are
// created lazily, one per API key, since the key travels with each request.
type Completer struct {
	factory GeneratorFactory
	model   string

	mu      sync.Mutex
	clients map[string]Generator
}

// Option configures a Completer.
type Option func(*Completer)

// WithGeneratorFactory replaces how clients are created.
func WithGeneratorFactory(f GeneratorFactory) Option {
	return func(c *Completer) {
		c.factory = f
	}
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(model string) Option {
	return func(c *Completer) {
		c.model = model
	}
}

// NewCompleter creates a new Completer.
func NewCompleter(opts ...Option) *Completer {
	c := &Completer{
		factory: NewGenerator,
		model:   DefaultModel,
		clients: make(map[string]Generator),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Complete generates a response for req.Prompt.
func (c *Completer) Complete(ctx context.Context, req probdoc.CompletionRequest) (string, error) {
	gen, model, err := c.prepare(ctx, req)
	if err != nil {
		return "", err
	}

	result, err := gen.GenerateContent(ctx, model, contents(req.Prompt), BuildConfig(req))
	if err != nil {
		return "", upstreamErr(ctx, err)
	}
	if result == nil {
		return "", probdoc.Errorf(probdoc.EUPSTREAM, "gemini returned nil result")
	}

	text := result.Text()
	if strings.TrimSpace(text) == "" {
		return "", probdoc.Errorf(probdoc.EUPSTREAM, "gemini returned empty text")
	}
	return text, nil
}

// Stream generates a response for req.Prompt, reporting each chunk to onChunk.
func (c *Completer) Stream(ctx context.Context, req probdoc.CompletionRequest, onChunk func(string)) (string, error) {
	gen, model, err := c.prepare(ctx, req)
	if err != nil {
		return "", err
	}

	var full strings.Builder
	for resp, err := range gen.GenerateContentStream(ctx, model, contents(req.Prompt), BuildConfig(req)) {
		if err != nil {
			return "", upstreamErr(ctx, err)
		}
		if resp == nil {
			continue
		}
		chunk := resp.Text()
		if chunk == "" {
			continue
		}
		full.WriteString(chunk)
		if onChunk != nil {
			onChunk(chunk)
		}
	}
	if strings.TrimSpace(full.String()) == "" {
		return "", probdoc.Errorf(probdoc.EUPSTREAM, "gemini returned empty text")
	}
	return full.String(), nil
}

func (c *Completer) prepare(ctx context.Context, req probdoc.CompletionRequest) (Generator, string, error) {
	if req.APIKey == "" {
		return nil, "", probdoc.Errorf(probdoc.EINVALID, "api key is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, "", probdoc.Errorf(probdoc.EINVALID, "prompt is required")
	}
	gen, err := c.generator(ctx, req.APIKey)
	if err != nil {
		return nil, "", err
	}
	model := req.Model
	if model == "" {
		model = c.model
	}
	return gen, model, nil
}

func (c *Completer) generator(ctx context.Context, apiKey string) (Generator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen, ok := c.clients[apiKey]; ok {
		return gen, nil
	}
	gen, err := c.factory(ctx, apiKey)
	if err != nil {
		return nil, probdoc.WrapError(probdoc.EUPSTREAM, err, "failed to create gemini client")
	}
	c.clients[apiKey] = gen
	return gen, nil
}

// BuildConfig returns the GenerateContentConfig for a completion request.
func BuildConfig(req probdoc.CompletionRequest) *genai.GenerateContentConfig {
	temp := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: systemInstruction}},
		},
		Temperature: &temp,
	}
	if req.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.MaxTokens)
	}
	return config
}

func contents(prompt string) []*genai.Content {
	return []*genai.Content{genai.NewContentFromText(prompt, "user")}
}

func upstreamErr(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return probdoc.WrapError(probdoc.EUPSTREAM, err, "gemini request failed")
}
