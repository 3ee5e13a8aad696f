package gemini

import (
	"context"

	"github.com/fwojciec/probdoc"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ probdoc.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts prompt tokens locally with the Gemini tokenizer, so
// prompt sizes can be recorded without a network call.
type TokenCounter struct {
	tok *tokenizer.LocalTokenizer
}

// NewTokenCounter creates a new TokenCounter for the given model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, probdoc.WrapError(probdoc.EINVALID, err, "no local tokenizer for model %q", model)
	}
	return &TokenCounter{tok: tok}, nil
}

// CountTokens counts the number of tokens in the given text.
func (tc *TokenCounter) CountTokens(ctx context.Context, text string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, "user")}, nil)
	if err != nil {
		return 0, probdoc.WrapError(probdoc.EINTERNAL, err, "failed to count tokens")
	}

	return int(result.TotalTokens), nil
}
