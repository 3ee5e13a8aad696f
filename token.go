package probdoc

import "context"

// TokenCounter counts tokens in a prompt for a specific model.
type TokenCounter interface {
	CountTokens(ctx context.Context, text string) (int, error)
}
