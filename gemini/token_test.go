package gemini_test

import (
	"context"
	"testing"

	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCounter_CountTokens(t *testing.T) {
	t.Parallel()

	// Use a real model name that the tokenizer supports
	tc, err := gemini.NewTokenCounter("gemini-2.0-flash")
	require.NoError(t, err)

	// Verify it implements the interface
	var _ probdoc.TokenCounter = tc

	t.Run("counts tokens in text", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		count, err := tc.CountTokens(ctx, "Hello, world!")

		require.NoError(t, err)
		assert.Positive(t, count)
	})

	t.Run("empty string returns zero", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		count, err := tc.CountTokens(ctx, "")

		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})

	t.Run("longer text returns more tokens", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		shortCount, err := tc.CountTokens(ctx, "Hello")
		require.NoError(t, err)

		longCount, err := tc.CountTokens(ctx, "Write a program that reads two integers and prints their sum, then explain each step.")
		require.NoError(t, err)

		assert.Greater(t, longCount, shortCount)
	})

	t.Run("cancelled context returns error", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := tc.CountTokens(ctx, "Hello")
		require.ErrorIs(t, err, context.Canceled)
	})
}
