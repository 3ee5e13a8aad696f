package gemini_test

import (
	"context"
	"errors"
	"iter"
	"testing"

	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

// fakeGenerator records calls and replays canned responses.
type fakeGenerator struct {
	GenerateContentFn       func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStreamFn func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

func (g *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return g.GenerateContentFn(ctx, model, contents, config)
}

func (g *fakeGenerator) GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
	return g.GenerateContentStreamFn(ctx, model, contents, config)
}

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: genai.NewContentFromText(text, "model")}},
	}
}

func factoryFor(gen gemini.Generator, calls *int) gemini.GeneratorFactory {
	return func(context.Context, string) (gemini.Generator, error) {
		*calls++
		return gen, nil
	}
}

func request() probdoc.CompletionRequest {
	return probdoc.CompletionRequest{APIKey: "key", Prompt: "Rewrite.", Temperature: 0.5, MaxTokens: 6000}
}

func TestCompleter_Complete(t *testing.T) {
	t.Parallel()

	t.Run("returns generated text with request parameters", func(t *testing.T) {
		t.Parallel()

		var gotModel string
		var gotConfig *genai.GenerateContentConfig
		gen := &fakeGenerator{
			GenerateContentFn: func(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				gotModel, gotConfig = model, config
				require.Len(t, contents, 1)
				assert.Equal(t, "Rewrite.", contents[0].Parts[0].Text)
				return textResponse("# Done"), nil
			},
		}
		var calls int
		c := gemini.NewCompleter(gemini.WithGeneratorFactory(factoryFor(gen, &calls)))

		out, err := c.Complete(context.Background(), request())

		require.NoError(t, err)
		assert.Equal(t, "# Done", out)
		assert.Equal(t, gemini.DefaultModel, gotModel)
		require.NotNil(t, gotConfig.Temperature)
		assert.InDelta(t, 0.5, *gotConfig.Temperature, 0.0001)
		assert.Equal(t, int32(6000), gotConfig.MaxOutputTokens)
	})

	t.Run("reuses client per api key", func(t *testing.T) {
		t.Parallel()

		gen := &fakeGenerator{
			GenerateContentFn: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return textResponse("ok"), nil
			},
		}
		var calls int
		c := gemini.NewCompleter(gemini.WithGeneratorFactory(factoryFor(gen, &calls)))

		_, err := c.Complete(context.Background(), request())
		require.NoError(t, err)
		_, err = c.Complete(context.Background(), request())
		require.NoError(t, err)

		other := request()
		other.APIKey = "other"
		_, err = c.Complete(context.Background(), other)
		require.NoError(t, err)

		assert.Equal(t, 2, calls)
	})

	t.Run("wraps API failure as EUPSTREAM", func(t *testing.T) {
		t.Parallel()

		gen := &fakeGenerator{
			GenerateContentFn: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return nil, errors.New("quota exceeded")
			},
		}
		var calls int
		c := gemini.NewCompleter(gemini.WithGeneratorFactory(factoryFor(gen, &calls)))

		_, err := c.Complete(context.Background(), request())

		require.Error(t, err)
		assert.Equal(t, probdoc.EUPSTREAM, probdoc.ErrorCode(err))
		assert.Contains(t, probdoc.ErrorMessage(err), "quota exceeded")
	})

	t.Run("empty text is EUPSTREAM", func(t *testing.T) {
		t.Parallel()

		gen := &fakeGenerator{
			GenerateContentFn: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
				return &genai.GenerateContentResponse{}, nil
			},
		}
		var calls int
		c := gemini.NewCompleter(gemini.WithGeneratorFactory(factoryFor(gen, &calls)))

		_, err := c.Complete(context.Background(), request())

		require.Error(t, err)
		assert.Equal(t, probdoc.EUPSTREAM, probdoc.ErrorCode(err))
	})

	t.Run("missing api key is EINVALID", func(t *testing.T) {
		t.Parallel()

		req := request()
		req.APIKey = ""

		_, err := gemini.NewCompleter().Complete(context.Background(), req)

		require.Error(t, err)
		assert.Equal(t, probdoc.EINVALID, probdoc.ErrorCode(err))
	})
}

func TestCompleter_Stream(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		GenerateContentStreamFn: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
			return func(yield func(*genai.GenerateContentResponse, error) bool) {
				for _, part := range []string{"# Title", "\n\nBody"} {
					if !yield(textResponse(part), nil) {
						return
					}
				}
			}
		},
	}
	var calls int
	c := gemini.NewCompleter(gemini.WithGeneratorFactory(factoryFor(gen, &calls)))

	var chunks []string
	out, err := c.Stream(context.Background(), request(), func(s string) { chunks = append(chunks, s) })

	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nBody", out)
	assert.Equal(t, []string{"# Title", "\n\nBody"}, chunks)
}

func TestCompleter_Stream_Error(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{
		GenerateContentStreamFn: func(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error] {
			return func(yield func(*genai.GenerateContentResponse, error) bool) {
				if !yield(textResponse("partial"), nil) {
					return
				}
				yield(nil, errors.New("connection reset"))
			}
		},
	}
	var calls int
	c := gemini.NewCompleter(gemini.WithGeneratorFactory(factoryFor(gen, &calls)))

	_, err := c.Stream(context.Background(), request(), nil)

	require.Error(t, err)
	assert.Equal(t, probdoc.EUPSTREAM, probdoc.ErrorCode(err))
}
