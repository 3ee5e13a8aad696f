package http

import (
	"bufio"
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/fwojciec/probdoc"
	"github.com/xeipuuv/gojsonschema"
)

// Chat-completions defaults.
const (
	DefaultBaseURL = "https://api.mistral.ai/v1"
	DefaultModel   = "pixtral-12b-2409"
)

// maxErrorBody caps how much of a failed response is quoted in errors.
const maxErrorBody = 4 << 10

//go:embed chat_response.schema.json
var responseSchemaJSON string

var responseSchema = mustSchema(responseSchemaJSON)

func mustSchema(src string) *gojsonschema.Schema {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(src))
	if err != nil {
		panic(fmt.Sprintf("compile response schema: %v", err))
	}
	return schema
}

// Ensure Completer implements probdoc.Completer at compile time.
var _ probdoc.Completer = (*Completer)(nil)

// Completer calls an OpenAI-compatible /chat/completions endpoint.
type Completer struct {
	client  *http.Client
	baseURL string
	model   string
}

// CompleterOption configures a Completer.
type CompleterOption func(*Completer)

// WithBaseURL points the completer at another compatible endpoint.
func WithBaseURL(u string) CompleterOption {
	return func(c *Completer) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithDefaultModel sets the model used when a request names none.
func WithDefaultModel(model string) CompleterOption {
	return func(c *Completer) {
		c.model = model
	}
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(client *http.Client) CompleterOption {
	return func(c *Completer) {
		c.client = client
	}
}

// NewCompleter creates a new Completer.
func NewCompleter(opts ...CompleterOption) *Completer {
	c := &Completer{
		client:  &http.Client{},
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
		Delta   chatMessage `json:"delta"`
	} `json:"choices"`
}

// Complete sends req and returns the first choice's message content.
func (c *Completer) Complete(ctx context.Context, req probdoc.CompletionRequest) (string, error) {
	resp, err := c.post(ctx, req, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", upstreamErr(ctx, err, "failed to read completion response")
	}

	result, err := responseSchema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return "", probdoc.WrapError(probdoc.EUPSTREAM, err, "completion response is not JSON")
	}
	if !result.Valid() {
		return "", probdoc.Errorf(probdoc.EUPSTREAM, "malformed completion response: %s", describeErrors(result.Errors()))
	}

	var body chatResponse
	if err := json.Unmarshal(data, &body); err != nil {
		return "", probdoc.WrapError(probdoc.EUPSTREAM, err, "failed to decode completion response")
	}
	content := body.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", probdoc.Errorf(probdoc.EUPSTREAM, "completion response is empty")
	}
	return content, nil
}

// Stream sends req with server-sent events enabled and reports each delta
// to onChunk.
func (c *Completer) Stream(ctx context.Context, req probdoc.CompletionRequest, onChunk func(string)) (string, error) {
	resp, err := c.post(ctx, req, true)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var full strings.Builder
	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 64<<10), 1<<20)
	for scanner.Scan() {
		data, ok := strings.CutPrefix(scanner.Text(), "data:")
		if !ok {
			continue
		}
		data = strings.TrimSpace(data)
		if data == "[DONE]" {
			break
		}

		var chunk chatResponse
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			return "", probdoc.WrapError(probdoc.EUPSTREAM, err, "malformed stream event")
		}
		if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
			continue
		}
		delta := chunk.Choices[0].Delta.Content
		full.WriteString(delta)
		if onChunk != nil {
			onChunk(delta)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", upstreamErr(ctx, err, "stream interrupted")
	}
	if strings.TrimSpace(full.String()) == "" {
		return "", probdoc.Errorf(probdoc.EUPSTREAM, "completion stream is empty")
	}
	return full.String(), nil
}

// post sends the chat request and returns the response when it is 2xx.
func (c *Completer) post(ctx context.Context, req probdoc.CompletionRequest, stream bool) (*http.Response, error) {
	if req.APIKey == "" {
		return nil, probdoc.Errorf(probdoc.EINVALID, "api key is required")
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, probdoc.Errorf(probdoc.EINVALID, "prompt is required")
	}

	model := req.Model
	if model == "" {
		model = c.model
	}
	payload, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	})
	if err != nil {
		return nil, probdoc.WrapError(probdoc.EINTERNAL, err, "failed to encode completion request")
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, probdoc.WrapError(probdoc.EINVALID, err, "invalid completion endpoint")
	}
	httpReq.Header.Set("Authorization", "Bearer "+req.APIKey)
	httpReq.Header.Set("Content-Type", "application/json")
	if stream {
		httpReq.Header.Set("Accept", "text/event-stream")
	} else {
		httpReq.Header.Set("Accept", "application/json")
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, upstreamErr(ctx, err, "completion request failed")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, probdoc.Errorf(probdoc.EUPSTREAM, "completion endpoint returned %d: %s",
			resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// upstreamErr returns the context error when ctx is done so cancellation is
// not mistaken for an endpoint failure.
func upstreamErr(ctx context.Context, err error, msg string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return probdoc.WrapError(probdoc.EUPSTREAM, err, "%s", msg)
}

func describeErrors(errs []gojsonschema.ResultError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Field()+": "+e.Description())
	}
	return strings.Join(parts, "; ")
}
