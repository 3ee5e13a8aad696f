package probdoc

import (
	"context"
	"time"
)

// Policy trades generation quality against speed.
type Policy string

// Processing policies.
const (
	PolicyFast     Policy = "fast"
	PolicyBalanced Policy = "balanced"
	PolicyQuality  Policy = "quality"
)

// PolicyConfig holds the completion parameters for a Policy.
type PolicyConfig struct {
	MaxTokens   int
	Temperature float64
}

var policies = map[Policy]PolicyConfig{
	PolicyFast:     {MaxTokens: 3000, Temperature: 0.3},
	PolicyBalanced: {MaxTokens: 4000, Temperature: 0.7},
	PolicyQuality:  {MaxTokens: 6000, Temperature: 0.5},
}

// Config returns the parameters for p. Unknown policies use balanced.
func (p Policy) Config() PolicyConfig {
	if c, ok := policies[p]; ok {
		return c
	}
	return policies[PolicyBalanced]
}

// ParsePolicy validates a policy name. Empty means balanced.
func ParsePolicy(s string) (Policy, error) {
	if s == "" {
		return PolicyBalanced, nil
	}
	p := Policy(s)
	if _, ok := policies[p]; !ok {
		return "", Errorf(EINVALID, "unknown policy %q", s)
	}
	return p, nil
}

// TransformOptions configures a single transform call. The API key travels
// with the call; nothing is stored globally.
type TransformOptions struct {
	Template  TemplateKind      `json:"template"`
	UseAI     bool              `json:"useAI"`
	APIKey    string            `json:"-"`
	Model     string            `json:"model,omitempty"`
	Policy    Policy            `json:"policy,omitempty"`
	Translate *TranslateOptions `json:"translate,omitempty"`

	// Language is the natural language prose is written in.
	Language string `json:"language,omitempty"`

	// Signature is appended to generated and rendered documents.
	Signature string `json:"signature,omitempty"`
}

// AIEnabled reports whether the options ask for, and allow, a generative call.
func (o TransformOptions) AIEnabled() bool {
	return o.UseAI && o.APIKey != ""
}

// Metadata is scraped from the rendered Markdown. Which fields are set
// depends on the template kind.
type Metadata struct {
	Template     TemplateKind `json:"template"`
	Title        string       `json:"title,omitempty"`
	Difficulty   string       `json:"difficulty,omitempty"`
	Chapter      string       `json:"chapter,omitempty"`
	Objectives   []string     `json:"objectives,omitempty"`
	SourceLang   string       `json:"sourceLanguage,omitempty"`
	TargetLang   string       `json:"targetLanguage,omitempty"`
	Model        string       `json:"model,omitempty"`
	Policy       Policy       `json:"policy,omitempty"`
	PromptTokens int          `json:"promptTokens,omitempty"`
	Generated    bool         `json:"generated"`
}

// TransformResult reports the outcome of a transform call.
type TransformResult struct {
	Success        bool          `json:"success"`
	Data           string        `json:"data,omitempty"`
	Error          string        `json:"error,omitempty"`
	Code           string        `json:"code,omitempty"`
	ProcessingTime time.Duration `json:"processingTime"`
	Metadata       *Metadata     `json:"metadata,omitempty"`
}

// Err rebuilds the application error for a failed result.
func (r *TransformResult) Err() error {
	if r == nil || r.Success {
		return nil
	}
	return Errorf(r.Code, "%s", r.Error)
}

// Transformer converts records into Markdown.
type Transformer interface {
	// Transform runs a single attempt. With AI enabled it never falls back:
	// upstream or validation failures are reported in the result.
	Transform(ctx context.Context, rec *ProblemRecord, opts TransformOptions) *TransformResult

	// Enhance transforms rec and falls back to deterministic rendering when
	// the generative attempt fails. Only invalid input, missing translate
	// options and cancellation are returned as errors.
	Enhance(ctx context.Context, rec *ProblemRecord, opts TransformOptions) (*Enhanced, *TransformResult, error)
}

// PromptBuilder renders the instruction sent to the completion endpoint.
type PromptBuilder interface {
	// BuildPrompt returns EOPTIONS for translate without translate options.
	BuildPrompt(rec *ProblemRecord, kind TemplateKind, opts TransformOptions) (string, error)
}

// CompletionRequest is a single-shot prompt for the completion endpoint.
type CompletionRequest struct {
	APIKey      string
	Model       string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer is a pluggable text-completion endpoint.
type Completer interface {
	// Complete returns the generated text. Transport failures, non-2xx
	// responses and malformed bodies are reported as EUPSTREAM.
	Complete(ctx context.Context, req CompletionRequest) (string, error)

	// Stream is like Complete but reports chunks to onChunk as they arrive.
	// The returned string is the full text.
	Stream(ctx context.Context, req CompletionRequest, onChunk func(chunk string)) (string, error)
}

// OutputValidator checks generated Markdown against a checklist.
type OutputValidator interface {
	// Validate returns EOUTPUT naming the missing headings.
	Validate(markdown string, list Checklist) error

	// Sections returns the headings found in markdown.
	Sections(markdown string) []Section
}
