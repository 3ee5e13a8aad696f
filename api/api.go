// Package api exposes the session operations to a calling layer as uniform
// success/data/error envelopes. Requests are validated before they reach
// the session.
package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/fwojciec/probdoc"
	"github.com/fwojciec/probdoc/scrape"
	"github.com/go-playground/validator/v10"
)

// Session is the part of scrape.Session the service drives.
type Session interface {
	Initialize(ctx context.Context) error
	FetchCatalog(ctx context.Context, url string) ([]probdoc.Topic, error)
	FetchProblem(ctx context.Context, url string) (*probdoc.ProblemRecord, error)
	Transform(ctx context.Context, rec *probdoc.ProblemRecord, opts probdoc.TransformOptions) *probdoc.TransformResult
	Export(ctx context.Context, rec *probdoc.ProblemRecord, target probdoc.ExportTarget, opts *probdoc.TransformOptions) (*probdoc.ExportResult, error)
	Close() error
}

var _ Session = (*scrape.Session)(nil)

// Response is the envelope every operation returns. Callers render Error
// as a message and carry on.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// Empty is the payload of operations that return no data.
type Empty struct{}

func ok[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

func fail[T any](err error) Response[T] {
	return Response[T]{Error: probdoc.ErrorMessage(err), Code: probdoc.ErrorCode(err)}
}

// FetchRequest names a page to load.
type FetchRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// TransformSpec carries transform options as plain values.
type TransformSpec struct {
	Template  string `json:"template" validate:"omitempty,oneof=exercise lesson translate raw"`
	UseAI     bool   `json:"useAI"`
	APIKey    string `json:"apiKey,omitempty"`
	Model     string `json:"model,omitempty"`
	Policy    string `json:"policy,omitempty" validate:"omitempty,oneof=fast balanced quality"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Language  string `json:"language,omitempty"`
	Signature string `json:"signature,omitempty" validate:"max=500"`
}

// Options converts s into TransformOptions. A language pair is resolved only when one of
// From or To is set; an incomplete or unknown pair returns EOPTIONS.
func (s TransformSpec) Options() (probdoc.TransformOptions, error) {
	opts := probdoc.TransformOptions{
		UseAI:     s.UseAI,
		APIKey:    s.APIKey,
		Model:     s.Model,
		Language:  s.Language,
		Signature: s.Signature,
	}
	if s.Template != "" {
		kind, err := probdoc.ParseTemplateKind(s.Template)
		if err != nil {
			return opts, err
		}
		opts.Template = kind
	}
	policy, err := probdoc.ParsePolicy(s.Policy)
	if err != nil {
		return opts, err
	}
	opts.Policy = policy
	if s.From != "" || s.To != "" {
		tr, err := probdoc.NewTranslateOptions(s.From, s.To)
		if err != nil {
			return opts, err
		}
		opts.Translate = tr
	}
	return opts, nil
}

// TransformRequest asks for one record to be transformed.
type TransformRequest struct {
	Record  *probdoc.ProblemRecord `json:"record" validate:"required"`
	Options TransformSpec          `json:"options"`
}

// ExportRequest asks for one record to be written. Indices are zero-based;
// nil omits the numeric prefix.
type ExportRequest struct {
	Record       *probdoc.ProblemRecord `json:"record" validate:"required"`
	TopicName    string                 `json:"topicName" validate:"required"`
	TopicIndex   *int                   `json:"topicIndex,omitempty" validate:"omitempty,min=0"`
	ProblemIndex *int                   `json:"problemIndex,omitempty" validate:"omitempty,min=0"`
	Transform    *TransformSpec         `json:"transform,omitempty"`
}

// Service maps envelope requests onto a session.
type Service struct {
	session Session
}

// NewService creates a new Service.
func NewService(session Session) *Service {
	return &Service{session: session}
}

// InitializeSession provisions the browser session.
func (s *Service) InitializeSession(ctx context.Context) Response[Empty] {
	if err := s.session.Initialize(ctx); err != nil {
		return fail[Empty](err)
	}
	return ok(Empty{})
}

// FetchCatalog loads the topics of a catalog page.
func (s *Service) FetchCatalog(ctx context.Context, req FetchRequest) Response[[]probdoc.Topic] {
	if err := s.check(req); err != nil {
		return fail[[]probdoc.Topic](err)
	}
	topics, err := s.session.FetchCatalog(ctx, req.URL)
	if err != nil {
		return fail[[]probdoc.Topic](err)
	}
	return ok(topics)
}

// FetchProblem loads one problem page.
func (s *Service) FetchProblem(ctx context.Context, req FetchRequest) Response[*probdoc.ProblemRecord] {
	if err := s.check(req); err != nil {
		return fail[*probdoc.ProblemRecord](err)
	}
	rec, err := s.session.FetchProblem(ctx, req.URL)
	if err != nil {
		return fail[*probdoc.ProblemRecord](err)
	}
	return ok(rec)
}

// TransformContent transforms a record. Request errors are reported in the
// result like any other failure.
func (s *Service) TransformContent(ctx context.Context, req TransformRequest) *probdoc.TransformResult {
	if err := s.check(req); err != nil {
		return failedResult(err)
	}
	opts, err := req.Options.Options()
	if err != nil {
		return failedResult(err)
	}
	return s.session.Transform(ctx, req.Record, opts)
}

// ExportContent writes a record, enhancing it first when Transform is set.
func (s *Service) ExportContent(ctx context.Context, req ExportRequest) Response[*probdoc.ExportResult] {
	if err := s.check(req); err != nil {
		return fail[*probdoc.ExportResult](err)
	}

	var opts *probdoc.TransformOptions
	if req.Transform != nil {
		o, err := req.Transform.Options()
		if err != nil {
			return fail[*probdoc.ExportResult](err)
		}
		opts = &o
	}

	target := probdoc.ExportTarget{
		TopicName:    req.TopicName,
		TopicIndex:   req.TopicIndex,
		ProblemIndex: req.ProblemIndex,
	}
	res, err := s.session.Export(ctx, req.Record, target, opts)
	if err != nil {
		return fail[*probdoc.ExportResult](err)
	}
	return ok(res)
}

// CloseSession releases the browser session.
func (s *Service) CloseSession() Response[Empty] {
	if err := s.session.Close(); err != nil {
		return fail[Empty](err)
	}
	return ok(Empty{})
}

func (s *Service) check(req any) error {
	return Validate(req)
}

var validate = validator.New()

// Validate checks the validate tags on a struct and reports every failing
// field as EINVALID.
func Validate(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return probdoc.WrapError(probdoc.EINVALID, err, "invalid request")
	}
	fields := make([]string, len(verrs))
	for i, fe := range verrs {
		fields[i] = fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag())
	}
	return probdoc.Errorf(probdoc.EINVALID, "invalid request: %s", strings.Join(fields, ", "))
}

func failedResult(err error) *probdoc.TransformResult {
	return &probdoc.TransformResult{Code: probdoc.ErrorCode(err), Error: probdoc.ErrorMessage(err)}
}
