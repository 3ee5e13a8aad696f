// Package prompt renders generation instructions from embedded templates.
package prompt

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/fwojciec/probdoc"
)

// DefaultLanguage is the natural language prose is written in when the
// options name none.
const DefaultLanguage = "Vietnamese"

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("prompt").
	Funcs(template.FuncMap{"fence": probdoc.CodeBlock}).
	ParseFS(templateFS, "templates/*.tmpl"))

// Ensure Builder implements probdoc.PromptBuilder at compile time.
var _ probdoc.PromptBuilder = (*Builder)(nil)

// Builder renders prompts for every template kind. The required headings
// come from the configured checklists, so the prompt and the output
// validator always agree.
type Builder struct {
	checklists probdoc.Checklists
	language   string
}

// Option configures a Builder.
type Option func(*Builder)

// WithChecklists replaces the default section checklists.
func WithChecklists(c probdoc.Checklists) Option {
	return func(b *Builder) {
		b.checklists = c
	}
}

// WithLanguage sets the default prose language.
func WithLanguage(language string) Option {
	return func(b *Builder) {
		b.language = language
	}
}

// NewBuilder creates a new Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		checklists: probdoc.DefaultChecklists(),
		language:   DefaultLanguage,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

type promptData struct {
	Record          *probdoc.ProblemRecord
	Headings        []string
	Language        string
	Signature       string
	SourceFence     string
	Translate       *probdoc.TranslateOptions
	MultipleMethods bool
}

// BuildPrompt renders the instruction for rec.
func (b *Builder) BuildPrompt(rec *probdoc.ProblemRecord, kind probdoc.TemplateKind, opts probdoc.TransformOptions) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	if !kind.Valid() {
		return "", probdoc.Errorf(probdoc.EINVALID, "unknown template kind %d", int(kind))
	}

	data := promptData{
		Record:          rec,
		Language:        b.language,
		Signature:       strings.TrimSpace(opts.Signature),
		MultipleMethods: len(rec.Methods) > 1,
	}
	if opts.Language != "" {
		data.Language = opts.Language
	}
	if kind == probdoc.TemplateTranslate {
		if err := opts.Translate.Validate(); err != nil {
			return "", err
		}
		data.Translate = opts.Translate
		data.SourceFence = opts.Translate.SourceCodeFence
	}
	data.Headings = headings(b.checklists.For(kind), data)

	var sb strings.Builder
	if err := templates.ExecuteTemplate(&sb, kind.String(), data); err != nil {
		return "", probdoc.WrapError(probdoc.EINTERNAL, err, "failed to render %s prompt", kind)
	}
	return strings.TrimSpace(sb.String()) + "\n", nil
}

// headings lists the required heading lines with placeholders for the
// parts the model fills in.
func headings(list probdoc.Checklist, data promptData) []string {
	out := make([]string, 0, len(list))
	for _, spec := range list {
		prefix := strings.Repeat("#", spec.Level) + " "
		switch {
		case spec.Role == probdoc.RoleTitle || spec.Title == "":
			title := fmt.Sprintf("[title in %s]", data.Language)
			if data.Translate != nil {
				title += " - " + data.Translate.TargetLanguageName
			}
			out = append(out, prefix+title)
		case spec.Role == probdoc.RoleSolution && data.Translate != nil:
			out = append(out, fmt.Sprintf("%s (%s)", spec.Heading(), data.Translate.TargetLanguageName))
		default:
			out = append(out, spec.Heading())
		}
	}
	return out
}
