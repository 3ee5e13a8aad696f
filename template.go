package probdoc

import (
	"sort"
	"strings"
)

// TemplateKind selects how a record is transformed.
type TemplateKind int

// Template kinds.
const (
	TemplateExercise TemplateKind = iota
	TemplateLesson
	TemplateTranslate
	TemplateRaw
)

// TemplateKinds lists every kind in declaration order.
var TemplateKinds = []TemplateKind{TemplateExercise, TemplateLesson, TemplateTranslate, TemplateRaw}

var templateNames = [...]string{
	TemplateExercise:  "exercise",
	TemplateLesson:    "lesson",
	TemplateTranslate: "translate",
	TemplateRaw:       "raw",
}

// String returns the lower-case name of the kind.
func (k TemplateKind) String() string {
	if k < 0 || int(k) >= len(templateNames) {
		return "unknown"
	}
	return templateNames[k]
}

// Valid reports whether k is one of the declared kinds.
func (k TemplateKind) Valid() bool {
	return k >= 0 && int(k) < len(templateNames)
}

// MarshalText implements encoding.TextMarshaler.
func (k TemplateKind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, Errorf(EINVALID, "unknown template kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *TemplateKind) UnmarshalText(b []byte) error {
	parsed, err := ParseTemplateKind(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseTemplateKind converts a name such as "exercise" into a TemplateKind.
func ParseTemplateKind(s string) (TemplateKind, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range templateNames {
		if n == name {
			return TemplateKind(i), nil
		}
	}
	return 0, Errorf(EINVALID, "unknown template kind %q", s)
}

// Language describes a programming language a problem can be translated to.
type Language struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CodeFence string `json:"codeFence"`
}

var languages = map[string]Language{
	"python":     {ID: "python", Name: "Python", CodeFence: "python"},
	"javascript": {ID: "javascript", Name: "JavaScript", CodeFence: "javascript"},
	"typescript": {ID: "typescript", Name: "TypeScript", CodeFence: "typescript"},
	"java":       {ID: "java", Name: "Java", CodeFence: "java"},
	"c":          {ID: "c", Name: "C", CodeFence: "c"},
	"cpp":        {ID: "cpp", Name: "C++", CodeFence: "cpp"},
	"csharp":     {ID: "csharp", Name: "C#", CodeFence: "csharp"},
	"go":         {ID: "go", Name: "Go", CodeFence: "go"},
	"rust":       {ID: "rust", Name: "Rust", CodeFence: "rust"},
	"kotlin":     {ID: "kotlin", Name: "Kotlin", CodeFence: "kotlin"},
	"php":        {ID: "php", Name: "PHP", CodeFence: "php"},
	"ruby":       {ID: "ruby", Name: "Ruby", CodeFence: "ruby"},
	"swift":      {ID: "swift", Name: "Swift", CodeFence: "swift"},
}

// Languages returns the supported languages sorted by ID.
func Languages() []Language {
	out := make([]Language, 0, len(languages))
	for _, l := range languages {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// LookupLanguage finds a language by ID, case-insensitively.
func LookupLanguage(id string) (Language, bool) {
	l, ok := languages[strings.ToLower(strings.TrimSpace(id))]
	return l, ok
}

// TranslateOptions names both ends of a code translation.
type TranslateOptions struct {
	SourceLanguageName string `json:"sourceLanguageName"`
	TargetLanguageName string `json:"targetLanguageName"`
	SourceCodeFence    string `json:"sourceCodeFence"`
	TargetCodeFence    string `json:"targetCodeFence"`
}

// Validate returns EOPTIONS unless both language names are set.
func (o *TranslateOptions) Validate() error {
	if o == nil {
		return Errorf(EOPTIONS, "translate requires source and target languages")
	}
	if o.SourceLanguageName == "" {
		return Errorf(EOPTIONS, "translate requires a source language")
	}
	if o.TargetLanguageName == "" {
		return Errorf(EOPTIONS, "translate requires a target language")
	}
	return nil
}

// NewTranslateOptions builds options from two language IDs.
func NewTranslateOptions(from, to string) (*TranslateOptions, error) {
	if from == "" || to == "" {
		return nil, Errorf(EOPTIONS, "translate requires source and target languages")
	}
	src, ok := LookupLanguage(from)
	if !ok {
		return nil, Errorf(EOPTIONS, "unknown source language %q", from)
	}
	dst, ok := LookupLanguage(to)
	if !ok {
		return nil, Errorf(EOPTIONS, "unknown target language %q", to)
	}
	return &TranslateOptions{
		SourceLanguageName: src.Name,
		TargetLanguageName: dst.Name,
		SourceCodeFence:    src.CodeFence,
		TargetCodeFence:    dst.CodeFence,
	}, nil
}
