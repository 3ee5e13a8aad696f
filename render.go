package probdoc

import (
	"fmt"
	"strings"
)

// RenderOptions tunes the deterministic renderer.
type RenderOptions struct {
	// Translate labels code blocks for the translate kind. The code itself
	// is left in its source language.
	Translate *TranslateOptions

	// Signature is appended after a horizontal rule when non-empty.
	Signature string

	// IncludeSource appends a link back to the record URL.
	IncludeSource bool
}

// Render produces a Markdown document for rec without any generative step.
// Every heading in list appears in the output, in list order, so the result
// always passes validation for the same checklist. Output depends only on
// the inputs.
func Render(rec *ProblemRecord, kind TemplateKind, list Checklist, opts RenderOptions) (string, error) {
	if err := rec.Validate(); err != nil {
		return "", err
	}
	if !kind.Valid() {
		return "", Errorf(EINVALID, "unknown template kind %d", int(kind))
	}

	r := renderer{rec: rec, kind: kind, opts: opts}
	var b strings.Builder
	for i, spec := range list {
		if i > 0 {
			b.WriteString("\n")
		}
		if spec.Role == RoleTitle || spec.Title == "" {
			b.WriteString(strings.Repeat("#", spec.Level))
			b.WriteString(" ")
			b.WriteString(r.title())
			b.WriteString("\n")
			continue
		}
		b.WriteString(spec.Heading())
		b.WriteString("\n\n")
		b.WriteString(strings.TrimRight(r.body(spec.Role), "\n"))
		b.WriteString("\n")
	}

	if opts.IncludeSource && rec.URL != "" {
		fmt.Fprintf(&b, "\nSource: <%s>\n", rec.URL)
	}
	if sig := strings.TrimSpace(opts.Signature); sig != "" {
		b.WriteString("\n---\n\n")
		b.WriteString(sig)
		b.WriteString("\n")
	}
	return b.String(), nil
}

type renderer struct {
	rec  *ProblemRecord
	kind TemplateKind
	opts RenderOptions
}

func (r renderer) title() string {
	if r.kind == TemplateTranslate && r.opts.Translate != nil && r.opts.Translate.TargetLanguageName != "" {
		return fmt.Sprintf("%s (%s)", r.rec.Title, r.opts.Translate.TargetLanguageName)
	}
	return r.rec.Title
}

func (r renderer) codeFence() string {
	if r.opts.Translate != nil {
		return r.opts.Translate.SourceCodeFence
	}
	return ""
}

func (r renderer) body(role SectionRole) string {
	switch role {
	case RoleProblem, RoleIntroduction:
		return orPlaceholder(r.rec.Description, "No description available.")
	case RoleTestCases:
		return r.testCases()
	case RoleSolution:
		return r.solutions(false)
	case RoleContent:
		return r.solutions(true)
	case RoleExplanation:
		return r.explanations()
	case RoleComplexity:
		return r.complexity()
	case RoleObjectives:
		return r.objectives()
	default:
		return ""
	}
}

func (r renderer) testCases() string {
	if len(r.rec.TestCases) == 0 {
		return placeholder("No test cases available.")
	}
	var b strings.Builder
	for i, tc := range r.rec.TestCases {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(r.rec.TestCases) > 1 {
			fmt.Fprintf(&b, "**Test Case %d**\n\n", i+1)
		}
		b.WriteString(CodeBlock("", tc))
	}
	return b.String()
}

func (r renderer) solutions(withExplanation bool) string {
	methods := r.rec.Methods
	if len(methods) == 0 {
		if len(r.rec.Solutions) == 0 {
			return placeholder("No solution available.")
		}
		var b strings.Builder
		for i, code := range r.rec.Solutions {
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(CodeBlock(r.codeFence(), code))
		}
		return b.String()
	}

	var b strings.Builder
	for i, m := range methods {
		if i > 0 {
			b.WriteString("\n")
		}
		if len(methods) > 1 {
			fmt.Fprintf(&b, "### %s\n\n", m.Name)
		}
		if m.Description != "" {
			b.WriteString(m.Description)
			b.WriteString("\n\n")
		}
		if m.SourceCode != "" {
			b.WriteString(CodeBlock(r.codeFence(), m.SourceCode))
		} else {
			b.WriteString(placeholder("No source code available."))
			b.WriteString("\n")
		}
		if withExplanation && m.Explanation != "" {
			b.WriteString("\n")
			b.WriteString(m.Explanation)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (r renderer) explanations() string {
	var parts []string
	multi := len(r.rec.Methods) > 1
	for _, m := range r.rec.Methods {
		if m.Explanation == "" && m.Complexity == "" {
			continue
		}
		var b strings.Builder
		if multi {
			fmt.Fprintf(&b, "### %s\n\n", m.Name)
		}
		if m.Explanation != "" {
			b.WriteString(m.Explanation)
			b.WriteString("\n")
		}
		if m.Complexity != "" {
			if m.Explanation != "" {
				b.WriteString("\n")
			}
			b.WriteString(m.Complexity)
			b.WriteString("\n")
		}
		parts = append(parts, b.String())
	}
	if len(parts) == 0 {
		return placeholder("No explanation available.")
	}
	return strings.Join(parts, "\n")
}

func (r renderer) complexity() string {
	var lines []string
	for _, m := range r.rec.Methods {
		if m.Complexity == "" {
			continue
		}
		if len(r.rec.Methods) > 1 {
			lines = append(lines, fmt.Sprintf("- **%s**: %s", m.Name, oneLine(m.Complexity)))
		} else {
			lines = append(lines, m.Complexity)
		}
	}
	if len(lines) == 0 {
		return placeholder("Complexity not stated.")
	}
	return strings.Join(lines, "\n")
}

func (r renderer) objectives() string {
	lines := []string{"- Solve: " + r.rec.Title}
	for _, m := range r.rec.Methods {
		lines = append(lines, "- Apply "+m.Name)
	}
	return strings.Join(lines, "\n")
}

// CodeBlock fences code, choosing a fence longer than any backtick run inside it.
func CodeBlock(lang, code string) string {
	fence := "```"
	for strings.Contains(code, fence) {
		fence += "`"
	}
	return fence + lang + "\n" + strings.TrimRight(code, "\n") + "\n" + fence + "\n"
}

func orPlaceholder(s, text string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder(text)
	}
	return s
}

func placeholder(text string) string {
	return "_" + text + "_"
}

func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
