package probdoc

import (
	"strings"
)

// SectionRole tells the deterministic renderer what goes under a heading.
type SectionRole string

// Section roles.
const (
	RoleTitle        SectionRole = "title"
	RoleProblem      SectionRole = "problem"
	RoleTestCases    SectionRole = "test_cases"
	RoleSolution     SectionRole = "solution"
	RoleExplanation  SectionRole = "explanation"
	RoleComplexity   SectionRole = "complexity"
	RoleIntroduction SectionRole = "introduction"
	RoleObjectives   SectionRole = "objectives"
	RoleContent      SectionRole = "content"
	RoleNotes        SectionRole = "notes"
)

// SectionSpec is one required heading. An empty Title matches any heading
// of the given level.
type SectionSpec struct {
	Level int         `json:"level"`
	Title string      `json:"title,omitempty"`
	Role  SectionRole `json:"role"`
}

// Heading returns the Markdown prefix the spec requires, e.g. "## Test Cases".
func (s SectionSpec) Heading() string {
	h := strings.Repeat("#", s.Level) + " "
	if s.Title != "" {
		h += s.Title
	}
	return h
}

// Matches reports whether sec satisfies the spec. Titles match when the
// heading's anchor equals the spec's anchor or extends it with a hyphenated
// suffix, so "Solution (Go)" satisfies "Solution" while "Solution and test
// cases" does not satisfy "Test Cases".
func (s SectionSpec) Matches(sec Section) bool {
	if sec.Level != s.Level {
		return false
	}
	if s.Title == "" {
		return sec.Title != ""
	}
	want := GenerateAnchor(s.Title)
	return sec.Anchor == want || strings.HasPrefix(sec.Anchor, want+"-")
}

// Checklist is the ordered list of headings a document must contain.
type Checklist []SectionSpec

// Missing returns the specs not satisfied by any of sections.
func (c Checklist) Missing(sections []Section) []SectionSpec {
	var missing []SectionSpec
	for _, spec := range c {
		found := false
		for _, sec := range sections {
			if spec.Matches(sec) {
				found = true
				break
			}
		}
		if !found {
			missing = append(missing, spec)
		}
	}
	return missing
}

// Checklists maps each template kind to its required sections.
type Checklists map[TemplateKind]Checklist

// For returns the checklist for kind, falling back to the default table.
func (c Checklists) For(kind TemplateKind) Checklist {
	if list, ok := c[kind]; ok && len(list) > 0 {
		return list
	}
	return DefaultChecklists()[kind]
}

// DefaultChecklists returns the compiled-in section lists.
func DefaultChecklists() Checklists {
	exercise := Checklist{
		{Level: 1, Role: RoleTitle},
		{Level: 2, Title: "Problem", Role: RoleProblem},
		{Level: 2, Title: "Test Cases", Role: RoleTestCases},
		{Level: 2, Title: "Solution", Role: RoleSolution},
		{Level: 2, Title: "Explanation", Role: RoleExplanation},
	}
	return Checklists{
		TemplateExercise: exercise,
		TemplateLesson: {
			{Level: 1, Role: RoleTitle},
			{Level: 2, Title: "Introduction", Role: RoleIntroduction},
			{Level: 2, Title: "Objectives", Role: RoleObjectives},
			{Level: 2, Title: "Content", Role: RoleContent},
		},
		TemplateTranslate: append(Checklist(nil), exercise...),
		TemplateRaw: {
			{Level: 1, Role: RoleTitle},
			{Level: 2, Title: "Description", Role: RoleProblem},
			{Level: 2, Title: "Solutions", Role: RoleSolution},
			{Level: 2, Title: "Test Cases", Role: RoleTestCases},
		},
	}
}
