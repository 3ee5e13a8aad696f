package probdoc

// MainSolutionName names the method synthesized for pages without method sections.
const MainSolutionName = "Main Solution"

// ProblemRecord is the normalized content of one problem page.
// A record is never mutated after parsing; enrichment wraps it in Content.
type ProblemRecord struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Methods     []Method `json:"methods"`

	// Solutions is a flattened view of every code block considered a solution.
	Solutions []string `json:"solutions"`

	// TestCases holds all per-method test cases plus page-level ones.
	TestCases []string `json:"testCases"`

	URL string `json:"url"`
}

// Method is one documented solution approach.
type Method struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	SourceCode  string   `json:"sourceCode"`
	Explanation string   `json:"explanation"`
	TestCases   []string `json:"testCases"`
	Complexity  string   `json:"complexity"`
}

// Validate returns an error if the record cannot be rendered.
func (r *ProblemRecord) Validate() error {
	if r == nil {
		return Errorf(EINVALID, "problem record required")
	}
	if r.Title == "" {
		return Errorf(EINVALID, "problem title required")
	}
	return nil
}

// ProblemParser extracts a ProblemRecord from problem page HTML.
type ProblemParser interface {
	// ParseProblem returns nil and no error when the page holds no usable
	// title or content, signaling the caller to skip the item.
	ParseProblem(html, url string) (*ProblemRecord, error)
}
