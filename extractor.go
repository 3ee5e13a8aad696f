package probdoc

import "strings"

// ExtractResult holds metadata recovered from a whole page.
type ExtractResult struct {
	// Title is the page title from metadata (og:title, <title>, JSON+LD).
	Title string

	// Description is a short summary of the page, when one is available.
	Description string

	// ContentHTML is the main content with boilerplate removed.
	ContentHTML string
}

// Extractor recovers page-level metadata when structural parsing cannot.
// Problem parsers use it to fill a missing title or description.
type Extractor interface {
	// Extract processes raw HTML. Returns EINVALID for empty input.
	Extract(html string) (*ExtractResult, error)
}

// CleanPageTitle removes a trailing site name such as " - Example" or
// " | Example" from a document title.
func CleanPageTitle(title, siteName string) string {
	title = strings.TrimSpace(title)
	siteName = strings.TrimSpace(siteName)
	if siteName == "" {
		return title
	}
	for _, sep := range []string{" - ", " | ", " – ", " :: "} {
		if trimmed, ok := strings.CutSuffix(title, sep+siteName); ok && trimmed != "" {
			return strings.TrimSpace(trimmed)
		}
	}
	return title
}
