package probdoc

// Converter converts HTML fragments to Markdown.
type Converter interface {
	// Convert transforms an HTML fragment such as an explanation block into
	// Markdown, keeping lists, inline code and emphasis.
	Convert(html string) (string, error)
}
