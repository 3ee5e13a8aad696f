package probdoc

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// MaxSlugLength caps the length of file and directory name slugs.
const MaxSlugLength = 50

// ExportTarget locates a record on disk. Indices are zero-based positions in
// catalog order; nil omits the numeric prefix.
type ExportTarget struct {
	TopicName    string `json:"topicName"`
	TopicIndex   *int   `json:"topicIndex,omitempty"`
	ProblemIndex *int   `json:"problemIndex,omitempty"`
}

// ExportResult describes a completed export.
type ExportResult struct {
	Path string `json:"path"`
	Hash string `json:"hash"`

	// Changed is false when the file already held identical content.
	Changed bool `json:"changed"`
}

// Exporter persists content as Markdown files.
type Exporter interface {
	// Export writes content under target. Filesystem failures return EIO.
	Export(ctx context.Context, content Content, target ExportTarget) (*ExportResult, error)
}

// Slug converts a name into a lower-case, hyphenated identifier made of
// ASCII letters, digits and hyphens, at most MaxSlugLength bytes long.
func Slug(name string) string {
	var sb strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			if pendingHyphen && sb.Len() > 0 {
				sb.WriteByte('-')
			}
			pendingHyphen = false
			sb.WriteRune(r)
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '-':
			pendingHyphen = true
		}
	}

	s := sb.String()
	if len(s) > MaxSlugLength {
		s = strings.TrimRight(s[:MaxSlugLength], "-")
	}
	if s == "" {
		return "untitled"
	}
	return s
}

// ExportPath returns the file path for a record titled title under root.
// The layout is {root}/{NNNN}-{topic-slug}/{NNNN}-{title-slug}.md where NNNN
// is the one-based position padded to four digits.
func ExportPath(root string, target ExportTarget, title string) string {
	dir := indexPrefix(target.TopicIndex) + Slug(target.TopicName)
	file := indexPrefix(target.ProblemIndex) + Slug(title) + ".md"
	return filepath.Join(root, dir, file)
}

func indexPrefix(i *int) string {
	if i == nil {
		return ""
	}
	return fmt.Sprintf("%04d-", *i+1)
}

// Index returns a pointer to i for use in ExportTarget.
func Index(i int) *int {
	return &i
}
