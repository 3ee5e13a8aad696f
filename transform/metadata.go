package transform

import (
	"regexp"
	"strings"

	"github.com/fwojciec/probdoc"
)

var (
	titleRe      = regexp.MustCompile(`(?m)^#\s+(.+?)\s*$`)
	difficultyRe = regexp.MustCompile(`(?mi)^\s*[-*]?\s*(?:\*\*)?(?:difficulty|độ khó)(?:\s*:\s*\*\*|\*\*\s*:|\s*:)\s*(.+?)\s*$`)
	chapterRe    = regexp.MustCompile(`(?mi)^\s*[-*]?\s*(?:\*\*)?(?:chapter|chương)(?:\s*:\s*\*\*|\*\*\s*:|\s*:)\s*(.+?)\s*$`)
	headingRe    = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletRe     = regexp.MustCompile(`^\s*(?:[-*+]|\d+[.)])\s+(.+?)\s*$`)
	objectivesRe = regexp.MustCompile(`(?i)objectives|mục tiêu`)
)

// ExtractMetadata scrapes descriptive fields from a rendered document. The
// title is the first level-one heading. Exercises and lessons also yield the
// bullets under the objectives heading, and lessons a chapter; translations carry the language
// pair from opts.
func ExtractMetadata(markdown string, opts probdoc.TransformOptions) *probdoc.Metadata {
	meta := &probdoc.Metadata{Template: opts.Template}
	if m := titleRe.FindStringSubmatch(markdown); m != nil {
		meta.Title = m[1]
	}

	switch opts.Template {
	case probdoc.TemplateExercise:
		meta.Difficulty = labelValue(difficultyRe, markdown)
		meta.Objectives = objectives(markdown)
	case probdoc.TemplateLesson:
		meta.Difficulty = labelValue(difficultyRe, markdown)
		meta.Chapter = labelValue(chapterRe, markdown)
		meta.Objectives = objectives(markdown)
	case probdoc.TemplateTranslate:
		if opts.Translate != nil {
			meta.SourceLang = opts.Translate.SourceLanguageName
			meta.TargetLang = opts.Translate.TargetLanguageName
		}
	}
	return meta
}

func labelValue(re *regexp.Regexp, markdown string) string {
	m := re.FindStringSubmatch(markdown)
	if m == nil {
		return ""
	}
	return strings.Trim(m[1], "*_ ")
}

// objectives returns the list items directly under the first heading that
// names the learning objectives.
func objectives(markdown string) []string {
	var out []string
	inside := false
	level := 0
	for _, line := range strings.Split(markdown, "\n") {
		if m := headingRe.FindStringSubmatch(line); m != nil {
			if inside && len(m[1]) <= level {
				break
			}
			if !inside && objectivesRe.MatchString(m[2]) {
				inside = true
				level = len(m[1])
			}
			continue
		}
		if !inside {
			continue
		}
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			out = append(out, m[1])
		}
	}
	return out
}
