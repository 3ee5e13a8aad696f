package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Default selectors for the supported page layout.
const (
	DefaultContainerSelector = "#main.site-main, main.site-main, .entry-content, article"
	DefaultTitleSelector     = "h1.entry-title, .entry-header h1, article h1, h1"
	DefaultEndSelector       = ".sf-nav-bottom, .sf-topic-bottom, .sharedaddy, .jp-relatedposts, #sf-related, .sf-mobile-ads"
)

var (
	methodRe     = regexp.MustCompile(`(?i)^\s*method\s*[-:#]?\s*\d+\b`)
	complexityRe = regexp.MustCompile(`(?i)\b(time|space)\s+complexity\b`)
	explainRe    = regexp.MustCompile(`(?i)\bexplanation\b`)
	testCaseRe   = regexp.MustCompile(`(?i)\btest\s*cases?\b`)
	descHeaderRe = regexp.MustCompile(`(?i)\bproblem\s+(description|statement)\b`)
	ioLineRe     = regexp.MustCompile(`(?i)^\s*(input|output)\s*:`)
	endTextRe    = regexp.MustCompile(`(?i)^\s*(to practice all|sanfoundry global education|related posts)`)
)

// nodeKind classifies a block-level element during sibling walks.
type nodeKind int

const (
	kindOther nodeKind = iota
	kindProse
	kindHeading
	kindMethodHeader
	kindCode
	kindTestBlock
	kindEnd
)

// tagOf returns the atom of the first node in sel.
func tagOf(sel *goquery.Selection) atom.Atom {
	if sel.Length() == 0 || sel.Nodes[0].Type != html.ElementNode {
		return 0
	}
	return sel.Nodes[0].DataAtom
}

// cleanText collapses runs of whitespace into single spaces.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// codeText returns preformatted text with surrounding blank lines removed.
func codeText(sel *goquery.Selection) string {
	pre := sel
	if tagOf(sel) != atom.Pre {
		pre = sel.Find("pre").First()
	}
	text := strings.ReplaceAll(pre.Text(), "\r\n", "\n")
	return strings.Trim(text, "\n")
}

func isHeadingTag(a atom.Atom) bool {
	switch a {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		return true
	}
	return false
}

// isHeadingLike reports whether sel acts as a heading: a real heading, a
// styled code header, or a paragraph whose only content is bold text.
func isHeadingLike(sel *goquery.Selection) bool {
	if isHeadingTag(tagOf(sel)) || sel.HasClass("sf-codeh") {
		return true
	}
	if tagOf(sel) != atom.P {
		return false
	}
	bold := sel.ChildrenFiltered("strong, b")
	if bold.Length() != 1 {
		return false
	}
	text := cleanText(sel.Text())
	return text != "" && cleanText(bold.Text()) == text
}

// isTestBlock reports whether sel holds sample runs: a .text block with a
// pre, or any code block whose first line is an Input: or Output: label.
func isTestBlock(sel *goquery.Selection) bool {
	if sel.HasClass("text") {
		return sel.Find("pre").Length() > 0 || tagOf(sel) == atom.Pre
	}
	if sel.Find(".text pre").Length() > 0 {
		return true
	}
	if !isCodeBlock(sel) {
		return false
	}
	first, _, _ := strings.Cut(strings.TrimLeft(codeText(sel), " \t\n"), "\n")
	return ioLineRe.MatchString(first)
}

func isCodeBlock(sel *goquery.Selection) bool {
	return tagOf(sel) == atom.Pre || sel.Find("pre").Length() > 0
}

// isWrapper reports whether sel is a generic container worth descending into
// rather than a leaf block.
func isWrapper(sel *goquery.Selection) bool {
	switch tagOf(sel) {
	case atom.Div, atom.Section, atom.Article, atom.Main:
	default:
		return false
	}
	if sel.HasClass("text") || sel.HasClass("hk1_style") || sel.HasClass("hcb_wrap") || sel.HasClass("sf-codeh") {
		return false
	}
	children := sel.Children()
	if children.Length() == 0 {
		return false
	}
	// A div holding nothing but a single pre is a code wrapper.
	if children.Length() == 1 && tagOf(children) == atom.Pre {
		return false
	}
	return children.Filter("p, pre, ul, ol, div, h1, h2, h3, h4, h5, h6").Length() > 0
}

// walker classifies nodes using the parser's end selector.
type walker struct {
	endSelector string
}

func (w walker) classify(sel *goquery.Selection) nodeKind {
	if w.endSelector != "" && sel.Is(w.endSelector) {
		return kindEnd
	}
	text := cleanText(sel.Text())
	if endTextRe.MatchString(text) {
		return kindEnd
	}
	if isHeadingLike(sel) {
		if methodRe.MatchString(text) {
			return kindMethodHeader
		}
		return kindHeading
	}
	if tagOf(sel) == atom.P && methodRe.MatchString(text) &&
		methodRe.MatchString(cleanText(sel.ChildrenFiltered("strong, b").First().Text())) {
		return kindMethodHeader
	}
	if isTestBlock(sel) {
		return kindTestBlock
	}
	if isCodeBlock(sel) {
		return kindCode
	}
	switch tagOf(sel) {
	case atom.P, atom.Ul, atom.Ol, atom.Blockquote, atom.Dl:
		return kindProse
	}
	return kindOther
}

// flatten lists the block-level nodes under root in document order,
// descending through generic wrappers. Walking stops at the first end
// marker, which is included so callers can see where the article ends.
func (w walker) flatten(root *goquery.Selection) []*goquery.Selection {
	var out []*goquery.Selection
	var visit func(parent *goquery.Selection) bool
	visit = func(parent *goquery.Selection) bool {
		stop := false
		parent.Children().EachWithBreak(func(_ int, child *goquery.Selection) bool {
			switch tagOf(child) {
			case atom.Script, atom.Style, atom.Noscript, atom.Ins, atom.Iframe:
				return true
			}
			if w.classify(child) == kindEnd {
				out = append(out, child)
				stop = true
				return false
			}
			if isWrapper(child) && !isHeadingLike(child) {
				if visit(child) {
					stop = true
					return false
				}
				return true
			}
			out = append(out, child)
			return true
		})
		return stop
	}
	visit(root)
	return out
}
