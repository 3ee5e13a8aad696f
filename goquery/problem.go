package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/probdoc"
)

// Ensure ProblemParser implements probdoc.ProblemParser at compile time.
var _ probdoc.ProblemParser = (*ProblemParser)(nil)

// ProblemParser extracts records from problem pages. Pages come in two
// variants: solutions split under "Method N" headers, or a flat sequence of
// code and output blocks.
type ProblemParser struct {
	converter probdoc.Converter
	extractor probdoc.Extractor
	detector  *Detector

	containerSelector string
	titleSelector     string
	walker            walker
}

// ProblemOption configures a ProblemParser.
type ProblemOption func(*ProblemParser)

// WithConverter renders explanation blocks as Markdown instead of plain text.
func WithConverter(c probdoc.Converter) ProblemOption {
	return func(p *ProblemParser) {
		p.converter = c
	}
}

// WithExtractor recovers the title and description from page metadata when
// the structural lookup finds nothing.
func WithExtractor(e probdoc.Extractor) ProblemOption {
	return func(p *ProblemParser) {
		p.extractor = e
	}
}

// WithEndSelector overrides the selector marking the end of the article.
func WithEndSelector(selector string) ProblemOption {
	return func(p *ProblemParser) {
		p.walker.endSelector = selector
	}
}

// NewProblemParser creates a new ProblemParser.
func NewProblemParser(opts ...ProblemOption) *ProblemParser {
	p := &ProblemParser{
		containerSelector: DefaultContainerSelector,
		titleSelector:     DefaultTitleSelector,
		walker:            walker{endSelector: DefaultEndSelector},
	}
	for _, opt := range opts {
		opt(p)
	}
	p.detector = &Detector{containerSelector: p.containerSelector, walker: p.walker}
	return p
}

// ParseProblem returns nil without error when the page has no content
// container or no title.
func (p *ProblemParser) ParseProblem(html, pageURL string) (*probdoc.ProblemRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, probdoc.WrapError(probdoc.EPARSE, err, "failed to parse problem page")
	}

	content := contentRoot(doc, p.containerSelector)
	if content == nil {
		return nil, nil
	}

	var meta *probdoc.ExtractResult
	title := cleanText(doc.Find(p.titleSelector).First().Text())
	if title == "" {
		meta = p.extract(html)
		if meta != nil {
			title = cleanText(meta.Title)
		}
	}
	if title == "" {
		return nil, nil
	}

	nodes := p.walker.flatten(content)
	rec := &probdoc.ProblemRecord{
		Title:       title,
		Description: p.description(nodes),
		URL:         pageURL,
	}
	if rec.Description == "" {
		if meta == nil {
			meta = p.extract(html)
		}
		if meta != nil {
			rec.Description = cleanText(meta.Description)
		}
	}

	switch p.detector.detect(content) {
	case LayoutMethods:
		p.parseMethods(nodes, rec)
	default:
		p.parseFlat(nodes, rec)
	}

	return rec, nil
}

func (p *ProblemParser) extract(html string) *probdoc.ExtractResult {
	if p.extractor == nil {
		return nil
	}
	res, err := p.extractor.Extract(html)
	if err != nil {
		return nil
	}
	return res
}

// description returns the paragraph following a "Problem Description"
// header, or the first non-empty paragraph of the article.
func (p *ProblemParser) description(nodes []*goquery.Selection) string {
	for i, n := range nodes {
		if p.walker.classify(n) != kindHeading || !descHeaderRe.MatchString(n.Text()) {
			continue
		}
		var parts []string
		for _, next := range nodes[i+1:] {
			if p.walker.classify(next) != kindProse {
				break
			}
			if text := cleanText(next.Text()); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "\n\n")
		}
	}

	for _, n := range nodes {
		switch p.walker.classify(n) {
		case kindProse:
			if text := cleanText(n.Text()); text != "" {
				return text
			}
		case kindMethodHeader, kindEnd:
			return ""
		}
	}
	return ""
}

// segmentPhase tracks what the most recent header says the following
// nodes are.
type segmentPhase int

const (
	phaseDescription segmentPhase = iota
	phaseBody
	phaseExplanation
	phaseTests
	phaseComplexity
)

// segment accumulates one method or the whole flat page.
type segment struct {
	method          probdoc.Method
	phase           segmentPhase
	complexityLabel string
	explanation     []string
	description     []string
	complexity      []string
	codes           []string
}

func (p *ProblemParser) parseMethods(nodes []*goquery.Selection, rec *probdoc.ProblemRecord) {
	var pageTests []string
	var cur *segment

	flush := func() {
		if cur == nil {
			return
		}
		m := cur.finish()
		rec.Methods = append(rec.Methods, m)
		if m.SourceCode != "" {
			rec.Solutions = append(rec.Solutions, m.SourceCode)
		}
		cur = nil
	}

	pagePhase := phaseBody
	for _, n := range nodes {
		kind := p.walker.classify(n)
		if kind == kindEnd {
			break
		}
		if kind == kindMethodHeader {
			flush()
			cur = &segment{method: probdoc.Method{Name: cleanText(n.Text())}}
			continue
		}
		if cur == nil {
			// Before the first method only page-level test output matters.
			switch kind {
			case kindHeading:
				pagePhase = phaseBody
				if testCaseRe.MatchString(n.Text()) {
					pagePhase = phaseTests
				}
			case kindTestBlock:
				pageTests = append(pageTests, codeText(n))
			case kindCode:
				if pagePhase == phaseTests {
					pageTests = append(pageTests, codeText(n))
				}
			}
			continue
		}
		p.visit(cur, n, kind)
	}
	flush()

	for _, m := range rec.Methods {
		rec.TestCases = appendUnique(rec.TestCases, m.TestCases...)
	}
	rec.TestCases = appendUnique(rec.TestCases, pageTests...)
}

func (p *ProblemParser) parseFlat(nodes []*goquery.Selection, rec *probdoc.ProblemRecord) {
	seg := &segment{phase: phaseBody}
	for _, n := range nodes {
		kind := p.walker.classify(n)
		if kind == kindEnd {
			break
		}
		p.visit(seg, n, kind)
	}

	m := seg.finish()
	rec.Solutions = append(rec.Solutions, seg.codes...)
	rec.TestCases = appendUnique(rec.TestCases, m.TestCases...)
	if len(seg.codes) == 0 {
		return
	}

	m.Name = probdoc.MainSolutionName
	m.Description = rec.Description
	rec.Methods = []probdoc.Method{m}
}

// visit feeds one node into seg.
func (p *ProblemParser) visit(seg *segment, n *goquery.Selection, kind nodeKind) {
	text := cleanText(n.Text())

	switch kind {
	case kindHeading:
		seg.complexityLabel = ""
		switch {
		case testCaseRe.MatchString(text):
			seg.phase = phaseTests
		case explainRe.MatchString(text):
			seg.phase = phaseExplanation
		case complexityRe.MatchString(text):
			if _, value, ok := strings.Cut(text, ":"); ok && strings.TrimSpace(value) != "" {
				seg.complexity = append(seg.complexity, text)
				seg.phase = phaseBody
			} else {
				seg.phase = phaseComplexity
				seg.complexityLabel = strings.TrimSuffix(text, ":")
			}
		default:
			seg.phase = phaseBody
		}

	case kindProse:
		switch seg.phase {
		case phaseDescription:
			if text != "" {
				seg.description = append(seg.description, text)
			}
		case phaseExplanation:
			if md := p.markdown(n); md != "" {
				seg.explanation = append(seg.explanation, md)
			}
		case phaseComplexity:
			if text != "" {
				seg.complexity = append(seg.complexity, seg.complexityLabel+": "+text)
				seg.complexityLabel = ""
				seg.phase = phaseBody
				return
			}
		}
		seg.complexity = append(seg.complexity, complexityLines(n)...)

	case kindCode:
		code := codeText(n)
		if code == "" {
			return
		}
		if seg.phase == phaseTests {
			seg.method.TestCases = append(seg.method.TestCases, code)
			return
		}
		seg.codes = append(seg.codes, code)
		if seg.method.SourceCode == "" {
			seg.method.SourceCode = code
		}
		if seg.phase == phaseDescription || seg.phase == phaseExplanation {
			seg.phase = phaseBody
		}

	case kindTestBlock:
		if code := codeText(n); code != "" {
			seg.method.TestCases = append(seg.method.TestCases, code)
		}
		if seg.phase == phaseDescription || seg.phase == phaseExplanation {
			seg.phase = phaseBody
		}

	default:
		if seg.phase == phaseDescription || seg.phase == phaseExplanation {
			seg.phase = phaseBody
		}
	}
}

func (s *segment) finish() probdoc.Method {
	m := s.method
	m.Description = strings.Join(s.description, "\n\n")
	m.Explanation = strings.Join(s.explanation, "\n\n")
	m.Complexity = strings.Join(uniqueStrings(s.complexity), "\n")
	return m
}

// markdown renders a prose node as Markdown, falling back to plain text.
func (p *ProblemParser) markdown(n *goquery.Selection) string {
	if p.converter != nil {
		if outer, err := goquery.OuterHtml(n); err == nil {
			if md, err := p.converter.Convert(outer); err == nil {
				if md = strings.TrimSpace(md); md != "" {
					return md
				}
			}
		}
	}
	return cleanText(n.Text())
}

// complexityLines returns the lines of n that state a time or space complexity.
func complexityLines(n *goquery.Selection) []string {
	var lines []string
	items := n.Find("li")
	if items.Length() == 0 {
		items = n
	}
	items.Each(func(_ int, s *goquery.Selection) {
		for _, line := range strings.Split(s.Text(), "\n") {
			line = cleanText(line)
			if complexityRe.MatchString(line) {
				lines = append(lines, line)
			}
		}
	})
	return lines
}

func appendUnique(dst []string, values ...string) []string {
	for _, v := range values {
		found := false
		for _, d := range dst {
			if d == v {
				found = true
				break
			}
		}
		if !found {
			dst = append(dst, v)
		}
	}
	return dst
}

func uniqueStrings(values []string) []string {
	return appendUnique(nil, values...)
}
