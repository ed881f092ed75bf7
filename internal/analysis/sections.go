package analysis

import (
	"strings"
)

// Sections holds the nine named parts of an interview analysis
type Sections struct {
	KeyPoints              string
	NotableQuotes          string
	AIAttitudes            string
	RQ1Insights            string
	RQ2Insights            string
	RQ3Insights            string
	RQ4Insights            string
	Contradictions         string
	AuthenticityAssessment string
}

// headerNames maps the section labels the analysis prompt asks for to
// their slot. Matching is case-insensitive and tolerant of numbering
// and markdown decoration around the label.
var headerNames = []struct {
	label string
	slot  func(*Sections) *string
}{
	{"KEY POINTS", func(s *Sections) *string { return &s.KeyPoints }},
	{"NOTABLE QUOTES", func(s *Sections) *string { return &s.NotableQuotes }},
	{"AI ATTITUDES", func(s *Sections) *string { return &s.AIAttitudes }},
	{"RQ1 INSIGHTS", func(s *Sections) *string { return &s.RQ1Insights }},
	{"RQ2 INSIGHTS", func(s *Sections) *string { return &s.RQ2Insights }},
	{"RQ3 INSIGHTS", func(s *Sections) *string { return &s.RQ3Insights }},
	{"RQ4 INSIGHTS", func(s *Sections) *string { return &s.RQ4Insights }},
	{"CONTRADICTIONS", func(s *Sections) *string { return &s.Contradictions }},
	{"AUTHENTICITY ASSESSMENT", func(s *Sections) *string { return &s.AuthenticityAssessment }},
}

// Split carves analysis free text into its named sections. It is
// best-effort and never fails: text before the first recognized header
// (or all of it, when no headers match) lands in KeyPoints.
func Split(text string) Sections {
	var s Sections

	buf := make(map[int][]string)
	currentIdx := 0 // KeyPoints absorbs anything before the first header

	for _, line := range strings.Split(text, "\n") {
		if idx, ok := matchHeader(line); ok {
			currentIdx = idx
			// Header lines sometimes carry content after the colon.
			if rest := headerRemainder(line, headerNames[idx].label); rest != "" {
				buf[currentIdx] = append(buf[currentIdx], rest)
			}
			continue
		}
		buf[currentIdx] = append(buf[currentIdx], line)
	}

	for idx, sectionLines := range buf {
		*headerNames[idx].slot(&s) = strings.TrimSpace(strings.Join(sectionLines, "\n"))
	}

	return s
}

// matchHeader reports whether a line is one of the known section
// headers, tolerating numbering ("4. "), markdown ("## ", "**"), and
// case differences.
func matchHeader(line string) (int, bool) {
	normalized := strings.ToUpper(strings.TrimSpace(line))
	normalized = strings.TrimLeft(normalized, "#*-0123456789. ")
	normalized = strings.TrimRight(normalized, "*:")

	for i, h := range headerNames {
		if strings.HasPrefix(normalized, h.label) {
			return i, true
		}
	}
	return 0, false
}

// headerRemainder extracts inline content following "LABEL:" on the
// header line itself.
func headerRemainder(line, label string) string {
	upper := strings.ToUpper(line)
	pos := strings.Index(upper, label)
	if pos == -1 {
		return ""
	}
	rest := line[pos+len(label):]
	rest = strings.TrimLeft(rest, "*: ")
	return strings.TrimSpace(rest)
}
