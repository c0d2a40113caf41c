// Package segmenter assigns runs of document lines to section labels.
package segmenter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"labrag/internal/domain"
)

const maxCapsHeadingLen = 60

var (
	markdownHeading = regexp.MustCompile(`^#{1,6}\s+(.*)$`)
	capsHeading     = regexp.MustCompile(`^[\p{Lu}0-9][\p{Lu}0-9 &/(),\-]*$`)
	numberPrefix    = regexp.MustCompile(`^\d+(?:\.\d+)*\.?\s+`)
)

// exactHeadings maps normalized heading text straight to a label.
var exactHeadings = map[string]domain.Label{
	"executive summary":        domain.LabelExecutiveSummary,
	"summary":                  domain.LabelExecutiveSummary,
	"abstract":                 domain.LabelExecutiveSummary,
	"overview":                 domain.LabelExecutiveSummary,
	"key findings":             domain.LabelExecutiveSummary,
	"methods":                  domain.LabelMethodology,
	"methodology":              domain.LabelMethodology,
	"materials and methods":    domain.LabelMethodology,
	"experimental design":      domain.LabelMethodology,
	"trial design":             domain.LabelMethodology,
	"sampling":                 domain.LabelMethodology,
	"environment":              domain.LabelEnvironment,
	"environmental conditions": domain.LabelEnvironment,
	"site conditions":          domain.LabelEnvironment,
	"growing conditions":       domain.LabelEnvironment,
	"climate":                  domain.LabelEnvironment,
	"results":                  domain.LabelPerformance,
	"performance":              domain.LabelPerformance,
	"yield":                    domain.LabelPerformance,
	"crop performance":         domain.LabelPerformance,
	"production":               domain.LabelPerformance,
	"its1":                     domain.LabelITS1Fungal,
	"fungal community":         domain.LabelITS1Fungal,
	"fungi":                    domain.LabelITS1Fungal,
	"mycobiome":                domain.LabelITS1Fungal,
	"16s":                      domain.LabelBacterial16S,
	"bacterial community":      domain.LabelBacterial16S,
	"bacteria":                 domain.LabelBacterial16S,
	"18s":                      domain.LabelEukaryotic18S,
	"eukaryotic community":     domain.LabelEukaryotic18S,
	"eukaryotes":               domain.LabelEukaryotic18S,
	"microbiology":             domain.LabelMicrobiologyGeneral,
	"microbial community":      domain.LabelMicrobiologyGeneral,
	"microbiome":               domain.LabelMicrobiologyGeneral,
	"microbial analysis":       domain.LabelMicrobiologyGeneral,
	"discussion":               domain.LabelInterpretation,
	"interpretation":           domain.LabelInterpretation,
	"analysis":                 domain.LabelInterpretation,
	"conclusion":               domain.LabelConclusion,
	"conclusions":              domain.LabelConclusion,
	"recommendations":          domain.LabelConclusion,
	"next steps":               domain.LabelConclusion,
}

type rule struct {
	label   domain.Label
	pattern *regexp.Regexp
}

// rules are tried in order after the exact table misses; first match wins.
// Sequencing subtypes come first so "ITS1 Results" is not read as performance.
var rules = []rule{
	{domain.LabelITS1Fungal, regexp.MustCompile(`\bits-?1\b|fung|mycobiom|mycorrhiz`)},
	{domain.LabelBacterial16S, regexp.MustCompile(`\b16s\b|bacteri|prokaryot`)},
	{domain.LabelEukaryotic18S, regexp.MustCompile(`\b18s\b|eukaryot|protist`)},
	{domain.LabelMicrobiologyGeneral, regexp.MustCompile(`microb|community composition|diversity|sequencing`)},
	{domain.LabelExecutiveSummary, regexp.MustCompile(`summary|overview|abstract|highlights`)},
	{domain.LabelMethodology, regexp.MustCompile(`method|protocol|design|sampling|procedure|materials`)},
	{domain.LabelEnvironment, regexp.MustCompile(`environment|climate|weather|temperature|humidity|soil|site|conditions`)},
	{domain.LabelPerformance, regexp.MustCompile(`result|yield|performance|output|production|harvest`)},
	{domain.LabelInterpretation, regexp.MustCompile(`discussion|interpret|analysis|implication`)},
	{domain.LabelConclusion, regexp.MustCompile(`conclu|recommend|next steps|outlook`)},
}

// Classify maps heading text onto the taxonomy: exact lookup first, then
// the ordered rules, else unknown.
func Classify(heading string) domain.Label {
	key := normalize(heading)
	if label, ok := exactHeadings[key]; ok {
		return label
	}
	for _, r := range rules {
		if r.pattern.MatchString(key) {
			return r.label
		}
	}
	return domain.LabelUnknown
}

func normalize(heading string) string {
	key := strings.ToLower(strings.TrimSpace(heading))
	key = numberPrefix.ReplaceAllString(key, "")
	return strings.TrimSpace(strings.TrimSuffix(key, ":"))
}

// Heading reports whether a line opens a new section and returns its text.
// Markdown headings always qualify; otherwise a short all-caps line does.
func Heading(line string) (string, bool) {
	trimmed := strings.TrimSpace(line)
	if m := markdownHeading.FindStringSubmatch(trimmed); m != nil {
		return strings.TrimSpace(m[1]), true
	}
	if trimmed == "" || utf8.RuneCountInString(trimmed) > maxCapsHeadingLen {
		return "", false
	}
	if !capsHeading.MatchString(trimmed) || !strings.ContainsFunc(trimmed, unicode.IsLetter) {
		return "", false
	}
	return trimmed, true
}

// Segment splits flattened document text into labelled sections. Text is
// kept line for line with headings removed. Runs holding only blank lines
// are dropped; a document without headings is one unknown section.
func Segment(text string) []domain.Section {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")

	var (
		sections []domain.Section
		buf      []string
		label    = domain.LabelUnknown
		heading  string
		seen     bool
	)
	flush := func() {
		if strings.TrimSpace(strings.Join(buf, "")) != "" {
			sections = append(sections, domain.Section{Label: label, Heading: heading, Text: strings.Join(buf, "\n")})
		}
		buf = nil
	}
	for _, line := range lines {
		if h, ok := Heading(line); ok {
			flush()
			seen = true
			heading = h
			label = Classify(h)
			continue
		}
		buf = append(buf, line)
	}
	flush()

	if !seen {
		return []domain.Section{{Label: domain.LabelUnknown, Text: text}}
	}
	return sections
}
