// Package intent infers which sections a query is about.
package intent

import (
	"regexp"
	"strings"

	"labrag/internal/domain"
)

type family struct {
	label   domain.Label
	pattern *regexp.Regexp
}

// families are evaluated in order and every match contributes its label.
var families = []family{
	{domain.LabelExecutiveSummary, regexp.MustCompile(`summary|overview|key findings|highlights`)},
	{domain.LabelMethodology, regexp.MustCompile(`method|protocol|design|sampling|setup`)},
	{domain.LabelEnvironment, regexp.MustCompile(`environment|temperature|humidity|climate|soil|weather|irrigation|conditions`)},
	{domain.LabelPerformance, regexp.MustCompile(`yield|\bkg\b|output|production|\bclass\b`)},
	{domain.LabelITS1Fungal, regexp.MustCompile(`fung|its1|mycorrhiz|yeast|\bmou?ld`)},
	{domain.LabelBacterial16S, regexp.MustCompile(`bacteri|16s|prokaryot`)},
	{domain.LabelEukaryotic18S, regexp.MustCompile(`eukaryot|18s|protist|nematode`)},
	{domain.LabelMicrobiologyGeneral, regexp.MustCompile(`microb|community|diversity|taxa|abundance`)},
	{domain.LabelInterpretation, regexp.MustCompile(`interpret|implication|explain|significan`)},
	{domain.LabelConclusion, regexp.MustCompile(`conclu|recommend|next step|takeaway`)},
}

// Classify returns the labels whose keyword family matches the lowercased
// query, in taxonomy order. A query matching nothing is [unknown].
func Classify(query string) []domain.Label {
	q := strings.ToLower(query)
	var labels []domain.Label
	for _, f := range families {
		if f.pattern.MatchString(q) {
			labels = append(labels, f.label)
		}
	}
	if len(labels) == 0 {
		return []domain.Label{domain.LabelUnknown}
	}
	return labels
}

// Contains reports whether label is among intents.
func Contains(intents []domain.Label, label domain.Label) bool {
	for _, l := range intents {
		if l == label {
			return true
		}
	}
	return false
}

// HasMicrobiologySubtype reports whether any intent is a sequencing subtype.
func HasMicrobiologySubtype(intents []domain.Label) bool {
	for _, l := range intents {
		if l.IsMicrobiologySubtype() {
			return true
		}
	}
	return false
}
