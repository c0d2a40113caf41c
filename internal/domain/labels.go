package domain

import "strings"

// Label is a section label from the closed taxonomy below.
type Label string

const (
	LabelExecutiveSummary    Label = "executive_summary"
	LabelMethodology         Label = "methodology"
	LabelEnvironment         Label = "environment"
	LabelPerformance         Label = "performance"
	LabelITS1Fungal          Label = "its1_fungal"
	LabelBacterial16S        Label = "bacterial_16s"
	LabelEukaryotic18S       Label = "eukaryotic_18s"
	LabelMicrobiologyGeneral Label = "microbiology_general"
	LabelInterpretation      Label = "interpretation"
	LabelConclusion          Label = "conclusion"
	LabelUnknown             Label = "unknown"
)

// Labels lists the whole taxonomy in document order.
var Labels = []Label{
	LabelExecutiveSummary,
	LabelMethodology,
	LabelEnvironment,
	LabelPerformance,
	LabelITS1Fungal,
	LabelBacterial16S,
	LabelEukaryotic18S,
	LabelMicrobiologyGeneral,
	LabelInterpretation,
	LabelConclusion,
	LabelUnknown,
}

// Valid reports whether l belongs to the taxonomy.
func (l Label) Valid() bool {
	for _, known := range Labels {
		if l == known {
			return true
		}
	}
	return false
}

// IsMicrobiologySubtype reports whether l is one of the sequencing-specific labels.
func (l Label) IsMicrobiologySubtype() bool {
	return l == LabelITS1Fungal || l == LabelBacterial16S || l == LabelEukaryotic18S
}

var acronyms = map[string]string{"its1": "ITS1", "16s": "16S", "18s": "18S"}

// Title renders the label for display, e.g. its1_fungal -> "ITS1 Fungal".
func (l Label) Title() string {
	parts := strings.Split(string(l), "_")
	for i, p := range parts {
		if a, ok := acronyms[p]; ok {
			parts[i] = a
			continue
		}
		if p != "" {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
