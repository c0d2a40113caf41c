package segmenter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labrag/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		heading string
		want    domain.Label
	}{
		{"Executive Summary", domain.LabelExecutiveSummary},
		{"  METHODS  ", domain.LabelMethodology},
		{"2. Materials and Methods", domain.LabelMethodology},
		{"Results:", domain.LabelPerformance},
		{"ITS1 Results", domain.LabelITS1Fungal},
		{"Bacterial Community", domain.LabelBacterial16S},
		{"16S rRNA profiling", domain.LabelBacterial16S},
		{"Eukaryotic diversity (18S)", domain.LabelEukaryotic18S},
		{"Microbial community overview", domain.LabelMicrobiologyGeneral},
		{"3.1 Site description", domain.LabelEnvironment},
		{"Harvest outcomes", domain.LabelPerformance},
		{"Discussion", domain.LabelInterpretation},
		{"Conclusions and recommendations", domain.LabelConclusion},
		{"Acknowledgements", domain.LabelUnknown},
		{"", domain.LabelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.heading, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.heading))
		})
	}
}

func TestHeading(t *testing.T) {
	tests := []struct {
		line string
		want string
		ok   bool
	}{
		{"# Results", "Results", true},
		{"### 2.1 Soil", "2.1 Soil", true},
		{"RESULTS", "RESULTS", true},
		{"ITS1 FUNGAL COMMUNITY", "ITS1 FUNGAL COMMUNITY", true},
		{"Results", "", false},
		{"YIELD WAS HIGH.", "", false},
		{"TABLE:", "", false},
		{"2024", "", false},
		{"", "", false},
		{strings.Repeat("LONG ", 20), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, ok := Heading(tt.line)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSegment_MethodsAndResults(t *testing.T) {
	sections := Segment("METHODS\nWe used X.\n\nRESULTS\nYield was 12%.")

	require.Len(t, sections, 2)
	assert.Equal(t, domain.LabelMethodology, sections[0].Label)
	assert.Equal(t, "METHODS", sections[0].Heading)
	assert.Equal(t, "We used X.\n", sections[0].Text)
	assert.Equal(t, domain.LabelPerformance, sections[1].Label)
	assert.Equal(t, "Yield was 12%.", sections[1].Text)
}

func TestSegment_LeadingTextIsUnknown(t *testing.T) {
	sections := Segment("Trial report 7\n# Conclusion\nKeep the mulch.")

	require.Len(t, sections, 2)
	assert.Equal(t, domain.LabelUnknown, sections[0].Label)
	assert.Equal(t, "Trial report 7", sections[0].Text)
	assert.Equal(t, domain.LabelConclusion, sections[1].Label)
}

func TestSegment_NoHeadings(t *testing.T) {
	for _, text := range []string{"", "just a paragraph of notes.\nand another line."} {
		sections := Segment(text)
		require.Len(t, sections, 1)
		assert.Equal(t, domain.LabelUnknown, sections[0].Label)
		assert.Equal(t, text, sections[0].Text)
	}
}

func TestSegment_ConsecutiveHeadingsSkipEmptySections(t *testing.T) {
	sections := Segment("# Overview\n# Methods\nSampled weekly.")

	require.Len(t, sections, 1)
	assert.Equal(t, domain.LabelMethodology, sections[0].Label)
}

func TestSegment_BlankOnlySectionsSkipped(t *testing.T) {
	sections := Segment("# Overview\n\n  \n## Methods\n\nSampled weekly.\n\n# Results\n\n")

	require.Len(t, sections, 1)
	assert.Equal(t, domain.LabelMethodology, sections[0].Label)
	assert.Equal(t, "\nSampled weekly.\n", sections[0].Text)
}

func TestSegment_Partition(t *testing.T) {
	docs := []string{
		"# Summary\nGood season.\n\n## Soil conditions\nDry.\nVery dry.\n# ITS1\nMostly Glomus.",
		"Intro line\nMETHODS\nalpha\nbeta\n\nRESULTS\n\ngamma",
		"# Heading only",
		"# Overview\n\n# Methods\n\nalpha\n\n# Results\n \n",
	}

	for _, doc := range docs {
		sections := Segment(doc)

		var kept []string
		for _, line := range strings.Split(doc, "\n") {
			if _, ok := Heading(line); !ok && strings.TrimSpace(line) != "" {
				kept = append(kept, line)
			}
		}
		var got []string
		for _, s := range sections {
			assert.True(t, s.Label.Valid(), s.Label)
			assert.NotEmpty(t, strings.TrimSpace(s.Text))
			for _, line := range strings.Split(s.Text, "\n") {
				if strings.TrimSpace(line) != "" {
					got = append(got, line)
				}
			}
		}
		if len(kept) == 0 {
			assert.Empty(t, got)
			continue
		}
		assert.Equal(t, kept, got, doc)
	}
}
