package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabel_Title(t *testing.T) {
	tests := []struct {
		label Label
		want  string
	}{
		{LabelITS1Fungal, "ITS1 Fungal"},
		{LabelBacterial16S, "Bacterial 16S"},
		{LabelEukaryotic18S, "Eukaryotic 18S"},
		{LabelExecutiveSummary, "Executive Summary"},
		{LabelUnknown, "Unknown"},
	}
	for _, tt := range tests {
		t.Run(string(tt.label), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.label.Title())
		})
	}
}

func TestLabel_Valid(t *testing.T) {
	for _, l := range Labels {
		assert.True(t, l.Valid(), "label %s", l)
	}
	assert.False(t, Label("results").Valid())
	assert.False(t, Label("").Valid())
}

func TestLabel_IsMicrobiologySubtype(t *testing.T) {
	assert.True(t, LabelITS1Fungal.IsMicrobiologySubtype())
	assert.True(t, LabelBacterial16S.IsMicrobiologySubtype())
	assert.True(t, LabelEukaryotic18S.IsMicrobiologySubtype())
	assert.False(t, LabelMicrobiologyGeneral.IsMicrobiologySubtype())
	assert.False(t, LabelPerformance.IsMicrobiologySubtype())
}

func TestChunk_Embedded(t *testing.T) {
	assert.False(t, Chunk{}.Embedded())
	assert.True(t, Chunk{Embedding: []float64{0.1}}.Embedded())
}
