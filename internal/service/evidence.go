package service

import (
	"fmt"
	"strings"

	"labrag/internal/domain"
)

// ToEvidence converts ranked chunks into the caller-facing view. The
// intermediate weights are attached only for privileged callers.
func (s *RetrievalService) ToEvidence(scored []domain.ScoredChunk, query string, privileged bool) []domain.Evidence {
	out := make([]domain.Evidence, 0, len(scored))
	for i, sc := range scored {
		rank := sc.Rank
		if rank == 0 {
			rank = i + 1
		}
		ev := domain.Evidence{
			ID:            sc.Chunk.ID,
			Rank:          rank,
			Section:       sc.Chunk.Section,
			SectionTitle:  sc.Chunk.Section.Title(),
			Preview:       s.previewer.Preview(sc.Chunk.Text, query),
			Score:         sc.Score,
			DocumentLabel: sc.Chunk.DocumentLabel,
		}
		if privileged {
			ev.Debug = &domain.EvidenceDebug{
				NormalizedSimilarity: sc.Normalized,
				SectionWeight:        sc.SectionWeight,
				RecencyWeight:        sc.RecencyWeight,
			}
		}
		out = append(out, ev)
	}
	return out
}

// GroundingContext renders evidence as a numbered block for the answer
// generation service. No evidence renders as "".
func GroundingContext(evidence []domain.Evidence) string {
	if len(evidence) == 0 {
		return ""
	}
	var b strings.Builder
	for i, ev := range evidence {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "[%d] %s (%s)\n%s", ev.Rank, ev.SectionTitle, ev.DocumentLabel, ev.Preview)
	}
	return b.String()
}
