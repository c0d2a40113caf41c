package ranking

import (
	"fmt"

	"labrag/internal/domain"
	"labrag/internal/intent"
)

// StrategyKind selects how a chunk's section turns into a score multiplier.
type StrategyKind string

const (
	// StaticWeighted multiplies by a fixed per-section weight.
	StaticWeighted StrategyKind = "static-weighted"
	// IntentBoosted multiplies by a boost when the section matches a query intent.
	IntentBoosted StrategyKind = "intent-boosted"
)

const (
	DirectIntentBoost  = 1.5
	FamilyIntentBoost  = 1.2
	defaultLabelWeight = 1.0
)

// DefaultSectionWeights returns a fresh copy of the static weight table.
func DefaultSectionWeights() map[domain.Label]float64 {
	return map[domain.Label]float64{
		domain.LabelExecutiveSummary:    1.05,
		domain.LabelMethodology:         1.0,
		domain.LabelEnvironment:         1.0,
		domain.LabelPerformance:         1.1,
		domain.LabelITS1Fungal:          1.2,
		domain.LabelBacterial16S:        1.1,
		domain.LabelEukaryotic18S:       1.1,
		domain.LabelMicrobiologyGeneral: 1.05,
		domain.LabelInterpretation:      1.1,
		domain.LabelConclusion:          1.15,
		domain.LabelUnknown:             0.9,
	}
}

// Strategy is the tagged scoring variant. Weights is consulted only by
// StaticWeighted; a label missing from it weighs 1.
type Strategy struct {
	Kind    StrategyKind
	Weights map[domain.Label]float64
}

func Static(weights map[domain.Label]float64) Strategy {
	if weights == nil {
		weights = DefaultSectionWeights()
	}
	return Strategy{Kind: StaticWeighted, Weights: weights}
}

func Boosted() Strategy {
	return Strategy{Kind: IntentBoosted}
}

// ParseKind validates a configured strategy name.
func ParseKind(s string) (StrategyKind, error) {
	switch k := StrategyKind(s); k {
	case StaticWeighted, IntentBoosted:
		return k, nil
	default:
		return "", fmt.Errorf("unknown ranking strategy %q: %w", s, domain.ErrInvalidInput)
	}
}

// SectionWeight returns the multiplier for a chunk in section given the
// query intents.
func (s Strategy) SectionWeight(section domain.Label, intents []domain.Label) float64 {
	switch s.Kind {
	case IntentBoosted:
		if intent.Contains(intents, section) {
			return DirectIntentBoost
		}
		if section == domain.LabelMicrobiologyGeneral && intent.HasMicrobiologySubtype(intents) {
			return FamilyIntentBoost
		}
		return defaultLabelWeight
	default:
		if w, ok := s.Weights[section]; ok {
			return w
		}
		return defaultLabelWeight
	}
}
