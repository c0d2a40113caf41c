package ranking

import "time"

const (
	freshAge  = 30 * 24 * time.Hour
	recentAge = 180 * 24 * time.Hour
)

// RecencyWeight favours recently uploaded documents. A zero upload time
// weighs 1.
func RecencyWeight(uploaded, now time.Time) float64 {
	if uploaded.IsZero() {
		return 1.0
	}
	age := now.Sub(uploaded)
	switch {
	case age <= freshAge:
		return 1.2
	case age <= recentAge:
		return 1.0
	default:
		return 0.9
	}
}
