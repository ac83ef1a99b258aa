package discovery

import (
	"sort"

	"internpath/internal/api"
)

// Band is a display severity derived from a match relative to the best match.
type Band int

const (
	BandLow Band = iota
	BandMedium
	BandHigh
)

func (b Band) String() string {
	switch b {
	case BandHigh:
		return "high"
	case BandMedium:
		return "medium"
	}
	return "low"
}

// Band thresholds on match/maxMatch.
const (
	HighRatio   = 0.85
	MediumRatio = 0.70
)

// Classify bands match against maxMatch. With no positive maxMatch every
// internship is low.
func Classify(match, maxMatch float64) Band {
	if maxMatch <= 0 {
		return BandLow
	}
	ratio := match / maxMatch
	switch {
	case ratio >= HighRatio:
		return BandHigh
	case ratio >= MediumRatio:
		return BandMedium
	}
	return BandLow
}

// Top returns up to n entries by descending match. Ties keep backend order.
func Top(entries []api.RecommendationEntry, n int) []api.RecommendationEntry {
	sorted := make([]api.RecommendationEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].MatchPercentage > sorted[j].MatchPercentage
	})
	if n >= 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
