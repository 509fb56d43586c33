package engine

import (
	"sort"

	"github.com/chroniclehq/feedgen/internal/models"
)

const (
	// MinConfidence is the floor below which generated candidates are
	// discarded before ranking.
	MinConfidence = 0.5

	// BufferSlack is how many candidates beyond the desired count the
	// pipeline collects before it stops trying further types. The slack
	// gives ranking room to drop weak output without starving the feed.
	BufferSlack = 2
)

// SplitByConfidence partitions candidates into those at or above
// MinConfidence and those below it. Input order is preserved in both halves.
func SplitByConfidence(candidates []models.Candidate) (kept, dropped []models.Candidate) {
	for _, c := range candidates {
		if c.Confidence >= MinConfidence {
			kept = append(kept, c)
		} else {
			dropped = append(dropped, c)
		}
	}
	return kept, dropped
}

// Rank orders candidates by confidence, highest first, without mutating the
// input. The sort is stable so catalog order breaks confidence ties.
func Rank(candidates []models.Candidate) []models.Candidate {
	ranked := make([]models.Candidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})
	return ranked
}

// SelectTop takes up to n candidates off the top of a ranked list and
// returns the remainder as the cut. It never pads: fewer candidates than n
// means a shorter selection.
func SelectTop(ranked []models.Candidate, n int) (selected, cut []models.Candidate) {
	if n < 0 {
		n = 0
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n], ranked[n:]
}
