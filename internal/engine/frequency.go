package engine

import (
	"math"

	"github.com/chroniclehq/feedgen/internal/models"
)

// VolumeSaturationPoints is the activity level at which the volume score
// reaches 1.0. The log curve gives early records more weight: a handful of
// entries moves the score far more than the same handful on top of a busy
// week.
const VolumeSaturationPoints = 50

const (
	volumeWeight    = 0.4
	freshnessWeight = 0.3
	diversityWeight = 0.3

	// uniqueLabelCeiling caps how many distinct activity labels can raise
	// the diversity score.
	uniqueLabelCeiling = 10.0

	uniqueLabelWeight = 0.6
	breadthWeight     = 0.4
)

// ComputeScores derives the three component scores and their weighted total
// from a snapshot. Every component is clamped to [0, 1].
func ComputeScores(snap *models.ActivitySnapshot) models.FrequencyScores {
	volume := math.Log(float64(snap.PointsLast7Days)+1) / math.Log(VolumeSaturationPoints+1)
	volume = clamp01(volume)

	freshness := clamp01(float64(snap.FreshCollections) / float64(models.FreshCollectionCount))

	labelComponent := math.Min(float64(snap.UniqueActivityCount)/uniqueLabelCeiling, 1) * uniqueLabelWeight
	breadthComponent := float64(snap.DataTypesPresent) / float64(len(models.AllCategories)) * breadthWeight
	diversity := clamp01(labelComponent + breadthComponent)

	total := clamp01(volumeWeight*volume + freshnessWeight*freshness + diversityWeight*diversity)

	return models.FrequencyScores{
		Volume:    volume,
		Freshness: freshness,
		Diversity: diversity,
		Total:     total,
	}
}

// postCountTiers maps a total score onto the number of posts to generate,
// checked top down. The 0.4 and 0.2 tiers both yield one post. That
// duplication is deliberate and downstream behavior depends on the 0.2
// floor, so do not collapse the rows.
var postCountTiers = []struct {
	threshold float64
	posts     int
}{
	{threshold: 0.8, posts: 3},
	{threshold: 0.6, posts: 2},
	{threshold: 0.4, posts: 1},
	{threshold: 0.2, posts: 1},
}

// PostCount maps a total score onto how many posts this cycle should
// produce. Scores below the lowest tier warrant none.
func PostCount(total float64) int {
	for _, tier := range postCountTiers {
		if total >= tier.threshold {
			return tier.posts
		}
	}
	return 0
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
