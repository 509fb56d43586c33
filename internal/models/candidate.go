package models

import (
	"time"

	"github.com/google/uuid"
)

// Candidate is one generated post competing for a feed slot. At most one
// candidate per content type exists within a cycle.
type Candidate struct {
	ID          uuid.UUID   `json:"id"`
	UserID      uuid.UUID   `json:"user_id"`
	Type        ContentType `json:"type"`
	Title       string      `json:"title"`
	Body        string      `json:"body"`
	Confidence  float64     `json:"confidence"`
	GeneratedAt time.Time   `json:"generated_at"`
}

// FrequencyScores holds the three component scores and their weighted total
// for one cycle. All values are clamped to [0, 1].
type FrequencyScores struct {
	Volume    float64 `json:"volume"`
	Freshness float64 `json:"freshness"`
	Diversity float64 `json:"diversity"`
	Total     float64 `json:"total"`
}

// RejectionReason records why a content type produced no selected post in a
// cycle. Filter-stage rejections carry the name of the failing filter;
// ranking-stage rejections use the dedicated reasons below.
type RejectionReason string

const (
	// Ranking-stage reasons. Filter-stage reasons are the filter names
	// declared in the engine package.
	RejectionGenerationFailed RejectionReason = "generation_failed"
	RejectionLowConfidence    RejectionReason = "low_confidence"
	RejectionRankCutoff       RejectionReason = "rank_cutoff"
)
