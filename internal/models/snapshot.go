package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityCategory names one of the tracked collection kinds that feed the
// activity snapshot. The set is closed; DataTypesPresent is measured against
// its size.
type ActivityCategory string

const (
	CategorySteps      ActivityCategory = "steps"
	CategoryWorkouts   ActivityCategory = "workouts"
	CategoryLocations  ActivityCategory = "locations"
	CategoryVoiceNotes ActivityCategory = "voice_notes"
	CategoryTextNotes  ActivityCategory = "text_notes"
	CategoryPhotos     ActivityCategory = "photos"
	CategoryEvents     ActivityCategory = "events"
)

// AllCategories lists every tracked category. Events are tracked for
// eligibility checks but carry no points.
var AllCategories = []ActivityCategory{
	CategorySteps,
	CategoryWorkouts,
	CategoryLocations,
	CategoryVoiceNotes,
	CategoryTextNotes,
	CategoryPhotos,
	CategoryEvents,
}

// PointCategories are the categories whose record counts sum into
// PointsLast7Days.
var PointCategories = []ActivityCategory{
	CategorySteps,
	CategoryWorkouts,
	CategoryLocations,
	CategoryVoiceNotes,
	CategoryTextNotes,
	CategoryPhotos,
}

// FreshCollectionCount is the number of collections checked for 24h
// freshness: health (steps or workouts), locations, and voice notes.
const FreshCollectionCount = 3

// ActivitySnapshot is the per-user activity summary handed to the scoring
// and eligibility stages. It is computed fresh for every generation cycle
// and never persisted.
type ActivitySnapshot struct {
	UserID      uuid.UUID `json:"user_id"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`

	// Counts holds the per-category record totals over the lookback window.
	Counts map[ActivityCategory]int `json:"counts"`

	// PointsLast7Days sums the point-bearing category counts.
	PointsLast7Days int `json:"points_last_7_days"`

	// FreshCollections is how many of the freshness-checked collections saw
	// new records in the last 24 hours, between 0 and FreshCollectionCount.
	FreshCollections int `json:"fresh_collections"`

	// UniqueActivityCount is the number of distinct activity labels recorded
	// in the window, such as distinct workout kinds.
	UniqueActivityCount int `json:"unique_activity_count"`

	// DataTypesPresent is how many categories have at least one record in
	// the window.
	DataTypesPresent int `json:"data_types_present"`

	// DegradedCategories lists categories whose queries failed and were
	// counted as zero. A non-empty list means the snapshot understates
	// activity rather than failing the cycle.
	DegradedCategories []ActivityCategory `json:"degraded_categories,omitempty"`
}

// Count returns the record count for one category, zero when absent.
func (s *ActivitySnapshot) Count(cat ActivityCategory) int {
	if s.Counts == nil {
		return 0
	}
	return s.Counts[cat]
}

// Degraded reports whether any category query failed while building the
// snapshot.
func (s *ActivitySnapshot) Degraded() bool {
	return len(s.DegradedCategories) > 0
}
