package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/feedgen/internal/models"
)

// ActivityRepository reads the raw activity collections that feed the
// snapshot. The store is read-only from this service's point of view;
// ingestion happens elsewhere.
type ActivityRepository struct {
	db *DB
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *DB) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// activitySource maps a category onto its backing table. Every activity
// table carries the same pair of timestamp columns: recorded_at
// (timestamptz, NULL for legacy rows) and recorded_at_text (ISO-8601 UTC
// text written by the old mobile ingestion path, NULL for new rows).
type activitySource struct {
	table string
	// extra narrows the row set within a shared table.
	extra string
}

var activitySources = map[models.ActivityCategory]activitySource{
	models.CategorySteps:      {table: "health_samples", extra: "AND sample_type = 'steps'"},
	models.CategoryWorkouts:   {table: "health_samples", extra: "AND sample_type = 'workout'"},
	models.CategoryLocations:  {table: "location_visits"},
	models.CategoryVoiceNotes: {table: "voice_notes"},
	models.CategoryTextNotes:  {table: "text_notes"},
	models.CategoryPhotos:     {table: "photos"},
	models.CategoryEvents:     {table: "calendar_events"},
}

// CountInWindow counts a user's records for one category within [from, to).
// Rows can carry their timestamp in either encoding, and a migrated row may
// carry both, so the two selects are UNIONed by id to dedupe.
func (r *ActivityRepository) CountInWindow(ctx context.Context, userID uuid.UUID, category models.ActivityCategory, from, to time.Time) (int, error) {
	src, ok := activitySources[category]
	if !ok {
		return 0, fmt.Errorf("unknown activity category: %s", category)
	}

	// ISO-8601 UTC strings compare correctly as text, which keeps the
	// legacy branch on the recorded_at_text index.
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM (
			SELECT id FROM %[1]s
			 WHERE user_id = $1 AND recorded_at >= $2 AND recorded_at < $3 %[2]s
			UNION
			SELECT id FROM %[1]s
			 WHERE user_id = $1 AND recorded_at_text IS NOT NULL
			   AND recorded_at_text >= $4 AND recorded_at_text < $5 %[2]s
		) AS windowed`, src.table, src.extra)

	var count int
	err := r.db.QueryRowContext(ctx, query,
		userID, from, to,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s records: %w", category, err)
	}

	return count, nil
}

// DistinctActivityLabels counts the distinct labels a user recorded within
// [from, to): workout kinds from health samples plus place labels from
// location visits, across both timestamp encodings.
func (r *ActivityRepository) DistinctActivityLabels(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error) {
	query := `
		SELECT COUNT(*) FROM (
			SELECT DISTINCT label FROM health_samples
			 WHERE user_id = $1 AND sample_type = 'workout' AND label IS NOT NULL
			   AND (
					(recorded_at >= $2 AND recorded_at < $3)
					OR (recorded_at_text IS NOT NULL AND recorded_at_text >= $4 AND recorded_at_text < $5)
			   )
			UNION
			SELECT DISTINCT place_label FROM location_visits
			 WHERE user_id = $1 AND place_label IS NOT NULL
			   AND (
					(recorded_at >= $2 AND recorded_at < $3)
					OR (recorded_at_text IS NOT NULL AND recorded_at_text >= $4 AND recorded_at_text < $5)
			   )
		) AS labels`

	var count int
	err := r.db.QueryRowContext(ctx, query,
		userID, from, to,
		from.UTC().Format(time.RFC3339), to.UTC().Format(time.RFC3339),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct activity labels: %w", err)
	}

	return count, nil
}
