package database

import (
	"strings"
	"testing"

	"github.com/chroniclehq/feedgen/internal/models"
)

// Every recognized category must map to a backing table, otherwise the
// aggregator would silently degrade it on every cycle.
func TestActivitySources_CoverAllCategories(t *testing.T) {
	t.Parallel()

	for _, category := range models.AllCategories {
		src, ok := activitySources[category]
		if !ok {
			t.Errorf("category %s has no activity source", category)
			continue
		}
		if src.table == "" {
			t.Errorf("category %s has an empty table name", category)
		}
	}

	if len(activitySources) != len(models.AllCategories) {
		t.Errorf("activitySources has %d entries, want %d", len(activitySources), len(models.AllCategories))
	}
}

func TestActivitySources_HealthSplitBySampleType(t *testing.T) {
	t.Parallel()

	steps := activitySources[models.CategorySteps]
	workouts := activitySources[models.CategoryWorkouts]

	if steps.table != workouts.table {
		t.Errorf("steps and workouts should share a table, got %s and %s", steps.table, workouts.table)
	}
	if !strings.Contains(steps.extra, "steps") {
		t.Errorf("steps source missing sample_type filter: %q", steps.extra)
	}
	if !strings.Contains(workouts.extra, "workout") {
		t.Errorf("workouts source missing sample_type filter: %q", workouts.extra)
	}
	if steps.extra == workouts.extra {
		t.Error("steps and workouts must filter on different sample types")
	}
}
