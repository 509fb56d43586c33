package signals

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chroniclehq/feedgen/internal/database"
	"github.com/chroniclehq/feedgen/internal/models"
)

const (
	// LookbackWindow is how far back the snapshot looks for activity.
	LookbackWindow = 7 * 24 * time.Hour

	// FreshnessWindow is the recency window for the fresh-collection count.
	FreshnessWindow = 24 * time.Hour

	// maxConcurrentQueries bounds the fan-out so one snapshot cannot soak
	// the connection pool.
	maxConcurrentQueries = 4
)

// Aggregator builds per-user activity snapshots from the raw collections.
// Individual query failures degrade their category to zero instead of
// failing the snapshot; the caller can see what was degraded on the result.
type Aggregator struct {
	activity database.ActivityRepositoryInterface
	logger   *zap.Logger
}

// NewAggregator creates a new snapshot aggregator
func NewAggregator(activity database.ActivityRepositoryInterface, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		activity: activity,
		logger:   logger,
	}
}

// BuildSnapshot assembles the activity snapshot for one user at the given
// instant. The only hard failure is context cancellation.
func (a *Aggregator) BuildSnapshot(ctx context.Context, userID uuid.UUID, now time.Time) (*models.ActivitySnapshot, error) {
	windowStart := now.Add(-LookbackWindow)
	freshStart := now.Add(-FreshnessWindow)

	var mu sync.Mutex
	counts := make(map[models.ActivityCategory]int, len(models.AllCategories))
	freshCounts := make(map[models.ActivityCategory]int)
	degraded := make(map[models.ActivityCategory]bool)
	uniqueLabels := 0

	markDegraded := func(category models.ActivityCategory, err error) {
		mu.Lock()
		degraded[category] = true
		mu.Unlock()
		a.logger.Warn("activity_query_degraded",
			zap.String("user_id", userID.String()),
			zap.String("category", string(category)),
			zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentQueries)

	for _, category := range models.AllCategories {
		g.Go(func() error {
			n, err := a.activity.CountInWindow(gctx, userID, category, windowStart, now)
			if err != nil {
				markDegraded(category, err)
				return nil
			}
			mu.Lock()
			counts[category] = n
			mu.Unlock()
			return nil
		})
	}

	freshCategories := []models.ActivityCategory{
		models.CategorySteps,
		models.CategoryWorkouts,
		models.CategoryLocations,
		models.CategoryVoiceNotes,
	}
	for _, category := range freshCategories {
		g.Go(func() error {
			n, err := a.activity.CountInWindow(gctx, userID, category, freshStart, now)
			if err != nil {
				markDegraded(category, err)
				return nil
			}
			mu.Lock()
			freshCounts[category] = n
			mu.Unlock()
			return nil
		})
	}

	g.Go(func() error {
		n, err := a.activity.DistinctActivityLabels(gctx, userID, windowStart, now)
		if err != nil {
			// Understates diversity for this cycle only; counts are
			// unaffected, so this does not mark any category degraded.
			a.logger.Warn("activity_labels_query_degraded",
				zap.String("user_id", userID.String()),
				zap.Error(err))
			return nil
		}
		mu.Lock()
		uniqueLabels = n
		mu.Unlock()
		return nil
	})

	// Tasks swallow their own errors, so Wait only reflects group context
	// cancellation.
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("snapshot aggregation canceled: %w", err)
	}

	snapshot := &models.ActivitySnapshot{
		UserID:              userID,
		WindowStart:         windowStart,
		WindowEnd:           now,
		Counts:              counts,
		UniqueActivityCount: uniqueLabels,
	}

	for _, category := range models.PointCategories {
		snapshot.PointsLast7Days += counts[category]
	}

	for _, category := range models.AllCategories {
		if counts[category] > 0 {
			snapshot.DataTypesPresent++
		}
		if degraded[category] {
			snapshot.DegradedCategories = append(snapshot.DegradedCategories, category)
		}
	}

	// Health counts as one fresh collection whether steps, workouts, or
	// both saw records.
	if freshCounts[models.CategorySteps] > 0 || freshCounts[models.CategoryWorkouts] > 0 {
		snapshot.FreshCollections++
	}
	if freshCounts[models.CategoryLocations] > 0 {
		snapshot.FreshCollections++
	}
	if freshCounts[models.CategoryVoiceNotes] > 0 {
		snapshot.FreshCollections++
	}

	if len(snapshot.DegradedCategories) > 0 {
		a.logger.Info("snapshot_built_degraded",
			zap.String("user_id", userID.String()),
			zap.Int("points", snapshot.PointsLast7Days),
			zap.Int("degraded_categories", len(snapshot.DegradedCategories)))
	}

	return snapshot, nil
}
