package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chroniclehq/feedgen/internal/database"
	"github.com/chroniclehq/feedgen/internal/models"
	"github.com/chroniclehq/feedgen/internal/queue"
)

const (
	// defaultScheduleHourUTC is the daily slot for scheduled cycles. Early
	// morning UTC so posts land before most users open their feed.
	defaultScheduleHourUTC = 6

	// defaultActivityWindow bounds how recently a user's pipeline must have
	// reported data for them to get a scheduled cycle. Matches the engine's
	// seven-day lookback: beyond it every signal scores zero anyway.
	defaultActivityWindow = 7 * 24 * time.Hour
)

// CooldownPruner deletes cooldown stamps older than a cutoff.
// *database.CooldownRepository implements it.
type CooldownPruner interface {
	PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// CycleScheduler enqueues one generation-cycle job per active user for the
// next daily slot and prunes cooldown rows too old to affect eligibility.
type CycleScheduler struct {
	jobQueue       queue.JobQueue
	users          database.UserRepositoryInterface
	cooldowns      CooldownPruner
	logger         *zap.Logger
	scheduleHour   int
	activityWindow time.Duration
}

// NewCycleScheduler creates a new cycle scheduler. cooldowns may be nil to
// skip pruning.
func NewCycleScheduler(
	jobQueue queue.JobQueue,
	users database.UserRepositoryInterface,
	cooldowns CooldownPruner,
	logger *zap.Logger,
) *CycleScheduler {
	return &CycleScheduler{
		jobQueue:       jobQueue,
		users:          users,
		cooldowns:      cooldowns,
		logger:         logger,
		scheduleHour:   defaultScheduleHourUTC,
		activityWindow: defaultActivityWindow,
	}
}

// Run performs one scheduling pass immediately and then one per day until the
// context is cancelled. A restarted worker may re-schedule the same slot;
// the per-user cycle guard and the cooldown stamps make the duplicate run a
// near-no-op, so the scheduler does not try to deduplicate.
func (s *CycleScheduler) Run(ctx context.Context) {
	s.pass(ctx)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pass(ctx)
		}
	}
}

func (s *CycleScheduler) pass(ctx context.Context) {
	if err := s.ScheduleDailyCycles(ctx); err != nil {
		s.logger.Error("cycle_scheduling_failed", zap.Error(err))
	}
	if pruned, err := s.PruneStaleCooldowns(ctx); err != nil {
		s.logger.Warn("cooldown_prune_failed", zap.Error(err))
	} else if pruned > 0 {
		s.logger.Info("cooldowns_pruned", zap.Int64("count", pruned))
	}
}

// ScheduleDailyCycles enqueues a generation-cycle job for every unpaused user
// seen within the activity window, delayed to the next daily slot. Jobs
// expire a day after their slot so a backlogged queue cannot deliver stale
// cycles.
func (s *CycleScheduler) ScheduleDailyCycles(ctx context.Context) error {
	now := time.Now().UTC()

	slot := time.Date(now.Year(), now.Month(), now.Day(), s.scheduleHour, 0, 0, 0, time.UTC)
	if now.After(slot) {
		slot = slot.Add(24 * time.Hour)
	}

	userIDs, err := s.users.ListActiveSince(ctx, now.Add(-s.activityWindow))
	if err != nil {
		return fmt.Errorf("failed to list active users: %w", err)
	}

	scheduled := 0
	for _, userID := range userIDs {
		if err := s.enqueueCycleJob(ctx, userID, slot); err != nil {
			s.logger.Warn("cycle_job_schedule_failed",
				zap.String("user_id", userID.String()),
				zap.Time("slot", slot),
				zap.Error(err),
			)
			continue
		}
		scheduled++
	}

	s.logger.Info("cycle_jobs_scheduled",
		zap.Int("user_count", len(userIDs)),
		zap.Int("scheduled", scheduled),
		zap.Time("slot", slot),
	)

	return nil
}

func (s *CycleScheduler) enqueueCycleJob(ctx context.Context, userID uuid.UUID, slot time.Time) error {
	job := queue.NewJob(queue.JobTypeGenerationCycle, userID)
	job.Metadata["trigger"] = "schedule"
	job.NotBefore = &slot

	notAfter := slot.Add(24 * time.Hour)
	job.NotAfter = &notAfter

	if err := s.jobQueue.Enqueue(ctx, job); err != nil {
		return fmt.Errorf("failed to enqueue cycle job: %w", err)
	}

	return nil
}

// PruneStaleCooldowns drops stamps older than the default cooldown, the
// longest window any type can carry. Eligibility treats a missing row and a
// long-elapsed row identically, so pruning never changes filter outcomes.
func (s *CycleScheduler) PruneStaleCooldowns(ctx context.Context) (int64, error) {
	if s.cooldowns == nil {
		return 0, nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -models.DefaultCooldownDays)
	return s.cooldowns.PruneOlderThan(ctx, cutoff)
}
