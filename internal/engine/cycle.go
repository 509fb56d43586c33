package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chroniclehq/feedgen/internal/database"
	"github.com/chroniclehq/feedgen/internal/models"
	"github.com/chroniclehq/feedgen/internal/services/generator"
)

// SnapshotBuilder produces the per-user activity snapshot for a cycle.
type SnapshotBuilder interface {
	BuildSnapshot(ctx context.Context, userID uuid.UUID, now time.Time) (*models.ActivitySnapshot, error)
}

// FindingsCollector gathers detector findings for a user and window.
// Implementations degrade unreachable detectors instead of failing.
type FindingsCollector interface {
	Collect(ctx context.Context, userID uuid.UUID, since, until time.Time) *models.DetectorFindings
}

// DefaultGeneratorTimeout bounds a single generation call so one slow type
// cannot stall the whole cycle.
const DefaultGeneratorTimeout = 45 * time.Second

// Orchestrator runs generation cycles end to end. A cycle either completes
// with a full result, including successful zero-post results, or fails as a
// whole when a required store is unreachable. Per-type problems never fail
// the cycle; they become rejection reasons on the result.
type Orchestrator struct {
	snapshots SnapshotBuilder
	detectors FindingsCollector
	admin     database.AdminConfigRepositoryInterface
	prefs     database.PreferenceRepositoryInterface
	cooldowns database.CooldownRepositoryInterface
	generator generator.ContentGenerator
	logger    *zap.Logger

	generatorTimeout time.Duration
}

// NewOrchestrator creates a new cycle orchestrator
func NewOrchestrator(
	snapshots SnapshotBuilder,
	detectors FindingsCollector,
	admin database.AdminConfigRepositoryInterface,
	prefs database.PreferenceRepositoryInterface,
	cooldowns database.CooldownRepositoryInterface,
	contentGenerator generator.ContentGenerator,
	logger *zap.Logger,
	generatorTimeout time.Duration,
) *Orchestrator {
	if generatorTimeout <= 0 {
		generatorTimeout = DefaultGeneratorTimeout
	}
	return &Orchestrator{
		snapshots:        snapshots,
		detectors:        detectors,
		admin:            admin,
		prefs:            prefs,
		cooldowns:        cooldowns,
		generator:        contentGenerator,
		logger:           logger,
		generatorTimeout: generatorTimeout,
	}
}

// RunCycle executes one generation cycle for one user at the given instant.
// Callers are responsible for holding the per-user cycle guard.
func (o *Orchestrator) RunCycle(ctx context.Context, userID uuid.UUID, now time.Time) (*models.CycleResult, error) {
	result := models.NewCycleResult(userID, now)
	ctx = generator.WithCycleID(ctx, result.CycleID.String())

	snapshot, err := o.snapshots.BuildSnapshot(ctx, userID, now)
	if err != nil {
		return nil, fmt.Errorf("failed to build activity snapshot: %w", err)
	}
	result.DegradedCategories = snapshot.DegradedCategories

	result.Scores = ComputeScores(snapshot)
	result.DesiredCount = PostCount(result.Scores.Total)

	if result.DesiredCount == 0 {
		result.CompletedAt = time.Now().UTC()
		o.logger.Info("cycle_completed_quiet",
			zap.String("cycle_id", result.CycleID.String()),
			zap.String("user_id", userID.String()),
			zap.Float64("total_score", result.Scores.Total))
		return result, nil
	}

	// The three stores below are required reads: without them the filters
	// cannot honor admin or user intent, so their failure fails the cycle.
	adminEnabled, err := o.admin.GetEnabledMap(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read admin type config: %w", err)
	}
	userEnabled, err := o.prefs.GetEnabledMap(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read user preferences: %w", err)
	}
	cooldowns, err := o.cooldowns.GetForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cooldowns: %w", err)
	}

	findings := o.detectors.Collect(ctx, userID, snapshot.WindowStart, now)

	input := &EligibilityInput{
		Now:          now,
		AdminEnabled: adminEnabled,
		UserEnabled:  userEnabled,
		Cooldowns:    cooldowns,
		Snapshot:     snapshot,
		Findings:     findings,
	}

	candidates := o.collectCandidates(ctx, result, input)

	kept, dropped := SplitByConfidence(candidates)
	for _, c := range dropped {
		result.Reject(c.Type, models.RejectionLowConfidence)
	}

	selected, cut := SelectTop(Rank(kept), result.DesiredCount)
	for _, c := range cut {
		result.Reject(c.Type, models.RejectionRankCutoff)
	}
	result.Selected = selected

	// Stamps are written only for selected types, with compare-and-swap
	// against the values read at cycle start. A conflict means another
	// cycle slipped past the guard; surface it rather than double-post.
	for _, c := range selected {
		var expected *time.Time
		if lastAt, ok := cooldowns[c.Type]; ok {
			expected = &lastAt
		}
		if err := o.cooldowns.StampIfUnchanged(ctx, userID, c.Type, expected, now); err != nil {
			o.logger.Error("cooldown_stamp_failed",
				zap.String("cycle_id", result.CycleID.String()),
				zap.String("user_id", userID.String()),
				zap.String("content_type", string(c.Type)),
				zap.Error(err))
			return nil, fmt.Errorf("failed to stamp cooldown for %s: %w", c.Type, err)
		}
	}

	result.CompletedAt = time.Now().UTC()
	o.logger.Info("cycle_completed",
		zap.String("cycle_id", result.CycleID.String()),
		zap.String("user_id", userID.String()),
		zap.Float64("total_score", result.Scores.Total),
		zap.Int("desired", result.DesiredCount),
		zap.Int("considered", len(result.ConsideredTypes)),
		zap.Int("selected", len(result.Selected)),
		zap.Int("degraded_categories", len(result.DegradedCategories)))

	return result, nil
}

// collectCandidates walks the catalog in declared order, filtering and
// generating until the buffer holds desired+slack candidates or the catalog
// is exhausted. Generation failures reject the type and move on; a quota
// error additionally stops further generation for the cycle since every
// subsequent call would fail the same way.
func (o *Orchestrator) collectCandidates(ctx context.Context, result *models.CycleResult, input *EligibilityInput) []models.Candidate {
	target := result.DesiredCount + BufferSlack
	genInput := &generator.UserContext{
		UserID:   result.UserID,
		Snapshot: input.Snapshot,
		Findings: input.Findings,
	}

	var candidates []models.Candidate
	quotaExhausted := false

	for _, def := range models.ContentTypeDefinitions() {
		if len(candidates) >= target {
			break
		}
		result.ConsideredTypes = append(result.ConsideredTypes, def.Type)

		if reason, ok := Evaluate(def, input); !ok {
			result.Reject(def.Type, reason)
			continue
		}

		if quotaExhausted {
			result.Reject(def.Type, models.RejectionGenerationFailed)
			continue
		}

		genCtx, cancel := context.WithTimeout(ctx, o.generatorTimeout)
		candidate, err := o.generator.GeneratePost(genCtx, def.Type, genInput)
		cancel()
		if err != nil {
			result.Reject(def.Type, models.RejectionGenerationFailed)
			o.logger.Warn("candidate_generation_failed",
				zap.String("cycle_id", result.CycleID.String()),
				zap.String("user_id", result.UserID.String()),
				zap.String("content_type", string(def.Type)),
				zap.Error(err))
			if generator.IsQuotaError(err) {
				quotaExhausted = true
				o.logger.Warn("generation_quota_exhausted",
					zap.String("cycle_id", result.CycleID.String()),
					zap.String("user_id", result.UserID.String()))
			}
			continue
		}

		candidates = append(candidates, *candidate)
	}

	return candidates
}
