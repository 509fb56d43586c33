package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chroniclehq/feedgen/internal/lock"
	"github.com/chroniclehq/feedgen/internal/models"
	"github.com/chroniclehq/feedgen/internal/queue"
	"github.com/chroniclehq/feedgen/internal/services/generator"
)

// CycleEngine runs one generation cycle for one user.
type CycleEngine interface {
	RunCycle(ctx context.Context, userID uuid.UUID, now time.Time) (*models.CycleResult, error)
}

// guardRetryDelay is how long a deferred job waits when another cycle holds
// the user's guard. Matches the default guard TTL so the retry lands after
// the prior holder has expired even if it never released.
const guardRetryDelay = 2 * time.Minute

// CycleRunner processes generation cycle jobs from the queue.
type CycleRunner struct {
	engine   CycleEngine
	guard    lock.CycleGuard
	jobQueue queue.JobQueue // For re-enqueueing jobs with delays
	results  queue.ResultPublisher
	logger   *zap.Logger
}

// NewCycleRunner creates a new cycle runner. results may be nil when no
// downstream consumer wants cycle reports.
func NewCycleRunner(
	engine CycleEngine,
	guard lock.CycleGuard,
	jobQueue queue.JobQueue,
	results queue.ResultPublisher,
	logger *zap.Logger,
) *CycleRunner {
	return &CycleRunner{
		engine:   engine,
		guard:    guard,
		jobQueue: jobQueue,
		results:  results,
		logger:   logger,
	}
}

// ProcessGenerationCycleJob runs one generation cycle for the job's user
// under the per-user guard.
func (r *CycleRunner) ProcessGenerationCycleJob(ctx context.Context, job *queue.Job) error {
	release, err := r.guard.Acquire(ctx, job.UserID)
	if err != nil {
		if errors.Is(err, lock.ErrCycleInFlight) {
			return err
		}
		return fmt.Errorf("failed to acquire cycle guard: %w", err)
	}
	defer release()

	result, err := r.engine.RunCycle(ctx, job.UserID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("generation cycle failed: %w", err)
	}

	r.publishResult(ctx, result)
	return nil
}

// publishResult reports a completed cycle downstream. The cooldown stamps are
// already durable at this point, so a failed publish is logged, not returned;
// returning it would re-run a cycle that already happened.
func (r *CycleRunner) publishResult(ctx context.Context, result *models.CycleResult) {
	if r.results == nil {
		return
	}
	if err := r.results.PublishCycleResult(ctx, result); err != nil {
		r.logger.Warn("cycle_result_publish_failed",
			zap.String("cycle_id", result.CycleID.String()),
			zap.String("user_id", result.UserID.String()),
			zap.Error(err))
	}
}

// ProcessJob processes a job based on its type
func (r *CycleRunner) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if job.IsExpired() {
		r.logger.Warn("job_expired",
			zap.String("job_id", job.ID.String()),
			zap.String("user_id", job.UserID.String()),
			zap.Timep("not_after", job.NotAfter))
		if nackErr := msg.Nack(false); nackErr != nil {
			r.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return nil
	}

	// Respect NotBefore when the broker delivered early (delayed exchange
	// plugin missing)
	if !job.ShouldProcess() {
		r.logger.Debug("job_not_ready",
			zap.String("job_id", job.ID.String()),
			zap.Timep("not_before", job.NotBefore))
		return r.requeueAt(ctx, msg, job, *job.NotBefore, job.RetryCount)
	}

	switch job.Type {
	case queue.JobTypeGenerationCycle:
		err := r.ProcessGenerationCycleJob(ctx, job)
		if errors.Is(err, lock.ErrCycleInFlight) {
			// Contention, not failure; the retry count stays put
			r.logger.Info("cycle_guard_busy",
				zap.String("job_id", job.ID.String()),
				zap.String("user_id", job.UserID.String()))
			return r.requeueAt(ctx, msg, job, time.Now().Add(guardRetryDelay), job.RetryCount)
		}
		if err != nil {
			return r.handleJobError(ctx, msg, job, err)
		}
		if ackErr := msg.Ack(); ackErr != nil {
			return fmt.Errorf("failed to ack job: %w", ackErr)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			r.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError handles errors from job processing with retry logic keyed to
// the kind of failure.
func (r *CycleRunner) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, jobErr error) error {
	// Quota exhaustion recovers on the provider's schedule, not ours; park
	// the job past the reset window instead of burning retries toward the DLQ
	if generator.IsQuotaError(jobErr) {
		notBefore := time.Now().Add(generator.GetRetryDelay(jobErr, job.RetryCount))
		r.logger.Warn("job_quota_backoff",
			zap.String("job_id", job.ID.String()),
			zap.String("user_id", job.UserID.String()),
			zap.Time("not_before", notBefore),
			zap.Error(jobErr))
		return r.requeueAt(ctx, msg, job, notBefore, job.RetryCount)
	}

	if job.CanRetry() {
		delay := generator.GetRetryDelay(jobErr, job.RetryCount)
		notBefore := time.Now().Add(delay)
		r.logger.Warn("job_retry_scheduled",
			zap.String("job_id", job.ID.String()),
			zap.String("user_id", job.UserID.String()),
			zap.Int("attempt", job.RetryCount+1),
			zap.Int("max_retries", job.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(jobErr))
		return r.requeueAt(ctx, msg, job, notBefore, job.RetryCount+1)
	}

	// Max retries exceeded, send to DLQ
	r.logger.Error("job_sent_to_dlq",
		zap.String("job_id", job.ID.String()),
		zap.String("user_id", job.UserID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Error(jobErr))
	if nackErr := msg.Nack(false); nackErr != nil {
		r.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
	}
	return fmt.Errorf("job failed (max retries): %w", jobErr)
}

// requeueAt publishes a copy of the job scheduled for notBefore, then acks
// the original delivery. If the enqueue fails the original is nack-requeued
// so the job is never lost.
func (r *CycleRunner) requeueAt(ctx context.Context, msg queue.MessageInterface, job *queue.Job, notBefore time.Time, retryCount int) error {
	requeued := &queue.Job{
		ID:         job.ID,
		Type:       job.Type,
		UserID:     job.UserID,
		NotBefore:  &notBefore,
		NotAfter:   job.NotAfter,
		Metadata:   job.Metadata,
		CreatedAt:  job.CreatedAt,
		RetryCount: retryCount,
		MaxRetries: job.MaxRetries,
	}

	if enqueueErr := r.jobQueue.Enqueue(ctx, requeued); enqueueErr != nil {
		if nackErr := msg.Nack(true); nackErr != nil {
			r.logger.Warn("job_nack_failed", zap.String("job_id", job.ID.String()), zap.Error(nackErr))
		}
		return fmt.Errorf("failed to re-enqueue job: %w", enqueueErr)
	}

	if ackErr := msg.Ack(); ackErr != nil {
		// A failed ack means redelivery; the guard and the stamp CAS absorb
		// the duplicate
		r.logger.Warn("job_ack_failed", zap.String("job_id", job.ID.String()), zap.Error(ackErr))
	}
	return nil
}
