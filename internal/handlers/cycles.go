package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/chroniclehq/feedgen/internal/database"
	"github.com/chroniclehq/feedgen/internal/lock"
	"github.com/chroniclehq/feedgen/internal/models"
	"github.com/chroniclehq/feedgen/internal/queue"
)

// CycleEngine runs one generation cycle for one user.
type CycleEngine interface {
	RunCycle(ctx context.Context, userID uuid.UUID, now time.Time) (*models.CycleResult, error)
}

// CycleHandler handles generation cycle requests
type CycleHandler struct {
	engine    CycleEngine
	guard     lock.CycleGuard
	jobQueue  queue.JobQueue
	cooldowns database.CooldownRepositoryInterface
	results   queue.ResultPublisher
	logger    *zap.Logger
}

// NewCycleHandler creates a new cycle handler. results may be nil when no
// downstream consumer wants cycle reports.
func NewCycleHandler(
	engine CycleEngine,
	guard lock.CycleGuard,
	jobQueue queue.JobQueue,
	cooldowns database.CooldownRepositoryInterface,
	results queue.ResultPublisher,
	logger *zap.Logger,
) *CycleHandler {
	return &CycleHandler{
		engine:    engine,
		guard:     guard,
		jobQueue:  jobQueue,
		cooldowns: cooldowns,
		results:   results,
		logger:    logger,
	}
}

// RegisterRoutes registers cycle routes on the given router
// The router should already have the /api/v1 prefix
func (h *CycleHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/users/{user_id}/cycles", h.RunCycle).Methods("POST")
	r.HandleFunc("/users/{user_id}/cycles/enqueue", h.EnqueueCycle).Methods("POST")
	r.HandleFunc("/users/{user_id}/cooldowns", h.ListCooldowns).Methods("GET")
}

// EnqueueCycleResponse represents the async enqueue response
type EnqueueCycleResponse struct {
	JobID  uuid.UUID `json:"job_id"`
	UserID uuid.UUID `json:"user_id"`
	Queued bool      `json:"queued"`
}

// CooldownEntry is one cooldown stamp with its derived eligibility
type CooldownEntry struct {
	ContentType     models.ContentType `json:"content_type"`
	CooldownDays    int                `json:"cooldown_days"`
	LastGeneratedAt time.Time          `json:"last_generated_at"`
	NextEligibleAt  time.Time          `json:"next_eligible_at"`
	Elapsed         bool               `json:"elapsed"`
}

// ListCooldownsResponse represents the cooldown inspection response
type ListCooldownsResponse struct {
	UserID    uuid.UUID       `json:"user_id"`
	Cooldowns []CooldownEntry `json:"cooldowns"`
}

// RunCycle runs one generation cycle synchronously and returns its result
func (h *CycleHandler) RunCycle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := uuid.Parse(vars["user_id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user ID")
		return
	}

	ctx := r.Context()

	release, err := h.guard.Acquire(ctx, userID)
	if err != nil {
		if errors.Is(err, lock.ErrCycleInFlight) {
			respondJSONError(w, http.StatusConflict, "Conflict", "A generation cycle is already running for this user")
			return
		}
		h.logger.Error("cycle_guard_acquire_failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to acquire cycle guard")
		return
	}
	defer release()

	result, err := h.engine.RunCycle(ctx, userID, time.Now().UTC())
	if err != nil {
		h.logger.Error("cycle_request_failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to run generation cycle")
		return
	}

	// Best effort; the response already carries the result
	if h.results != nil {
		if publishErr := h.results.PublishCycleResult(ctx, result); publishErr != nil {
			h.logger.Warn("cycle_result_publish_failed",
				zap.String("cycle_id", result.CycleID.String()),
				zap.String("user_id", userID.String()),
				zap.Error(publishErr))
		}
	}

	respondJSON(w, http.StatusOK, result)
}

// EnqueueCycle schedules a generation cycle to run on the worker pool
func (h *CycleHandler) EnqueueCycle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := uuid.Parse(vars["user_id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user ID")
		return
	}

	job := queue.NewJob(queue.JobTypeGenerationCycle, userID)
	job.Metadata["trigger"] = "api"

	if err := h.jobQueue.Enqueue(r.Context(), job); err != nil {
		h.logger.Error("cycle_enqueue_failed",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		respondJSONError(w, http.StatusServiceUnavailable, "Service Unavailable", "Failed to enqueue generation cycle")
		return
	}

	respondJSON(w, http.StatusAccepted, EnqueueCycleResponse{
		JobID:  job.ID,
		UserID: userID,
		Queued: true,
	})
}

// ListCooldowns returns the user's cooldown stamps with derived eligibility
func (h *CycleHandler) ListCooldowns(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := uuid.Parse(vars["user_id"])
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid user ID")
		return
	}

	stamps, err := h.cooldowns.ListForUser(r.Context(), userID)
	if err != nil {
		respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", "Failed to retrieve cooldowns")
		return
	}

	now := time.Now().UTC()
	entries := make([]CooldownEntry, 0, len(stamps))
	for _, s := range stamps {
		entries = append(entries, CooldownEntry{
			ContentType:     s.Type,
			CooldownDays:    models.CooldownDaysFor(s.Type),
			LastGeneratedAt: s.LastGeneratedAt,
			NextEligibleAt:  s.NextEligibleAt(),
			Elapsed:         s.Elapsed(now),
		})
	}

	respondJSON(w, http.StatusOK, ListCooldownsResponse{
		UserID:    userID,
		Cooldowns: entries,
	})
}
