package models

import (
	"time"

	"github.com/google/uuid"
)

// CycleResult is the full accounting of one generation cycle: what was
// scored, which types were considered, what was selected, and why everything
// else was not. A result with zero selected candidates is still a successful
// cycle.
type CycleResult struct {
	CycleID     uuid.UUID `json:"cycle_id"`
	UserID      uuid.UUID `json:"user_id"`
	StartedAt   time.Time `json:"started_at"`
	CompletedAt time.Time `json:"completed_at"`

	Scores       FrequencyScores `json:"scores"`
	DesiredCount int             `json:"desired_count"`

	// ConsideredTypes lists the content types the pipeline evaluated, in
	// declared order. Types after an early stop do not appear.
	ConsideredTypes []ContentType `json:"considered_types"`

	Selected []Candidate `json:"selected"`

	// Rejections maps each considered-but-unselected type to the reason it
	// was dropped.
	Rejections map[ContentType]RejectionReason `json:"rejections,omitempty"`

	// DegradedCategories mirrors the snapshot's degraded list so consumers
	// can tell a quiet week from a half-blind one.
	DegradedCategories []ActivityCategory `json:"degraded_categories,omitempty"`
}

// NewCycleResult seeds a result for a cycle starting now.
func NewCycleResult(userID uuid.UUID, startedAt time.Time) *CycleResult {
	return &CycleResult{
		CycleID:    uuid.New(),
		UserID:     userID,
		StartedAt:  startedAt,
		Rejections: make(map[ContentType]RejectionReason),
	}
}

// Reject records the rejection reason for a content type. The first reason
// wins; later stages never overwrite an earlier one.
func (r *CycleResult) Reject(ct ContentType, reason RejectionReason) {
	if r.Rejections == nil {
		r.Rejections = make(map[ContentType]RejectionReason)
	}
	if _, exists := r.Rejections[ct]; !exists {
		r.Rejections[ct] = reason
	}
}

// SelectedTypes returns the content types of the selected candidates.
func (r *CycleResult) SelectedTypes() []ContentType {
	types := make([]ContentType, len(r.Selected))
	for i, c := range r.Selected {
		types[i] = c.Type
	}
	return types
}
