package models

import (
	"time"

	"github.com/google/uuid"
)

// CooldownStamp records when a content type last generated a selected post
// for a user. A missing stamp means the type has never generated and its
// cooldown counts as elapsed.
type CooldownStamp struct {
	UserID          uuid.UUID   `json:"user_id"`
	Type            ContentType `json:"type"`
	LastGeneratedAt time.Time   `json:"last_generated_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Elapsed reports whether the type's cooldown window has fully passed at the
// given instant. The exact boundary counts as elapsed.
func (c *CooldownStamp) Elapsed(now time.Time) bool {
	days := CooldownDaysFor(c.Type)
	return !now.Before(c.LastGeneratedAt.Add(time.Duration(days) * 24 * time.Hour))
}

// NextEligibleAt returns the first instant at which the cooldown no longer
// blocks generation.
func (c *CooldownStamp) NextEligibleAt() time.Time {
	days := CooldownDaysFor(c.Type)
	return c.LastGeneratedAt.Add(time.Duration(days) * 24 * time.Hour)
}
