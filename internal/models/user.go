package models

import (
	"time"

	"github.com/google/uuid"
)

// FeedUser is the scheduler's view of a user: when their data pipeline last
// reported activity and whether daily generation is paused for them. The feed
// application owns the full user record; this table only drives cycle fan-out.
type FeedUser struct {
	UserID           uuid.UUID `json:"user_id"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	GenerationPaused bool      `json:"generation_paused"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
