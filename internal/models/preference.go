package models

import (
	"time"

	"github.com/google/uuid"
)

// TypePreference is one user's opt-in state for one content type. Absence of
// a row means the user has not opted out; the filter treats missing as
// enabled.
type TypePreference struct {
	UserID    uuid.UUID   `json:"user_id"`
	Type      ContentType `json:"type"`
	Enabled   bool        `json:"enabled"`
	UpdatedAt time.Time   `json:"updated_at"`
}
