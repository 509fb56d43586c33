package models

import "time"

// AdminTypeConfig is the deployment-wide kill switch for one content type.
// A type with no stored row is treated as enabled.
type AdminTypeConfig struct {
	Type      ContentType `json:"type"`
	Enabled   bool        `json:"enabled"`
	UpdatedAt time.Time   `json:"updated_at"`
	UpdatedBy string      `json:"updated_by,omitempty"`
}
