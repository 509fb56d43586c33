package generator

import (
	"context"

	"github.com/google/uuid"

	"github.com/chroniclehq/feedgen/internal/models"
)

// UserContext carries the per-user signals a generation prompt draws from.
type UserContext struct {
	UserID   uuid.UUID
	Snapshot *models.ActivitySnapshot
	Findings *models.DetectorFindings
}

// ContentGenerator produces one feed post candidate for one content type.
// A failed call means that type simply contributes nothing this cycle; the
// pipeline never retries within a cycle.
type ContentGenerator interface {
	GeneratePost(ctx context.Context, contentType models.ContentType, input *UserContext) (*models.Candidate, error)
}
