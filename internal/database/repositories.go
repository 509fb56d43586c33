package database

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/feedgen/internal/models"
)

// ActivityRepositoryInterface defines the read operations over the raw
// activity collections. Interfaces here enable mock implementations in the
// engine and signals tests.
type ActivityRepositoryInterface interface {
	CountInWindow(ctx context.Context, userID uuid.UUID, category models.ActivityCategory, from, to time.Time) (int, error)
	DistinctActivityLabels(ctx context.Context, userID uuid.UUID, from, to time.Time) (int, error)
}

// AdminConfigRepositoryInterface defines the interface for admin toggle operations
type AdminConfigRepositoryInterface interface {
	GetAll(ctx context.Context) ([]models.AdminTypeConfig, error)
	GetEnabledMap(ctx context.Context) (map[models.ContentType]bool, error)
	SetEnabled(ctx context.Context, contentType models.ContentType, enabled bool, updatedBy string) error
}

// PreferenceRepositoryInterface defines the interface for user preference operations
type PreferenceRepositoryInterface interface {
	GetForUser(ctx context.Context, userID uuid.UUID) ([]models.TypePreference, error)
	GetEnabledMap(ctx context.Context, userID uuid.UUID) (map[models.ContentType]bool, error)
	Set(ctx context.Context, userID uuid.UUID, contentType models.ContentType, enabled bool) error
}

// CooldownRepositoryInterface defines the interface for cooldown stamp operations
type CooldownRepositoryInterface interface {
	GetForUser(ctx context.Context, userID uuid.UUID) (map[models.ContentType]time.Time, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]models.CooldownStamp, error)
	StampIfUnchanged(ctx context.Context, userID uuid.UUID, contentType models.ContentType, expected *time.Time, generatedAt time.Time) error
	Clear(ctx context.Context, userID uuid.UUID, contentType models.ContentType) error
}

// UserRepositoryInterface defines the interface for the feed user registry
type UserRepositoryInterface interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.FeedUser, error)
	Touch(ctx context.Context, userID uuid.UUID) error
	SetGenerationPaused(ctx context.Context, userID uuid.UUID, paused bool) error
	ListActiveSince(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error)
}

// Ensure concrete types implement the interfaces
var (
	_ ActivityRepositoryInterface    = (*ActivityRepository)(nil)
	_ AdminConfigRepositoryInterface = (*AdminConfigRepository)(nil)
	_ PreferenceRepositoryInterface  = (*PreferenceRepository)(nil)
	_ CooldownRepositoryInterface    = (*CooldownRepository)(nil)
	_ UserRepositoryInterface        = (*UserRepository)(nil)
)
