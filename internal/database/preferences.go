package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/feedgen/internal/models"
)

// PreferenceRepository handles per-user content type opt-outs
type PreferenceRepository struct {
	db *DB
}

// NewPreferenceRepository creates a new preference repository
func NewPreferenceRepository(db *DB) *PreferenceRepository {
	return &PreferenceRepository{db: db}
}

// GetForUser returns a user's stored preferences ordered by content type
func (r *PreferenceRepository) GetForUser(ctx context.Context, userID uuid.UUID) ([]models.TypePreference, error) {
	query := `
		SELECT user_id, content_type, enabled, updated_at
		  FROM user_type_preferences
		 WHERE user_id = $1
		 ORDER BY content_type`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query user type preferences: %w", err)
	}
	defer rows.Close()

	var prefs []models.TypePreference
	for rows.Next() {
		var pref models.TypePreference
		if err := rows.Scan(&pref.UserID, &pref.Type, &pref.Enabled, &pref.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user type preference: %w", err)
		}
		prefs = append(prefs, pref)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate user type preferences: %w", err)
	}

	return prefs, nil
}

// GetEnabledMap returns a user's stored preferences keyed by content type.
// Types the user never touched are absent; callers treat absence as enabled.
func (r *PreferenceRepository) GetEnabledMap(ctx context.Context, userID uuid.UUID) (map[models.ContentType]bool, error) {
	prefs, err := r.GetForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	enabled := make(map[models.ContentType]bool, len(prefs))
	for _, pref := range prefs {
		enabled[pref.Type] = pref.Enabled
	}
	return enabled, nil
}

// Set upserts one user preference
func (r *PreferenceRepository) Set(ctx context.Context, userID uuid.UUID, contentType models.ContentType, enabled bool) error {
	query := `
		INSERT INTO user_type_preferences (user_id, content_type, enabled, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id, content_type)
		DO UPDATE SET enabled = EXCLUDED.enabled,
		              updated_at = EXCLUDED.updated_at`

	_, err := r.db.ExecContext(ctx, query, userID, contentType, enabled, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to upsert preference for %s: %w", contentType, err)
	}
	return nil
}
