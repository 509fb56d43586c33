package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/feedgen/internal/models"
)

// ErrUserNotFound is returned when a feed user row does not exist.
var ErrUserNotFound = errors.New("feed user not found")

// UserRepository handles the feed_users registry: the set of users the daily
// scheduler fans generation cycles out to.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID retrieves a feed user by ID
func (r *UserRepository) GetByID(ctx context.Context, userID uuid.UUID) (*models.FeedUser, error) {
	user := &models.FeedUser{}
	query := `
		SELECT user_id, last_seen_at, generation_paused, created_at, updated_at
		FROM feed_users
		WHERE user_id = $1
	`

	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&user.UserID,
		&user.LastSeenAt,
		&user.GenerationPaused,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feed user: %w", err)
	}

	return user, nil
}

// Touch records that a user's data pipeline reported activity, creating the
// registry row on first sight.
func (r *UserRepository) Touch(ctx context.Context, userID uuid.UUID) error {
	query := `
		INSERT INTO feed_users (user_id, last_seen_at, generation_paused, created_at, updated_at)
		VALUES ($1, $2, false, $2, $2)
		ON CONFLICT (user_id) DO UPDATE
		SET last_seen_at = EXCLUDED.last_seen_at,
		    updated_at = EXCLUDED.updated_at
	`

	now := time.Now()
	if _, err := r.db.ExecContext(ctx, query, userID, now); err != nil {
		return fmt.Errorf("failed to touch feed user: %w", err)
	}

	return nil
}

// SetGenerationPaused sets the per-user pause flag the scheduler honors.
func (r *UserRepository) SetGenerationPaused(ctx context.Context, userID uuid.UUID, paused bool) error {
	query := `
		UPDATE feed_users
		SET generation_paused = $1, updated_at = $2
		WHERE user_id = $3
	`

	result, err := r.db.ExecContext(ctx, query, paused, time.Now(), userID)
	if err != nil {
		return fmt.Errorf("failed to set generation paused: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ListActiveSince returns the IDs of unpaused users seen after the cutoff.
// These are the users the scheduler enqueues daily cycles for; users whose
// pipelines have gone quiet drop out without any explicit deactivation.
func (r *UserRepository) ListActiveSince(ctx context.Context, cutoff time.Time) ([]uuid.UUID, error) {
	query := `
		SELECT user_id
		FROM feed_users
		WHERE generation_paused = false
		  AND last_seen_at >= $1
		ORDER BY user_id
	`

	rows, err := r.db.QueryContext(ctx, query, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to query active users: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var userIDs []uuid.UUID
	for rows.Next() {
		var userID uuid.UUID
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("failed to scan user ID: %w", err)
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating users: %w", err)
	}

	return userIDs, nil
}
