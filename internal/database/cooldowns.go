package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/chroniclehq/feedgen/internal/models"
)

// ErrCooldownConflict is returned when a stamp's expected previous value no
// longer matches the stored row, meaning another cycle stamped the type
// between this cycle's read and write.
var ErrCooldownConflict = errors.New("cooldown stamp conflict: row changed since read")

// CooldownRepository handles per-user, per-type generation stamps
type CooldownRepository struct {
	db *DB
}

// NewCooldownRepository creates a new cooldown repository
func NewCooldownRepository(db *DB) *CooldownRepository {
	return &CooldownRepository{db: db}
}

// GetForUser returns a user's stamps keyed by content type. Types that never
// generated are absent from the map.
func (r *CooldownRepository) GetForUser(ctx context.Context, userID uuid.UUID) (map[models.ContentType]time.Time, error) {
	query := `
		SELECT content_type, last_generated_at
		  FROM content_cooldowns
		 WHERE user_id = $1`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cooldowns: %w", err)
	}
	defer rows.Close()

	stamps := make(map[models.ContentType]time.Time)
	for rows.Next() {
		var contentType models.ContentType
		var lastAt time.Time
		if err := rows.Scan(&contentType, &lastAt); err != nil {
			return nil, fmt.Errorf("failed to scan cooldown: %w", err)
		}
		stamps[contentType] = lastAt
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cooldowns: %w", err)
	}

	return stamps, nil
}

// ListForUser returns a user's stamps as full records ordered by content type
func (r *CooldownRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]models.CooldownStamp, error) {
	query := `
		SELECT user_id, content_type, last_generated_at, updated_at
		  FROM content_cooldowns
		 WHERE user_id = $1
		 ORDER BY content_type`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query cooldowns: %w", err)
	}
	defer rows.Close()

	var stamps []models.CooldownStamp
	for rows.Next() {
		var stamp models.CooldownStamp
		if err := rows.Scan(&stamp.UserID, &stamp.Type, &stamp.LastGeneratedAt, &stamp.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan cooldown: %w", err)
		}
		stamps = append(stamps, stamp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate cooldowns: %w", err)
	}

	return stamps, nil
}

// StampIfUnchanged writes a new stamp only if the stored value still matches
// what the calling cycle read at its start. expected is nil when no stamp
// existed at read time. Returns ErrCooldownConflict when the row moved, which
// indicates two cycles overlapped despite the cycle guard.
func (r *CooldownRepository) StampIfUnchanged(ctx context.Context, userID uuid.UUID, contentType models.ContentType, expected *time.Time, generatedAt time.Time) error {
	var result int64

	if expected == nil {
		query := `
			INSERT INTO content_cooldowns (user_id, content_type, last_generated_at, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id, content_type) DO NOTHING`

		res, err := r.db.ExecContext(ctx, query, userID, contentType, generatedAt, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to insert cooldown stamp for %s: %w", contentType, err)
		}
		result, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read stamp insert result: %w", err)
		}
	} else {
		query := `
			UPDATE content_cooldowns
			   SET last_generated_at = $3, updated_at = $4
			 WHERE user_id = $1 AND content_type = $2 AND last_generated_at = $5`

		res, err := r.db.ExecContext(ctx, query, userID, contentType, generatedAt, time.Now().UTC(), *expected)
		if err != nil {
			return fmt.Errorf("failed to update cooldown stamp for %s: %w", contentType, err)
		}
		result, err = res.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read stamp update result: %w", err)
		}
	}

	if result == 0 {
		return fmt.Errorf("stamping %s for user %s: %w", contentType, userID, ErrCooldownConflict)
	}
	return nil
}

// Clear removes one stamp, making the type immediately eligible again
func (r *CooldownRepository) Clear(ctx context.Context, userID uuid.UUID, contentType models.ContentType) error {
	query := `DELETE FROM content_cooldowns WHERE user_id = $1 AND content_type = $2`

	if _, err := r.db.ExecContext(ctx, query, userID, contentType); err != nil {
		return fmt.Errorf("failed to clear cooldown for %s: %w", contentType, err)
	}
	return nil
}

// PruneOlderThan deletes stamps older than the cutoff. Rows past the longest
// cooldown in the catalog no longer affect eligibility, so they are safe to
// drop; the scheduler calls this on its daily pass.
func (r *CooldownRepository) PruneOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `DELETE FROM content_cooldowns WHERE last_generated_at < $1`

	res, err := r.db.ExecContext(ctx, query, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune cooldowns: %w", err)
	}
	pruned, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read prune result: %w", err)
	}
	return pruned, nil
}
