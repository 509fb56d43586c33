package database

import (
	"context"
	"fmt"
	"time"

	"github.com/chroniclehq/feedgen/internal/models"
)

// AdminConfigRepository handles the deployment-wide content type toggles
type AdminConfigRepository struct {
	db *DB
}

// NewAdminConfigRepository creates a new admin config repository
func NewAdminConfigRepository(db *DB) *AdminConfigRepository {
	return &AdminConfigRepository{db: db}
}

// GetAll returns every stored admin toggle ordered by content type
func (r *AdminConfigRepository) GetAll(ctx context.Context) ([]models.AdminTypeConfig, error) {
	query := `
		SELECT content_type, enabled, updated_at, COALESCE(updated_by, '')
		  FROM admin_type_configs
		 ORDER BY content_type`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query admin type configs: %w", err)
	}
	defer rows.Close()

	var configs []models.AdminTypeConfig
	for rows.Next() {
		var cfg models.AdminTypeConfig
		if err := rows.Scan(&cfg.Type, &cfg.Enabled, &cfg.UpdatedAt, &cfg.UpdatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan admin type config: %w", err)
		}
		configs = append(configs, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate admin type configs: %w", err)
	}

	return configs, nil
}

// GetEnabledMap returns the stored toggles keyed by content type. Types with
// no stored row are absent from the map; callers treat absence as enabled.
func (r *AdminConfigRepository) GetEnabledMap(ctx context.Context) (map[models.ContentType]bool, error) {
	configs, err := r.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	enabled := make(map[models.ContentType]bool, len(configs))
	for _, cfg := range configs {
		enabled[cfg.Type] = cfg.Enabled
	}
	return enabled, nil
}

// SetEnabled upserts the toggle for one content type
func (r *AdminConfigRepository) SetEnabled(ctx context.Context, contentType models.ContentType, enabled bool, updatedBy string) error {
	query := `
		INSERT INTO admin_type_configs (content_type, enabled, updated_at, updated_by)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (content_type)
		DO UPDATE SET enabled = EXCLUDED.enabled,
		              updated_at = EXCLUDED.updated_at,
		              updated_by = EXCLUDED.updated_by`

	_, err := r.db.ExecContext(ctx, query, contentType, enabled, time.Now().UTC(), updatedBy)
	if err != nil {
		return fmt.Errorf("failed to upsert admin type config for %s: %w", contentType, err)
	}
	return nil
}
