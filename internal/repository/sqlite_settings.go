package repository

import (
	"context"
	"fmt"

	"github.com/alexanderramin/waypoint/internal/db"
	"github.com/alexanderramin/waypoint/internal/domain"
)

// SQLiteSettingsRepo stores global feature master switches.
type SQLiteSettingsRepo struct {
	db db.DBTX
}

func NewSQLiteSettingsRepo(db db.DBTX) *SQLiteSettingsRepo {
	return &SQLiteSettingsRepo{db: db}
}

func (r *SQLiteSettingsRepo) Get(ctx context.Context) (*domain.GlobalSettings, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, enabled FROM global_settings`)
	if err != nil {
		return nil, fmt.Errorf("reading global settings: %w", err)
	}
	defer rows.Close()

	s := &domain.GlobalSettings{Flags: make(map[string]bool)}
	for rows.Next() {
		var key string
		var enabled int
		if err := rows.Scan(&key, &enabled); err != nil {
			return nil, fmt.Errorf("scanning global setting: %w", err)
		}
		s.Flags[key] = intToBool(enabled)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating global settings: %w", err)
	}
	return s, nil
}

func (r *SQLiteSettingsRepo) Set(ctx context.Context, key string, enabled bool) error {
	query := `INSERT INTO global_settings (key, enabled) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET enabled = excluded.enabled`
	if _, err := r.db.ExecContext(ctx, query, key, boolToInt(enabled)); err != nil {
		return fmt.Errorf("writing global setting %s: %w", key, err)
	}
	return nil
}
