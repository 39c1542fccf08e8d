package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migrate runs all schema migrations.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// Tolerate "duplicate column name" errors from ALTER TABLE
			// since the migration system re-runs all statements.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}

	if err := migrateNormalizeOrder(db); err != nil {
		return fmt.Errorf("normalizing timeline order: %w", err)
	}

	return nil
}

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS projects (
		id                      TEXT PRIMARY KEY,
		short_id                TEXT NOT NULL DEFAULT '',
		name                    TEXT NOT NULL,
		start_date              TEXT,
		status                  TEXT NOT NULL DEFAULT 'active'
		                        CHECK(status IN ('active','paused','done','archived')),
		timeline_published      INTEGER NOT NULL DEFAULT 0,
		timeline_last_published TEXT,
		testing_published       INTEGER NOT NULL DEFAULT 0,
		testing_last_published  TEXT,
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_projects_short_id ON projects(short_id) WHERE short_id != ''`,

	`CREATE TABLE IF NOT EXISTS project_features (
		project_id TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		feature    TEXT NOT NULL,
		enabled    INTEGER NOT NULL,
		PRIMARY KEY (project_id, feature)
	)`,

	`CREATE TABLE IF NOT EXISTS global_settings (
		key     TEXT PRIMARY KEY,
		enabled INTEGER NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS timeline_items (
		id           TEXT PRIMARY KEY,
		project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		parent_id    TEXT REFERENCES timeline_items(id) ON DELETE SET NULL,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		due_date     TEXT NOT NULL,
		order_index  INTEGER NOT NULL DEFAULT 0,
		is_completed INTEGER NOT NULL DEFAULT 0,
		assigned_to  TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_timeline_items_project ON timeline_items(project_id)`,
	`CREATE INDEX IF NOT EXISTS idx_timeline_items_parent ON timeline_items(parent_id)`,

	`CREATE TABLE IF NOT EXISTS testing_cards (
		id           TEXT PRIMARY KEY,
		project_id   TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		title        TEXT NOT NULL,
		description  TEXT NOT NULL DEFAULT '',
		order_index  INTEGER NOT NULL DEFAULT 0,
		is_completed INTEGER NOT NULL DEFAULT 0,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_testing_cards_project ON testing_cards(project_id)`,

	`CREATE TABLE IF NOT EXISTS timeline_templates (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		category    TEXT NOT NULL DEFAULT '',
		color       TEXT NOT NULL DEFAULT '',
		active      INTEGER NOT NULL DEFAULT 1,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS timeline_template_items (
		id                  TEXT PRIMARY KEY,
		template_id         TEXT NOT NULL REFERENCES timeline_templates(id) ON DELETE CASCADE,
		parent_id           TEXT REFERENCES timeline_template_items(id) ON DELETE SET NULL,
		title               TEXT NOT NULL,
		description         TEXT NOT NULL DEFAULT '',
		order_index         INTEGER NOT NULL DEFAULT 0,
		default_offset_days INTEGER CHECK(default_offset_days IS NULL OR default_offset_days >= 0),
		created_at          TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_template_items_template ON timeline_template_items(template_id)`,

	// Client-facing name shown on the dashboard header.
	`ALTER TABLE projects ADD COLUMN client_name TEXT NOT NULL DEFAULT ''`,
}

// migrateNormalizeOrder rewrites order_index for projects whose timeline
// has duplicate order values, so every project starts from a dense 0..n-1
// sequence. Ties break by created_at. Idempotent.
func migrateNormalizeOrder(db *sql.DB) error {
	ctx := context.Background()

	rows, err := db.QueryContext(ctx, `SELECT project_id FROM timeline_items
		GROUP BY project_id HAVING COUNT(DISTINCT order_index) != COUNT(*)`)
	if err != nil {
		return fmt.Errorf("finding projects with duplicate order: %w", err)
	}
	var projectIDs []string
	for rows.Next() {
		var pid string
		if err := rows.Scan(&pid); err != nil {
			rows.Close()
			return fmt.Errorf("scanning project id: %w", err)
		}
		projectIDs = append(projectIDs, pid)
	}
	rows.Close()

	for _, pid := range projectIDs {
		itemRows, err := db.QueryContext(ctx,
			`SELECT id FROM timeline_items WHERE project_id = ? ORDER BY order_index, created_at, id`, pid)
		if err != nil {
			return fmt.Errorf("listing items for %s: %w", pid, err)
		}
		var ids []string
		for itemRows.Next() {
			var id string
			if err := itemRows.Scan(&id); err != nil {
				itemRows.Close()
				return err
			}
			ids = append(ids, id)
		}
		itemRows.Close()

		for i, id := range ids {
			if _, err := db.ExecContext(ctx,
				`UPDATE timeline_items SET order_index = ? WHERE id = ?`, i, id); err != nil {
				return fmt.Errorf("updating order for %s: %w", id, err)
			}
		}
	}
	return nil
}
