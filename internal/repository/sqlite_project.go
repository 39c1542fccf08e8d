package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/alexanderramin/waypoint/internal/db"
	"github.com/alexanderramin/waypoint/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

// NewSQLiteProjectRepo creates a new SQLiteProjectRepo.
func NewSQLiteProjectRepo(db db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: db}
}

const projectColumns = `id, short_id, name, client_name, start_date, status,
	timeline_published, timeline_last_published, testing_published, testing_last_published,
	created_at, updated_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	ensureID(&p.ID)
	ensureTimestamps(&p.CreatedAt, &p.UpdatedAt)
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}

	query := `INSERT INTO projects (` + projectColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ShortID,
		p.Name,
		p.ClientName,
		nullableTimeToString(p.StartDate, dateLayout),
		string(p.Status),
		boolToInt(p.TimelinePublished),
		nullableTimeToString(p.TimelineLastPublished, time.RFC3339),
		boolToInt(p.TestingPublished),
		nullableTimeToString(p.TestingLastPublished, time.RFC3339),
		p.CreatedAt.Format(time.RFC3339),
		p.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return projectWriteError("inserting", p, err)
	}

	for feature, enabled := range p.FeaturesEnabled {
		if err := r.upsertFeature(ctx, p.ID, feature, enabled); err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = ?`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, err
	}
	return p, r.loadFeatures(ctx, p)
}

func (r *SQLiteProjectRepo) GetByShortID(ctx context.Context, shortID string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE UPPER(short_id) = UPPER(?)`
	p, err := scanProject(r.db.QueryRowContext(ctx, query, shortID))
	if err != nil {
		return nil, err
	}
	return p, r.loadFeatures(ctx, p)
}

func (r *SQLiteProjectRepo) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	if !includeArchived {
		query += ` WHERE status != 'archived'`
	}
	query += ` ORDER BY created_at, short_id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	var projects []*domain.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		projects = append(projects, p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	rows.Close()

	for _, p := range projects {
		if err := r.loadFeatures(ctx, p); err != nil {
			return nil, err
		}
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) UpdateDetails(ctx context.Context, p *domain.Project) error {
	p.UpdatedAt = time.Now().UTC()
	query := `UPDATE projects SET short_id = ?, name = ?, client_name = ?, start_date = ?, status = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		p.ShortID,
		p.Name,
		p.ClientName,
		nullableTimeToString(p.StartDate, dateLayout),
		string(p.Status),
		p.UpdatedAt.Format(time.RFC3339),
		p.ID,
	)
	if err != nil {
		return projectWriteError("updating", p, err)
	}
	return requireAffected(res, "project")
}

func (r *SQLiteProjectRepo) MarkPublished(ctx context.Context, id string, c domain.Collection, at time.Time) error {
	var query string
	switch c {
	case domain.CollectionTimeline:
		query = `UPDATE projects SET timeline_published = 1, timeline_last_published = ?, updated_at = ? WHERE id = ?`
	case domain.CollectionTesting:
		query = `UPDATE projects SET testing_published = 1, testing_last_published = ?, updated_at = ? WHERE id = ?`
	default:
		return fmt.Errorf("unknown collection %q", c)
	}
	res, err := r.db.ExecContext(ctx, query, at.UTC().Format(time.RFC3339), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("marking %s published: %w", c, err)
	}
	return requireAffected(res, "project")
}

func (r *SQLiteProjectRepo) SetFeature(ctx context.Context, id, feature string, enabled bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE projects SET updated_at = ? WHERE id = ?`, nowUTC(), id)
	if err != nil {
		return fmt.Errorf("touching project: %w", err)
	}
	if err := requireAffected(res, "project"); err != nil {
		return err
	}
	return r.upsertFeature(ctx, id, feature, enabled)
}

func (r *SQLiteProjectRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return requireAffected(res, "project")
}

func (r *SQLiteProjectRepo) upsertFeature(ctx context.Context, id, feature string, enabled bool) error {
	query := `INSERT INTO project_features (project_id, feature, enabled) VALUES (?, ?, ?)
		ON CONFLICT(project_id, feature) DO UPDATE SET enabled = excluded.enabled`
	if _, err := r.db.ExecContext(ctx, query, id, feature, boolToInt(enabled)); err != nil {
		return fmt.Errorf("setting feature %s: %w", feature, err)
	}
	return nil
}

func (r *SQLiteProjectRepo) loadFeatures(ctx context.Context, p *domain.Project) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT feature, enabled FROM project_features WHERE project_id = ?`, p.ID)
	if err != nil {
		return fmt.Errorf("listing project features: %w", err)
	}
	defer rows.Close()

	p.FeaturesEnabled = make(map[string]bool)
	for rows.Next() {
		var feature string
		var enabled int
		if err := rows.Scan(&feature, &enabled); err != nil {
			return fmt.Errorf("scanning project feature: %w", err)
		}
		p.FeaturesEnabled[feature] = intToBool(enabled)
	}
	return rows.Err()
}

func scanProject(s scanner) (*domain.Project, error) {
	var p domain.Project
	var statusStr, createdAtStr, updatedAtStr string
	var startDateStr, timelineLastStr, testingLastStr sql.NullString
	var timelinePub, testingPub int

	err := s.Scan(
		&p.ID, &p.ShortID, &p.Name, &p.ClientName, &startDateStr, &statusStr,
		&timelinePub, &timelineLastStr, &testingPub, &testingLastStr,
		&createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("project: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}

	p.Status = domain.ProjectStatus(statusStr)
	p.StartDate = parseNullableTime(startDateStr, dateLayout)
	p.TimelinePublished = intToBool(timelinePub)
	p.TimelineLastPublished = parseNullableTime(timelineLastStr, time.RFC3339)
	p.TestingPublished = intToBool(testingPub)
	p.TestingLastPublished = parseNullableTime(testingLastStr, time.RFC3339)

	if p.CreatedAt, err = parseTimestamp("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = parseTimestamp("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &p, nil
}
