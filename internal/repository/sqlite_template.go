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

// SQLiteTemplateRepo implements TemplateRepo using a SQLite database.
type SQLiteTemplateRepo struct {
	db db.DBTX
}

func NewSQLiteTemplateRepo(db db.DBTX) *SQLiteTemplateRepo {
	return &SQLiteTemplateRepo{db: db}
}

const templateColumns = `id, name, description, category, color, active, created_at, updated_at`

func (r *SQLiteTemplateRepo) Create(ctx context.Context, t *domain.TimelineTemplate) error {
	ensureID(&t.ID)
	ensureTimestamps(&t.CreatedAt, &t.UpdatedAt)

	query := `INSERT INTO timeline_templates (` + templateColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		t.ID, t.Name, t.Description, t.Category, t.Color, boolToInt(t.Active),
		t.CreatedAt.Format(time.RFC3339), t.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting template: %w", err)
	}
	return nil
}

func (r *SQLiteTemplateRepo) GetByID(ctx context.Context, id string) (*domain.TimelineTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM timeline_templates WHERE id = ?`
	return scanTemplate(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteTemplateRepo) List(ctx context.Context, activeOnly bool) ([]*domain.TimelineTemplate, error) {
	query := `SELECT ` + templateColumns + ` FROM timeline_templates`
	if activeOnly {
		query += ` WHERE active = 1`
	}
	query += ` ORDER BY name, created_at`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing templates: %w", err)
	}
	defer rows.Close()

	var templates []*domain.TimelineTemplate
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating templates: %w", err)
	}
	return templates, nil
}

func (r *SQLiteTemplateRepo) SetActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE timeline_templates SET active = ?, updated_at = ? WHERE id = ?`,
		boolToInt(active), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("setting template active: %w", err)
	}
	return requireAffected(res, "template")
}

func (r *SQLiteTemplateRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timeline_templates WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting template: %w", err)
	}
	return requireAffected(res, "template")
}

func scanTemplate(s scanner) (*domain.TimelineTemplate, error) {
	var t domain.TimelineTemplate
	var active int
	var createdAtStr, updatedAtStr string

	err := s.Scan(&t.ID, &t.Name, &t.Description, &t.Category, &t.Color, &active, &createdAtStr, &updatedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("template: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning template: %w", err)
	}
	t.Active = intToBool(active)
	if t.CreatedAt, err = parseTimestamp("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if t.UpdatedAt, err = parseTimestamp("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &t, nil
}

// SQLiteTemplateItemRepo implements TemplateItemRepo using a SQLite database.
type SQLiteTemplateItemRepo struct {
	db db.DBTX
}

func NewSQLiteTemplateItemRepo(db db.DBTX) *SQLiteTemplateItemRepo {
	return &SQLiteTemplateItemRepo{db: db}
}

const templateItemColumns = `id, template_id, parent_id, title, description, order_index, default_offset_days, created_at`

func (r *SQLiteTemplateItemRepo) Create(ctx context.Context, it *domain.TimelineTemplateItem) error {
	ensureID(&it.ID)
	ensureTimestamps(&it.CreatedAt, nil)

	query := `INSERT INTO timeline_template_items (` + templateItemColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		it.ID, it.TemplateID, nullableStrToValue(it.ParentID), it.Title, it.Description, it.Order,
		nullableIntToValue(it.DefaultOffsetDays), it.CreatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting template item: %w", err)
	}
	return nil
}

func (r *SQLiteTemplateItemRepo) ListByTemplate(ctx context.Context, templateID string) ([]*domain.TimelineTemplateItem, error) {
	query := `SELECT ` + templateItemColumns + ` FROM timeline_template_items
		WHERE template_id = ? ORDER BY order_index, created_at, id`
	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, fmt.Errorf("listing template items: %w", err)
	}
	defer rows.Close()

	var items []*domain.TimelineTemplateItem
	for rows.Next() {
		var it domain.TimelineTemplateItem
		var parentID sql.NullString
		var offset sql.NullInt64
		var createdAtStr string
		if err := rows.Scan(&it.ID, &it.TemplateID, &parentID, &it.Title, &it.Description,
			&it.Order, &offset, &createdAtStr); err != nil {
			return nil, fmt.Errorf("scanning template item: %w", err)
		}
		it.ParentID = nullStringPtr(parentID)
		it.DefaultOffsetDays = nullIntPtr(offset)
		if it.CreatedAt, err = parseTimestamp("created_at", createdAtStr); err != nil {
			return nil, err
		}
		items = append(items, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating template items: %w", err)
	}
	return items, nil
}

func (r *SQLiteTemplateItemRepo) SetParent(ctx context.Context, id string, parentID *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE timeline_template_items SET parent_id = ? WHERE id = ?`, nullableStrToValue(parentID), id)
	if err != nil {
		return fmt.Errorf("setting template item parent: %w", err)
	}
	return requireAffected(res, "template item")
}

func (r *SQLiteTemplateItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timeline_template_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting template item: %w", err)
	}
	return requireAffected(res, "template item")
}
