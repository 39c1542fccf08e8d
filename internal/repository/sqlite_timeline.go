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

// SQLiteTimelineItemRepo implements TimelineItemRepo using a SQLite database.
type SQLiteTimelineItemRepo struct {
	db db.DBTX
}

// NewSQLiteTimelineItemRepo creates a new SQLiteTimelineItemRepo.
func NewSQLiteTimelineItemRepo(db db.DBTX) *SQLiteTimelineItemRepo {
	return &SQLiteTimelineItemRepo{db: db}
}

const timelineColumns = `id, project_id, parent_id, title, description, due_date,
	order_index, is_completed, assigned_to, created_at, updated_at`

func (r *SQLiteTimelineItemRepo) Create(ctx context.Context, it *domain.TimelineItem) error {
	ensureID(&it.ID)
	ensureTimestamps(&it.CreatedAt, &it.UpdatedAt)

	query := `INSERT INTO timeline_items (` + timelineColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		it.ID,
		it.ProjectID,
		nullableStrToValue(it.ParentID),
		it.Title,
		it.Description,
		it.DueDate.Format(dateLayout),
		it.Order,
		boolToInt(it.IsCompleted),
		nullableStrToValue(it.AssignedTo),
		it.CreatedAt.Format(time.RFC3339),
		it.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting timeline item: %w", err)
	}
	return nil
}

func (r *SQLiteTimelineItemRepo) GetByID(ctx context.Context, id string) (*domain.TimelineItem, error) {
	query := `SELECT ` + timelineColumns + ` FROM timeline_items WHERE id = ?`
	return scanTimelineItem(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteTimelineItemRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.TimelineItem, error) {
	query := `SELECT ` + timelineColumns + ` FROM timeline_items
		WHERE project_id = ? ORDER BY order_index, created_at, id`
	return r.list(ctx, query, projectID)
}

func (r *SQLiteTimelineItemRepo) List(ctx context.Context) ([]*domain.TimelineItem, error) {
	query := `SELECT ` + timelineColumns + ` FROM timeline_items ORDER BY project_id, order_index, id`
	return r.list(ctx, query)
}

func (r *SQLiteTimelineItemRepo) list(ctx context.Context, query string, args ...any) ([]*domain.TimelineItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing timeline items: %w", err)
	}
	defer rows.Close()

	var items []*domain.TimelineItem
	for rows.Next() {
		it, err := scanTimelineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating timeline items: %w", err)
	}
	return items, nil
}

func (r *SQLiteTimelineItemRepo) Update(ctx context.Context, it *domain.TimelineItem) error {
	it.UpdatedAt = time.Now().UTC()
	query := `UPDATE timeline_items SET parent_id = ?, title = ?, description = ?, due_date = ?,
		order_index = ?, is_completed = ?, assigned_to = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		nullableStrToValue(it.ParentID),
		it.Title,
		it.Description,
		it.DueDate.Format(dateLayout),
		it.Order,
		boolToInt(it.IsCompleted),
		nullableStrToValue(it.AssignedTo),
		it.UpdatedAt.Format(time.RFC3339),
		it.ID,
	)
	if err != nil {
		return fmt.Errorf("updating timeline item: %w", err)
	}
	return requireAffected(res, "timeline item")
}

func (r *SQLiteTimelineItemRepo) SetParent(ctx context.Context, id string, parentID *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE timeline_items SET parent_id = ?, updated_at = ? WHERE id = ?`,
		nullableStrToValue(parentID), nowUTC(), id)
	if err != nil {
		return fmt.Errorf("setting timeline item parent: %w", err)
	}
	return requireAffected(res, "timeline item")
}

func (r *SQLiteTimelineItemRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM timeline_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting timeline item: %w", err)
	}
	return requireAffected(res, "timeline item")
}

func scanTimelineItem(s scanner) (*domain.TimelineItem, error) {
	var it domain.TimelineItem
	var parentID, assignedTo sql.NullString
	var dueDateStr, createdAtStr, updatedAtStr string
	var completed int

	err := s.Scan(
		&it.ID, &it.ProjectID, &parentID, &it.Title, &it.Description, &dueDateStr,
		&it.Order, &completed, &assignedTo, &createdAtStr, &updatedAtStr,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("timeline item: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning timeline item: %w", err)
	}

	it.ParentID = nullStringPtr(parentID)
	it.AssignedTo = nullStringPtr(assignedTo)
	it.IsCompleted = intToBool(completed)
	if it.DueDate, err = time.Parse(dateLayout, dueDateStr); err != nil {
		return nil, fmt.Errorf("parsing due_date: %w", err)
	}
	if it.CreatedAt, err = parseTimestamp("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if it.UpdatedAt, err = parseTimestamp("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &it, nil
}
