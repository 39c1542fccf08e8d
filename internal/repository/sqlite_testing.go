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

// SQLiteTestingCardRepo implements TestingCardRepo using a SQLite database.
type SQLiteTestingCardRepo struct {
	db db.DBTX
}

func NewSQLiteTestingCardRepo(db db.DBTX) *SQLiteTestingCardRepo {
	return &SQLiteTestingCardRepo{db: db}
}

const testingColumns = `id, project_id, title, description, order_index, is_completed, created_at, updated_at`

func (r *SQLiteTestingCardRepo) Create(ctx context.Context, c *domain.TestingCard) error {
	ensureID(&c.ID)
	ensureTimestamps(&c.CreatedAt, &c.UpdatedAt)

	query := `INSERT INTO testing_cards (` + testingColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		c.ID, c.ProjectID, c.Title, c.Description, c.Order, boolToInt(c.IsCompleted),
		c.CreatedAt.Format(time.RFC3339), c.UpdatedAt.Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting testing card: %w", err)
	}
	return nil
}

func (r *SQLiteTestingCardRepo) GetByID(ctx context.Context, id string) (*domain.TestingCard, error) {
	query := `SELECT ` + testingColumns + ` FROM testing_cards WHERE id = ?`
	return scanTestingCard(r.db.QueryRowContext(ctx, query, id))
}

func (r *SQLiteTestingCardRepo) ListByProject(ctx context.Context, projectID string) ([]*domain.TestingCard, error) {
	query := `SELECT ` + testingColumns + ` FROM testing_cards
		WHERE project_id = ? ORDER BY order_index, created_at, id`
	rows, err := r.db.QueryContext(ctx, query, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing testing cards: %w", err)
	}
	defer rows.Close()

	var cards []*domain.TestingCard
	for rows.Next() {
		c, err := scanTestingCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating testing cards: %w", err)
	}
	return cards, nil
}

func (r *SQLiteTestingCardRepo) Update(ctx context.Context, c *domain.TestingCard) error {
	c.UpdatedAt = time.Now().UTC()
	query := `UPDATE testing_cards SET title = ?, description = ?, order_index = ?, is_completed = ?, updated_at = ?
		WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query,
		c.Title, c.Description, c.Order, boolToInt(c.IsCompleted), c.UpdatedAt.Format(time.RFC3339), c.ID,
	)
	if err != nil {
		return fmt.Errorf("updating testing card: %w", err)
	}
	return requireAffected(res, "testing card")
}

func (r *SQLiteTestingCardRepo) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM testing_cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting testing card: %w", err)
	}
	return requireAffected(res, "testing card")
}

func scanTestingCard(s scanner) (*domain.TestingCard, error) {
	var c domain.TestingCard
	var completed int
	var createdAtStr, updatedAtStr string

	err := s.Scan(&c.ID, &c.ProjectID, &c.Title, &c.Description, &c.Order, &completed, &createdAtStr, &updatedAtStr)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("testing card: %w", ErrNotFound)
		}
		return nil, fmt.Errorf("scanning testing card: %w", err)
	}
	c.IsCompleted = intToBool(completed)
	if c.CreatedAt, err = parseTimestamp("created_at", createdAtStr); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTimestamp("updated_at", updatedAtStr); err != nil {
		return nil, err
	}
	return &c, nil
}
