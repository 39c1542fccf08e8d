package repository

import (
	"context"
	"errors"
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
)

// ErrNotFound is returned (wrapped) when a lookup, update, or delete
// targets a record that does not exist.
var ErrNotFound = errors.New("not found")

// ErrConflict is returned (wrapped) when a write would break a uniqueness
// constraint, such as reusing another project's short ID.
var ErrConflict = errors.New("conflict")

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	GetByShortID(ctx context.Context, shortID string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	// UpdateDetails patches name, client, short ID, start date and status only.
	UpdateDetails(ctx context.Context, p *domain.Project) error
	// MarkPublished sets <collection>_published and <collection>_last_published.
	MarkPublished(ctx context.Context, id string, c domain.Collection, at time.Time) error
	SetFeature(ctx context.Context, id, feature string, enabled bool) error
	Delete(ctx context.Context, id string) error
}

type SettingsRepo interface {
	Get(ctx context.Context) (*domain.GlobalSettings, error)
	Set(ctx context.Context, key string, enabled bool) error
}

type TimelineItemRepo interface {
	Create(ctx context.Context, it *domain.TimelineItem) error
	GetByID(ctx context.Context, id string) (*domain.TimelineItem, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.TimelineItem, error)
	List(ctx context.Context) ([]*domain.TimelineItem, error)
	Update(ctx context.Context, it *domain.TimelineItem) error
	SetParent(ctx context.Context, id string, parentID *string) error
	Delete(ctx context.Context, id string) error
}

type TestingCardRepo interface {
	Create(ctx context.Context, c *domain.TestingCard) error
	GetByID(ctx context.Context, id string) (*domain.TestingCard, error)
	ListByProject(ctx context.Context, projectID string) ([]*domain.TestingCard, error)
	Update(ctx context.Context, c *domain.TestingCard) error
	Delete(ctx context.Context, id string) error
}

type TemplateRepo interface {
	Create(ctx context.Context, t *domain.TimelineTemplate) error
	GetByID(ctx context.Context, id string) (*domain.TimelineTemplate, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.TimelineTemplate, error)
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type TemplateItemRepo interface {
	Create(ctx context.Context, it *domain.TimelineTemplateItem) error
	ListByTemplate(ctx context.Context, templateID string) ([]*domain.TimelineTemplateItem, error)
	SetParent(ctx context.Context, id string, parentID *string) error
	Delete(ctx context.Context, id string) error
}
