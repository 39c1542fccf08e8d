package service

import (
	"context"

	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/feature"
	tmpl "github.com/alexanderramin/waypoint/internal/template"
)

type ProjectService interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	// Resolve finds a project by short ID (case-insensitive) or full ID.
	Resolve(ctx context.Context, ref string) (*domain.Project, error)
	List(ctx context.Context, includeArchived bool) ([]*domain.Project, error)
	// UpdateDetails applies patch and retries transient store failures.
	UpdateDetails(ctx context.Context, id string, patch contract.ProjectDetailsPatch) (*domain.Project, error)
	Delete(ctx context.Context, id string, force bool) error
}

type TemplateService interface {
	// Apply replaces a project's timeline with a copy of a template.
	Apply(ctx context.Context, req contract.ApplyTemplateRequest) (*contract.ApplyTemplateResult, error)
	// CreateFromTimeline saves a timeline as a new template.
	CreateFromTimeline(ctx context.Context, req contract.CreateTemplateRequest) (*contract.CreateTemplateResult, error)
	List(ctx context.Context, activeOnly bool) ([]*domain.TimelineTemplate, error)
	Get(ctx context.Context, id string) (*contract.TemplateDetail, error)
	// Resolve finds a template by ID, case-insensitive name or its 1-based
	// position in the full list.
	Resolve(ctx context.Context, ref string) (*domain.TimelineTemplate, error)
	SetActive(ctx context.Context, id string, active bool) error
	// Import stores a template document. Nothing is written when any part fails.
	Import(ctx context.Context, doc *tmpl.Document) (*contract.TemplateDetail, error)
	// ImportDir imports every document in dir whose name is not taken yet.
	ImportDir(ctx context.Context, dir string) ([]*contract.TemplateDetail, error)
	Export(ctx context.Context, id string) (*tmpl.Document, error)
}

type FeatureService interface {
	Settings(ctx context.Context) (*domain.GlobalSettings, error)
	SetGlobal(ctx context.Context, featureID string, enabled bool) error
	SetProjectFeature(ctx context.Context, projectID, featureID string, enabled bool) error
	States(ctx context.Context, projectID string) ([]feature.State, error)
	// Require returns ErrFeatureDisabled when featureID is off for the project.
	Require(ctx context.Context, projectID, featureID string) error
}
