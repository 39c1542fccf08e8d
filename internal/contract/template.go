package contract

import (
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
)

type ApplyTemplateRequest struct {
	ProjectID  string
	TemplateID string
	// ConfirmReplace must be set when the project already has timeline items.
	ConfirmReplace bool
	// Now overrides the clock used when the project has no start date.
	Now *time.Time
}

func NewApplyTemplateRequest(projectID, templateID string) ApplyTemplateRequest {
	return ApplyTemplateRequest{ProjectID: projectID, TemplateID: templateID}
}

type ApplyTemplateResult struct {
	Deleted       int                    `json:"deleted"`
	Created       []*domain.TimelineItem `json:"created"`
	ParentsLinked int                    `json:"parents_linked"`
	Batch         BatchResult            `json:"batch"`
}

// TemplateMeta describes a template being created from a timeline.
type TemplateMeta struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Color       string `json:"color"`
}

type CreateTemplateRequest struct {
	ProjectID string
	// Items in display order; position becomes the template item order.
	Items []*domain.TimelineItem
	Meta  TemplateMeta
	Now   *time.Time
}

type CreateTemplateResult struct {
	Template      *domain.TimelineTemplate       `json:"template"`
	Items         []*domain.TimelineTemplateItem `json:"items"`
	ParentsLinked int                            `json:"parents_linked"`
	Batch         BatchResult                    `json:"batch"`
}

// TemplateDetail is a template header with its items in order.
type TemplateDetail struct {
	Template *domain.TimelineTemplate       `json:"template"`
	Items    []*domain.TimelineTemplateItem `json:"items"`
}
