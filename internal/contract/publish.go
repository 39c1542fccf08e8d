package contract

import (
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
)

// PublishResult summarises one publish of an edit buffer.
type PublishResult struct {
	ProjectID   string            `json:"project_id"`
	Collection  domain.Collection `json:"collection"`
	Batch       BatchResult       `json:"batch"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
}

// ProjectDetailsPatch carries the editable project detail fields. Nil
// fields are left unchanged.
type ProjectDetailsPatch struct {
	Name       *string `json:"name,omitempty"`
	ClientName *string `json:"client_name,omitempty"`
	ShortID    *string `json:"short_id,omitempty"`
	StartDate  *string `json:"start_date,omitempty"`
	Status     *string `json:"status,omitempty"`
}

// Empty reports whether the patch changes nothing.
func (p ProjectDetailsPatch) Empty() bool {
	return p.Name == nil && p.ClientName == nil && p.ShortID == nil && p.StartDate == nil && p.Status == nil
}
