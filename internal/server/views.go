package server

import (
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/editbuffer"
)

type projectView struct {
	ID                    string          `json:"id"`
	ShortID               string          `json:"short_id,omitempty"`
	Name                  string          `json:"name"`
	ClientName            string          `json:"client_name"`
	StartDate             *string         `json:"start_date"`
	Status                string          `json:"status"`
	TimelinePublished     bool            `json:"timeline_published"`
	TimelineLastPublished *time.Time      `json:"timeline_last_published"`
	TestingPublished      bool            `json:"testing_published"`
	TestingLastPublished  *time.Time      `json:"testing_last_published"`
	FeaturesEnabled       map[string]bool `json:"features_enabled"`
}

func newProjectView(p *domain.Project) projectView {
	v := projectView{
		ID:                    p.ID,
		ShortID:               p.ShortID,
		Name:                  p.Name,
		ClientName:            p.ClientName,
		Status:                string(p.Status),
		TimelinePublished:     p.TimelinePublished,
		TimelineLastPublished: p.TimelineLastPublished,
		TestingPublished:      p.TestingPublished,
		TestingLastPublished:  p.TestingLastPublished,
		FeaturesEnabled:       p.FeaturesEnabled,
	}
	if p.StartDate != nil {
		d := p.StartDate.Format(domain.DateLayout)
		v.StartDate = &d
	}
	if v.FeaturesEnabled == nil {
		v.FeaturesEnabled = map[string]bool{}
	}
	return v
}

type timelineItemView struct {
	ID          string  `json:"id"`
	ParentID    *string `json:"parent_id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date"`
	Order       int     `json:"order"`
	IsCompleted bool    `json:"is_completed"`
	AssignedTo  *string `json:"assigned_to"`
}

func newTimelineItemView(it *domain.TimelineItem) timelineItemView {
	return timelineItemView{
		ID:          it.ID,
		ParentID:    it.ParentID,
		Title:       it.Title,
		Description: it.Description,
		DueDate:     it.DueDate.Format(domain.DateLayout),
		Order:       it.Order,
		IsCompleted: it.IsCompleted,
		AssignedTo:  it.AssignedTo,
	}
}

type testingCardView struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Order       int    `json:"order"`
	IsCompleted bool   `json:"is_completed"`
}

func newTestingCardView(c *domain.TestingCard) testingCardView {
	return testingCardView{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Order:       c.Order,
		IsCompleted: c.IsCompleted,
	}
}

type templateView struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Color       string `json:"color"`
	Active      bool   `json:"active"`
}

func newTemplateView(t *domain.TimelineTemplate) templateView {
	return templateView{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Color:       t.Color,
		Active:      t.Active,
	}
}

type templateItemView struct {
	ID                string  `json:"id"`
	ParentID          *string `json:"parent_id"`
	Title             string  `json:"title"`
	Description       string  `json:"description"`
	Order             int     `json:"order"`
	DefaultOffsetDays *int    `json:"default_offset_days"`
}

func newTemplateItemViews(items []*domain.TimelineTemplateItem) []templateItemView {
	out := make([]templateItemView, 0, len(items))
	for _, it := range items {
		out = append(out, templateItemView{
			ID:                it.ID,
			ParentID:          it.ParentID,
			Title:             it.Title,
			Description:       it.Description,
			Order:             it.Order,
			DefaultOffsetDays: it.DefaultOffsetDays,
		})
	}
	return out
}

// bufferView is the wire form of an edit buffer snapshot.
type bufferView struct {
	ProjectID     string     `json:"project_id"`
	Collection    string     `json:"collection"`
	State         string     `json:"state"`
	Dirty         bool       `json:"dirty"`
	LastError     string     `json:"last_error,omitempty"`
	LastPublished *time.Time `json:"last_published,omitempty"`
	Items         []any      `json:"items"`
}

func newBufferView[T any](c domain.Collection, snap editbuffer.Snapshot[T], render func(T) any) bufferView {
	items := make([]any, 0, len(snap.Items))
	for _, it := range snap.Items {
		items = append(items, render(it))
	}
	return bufferView{
		ProjectID:     snap.ProjectID,
		Collection:    string(c),
		State:         string(snap.State),
		Dirty:         snap.Dirty,
		LastError:     snap.LastError,
		LastPublished: snap.LastPublished,
		Items:         items,
	}
}
