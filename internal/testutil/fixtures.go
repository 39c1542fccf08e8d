package testutil

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/google/uuid"
)

var testShortIDCounter atomic.Int64

// Project options
type ProjectOption func(*domain.Project)

func WithStartDate(d time.Time) ProjectOption {
	return func(p *domain.Project) {
		p.StartDate = &d
	}
}

func WithoutStartDate() ProjectOption {
	return func(p *domain.Project) {
		p.StartDate = nil
	}
}

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) {
		p.Status = s
	}
}

func WithShortID(id string) ProjectOption {
	return func(p *domain.Project) {
		p.ShortID = id
	}
}

func WithClient(name string) ProjectOption {
	return func(p *domain.Project) {
		p.ClientName = name
	}
}

func WithFeature(feature string, enabled bool) ProjectOption {
	return func(p *domain.Project) {
		if p.FeaturesEnabled == nil {
			p.FeaturesEnabled = make(map[string]bool)
		}
		p.FeaturesEnabled[feature] = enabled
	}
}

func defaultShortID(name string) string {
	upper := strings.ToUpper(name)
	var letters []byte
	for i := 0; i < len(upper) && len(letters) < 3; i++ {
		if upper[i] >= 'A' && upper[i] <= 'Z' {
			letters = append(letters, upper[i])
		}
	}
	for len(letters) < 3 {
		letters = append(letters, 'X')
	}
	n := testShortIDCounter.Add(1)
	return fmt.Sprintf("%s%02d", string(letters), n)
}

// Date builds a UTC calendar date for fixtures.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func NewTestProject(name string, opts ...ProjectOption) *domain.Project {
	now := time.Now().UTC()
	start := Date(2024, time.January, 1)
	p := &domain.Project{
		ID:         uuid.New().String(),
		ShortID:    defaultShortID(name),
		Name:       name,
		ClientName: "Test Client",
		StartDate:  &start,
		Status:     domain.ProjectActive,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// TimelineItem options
type TimelineItemOption func(*domain.TimelineItem)

func WithParent(id string) TimelineItemOption {
	return func(it *domain.TimelineItem) {
		it.ParentID = &id
	}
}

func WithDueDate(d time.Time) TimelineItemOption {
	return func(it *domain.TimelineItem) {
		it.DueDate = d
	}
}

func WithOrder(i int) TimelineItemOption {
	return func(it *domain.TimelineItem) {
		it.Order = i
	}
}

func WithCompleted() TimelineItemOption {
	return func(it *domain.TimelineItem) {
		it.IsCompleted = true
	}
}

func WithAssignee(who string) TimelineItemOption {
	return func(it *domain.TimelineItem) {
		it.AssignedTo = &who
	}
}

func NewTestTimelineItem(projectID, title string, opts ...TimelineItemOption) *domain.TimelineItem {
	now := time.Now().UTC()
	it := &domain.TimelineItem{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Title:     title,
		DueDate:   Date(2024, time.January, 1),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}

func NewTestTestingCard(projectID, title string, order int) *domain.TestingCard {
	now := time.Now().UTC()
	return &domain.TestingCard{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Title:     title,
		Order:     order,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func NewTestTemplate(name string) *domain.TimelineTemplate {
	now := time.Now().UTC()
	return &domain.TimelineTemplate{
		ID:        uuid.New().String(),
		Name:      name,
		Category:  "web",
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TemplateItem options
type TemplateItemOption func(*domain.TimelineTemplateItem)

func WithTemplateParent(id string) TemplateItemOption {
	return func(it *domain.TimelineTemplateItem) {
		it.ParentID = &id
	}
}

func WithOffset(days int) TemplateItemOption {
	return func(it *domain.TimelineTemplateItem) {
		it.DefaultOffsetDays = &days
	}
}

func WithoutOffset() TemplateItemOption {
	return func(it *domain.TimelineTemplateItem) {
		it.DefaultOffsetDays = nil
	}
}

func NewTestTemplateItem(templateID, title string, order int, opts ...TemplateItemOption) *domain.TimelineTemplateItem {
	zero := 0
	it := &domain.TimelineTemplateItem{
		ID:                uuid.New().String(),
		TemplateID:        templateID,
		Title:             title,
		Order:             order,
		DefaultOffsetDays: &zero,
		CreatedAt:         time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(it)
	}
	return it
}
