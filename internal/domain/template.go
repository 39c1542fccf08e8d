package domain

import "time"

// TimelineTemplate is a reusable, project-independent task tree header.
// Only Active changes after creation.
type TimelineTemplate struct {
	ID          string
	Name        string
	Description string
	Category    string
	Color       string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TimelineTemplateItem is one node of a template's task tree. Dates are
// stored as day offsets from the project start.
type TimelineTemplateItem struct {
	ID          string
	TemplateID  string
	ParentID    *string
	Title       string
	Description string
	Order       int
	// DefaultOffsetDays is nil for legacy rows; nil is treated as 0.
	DefaultOffsetDays *int
	CreatedAt         time.Time
}

// OffsetDays returns the effective offset, defaulting to 0.
func (i *TimelineTemplateItem) OffsetDays() int {
	return IntFromPtrWithDefault(0, i.DefaultOffsetDays)
}
