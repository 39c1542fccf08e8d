package template

import (
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
)

// PlanCollapse turns a project's timeline, in display order, into template
// items. Order is the position in items; offsets are measured from anchor and
// clamped at zero for dates before it.
func PlanCollapse(templateID string, anchor time.Time, items []*domain.TimelineItem) []Step[*domain.TimelineTemplateItem] {
	anchor = domain.DateOnly(anchor)
	steps := make([]Step[*domain.TimelineTemplateItem], 0, len(items))
	for i, it := range items {
		offset := ToOffsetDays(anchor, it.DueDate)
		steps = append(steps, Step[*domain.TimelineTemplateItem]{
			SourceID:       it.ID,
			SourceParentID: clonePtr(it.ParentID),
			Record: &domain.TimelineTemplateItem{
				TemplateID:        templateID,
				Title:             it.Title,
				Description:       it.Description,
				Order:             i,
				DefaultOffsetDays: &offset,
			},
		})
	}
	return steps
}
