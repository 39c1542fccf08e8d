package template

import (
	"sort"
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
)

// Step is one record to create while copying a tree. SourceID and
// SourceParentID refer to the record being copied; Record is the new record
// with no ID and no parent set yet.
type Step[T any] struct {
	SourceID       string
	SourceParentID *string
	Record         T
}

// ParentLink is a parent assignment to apply once all records exist.
type ParentLink struct {
	ChildID  string
	ParentID string
}

// PlanInstantiation turns template items into timeline items for a project.
// Items come out in template order. Each due date is the anchor date moved
// by the item's offset (nil offsets count as zero).
func PlanInstantiation(projectID string, anchor time.Time, items []*domain.TimelineTemplateItem) []Step[*domain.TimelineItem] {
	sorted := make([]*domain.TimelineTemplateItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	anchor = domain.DateOnly(anchor)
	steps := make([]Step[*domain.TimelineItem], 0, len(sorted))
	for _, ti := range sorted {
		steps = append(steps, Step[*domain.TimelineItem]{
			SourceID:       ti.ID,
			SourceParentID: clonePtr(ti.ParentID),
			Record: &domain.TimelineItem{
				ProjectID:   projectID,
				Title:       ti.Title,
				Description: ti.Description,
				DueDate:     FromOffsetDays(anchor, ti.OffsetDays()),
				Order:       ti.Order,
			},
		})
	}
	return steps
}

// LinkParents computes the parent assignments for copied records. Steps
// whose source had no parent, whose copy was never recorded, or whose parent
// was not copied produce no link and stay roots.
func LinkParents[T any](steps []Step[T], m *Remapper) []ParentLink {
	var links []ParentLink
	for _, s := range steps {
		if s.SourceParentID == nil {
			continue
		}
		child, ok := m.Resolve(s.SourceID)
		if !ok {
			continue
		}
		parent := m.ResolveParent(s.SourceParentID)
		if parent == nil {
			continue
		}
		links = append(links, ParentLink{ChildID: child, ParentID: *parent})
	}
	return links
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
