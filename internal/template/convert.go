package template

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/alexanderramin/waypoint/internal/domain"
)

// ErrInvalidDocument wraps every validation failure of a template document.
var ErrInvalidDocument = errors.New("invalid template document")

// BuildFromDocument validates doc and returns the template header plus one
// creation step per expanded item. Step source IDs are document keys.
func BuildFromDocument(doc *Document) (*domain.TimelineTemplate, []Step[*domain.TimelineTemplateItem], error) {
	if errs := ValidateDocument(doc); len(errs) > 0 {
		msgs := make([]string, len(errs))
		for i, e := range errs {
			msgs[i] = e.Error()
		}
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidDocument, strings.Join(msgs, "; "))
	}

	expanded, err := doc.Expand()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	header := &domain.TimelineTemplate{
		Name:        strings.TrimSpace(doc.Name),
		Description: doc.Description,
		Category:    doc.Category,
		Color:       doc.Color,
		Active:      true,
	}

	steps := make([]Step[*domain.TimelineTemplateItem], 0, len(expanded))
	for _, it := range expanded {
		steps = append(steps, Step[*domain.TimelineTemplateItem]{
			SourceID:       it.Key,
			SourceParentID: domain.StrPtr(it.Parent),
			Record: &domain.TimelineTemplateItem{
				Title:             strings.TrimSpace(it.Title),
				Description:       it.Description,
				Order:             it.Order,
				DefaultOffsetDays: it.OffsetDays,
			},
		})
	}
	return header, steps, nil
}

// DocumentFromTemplate renders a stored template as a portable document.
// Keys are generated from item positions.
func DocumentFromTemplate(t *domain.TimelineTemplate, items []*domain.TimelineTemplateItem) *Document {
	sorted := make([]*domain.TimelineTemplateItem, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	keys := make(map[string]string, len(sorted))
	for i, it := range sorted {
		keys[it.ID] = fmt.Sprintf("item_%d", i+1)
	}

	doc := &Document{
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Color:       t.Color,
	}
	for _, it := range sorted {
		di := DocumentItem{
			Key:         keys[it.ID],
			Title:       it.Title,
			Description: it.Description,
		}
		if it.ParentID != nil {
			di.Parent = keys[*it.ParentID]
		}
		if it.DefaultOffsetDays != nil {
			di.Offset = strconv.Itoa(*it.DefaultOffsetDays)
		}
		doc.Items = append(doc.Items, di)
	}
	return doc
}
