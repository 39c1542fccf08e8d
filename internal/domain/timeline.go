package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// TimelineItem is a dated task in a project's timeline. Items form a tree
// through ParentID; the parent always belongs to the same project.
type TimelineItem struct {
	ID          string
	ProjectID   string
	ParentID    *string
	Title       string
	Description string
	DueDate     time.Time
	Order       int
	IsCompleted bool
	AssignedTo  *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Editable timeline item fields.
const (
	FieldTitle       = "title"
	FieldDescription = "description"
	FieldDueDate     = "due_date"
	FieldCompleted   = "is_completed"
	FieldAssignedTo  = "assigned_to"
	FieldParentID    = "parent_id"
)

func (t *TimelineItem) ElementID() string { return t.ID }

func (t *TimelineItem) SetOrder(order int) { t.Order = order }

func (t *TimelineItem) ParentRef() *string { return t.ParentID }

func (t *TimelineItem) SetParentRef(id *string) { t.ParentID = id }

// Clone returns a deep copy safe to hand to renderers.
func (t *TimelineItem) Clone() *TimelineItem {
	c := *t
	c.ParentID = clonePtr(t.ParentID)
	c.AssignedTo = clonePtr(t.AssignedTo)
	return &c
}

// ApplyField sets a single field from its string form.
func (t *TimelineItem) ApplyField(field, value string) error {
	switch field {
	case FieldTitle:
		title := strings.TrimSpace(value)
		if title == "" {
			return fmt.Errorf("%w: title must not be empty", ErrInvalidField)
		}
		t.Title = title
	case FieldDescription:
		t.Description = value
	case FieldDueDate:
		d, err := ParseDate(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: due_date %q is not YYYY-MM-DD", ErrInvalidField, value)
		}
		t.DueDate = d
	case FieldCompleted:
		b, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return fmt.Errorf("%w: is_completed %q is not a boolean", ErrInvalidField, value)
		}
		t.IsCompleted = b
	case FieldAssignedTo:
		t.AssignedTo = StrPtr(strings.TrimSpace(value))
	case FieldParentID:
		parent := StrPtr(strings.TrimSpace(value))
		if parent != nil && *parent == t.ID {
			return fmt.Errorf("%w: item cannot be its own parent", ErrInvalidField)
		}
		t.ParentID = parent
	default:
		return fmt.Errorf("%w: unknown timeline field %q", ErrInvalidField, field)
	}
	return nil
}

// ValidateTimelineTree checks that every parent reference points at another
// item in the set and that no item is its own ancestor.
func ValidateTimelineTree(items []*TimelineItem) error {
	parents := make(map[string]*string, len(items))
	for _, it := range items {
		parents[it.ID] = it.ParentID
	}
	for _, it := range items {
		if it.ParentID == nil {
			continue
		}
		if _, ok := parents[*it.ParentID]; !ok {
			return fmt.Errorf("%w: parent %s of %q is not in this timeline", ErrInvalidField, *it.ParentID, it.Title)
		}
	}
	return detectCycle(parents)
}

// detectCycle walks each chain of parent links and fails on revisits.
func detectCycle(parents map[string]*string) error {
	const (
		unvisited = iota
		inStack
		done
	)
	state := make(map[string]int, len(parents))
	for start := range parents {
		if state[start] == done {
			continue
		}
		var path []string
		cur := start
		for {
			if state[cur] == done {
				break
			}
			if state[cur] == inStack {
				return fmt.Errorf("%w: parent cycle through %s", ErrInvalidField, cur)
			}
			state[cur] = inStack
			path = append(path, cur)
			next, ok := parents[cur]
			if !ok || next == nil {
				break
			}
			if _, known := parents[*next]; !known {
				break
			}
			cur = *next
		}
		for _, id := range path {
			state[id] = done
		}
	}
	return nil
}

func clonePtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
