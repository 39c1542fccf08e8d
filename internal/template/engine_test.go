package template

import (
	"testing"
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func websiteLaunch() []*domain.TimelineTemplateItem {
	return []*domain.TimelineTemplateItem{
		{ID: "t-golive", Title: "Go-Live", Order: 2, DefaultOffsetDays: intPtr(30)},
		{ID: "t-kickoff", Title: "Kickoff", Order: 0, DefaultOffsetDays: intPtr(0)},
		{ID: "t-review", Title: "Design Review", Order: 1, ParentID: strPtr("t-kickoff"), DefaultOffsetDays: intPtr(7)},
	}
}

func TestPlanInstantiation_WebsiteLaunch(t *testing.T) {
	start := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	steps := PlanInstantiation("p1", start, websiteLaunch())
	require.Len(t, steps, 3)

	var titles, dates []string
	for _, s := range steps {
		titles = append(titles, s.Record.Title)
		dates = append(dates, s.Record.DueDate.Format(domain.DateLayout))
		assert.Equal(t, "p1", s.Record.ProjectID)
		assert.Nil(t, s.Record.ParentID, "parents are linked in a second pass")
		assert.Nil(t, s.Record.AssignedTo)
		assert.Empty(t, s.Record.ID)
	}
	assert.Equal(t, []string{"Kickoff", "Design Review", "Go-Live"}, titles)
	assert.Equal(t, []string{"2024-01-01", "2024-01-08", "2024-01-31"}, dates)
	require.NotNil(t, steps[1].SourceParentID)
	assert.Equal(t, "t-kickoff", *steps[1].SourceParentID)
}

func TestPlanInstantiation_NilOffsetIsZero(t *testing.T) {
	start := time.Date(2024, time.June, 15, 13, 45, 0, 0, time.UTC)
	steps := PlanInstantiation("p1", start, []*domain.TimelineTemplateItem{
		{ID: "legacy", Title: "Legacy", Order: 0},
	})
	require.Len(t, steps, 1)
	assert.Equal(t, "2024-06-15", steps[0].Record.DueDate.Format(domain.DateLayout))
	assert.Equal(t, 0, steps[0].Record.DueDate.Hour(), "anchor is truncated to the day")
}

func TestLinkParents_PreservesTopology(t *testing.T) {
	// root -> a -> b, root -> c, d (root)
	items := []*domain.TimelineTemplateItem{
		{ID: "root", Title: "Root", Order: 0},
		{ID: "a", Title: "A", Order: 1, ParentID: strPtr("root")},
		{ID: "b", Title: "B", Order: 2, ParentID: strPtr("a")},
		{ID: "c", Title: "C", Order: 3, ParentID: strPtr("root")},
		{ID: "d", Title: "D", Order: 4},
	}
	steps := PlanInstantiation("p1", time.Now(), items)

	m := NewRemapper()
	for _, s := range steps {
		m.Record(s.SourceID, "new-"+s.SourceID)
	}
	links := LinkParents(steps, m)

	got := map[string]string{}
	for _, l := range links {
		got[l.ChildID] = l.ParentID
	}
	assert.Equal(t, map[string]string{
		"new-a": "new-root",
		"new-b": "new-a",
		"new-c": "new-root",
	}, got)
}

func TestLinkParents_UnresolvedParentStaysRoot(t *testing.T) {
	steps := []Step[*domain.TimelineItem]{
		{SourceID: "x", SourceParentID: strPtr("gone")},
		{SourceID: "y", SourceParentID: strPtr("x")},
		{SourceID: "never-created", SourceParentID: strPtr("x")},
	}
	m := NewRemapper()
	m.Record("x", "nx")
	m.Record("y", "ny")

	links := LinkParents(steps, m)
	assert.Equal(t, []ParentLink{{ChildID: "ny", ParentID: "nx"}}, links)
}
