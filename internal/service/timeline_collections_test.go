package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/editbuffer"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/alexanderramin/waypoint/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (r *testRepos) collections(observers ...UseCaseObserver) *Collections {
	return NewCollections(r.projects, r.timeline, r.testing, testOptions(), observers...)
}

func TestTimelineBuffer_ReorderAndPublish(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := r.seedProject(t, "Ordered")
	titles := []string{"A", "B", "C", "D", "E"}
	for i, title := range titles {
		require.NoError(t, r.timeline.Create(ctx, testutil.NewTestTimelineItem(proj.ID, title, testutil.WithOrder(i))))
	}

	var logs bytes.Buffer
	cols := r.collections(NewLogUseCaseObserver(&logs))
	buf := cols.TimelineBuffer(proj.ID)
	require.NoError(t, buf.Load(ctx))
	require.NoError(t, buf.Reorder(3, 0))
	assert.True(t, buf.Dirty())

	res, err := PublishObserved(ctx, cols.Observer(), domain.CollectionTimeline, buf)
	require.NoError(t, err)
	assert.Equal(t, 5, res.Batch.Succeeded)
	require.NotNil(t, res.PublishedAt)
	assert.Equal(t, fixedNow, *res.PublishedAt)
	assert.Equal(t, editbuffer.StateClean, buf.State())

	stored, err := r.timeline.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	var gotTitles []string
	var gotOrders []int
	for _, it := range stored {
		gotTitles = append(gotTitles, it.Title)
		gotOrders = append(gotOrders, it.Order)
	}
	assert.Equal(t, []string{"D", "A", "B", "C", "E"}, gotTitles)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, gotOrders)

	fetched, err := r.projects.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.True(t, fetched.TimelinePublished)
	require.NotNil(t, fetched.TimelineLastPublished)
	assert.False(t, fetched.TestingPublished, "testing columns are untouched")
	assert.Contains(t, logs.String(), "use_case=publish-timeline")
}

func TestTimelineBuffer_AddUsesProjectStart(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := r.seedProject(t, "Adds", testutil.WithStartDate(testutil.Date(2024, time.July, 1)))
	undated := r.seedProject(t, "Undated", testutil.WithoutStartDate())
	cols := r.collections()

	buf := cols.TimelineBuffer(proj.ID)
	require.NoError(t, buf.Load(ctx))
	added, err := buf.Add(ctx, "Brief")
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, "2024-07-01", added.DueDate.Format(domain.DateLayout))

	stored, err := r.timeline.GetByID(ctx, added.ID)
	require.NoError(t, err, "add writes through immediately")
	assert.Equal(t, "Brief", stored.Title)

	other := cols.TimelineBuffer(undated.ID)
	require.NoError(t, other.Load(ctx))
	added, err = other.Add(ctx, "Today")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", added.DueDate.Format(domain.DateLayout))
}

func TestTimelineBuffer_DeleteToleratesMissingRecord(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := r.seedProject(t, "Gone")
	parent := testutil.NewTestTimelineItem(proj.ID, "Parent", testutil.WithOrder(0))
	child := testutil.NewTestTimelineItem(proj.ID, "Child", testutil.WithOrder(1), testutil.WithParent(parent.ID))
	require.NoError(t, r.timeline.Create(ctx, parent))
	require.NoError(t, r.timeline.Create(ctx, child))

	buf := r.collections().TimelineBuffer(proj.ID)
	require.NoError(t, buf.Load(ctx))

	// Another session removed it first.
	require.NoError(t, r.timeline.Delete(ctx, parent.ID))
	require.NoError(t, buf.Delete(ctx, parent.ID))

	snap := buf.Snapshot()
	require.Len(t, snap.Items, 1)
	assert.Nil(t, snap.Items[0].ParentID, "children are re-rooted")

	_, err := buf.Publish(ctx)
	require.NoError(t, err)
	stored, err := r.timeline.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.ParentID)
	assert.Equal(t, 0, stored.Order)
}

func TestTimelineBuffer_RejectsParentCycle(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := r.seedProject(t, "Cycle")
	a := testutil.NewTestTimelineItem(proj.ID, "A", testutil.WithOrder(0))
	b := testutil.NewTestTimelineItem(proj.ID, "B", testutil.WithOrder(1), testutil.WithParent(a.ID))
	require.NoError(t, r.timeline.Create(ctx, a))
	require.NoError(t, r.timeline.Create(ctx, b))

	buf := r.collections().TimelineBuffer(proj.ID)
	require.NoError(t, buf.Load(ctx))

	err := buf.EditField(a.ID, domain.FieldParentID, b.ID)
	require.ErrorIs(t, err, editbuffer.ErrInvalidField)
	assert.False(t, buf.Dirty())

	err = buf.EditField(b.ID, domain.FieldParentID, "elsewhere")
	require.ErrorIs(t, err, editbuffer.ErrInvalidField)
}

func TestTimelineBuffer_FailedPublishStaysDirty(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := r.seedProject(t, "Offline")
	for i, title := range []string{"A", "B", "C"} {
		require.NoError(t, r.timeline.Create(ctx, testutil.NewTestTimelineItem(proj.ID, title, testutil.WithOrder(i))))
	}

	injected := errors.New("network unreachable")
	failing := testutil.NewFailingDB(r.db, "UPDATE timeline_items", 2, injected)
	cols := NewCollections(r.projects, repository.NewSQLiteTimelineItemRepo(failing), r.testing, testOptions())
	buf := cols.TimelineBuffer(proj.ID)
	require.NoError(t, buf.Load(ctx))
	require.NoError(t, buf.EditField(buf.Snapshot().Items[0].ID, domain.FieldTitle, "A2"))

	res, err := PublishObserved(ctx, cols.Observer(), domain.CollectionTimeline, buf)
	require.ErrorIs(t, err, injected)
	assert.Equal(t, 3, res.Batch.Attempted, "every update is attempted")
	assert.Equal(t, 1, res.Batch.Failed)
	assert.Nil(t, res.PublishedAt)
	assert.Equal(t, editbuffer.StateError, buf.State())
	assert.True(t, buf.Dirty())

	fetched, err := r.projects.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.False(t, fetched.TimelinePublished)

	_, err = buf.Publish(ctx)
	require.NoError(t, err, "retrying the publish succeeds once the store recovers")
	assert.False(t, buf.Dirty())
}

func TestTestingBuffer_PublishMarksTestingOnly(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	proj := r.seedProject(t, "QA")
	for i, title := range []string{"Login works", "Checkout works"} {
		require.NoError(t, r.testing.Create(ctx, testutil.NewTestTestingCard(proj.ID, title, i)))
	}

	buf := r.collections().TestingBuffer(proj.ID)
	require.NoError(t, buf.Load(ctx))
	first := buf.Snapshot().Items[0]
	require.NoError(t, buf.EditField(first.ID, domain.FieldCompleted, "true"))
	require.NoError(t, buf.Reorder(0, 1))
	_, err := buf.Publish(ctx)
	require.NoError(t, err)

	cards, err := r.testing.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Checkout works", cards[0].Title)
	assert.Equal(t, "Login works", cards[1].Title)
	assert.True(t, cards[1].IsCompleted)

	fetched, err := r.projects.GetByID(ctx, proj.ID)
	require.NoError(t, err)
	assert.True(t, fetched.TestingPublished)
	assert.False(t, fetched.TimelinePublished)
}

func TestRegistries_OneBufferPerProject(t *testing.T) {
	r := setupRepos(t)
	cols := r.collections()
	reg := cols.TimelineRegistry()

	ctx := context.Background()
	proj := r.seedProject(t, "Registry")
	require.NoError(t, r.timeline.Create(ctx, testutil.NewTestTimelineItem(proj.ID, "Kickoff")))

	a, err := reg.Get(ctx, proj.ID)
	require.NoError(t, err)
	b, err := reg.Get(ctx, proj.ID)
	require.NoError(t, err)
	assert.Same(t, a, b)
	require.Len(t, a.Snapshot().Items, 1, "first Get loads the stored timeline")
	assert.Equal(t, "Kickoff", a.Snapshot().Items[0].Title)

	testingReg := cols.TestingRegistry()
	tb, err := testingReg.Get(ctx, proj.ID)
	require.NoError(t, err)
	assert.Equal(t, proj.ID, tb.ProjectID())
}
