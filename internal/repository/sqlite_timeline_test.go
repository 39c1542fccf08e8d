package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedProject(t *testing.T, repo *SQLiteProjectRepo, name string) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject(name)
	require.NoError(t, repo.Create(context.Background(), p))
	return p
}

func TestTimelineItemRepo_CreateAndGet(t *testing.T) {
	db := testutil.NewTestDB(t)
	proj := seedProject(t, NewSQLiteProjectRepo(db), "Site")
	repo := NewSQLiteTimelineItemRepo(db)
	ctx := context.Background()

	due := testutil.Date(2024, time.February, 29)
	it := testutil.NewTestTimelineItem(proj.ID, "Design", testutil.WithDueDate(due),
		testutil.WithAssignee("dana"), testutil.WithCompleted(), testutil.WithOrder(4))
	require.NoError(t, repo.Create(ctx, it))

	got, err := repo.GetByID(ctx, it.ID)
	require.NoError(t, err)
	assert.Equal(t, "Design", got.Title)
	assert.True(t, due.Equal(got.DueDate))
	assert.Equal(t, 4, got.Order)
	assert.True(t, got.IsCompleted)
	require.NotNil(t, got.AssignedTo)
	assert.Equal(t, "dana", *got.AssignedTo)
	assert.Nil(t, got.ParentID)
}

func TestTimelineItemRepo_ListByProjectOrdered(t *testing.T) {
	db := testutil.NewTestDB(t)
	projects := NewSQLiteProjectRepo(db)
	p1 := seedProject(t, projects, "One")
	p2 := seedProject(t, projects, "Two")
	repo := NewSQLiteTimelineItemRepo(db)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, testutil.NewTestTimelineItem(p1.ID, "C", testutil.WithOrder(2))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTimelineItem(p1.ID, "A", testutil.WithOrder(0))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTimelineItem(p1.ID, "B", testutil.WithOrder(1))))
	require.NoError(t, repo.Create(ctx, testutil.NewTestTimelineItem(p2.ID, "Other")))

	items, err := repo.ListByProject(ctx, p1.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "A", items[0].Title)
	assert.Equal(t, "B", items[1].Title)
	assert.Equal(t, "C", items[2].Title)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 4)
}

func TestTimelineItemRepo_UpdateAndSetParent(t *testing.T) {
	db := testutil.NewTestDB(t)
	proj := seedProject(t, NewSQLiteProjectRepo(db), "Site")
	repo := NewSQLiteTimelineItemRepo(db)
	ctx := context.Background()

	parent := testutil.NewTestTimelineItem(proj.ID, "Phase")
	child := testutil.NewTestTimelineItem(proj.ID, "Task")
	require.NoError(t, repo.Create(ctx, parent))
	require.NoError(t, repo.Create(ctx, child))

	require.NoError(t, repo.SetParent(ctx, child.ID, &parent.ID))
	got, err := repo.GetByID(ctx, child.ID)
	require.NoError(t, err)
	require.NotNil(t, got.ParentID)
	assert.Equal(t, parent.ID, *got.ParentID)

	got.Title = "Renamed"
	got.Order = 7
	got.AssignedTo = nil
	require.NoError(t, repo.Update(ctx, got))

	again, err := repo.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", again.Title)
	assert.Equal(t, 7, again.Order)
	assert.Equal(t, parent.ID, *again.ParentID)

	require.NoError(t, repo.SetParent(ctx, child.ID, nil))
	rooted, err := repo.GetByID(ctx, child.ID)
	require.NoError(t, err)
	assert.Nil(t, rooted.ParentID)
}

func TestTimelineItemRepo_MissingRowsReportNotFound(t *testing.T) {
	db := testutil.NewTestDB(t)
	repo := NewSQLiteTimelineItemRepo(db)
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Update(ctx, &domain.TimelineItem{ID: "nope", Title: "x"}), ErrNotFound)
	assert.ErrorIs(t, repo.SetParent(ctx, "nope", nil), ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, "nope"), ErrNotFound)
}

func TestTestingCardRepo_CRUD(t *testing.T) {
	db := testutil.NewTestDB(t)
	proj := seedProject(t, NewSQLiteProjectRepo(db), "QA")
	repo := NewSQLiteTestingCardRepo(db)
	ctx := context.Background()

	second := testutil.NewTestTestingCard(proj.ID, "Checkout works", 1)
	first := testutil.NewTestTestingCard(proj.ID, "Login works", 0)
	require.NoError(t, repo.Create(ctx, second))
	require.NoError(t, repo.Create(ctx, first))

	cards, err := repo.ListByProject(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, cards, 2)
	assert.Equal(t, "Login works", cards[0].Title)

	first.IsCompleted = true
	first.Order = 5
	require.NoError(t, repo.Update(ctx, first))
	got, err := repo.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, 5, got.Order)

	require.NoError(t, repo.Delete(ctx, first.ID))
	assert.ErrorIs(t, repo.Delete(ctx, first.ID), ErrNotFound)
	_, err = repo.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBestEffortRemover(t *testing.T) {
	db := testutil.NewTestDB(t)
	proj := seedProject(t, NewSQLiteProjectRepo(db), "Site")
	repo := NewSQLiteTimelineItemRepo(db)
	ctx := context.Background()

	it := testutil.NewTestTimelineItem(proj.ID, "Temp")
	require.NoError(t, repo.Create(ctx, it))

	remover := NewBestEffortRemover(repo.Delete)

	present, err := remover.Remove(ctx, it.ID)
	require.NoError(t, err)
	assert.True(t, present)

	// Second delete of the same record is not an error.
	present, err = remover.Remove(ctx, it.ID)
	require.NoError(t, err)
	assert.False(t, present)
}

func TestBestEffortRemover_PropagatesOtherErrors(t *testing.T) {
	boom := assert.AnError
	remover := NewBestEffortRemover(func(context.Context, string) error { return boom })

	_, err := remover.Remove(context.Background(), "x")
	assert.ErrorIs(t, err, boom)
}
