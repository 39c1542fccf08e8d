package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/alexanderramin/waypoint/internal/db"
	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/alexanderramin/waypoint/internal/testutil"
	"github.com/stretchr/testify/require"
)

type testRepos struct {
	db            *sql.DB
	projects      repository.ProjectRepo
	settings      repository.SettingsRepo
	timeline      repository.TimelineItemRepo
	testing       repository.TestingCardRepo
	templates     repository.TemplateRepo
	templateItems repository.TemplateItemRepo
	uow           db.UnitOfWork
}

func setupRepos(t *testing.T) *testRepos {
	t.Helper()
	database := testutil.NewTestDB(t)
	return &testRepos{
		db:            database,
		projects:      repository.NewSQLiteProjectRepo(database),
		settings:      repository.NewSQLiteSettingsRepo(database),
		timeline:      repository.NewSQLiteTimelineItemRepo(database),
		testing:       repository.NewSQLiteTestingCardRepo(database),
		templates:     repository.NewSQLiteTemplateRepo(database),
		templateItems: repository.NewSQLiteTemplateItemRepo(database),
		uow:           testutil.NewTestUoW(database),
	}
}

var fixedNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

func testOptions() Options {
	return Options{
		Concurrency: 4,
		Now:         func() time.Time { return fixedNow },
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}
}

func (r *testRepos) templateService() TemplateService {
	return NewTemplateService(r.templates, r.templateItems, r.projects, r.timeline, r.uow, testOptions())
}

func (r *testRepos) seedProject(t *testing.T, name string, opts ...testutil.ProjectOption) *domain.Project {
	t.Helper()
	p := testutil.NewTestProject(name, opts...)
	require.NoError(t, r.projects.Create(context.Background(), p))
	return p
}

// seedWebsiteLaunch stores Kickoff (+0), Design Review (+7, under Kickoff)
// and Go-Live (+30).
func (r *testRepos) seedWebsiteLaunch(t *testing.T) *domain.TimelineTemplate {
	t.Helper()
	ctx := context.Background()
	tpl := testutil.NewTestTemplate("Website Launch")
	require.NoError(t, r.templates.Create(ctx, tpl))

	kickoff := testutil.NewTestTemplateItem(tpl.ID, "Kickoff", 0, testutil.WithOffset(0))
	review := testutil.NewTestTemplateItem(tpl.ID, "Design Review", 1,
		testutil.WithOffset(7), testutil.WithTemplateParent(kickoff.ID))
	golive := testutil.NewTestTemplateItem(tpl.ID, "Go-Live", 2, testutil.WithOffset(30))
	for _, it := range []*domain.TimelineTemplateItem{kickoff, review, golive} {
		require.NoError(t, r.templateItems.Create(ctx, it))
	}
	return tpl
}

func byTitle(items []*domain.TimelineItem) map[string]*domain.TimelineItem {
	out := make(map[string]*domain.TimelineItem, len(items))
	for _, it := range items {
		out[it.Title] = it
	}
	return out
}
