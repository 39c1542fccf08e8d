package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/alexanderramin/waypoint/internal/service"
	"github.com/alexanderramin/waypoint/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, time.March, 10, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	app      *App
	projects repository.ProjectRepo
	timeline repository.TimelineItemRepo
}

// testApp wires a full App backed by an in-memory DB for CLI integration tests.
func testApp(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)

	projRepo := repository.NewSQLiteProjectRepo(db)
	timelineRepo := repository.NewSQLiteTimelineItemRepo(db)
	opts := service.Options{
		Concurrency: 2,
		Now:         func() time.Time { return fixedNow },
		Sleep:       func(context.Context, time.Duration) error { return nil },
	}

	app := &App{
		Projects: service.NewProjectService(projRepo, opts),
		Templates: service.NewTemplateService(
			repository.NewSQLiteTemplateRepo(db),
			repository.NewSQLiteTemplateItemRepo(db),
			projRepo, timelineRepo, testutil.NewTestUoW(db), opts,
		),
		Features:    service.NewFeatureService(projRepo, repository.NewSQLiteSettingsRepo(db)),
		Collections: service.NewCollections(projRepo, timelineRepo, repository.NewSQLiteTestingCardRepo(db), opts),
		Now:         func() time.Time { return fixedNow },
		// Interactive prompts stay off: IsInteractive is nil.
	}
	return &testEnv{app: app, projects: projRepo, timeline: timelineRepo}
}

// executeCmd runs a cobra command and captures stdout/stderr.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func (e *testEnv) seedProject(t *testing.T, shortID string, titles ...string) *domain.Project {
	t.Helper()
	ctx := context.Background()
	p := testutil.NewTestProject("CLI Project", testutil.WithShortID(shortID))
	require.NoError(t, e.projects.Create(ctx, p))
	for i, title := range titles {
		require.NoError(t, e.timeline.Create(ctx, testutil.NewTestTimelineItem(p.ID, title, testutil.WithOrder(i))))
	}
	return p
}

func (e *testEnv) titles(t *testing.T, projectID string) []string {
	t.Helper()
	items, err := e.timeline.ListByProject(context.Background(), projectID)
	require.NoError(t, err)
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.Title)
	}
	return out
}

const launchYAML = `name: Website Launch
category: web
items:
  - key: kickoff
    title: Kickoff
  - key: review
    parent: kickoff
    title: Design Review
    offset: "7"
  - key: golive
    title: Go-Live
    offset: "30"
`

func writeTemplateFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// --- Root command ---

func TestRootCmd_NoArgs_ShowsHelp(t *testing.T) {
	env := testApp(t)

	output, err := executeCmd(t, env.app)
	require.NoError(t, err)
	assert.Contains(t, output, "waypoint")
}

// --- project commands ---

func TestProjectAdd_AndList(t *testing.T) {
	env := testApp(t)

	out, err := executeCmd(t, env.app, "project", "add", "--name", "Acme Site", "--id", "acme01", "--start", "2025-01-06")
	require.NoError(t, err)
	assert.Contains(t, out, "Created project Acme Site [ACME01]")

	out, err = executeCmd(t, env.app, "project", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Acme Site")
	assert.Contains(t, out, "ACME01")
}

func TestProjectAdd_InvalidStart(t *testing.T) {
	env := testApp(t)

	_, err := executeCmd(t, env.app, "project", "add", "--name", "Acme", "--start", "06/01/2025")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid start date")
}

func TestProjectUpdate_ClearsStartDate(t *testing.T) {
	env := testApp(t)
	p := env.seedProject(t, "UPD01")

	_, err := executeCmd(t, env.app, "project", "update", "UPD01", "--start", "", "--client", "Globex")
	require.NoError(t, err)

	got, err := env.projects.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.StartDate)
	assert.Equal(t, "Globex", got.ClientName)
}

func TestProjectShow_ListsFeatures(t *testing.T) {
	env := testApp(t)
	env.seedProject(t, "SHOW01")

	out, err := executeCmd(t, env.app, "project", "show", "show01")
	require.NoError(t, err)
	assert.Contains(t, out, "FEATURES")
	assert.Contains(t, out, "testing")
}

// --- timeline commands ---

func TestTimeline_MoveAndSetPublish(t *testing.T) {
	env := testApp(t)
	p := env.seedProject(t, "TML01", "A", "B", "C")

	out, err := executeCmd(t, env.app, "timeline", "move", "TML01", "3", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Published timeline")
	assert.Equal(t, []string{"C", "A", "B"}, env.titles(t, p.ID))

	_, err = executeCmd(t, env.app, "timeline", "set", "TML01", "1", "title", "C2")
	require.NoError(t, err)
	assert.Equal(t, []string{"C2", "A", "B"}, env.titles(t, p.ID))

	out, err = executeCmd(t, env.app, "timeline", "show", "TML01")
	require.NoError(t, err)
	assert.Contains(t, out, "C2")

	got, err := env.projects.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.True(t, got.TimelinePublished)
}

func TestTimeline_SetParentByPosition(t *testing.T) {
	env := testApp(t)
	p := env.seedProject(t, "PAR01", "Kickoff", "Review")

	_, err := executeCmd(t, env.app, "timeline", "set", "PAR01", "2", "parent_id", "1")
	require.NoError(t, err)

	items, err := env.timeline.ListByProject(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.NotNil(t, items[1].ParentID)
	assert.Equal(t, items[0].ID, *items[1].ParentID)
}

func TestTimeline_RejectsBadPosition(t *testing.T) {
	env := testApp(t)
	env.seedProject(t, "POS01", "A")

	_, err := executeCmd(t, env.app, "timeline", "move", "POS01", "0", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be a number from 1")

	_, err = executeCmd(t, env.app, "timeline", "set", "POS01", "5", "title", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "index out of range")
}

func TestTimelineApply_NeedsYesWithoutTerminal(t *testing.T) {
	env := testApp(t)
	p := env.seedProject(t, "APP01", "Old item")
	path := writeTemplateFile(t, t.TempDir(), "launch.yaml", launchYAML)
	_, err := executeCmd(t, env.app, "template", "import", path)
	require.NoError(t, err)

	_, err = executeCmd(t, env.app, "timeline", "apply", "APP01", "Website Launch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--yes")
	assert.Equal(t, []string{"Old item"}, env.titles(t, p.ID))

	out, err := executeCmd(t, env.app, "timeline", "apply", "APP01", "1", "--yes")
	require.NoError(t, err)
	assert.Contains(t, out, "Applied template Website Launch")
	assert.Equal(t, []string{"Kickoff", "Design Review", "Go-Live"}, env.titles(t, p.ID))
}

func TestTimelineSaveTemplate(t *testing.T) {
	env := testApp(t)
	env.seedProject(t, "SAV01", "Brief", "Build")

	_, err := executeCmd(t, env.app, "timeline", "save-template", "SAV01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--name is required")

	out, err := executeCmd(t, env.app, "timeline", "save-template", "SAV01", "--name", "Small Site", "--category", "web")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved template Small Site with 2 items")

	out, err = executeCmd(t, env.app, "template", "show", "small site")
	require.NoError(t, err)
	assert.Contains(t, out, "Brief")
	assert.Contains(t, out, "day 0")
}

func TestCollectionEdit_NeedsTerminal(t *testing.T) {
	env := testApp(t)
	env.seedProject(t, "EDT01")

	_, err := executeCmd(t, env.app, "timeline", "edit", "EDT01")
	assert.ErrorIs(t, err, errNotInteractive)
}

// --- testing commands ---

func TestTesting_AddRemove(t *testing.T) {
	env := testApp(t)
	env.seedProject(t, "TST01")

	out, err := executeCmd(t, env.app, "testing", "add", "TST01", "Check contact form")
	require.NoError(t, err)
	assert.Contains(t, out, "Added #1 Check contact form")

	out, err = executeCmd(t, env.app, "testing", "add", "TST01", "Check checkout")
	require.NoError(t, err)
	assert.Contains(t, out, "Added #2")

	out, err = executeCmd(t, env.app, "testing", "remove", "TST01", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Published testing")

	out, err = executeCmd(t, env.app, "testing", "show", "TST01")
	require.NoError(t, err)
	assert.Contains(t, out, "Check checkout")
	assert.NotContains(t, out, "Check contact form")
}

// --- template commands ---

func TestTemplate_ImportExportRoundTrip(t *testing.T) {
	env := testApp(t)
	dir := t.TempDir()
	writeTemplateFile(t, dir, "launch.yaml", launchYAML)

	out, err := executeCmd(t, env.app, "template", "import", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported Website Launch (3 items)")

	out, err = executeCmd(t, env.app, "template", "import", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing to import.")

	exported := filepath.Join(dir, "out", "launch.yaml")
	require.NoError(t, os.MkdirAll(filepath.Dir(exported), 0o755))
	_, err = executeCmd(t, env.app, "template", "export", "website launch", "-o", exported)
	require.NoError(t, err)
	data, err := os.ReadFile(exported)
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: Website Launch")
	assert.Contains(t, string(data), "Design Review")
}

func TestTemplate_DeactivateHidesFromList(t *testing.T) {
	env := testApp(t)
	path := writeTemplateFile(t, t.TempDir(), "launch.yaml", launchYAML)
	_, err := executeCmd(t, env.app, "template", "import", path)
	require.NoError(t, err)

	out, err := executeCmd(t, env.app, "template", "deactivate", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "now inactive")

	out, err = executeCmd(t, env.app, "template", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No templates found.")

	out, err = executeCmd(t, env.app, "template", "list", "--all")
	require.NoError(t, err)
	assert.Contains(t, out, "Website Launch")
	assert.Contains(t, out, "inactive")
}

// --- feature and settings commands ---

func TestFeature_DisableBlocksCollection(t *testing.T) {
	env := testApp(t)
	env.seedProject(t, "FEA01")

	_, err := executeCmd(t, env.app, "feature", "disable", "FEA01", "testing")
	require.NoError(t, err)

	_, err = executeCmd(t, env.app, "testing", "show", "FEA01")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrFeatureDisabled)

	_, err = executeCmd(t, env.app, "feature", "disable", "FEA01", "jukebox")
	require.Error(t, err)
	assert.ErrorIs(t, err, service.ErrValidation)
}

func TestSettings_GlobalSwitchWins(t *testing.T) {
	env := testApp(t)
	env.seedProject(t, "SET01")

	out, err := executeCmd(t, env.app, "settings", "feature", "timeline", "off")
	require.NoError(t, err)
	assert.Contains(t, out, "globally off")

	_, err = executeCmd(t, env.app, "timeline", "show", "SET01")
	assert.ErrorIs(t, err, service.ErrFeatureDisabled)

	_, err = executeCmd(t, env.app, "feature", "enable", "SET01", "timeline")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled globally")

	_, err = executeCmd(t, env.app, "settings", "feature", "timeline", "maybe")
	assert.Error(t, err)
}
