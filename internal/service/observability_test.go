package service

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (r *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func TestUseCaseObserverOrNoop(t *testing.T) {
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop(nil))
	assert.IsType(t, NoopUseCaseObserver{}, useCaseObserverOrNoop([]UseCaseObserver{nil}))

	one := &recordingObserver{}
	assert.Same(t, one, useCaseObserverOrNoop([]UseCaseObserver{nil, one}))

	two := &recordingObserver{}
	fan := useCaseObserverOrNoop([]UseCaseObserver{one, nil, two})
	observeUseCase(context.Background(), fan, "apply-template", time.Now(), nil, nil)
	assert.Len(t, one.events, 1)
	assert.Len(t, two.events, 1)
}

func TestLogUseCaseObserver_WritesSortedFieldsAndErrors(t *testing.T) {
	var logs bytes.Buffer
	obs := NewLogUseCaseObserver(&logs)

	observeUseCase(context.Background(), obs, "publish-testing", time.Now(), nil, map[string]any{
		"project_id": "p1",
		"batch":      "3/3",
	})
	observeUseCase(context.Background(), obs, "apply-template", time.Now(), errors.New("store down"), nil)

	out := logs.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "use_case=publish-testing")
	assert.Regexp(t, `batch=3/3 project_id=p1`, out)
	assert.Contains(t, out, "level=ERROR")
	assert.Contains(t, out, "success=false")
	assert.Contains(t, out, `error="store down"`)
}

func TestProjectService_ReportsUseCases(t *testing.T) {
	r := setupRepos(t)
	rec := &recordingObserver{}
	svc := NewProjectService(r.projects, testOptions(), rec)
	p := r.seedProject(t, "Observed")

	name := "Renamed"
	_, err := svc.UpdateDetails(context.Background(), p.ID, contract.ProjectDetailsPatch{Name: &name})
	require.NoError(t, err)

	require.Len(t, rec.events, 1)
	ev := rec.events[0]
	assert.Equal(t, "update-project-details", ev.Name)
	assert.True(t, ev.Success())
	assert.Equal(t, p.ID, ev.Fields["project_id"])
}
