package editbuffer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRegistry(store *fakeStore) *Registry[*domain.TimelineItem] {
	return NewRegistry(func(projectID string) *Buffer[*domain.TimelineItem] {
		return New[*domain.TimelineItem](projectID, store)
	})
}

func TestRegistry_OneLoadedBufferPerProject(t *testing.T) {
	store := newFakeStore("A", "B")
	reg := newTestRegistry(store)
	ctx := context.Background()

	a, err := reg.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B"}, titles(a.Snapshot().Items))

	again, err := reg.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Same(t, a, again)
	assert.Equal(t, 1, store.listCalls, "second Get reuses the loaded buffer")

	other, err := reg.Get(ctx, "p2")
	require.NoError(t, err)
	assert.NotSame(t, a, other)
	assert.Equal(t, "p2", other.ProjectID())
	assert.Equal(t, 2, reg.Len())

	reg.Drop("p1")
	fresh, err := reg.Get(ctx, "p1")
	require.NoError(t, err)
	assert.NotSame(t, a, fresh)
}

func TestRegistry_ConcurrentGetWaitsForFirstLoad(t *testing.T) {
	store := newFakeStore("A", "B", "C")
	store.listStarted = make(chan struct{}, 1)
	store.listBlock = make(chan struct{})
	reg := newTestRegistry(store)
	ctx := context.Background()

	first := make(chan *Buffer[*domain.TimelineItem], 1)
	go func() {
		b, err := reg.Get(ctx, "p1")
		assert.NoError(t, err)
		first <- b
	}()
	<-store.listStarted

	second := make(chan *Buffer[*domain.TimelineItem], 1)
	go func() {
		b, err := reg.Get(ctx, "p1")
		assert.NoError(t, err)
		second <- b
	}()

	select {
	case <-second:
		t.Fatal("second Get returned before the first load finished")
	case <-time.After(50 * time.Millisecond):
	}

	close(store.listBlock)
	b1, b2 := <-first, <-second
	assert.Same(t, b1, b2)
	assert.Equal(t, []string{"A", "B", "C"}, titles(b2.Snapshot().Items))
	assert.Equal(t, 1, store.listCalls)
}

func TestRegistry_FailedLoadIsRetried(t *testing.T) {
	store := newFakeStore("A")
	store.listErr = errors.New("store offline")
	reg := newTestRegistry(store)
	ctx := context.Background()

	_, err := reg.Get(ctx, "p1")
	require.ErrorContains(t, err, "store offline")
	assert.Equal(t, 0, reg.Len())

	store.listErr = nil
	b, err := reg.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, titles(b.Snapshot().Items))
}

func TestRegistry_WaitingGetHonoursContext(t *testing.T) {
	store := newFakeStore("A")
	store.listStarted = make(chan struct{}, 1)
	store.listBlock = make(chan struct{})
	reg := newTestRegistry(store)

	done := make(chan struct{})
	go func() {
		_, _ = reg.Get(context.Background(), "p1")
		close(done)
	}()
	<-store.listStarted

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := reg.Get(ctx, "p1")
	require.ErrorIs(t, err, context.Canceled)

	close(store.listBlock)
	<-done
}
