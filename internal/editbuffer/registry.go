package editbuffer

import (
	"context"
	"sync"
)

// Registry keeps one loaded buffer per project for long-lived surfaces.
type Registry[T Element[T]] struct {
	mu      sync.Mutex
	entries map[string]*registryEntry[T]
	factory func(projectID string) *Buffer[T]
}

// registryEntry is closed once its first Load has finished.
type registryEntry[T Element[T]] struct {
	buf   *Buffer[T]
	ready chan struct{}
	err   error
}

func NewRegistry[T Element[T]](factory func(projectID string) *Buffer[T]) *Registry[T] {
	return &Registry[T]{entries: make(map[string]*registryEntry[T]), factory: factory}
}

// Get returns the project's buffer. The first caller creates and loads it;
// concurrent callers wait for that load, so no caller ever sees a buffer
// that has not been loaded. A failed load is forgotten and retried by the
// next Get.
func (r *Registry[T]) Get(ctx context.Context, projectID string) (*Buffer[T], error) {
	r.mu.Lock()
	e, ok := r.entries[projectID]
	if !ok {
		e = &registryEntry[T]{buf: r.factory(projectID), ready: make(chan struct{})}
		r.entries[projectID] = e
	}
	r.mu.Unlock()

	if !ok {
		e.err = e.buf.Load(ctx)
		if e.err != nil {
			r.mu.Lock()
			if r.entries[projectID] == e {
				delete(r.entries, projectID)
			}
			r.mu.Unlock()
		}
		close(e.ready)
	}

	select {
	case <-e.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if e.err != nil {
		return nil, e.err
	}
	return e.buf, nil
}

// Drop forgets the project's buffer so the next Get loads a fresh one.
func (r *Registry[T]) Drop(projectID string) {
	r.mu.Lock()
	delete(r.entries, projectID)
	r.mu.Unlock()
}

func (r *Registry[T]) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}
