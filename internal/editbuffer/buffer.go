// Package editbuffer holds the working copy of an editable project list
// (timeline items, testing cards). Edits stay local until Publish writes the
// whole list back in display order.
package editbuffer

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/alexanderramin/waypoint/internal/repository"
	"golang.org/x/sync/errgroup"
)

type State string

const (
	StateClean      State = "clean"
	StateDirty      State = "dirty"
	StatePublishing State = "publishing"
	StateError      State = "error"
)

// Element is a record the buffer can edit.
type Element[T any] interface {
	ElementID() string
	SetOrder(order int)
	ApplyField(field, value string) error
	Clone() T
}

// ParentLinked is implemented by elements that form a tree. Deleting a
// parent turns its children into roots.
type ParentLinked interface {
	ParentRef() *string
	SetParentRef(id *string)
}

// Store is the persistence a buffer reads from and publishes to.
type Store[T any] interface {
	List(ctx context.Context, projectID string) ([]T, error)
	// Create persists a new element and returns it with its assigned ID.
	Create(ctx context.Context, projectID, title string, order int) (T, error)
	Update(ctx context.Context, item T) error
	Delete(ctx context.Context, id string) error
	MarkPublished(ctx context.Context, projectID string, at time.Time) error
}

// Validator checks a whole candidate list after a field edit.
type Validator[T any] func(items []T) error

type Option[T Element[T]] func(*Buffer[T])

// WithConcurrency bounds the number of in-flight updates during Publish.
func WithConcurrency[T Element[T]](n int) Option[T] {
	return func(b *Buffer[T]) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithValidator installs a list-level check run after every field edit.
func WithValidator[T Element[T]](v Validator[T]) Option[T] {
	return func(b *Buffer[T]) { b.validate = v }
}

// WithClock overrides the publish timestamp source.
func WithClock[T Element[T]](now func() time.Time) Option[T] {
	return func(b *Buffer[T]) { b.now = now }
}

const defaultConcurrency = 8

// Buffer is the working copy of one project's list. Safe for concurrent use.
type Buffer[T Element[T]] struct {
	projectID   string
	store       Store[T]
	remover     *repository.BestEffortRemover
	validate    Validator[T]
	concurrency int
	now         func() time.Time

	mu            sync.Mutex
	items         []T
	state         State
	lastErr       error
	lastPublished *time.Time
}

func New[T Element[T]](projectID string, store Store[T], opts ...Option[T]) *Buffer[T] {
	b := &Buffer[T]{
		projectID:   projectID,
		store:       store,
		remover:     repository.NewBestEffortRemover(store.Delete),
		concurrency: defaultConcurrency,
		now:         time.Now,
		state:       StateClean,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Buffer[T]) ProjectID() string { return b.projectID }

func (b *Buffer[T]) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Dirty reports whether the buffer holds edits that are not published.
func (b *Buffer[T]) Dirty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dirtyLocked()
}

func (b *Buffer[T]) dirtyLocked() bool {
	return b.state == StateDirty || b.state == StateError
}

// Load replaces the working copy with the stored list and discards local edits.
func (b *Buffer[T]) Load(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StatePublishing {
		return ErrPublishInFlight
	}

	items, err := b.store.List(ctx, b.projectID)
	if err != nil {
		return fmt.Errorf("loading list: %w", err)
	}
	b.items = items
	b.state = StateClean
	b.lastErr = nil
	return nil
}

// EditField sets one field of one element. A rejected edit leaves the
// buffer unchanged.
func (b *Buffer[T]) EditField(id, field, value string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StatePublishing {
		return ErrPublishInFlight
	}

	idx := b.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}

	edited := b.items[idx].Clone()
	if err := edited.ApplyField(field, value); err != nil {
		return err
	}
	if b.validate != nil {
		candidate := make([]T, len(b.items))
		copy(candidate, b.items)
		candidate[idx] = edited
		if err := b.validate(candidate); err != nil {
			return err
		}
	}

	b.items[idx] = edited
	b.state = StateDirty
	return nil
}

// Reorder moves the element at from to position to. Order fields are only
// renumbered on publish.
func (b *Buffer[T]) Reorder(from, to int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StatePublishing {
		return ErrPublishInFlight
	}

	n := len(b.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: move %d -> %d in list of %d", ErrIndexOutOfRange, from, to, n)
	}
	if from == to {
		return nil
	}

	moved := b.items[from]
	rest := append(b.items[:from:from], b.items[from+1:]...)
	out := make([]T, 0, n)
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	b.items = out
	b.state = StateDirty
	return nil
}

// Add creates a new element in the store right away and appends it.
func (b *Buffer[T]) Add(ctx context.Context, title string) (T, error) {
	var zero T
	title = strings.TrimSpace(title)
	if title == "" {
		return zero, fmt.Errorf("%w: title must not be empty", ErrInvalidField)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StatePublishing {
		return zero, ErrPublishInFlight
	}

	created, err := b.store.Create(ctx, b.projectID, title, len(b.items))
	if err != nil {
		return zero, fmt.Errorf("creating item: %w", err)
	}
	b.items = append(b.items, created)
	b.state = StateDirty
	return created.Clone(), nil
}

// Delete removes an element from the store and the buffer. A record that is
// already gone from the store still counts as deleted.
func (b *Buffer[T]) Delete(ctx context.Context, id string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.state == StatePublishing {
		return ErrPublishInFlight
	}

	idx := b.indexLocked(id)
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	if _, err := b.remover.Remove(ctx, id); err != nil {
		return fmt.Errorf("deleting item: %w", err)
	}

	b.items = append(b.items[:idx:idx], b.items[idx+1:]...)
	for i, it := range b.items {
		pl, ok := any(it).(ParentLinked)
		if !ok {
			break
		}
		if p := pl.ParentRef(); p != nil && *p == id {
			child := it.Clone()
			any(child).(ParentLinked).SetParentRef(nil)
			b.items[i] = child
		}
	}
	b.state = StateDirty
	return nil
}

// Publish writes every element with order equal to its display index, then
// marks the project's list as published. The writes run on a context that
// ignores caller cancellation. On failure the buffer keeps its contents and
// moves to StateError so the publish can be retried.
func (b *Buffer[T]) Publish(ctx context.Context) (contract.BatchResult, error) {
	b.mu.Lock()
	if b.state == StatePublishing {
		b.mu.Unlock()
		return contract.BatchResult{}, ErrPublishInFlight
	}
	for i, it := range b.items {
		it.SetOrder(i)
	}
	snapshot := make([]T, len(b.items))
	for i, it := range b.items {
		snapshot[i] = it.Clone()
	}
	b.state = StatePublishing
	b.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	var counter contract.BatchCounter
	g := new(errgroup.Group)
	g.SetLimit(b.concurrency)
	for _, it := range snapshot {
		g.Go(func() error {
			return counter.Observe(b.store.Update(ctx, it))
		})
	}
	err := g.Wait()
	batch := counter.Result()

	var publishedAt time.Time
	if err == nil {
		publishedAt = b.now().UTC()
		if markErr := b.store.MarkPublished(ctx, b.projectID, publishedAt); markErr != nil {
			err = fmt.Errorf("marking published: %w", markErr)
		}
	} else {
		err = fmt.Errorf("publishing %s: %w", batch, err)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err != nil {
		b.state = StateError
		b.lastErr = err
		return batch, err
	}
	b.state = StateClean
	b.lastErr = nil
	b.lastPublished = &publishedAt
	return batch, nil
}

// Snapshot is a point-in-time copy of a buffer for rendering.
type Snapshot[T any] struct {
	ProjectID     string
	Items         []T
	State         State
	Dirty         bool
	LastError     string
	LastPublished *time.Time
}

func (b *Buffer[T]) Snapshot() Snapshot[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	items := make([]T, len(b.items))
	for i, it := range b.items {
		items[i] = it.Clone()
	}
	s := Snapshot[T]{
		ProjectID:     b.projectID,
		Items:         items,
		State:         b.state,
		Dirty:         b.dirtyLocked(),
		LastPublished: b.lastPublished,
	}
	if b.lastErr != nil {
		s.LastError = b.lastErr.Error()
	}
	return s
}

// IndexOf returns the display index of id, or -1.
func (b *Buffer[T]) IndexOf(id string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.indexLocked(id)
}

func (b *Buffer[T]) indexLocked(id string) int {
	for i, it := range b.items {
		if it.ElementID() == id {
			return i
		}
	}
	return -1
}
