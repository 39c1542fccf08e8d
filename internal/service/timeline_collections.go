package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/editbuffer"
	"github.com/alexanderramin/waypoint/internal/repository"
)

type (
	TimelineBuffer   = editbuffer.Buffer[*domain.TimelineItem]
	TestingBuffer    = editbuffer.Buffer[*domain.TestingCard]
	TimelineRegistry = editbuffer.Registry[*domain.TimelineItem]
	TestingRegistry  = editbuffer.Registry[*domain.TestingCard]
)

// Collections builds edit buffers over the stored project lists.
type Collections struct {
	timeline timelineStore
	testing  testingStore
	opts     Options
	observer UseCaseObserver
}

func NewCollections(
	projects repository.ProjectRepo,
	timeline repository.TimelineItemRepo,
	testing repository.TestingCardRepo,
	opts Options,
	observers ...UseCaseObserver,
) *Collections {
	opts = opts.withDefaults()
	return &Collections{
		timeline: timelineStore{items: timeline, projects: projects, now: opts.Now},
		testing:  testingStore{cards: testing, projects: projects},
		opts:     opts,
		observer: useCaseObserverOrNoop(observers),
	}
}

// TimelineBuffer returns an unloaded buffer over a project's timeline.
// Field edits are checked against the whole tree.
func (c *Collections) TimelineBuffer(projectID string) *TimelineBuffer {
	return editbuffer.New[*domain.TimelineItem](projectID, c.timeline,
		editbuffer.WithConcurrency[*domain.TimelineItem](c.opts.Concurrency),
		editbuffer.WithValidator[*domain.TimelineItem](domain.ValidateTimelineTree),
		editbuffer.WithClock[*domain.TimelineItem](c.opts.Now),
	)
}

// TestingBuffer returns an unloaded buffer over a project's testing cards.
func (c *Collections) TestingBuffer(projectID string) *TestingBuffer {
	return editbuffer.New[*domain.TestingCard](projectID, c.testing,
		editbuffer.WithConcurrency[*domain.TestingCard](c.opts.Concurrency),
		editbuffer.WithClock[*domain.TestingCard](c.opts.Now),
	)
}

func (c *Collections) TimelineRegistry() *TimelineRegistry {
	return editbuffer.NewRegistry(c.TimelineBuffer)
}

func (c *Collections) TestingRegistry() *TestingRegistry {
	return editbuffer.NewRegistry(c.TestingBuffer)
}

// Observer returns the observer publishes should report to.
func (c *Collections) Observer() UseCaseObserver { return c.observer }

// PublishObserved publishes b and reports the outcome as a use case.
func PublishObserved[T editbuffer.Element[T]](ctx context.Context, observer UseCaseObserver, collection domain.Collection, b *editbuffer.Buffer[T]) (result contract.PublishResult, err error) {
	startedAt := time.Now().UTC()
	result = contract.PublishResult{ProjectID: b.ProjectID(), Collection: collection}
	defer func() {
		observeUseCase(ctx, observer, "publish-"+string(collection), startedAt, err, map[string]any{
			"project_id": result.ProjectID,
			"batch":      result.Batch.String(),
		})
	}()

	result.Batch, err = b.Publish(ctx)
	if err != nil {
		return result, err
	}
	result.PublishedAt = b.Snapshot().LastPublished
	return result, nil
}

type timelineStore struct {
	items    repository.TimelineItemRepo
	projects repository.ProjectRepo
	now      func() time.Time
}

func (s timelineStore) List(ctx context.Context, projectID string) ([]*domain.TimelineItem, error) {
	return s.items.ListByProject(ctx, projectID)
}

// Create dates a new item at the project's start, or today.
func (s timelineStore) Create(ctx context.Context, projectID, title string, order int) (*domain.TimelineItem, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("loading project: %w", err)
	}
	it := &domain.TimelineItem{
		ProjectID: projectID,
		Title:     title,
		DueDate:   project.AnchorDate(s.now()),
		Order:     order,
	}
	if err := s.items.Create(ctx, it); err != nil {
		return nil, err
	}
	return it, nil
}

func (s timelineStore) Update(ctx context.Context, it *domain.TimelineItem) error {
	return s.items.Update(ctx, it)
}

func (s timelineStore) Delete(ctx context.Context, id string) error {
	return s.items.Delete(ctx, id)
}

func (s timelineStore) MarkPublished(ctx context.Context, projectID string, at time.Time) error {
	return s.projects.MarkPublished(ctx, projectID, domain.CollectionTimeline, at)
}

type testingStore struct {
	cards    repository.TestingCardRepo
	projects repository.ProjectRepo
}

func (s testingStore) List(ctx context.Context, projectID string) ([]*domain.TestingCard, error) {
	return s.cards.ListByProject(ctx, projectID)
}

func (s testingStore) Create(ctx context.Context, projectID, title string, order int) (*domain.TestingCard, error) {
	c := &domain.TestingCard{ProjectID: projectID, Title: title, Order: order}
	if err := s.cards.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s testingStore) Update(ctx context.Context, c *domain.TestingCard) error {
	return s.cards.Update(ctx, c)
}

func (s testingStore) Delete(ctx context.Context, id string) error {
	return s.cards.Delete(ctx, id)
}

func (s testingStore) MarkPublished(ctx context.Context, projectID string, at time.Time) error {
	return s.projects.MarkPublished(ctx, projectID, domain.CollectionTesting, at)
}
