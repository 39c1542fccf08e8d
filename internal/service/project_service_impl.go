package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/repository"
	"github.com/google/uuid"
)

type projectService struct {
	projects repository.ProjectRepo
	opts     Options
	observer UseCaseObserver
}

func NewProjectService(projects repository.ProjectRepo, opts Options, observers ...UseCaseObserver) ProjectService {
	return &projectService{
		projects: projects,
		opts:     opts.withDefaults(),
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *projectService) Create(ctx context.Context, p *domain.Project) error {
	p.Name = strings.TrimSpace(p.Name)
	if p.Name == "" {
		return fmt.Errorf("%w: project name is required", ErrValidation)
	}
	if p.ShortID != "" {
		p.ShortID = strings.ToUpper(strings.TrimSpace(p.ShortID))
		if err := p.ValidateShortID(); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}
	if !domain.ValidProjectStatuses[string(p.Status)] {
		return fmt.Errorf("%w: unknown status %q", ErrValidation, p.Status)
	}
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	return asValidation(s.projects.Create(ctx, p))
}

func (s *projectService) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	return s.projects.GetByID(ctx, id)
}

func (s *projectService) Resolve(ctx context.Context, ref string) (*domain.Project, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, fmt.Errorf("%w: project reference is empty", ErrValidation)
	}
	p, err := s.projects.GetByShortID(ctx, strings.ToUpper(ref))
	if err == nil {
		return p, nil
	}
	if !isNotFound(err) {
		return nil, err
	}
	p, err = s.projects.GetByID(ctx, ref)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("project %q: %w", ref, repository.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

func (s *projectService) List(ctx context.Context, includeArchived bool) ([]*domain.Project, error) {
	return s.projects.List(ctx, includeArchived)
}

func (s *projectService) UpdateDetails(ctx context.Context, id string, patch contract.ProjectDetailsPatch) (project *domain.Project, err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{"project_id": id}
	defer func() {
		observeUseCase(ctx, s.observer, "update-project-details", startedAt, err, fields)
	}()

	if patch.Empty() {
		return nil, fmt.Errorf("%w: nothing to update", ErrValidation)
	}
	project, err = s.projects.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err = applyDetailsPatch(project, patch); err != nil {
		return nil, err
	}

	attempts := 0
	err = s.retry(ctx, func() error {
		attempts++
		return s.projects.UpdateDetails(ctx, project)
	})
	fields["attempts"] = attempts
	if err != nil {
		return nil, asValidation(err)
	}
	return project, nil
}

// retry runs fn until it succeeds, the retry budget is spent, or the error
// is one that a retry cannot fix. Retry n waits n times the base backoff.
func (s *projectService) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for i := 0; i <= s.opts.RetryAttempts; i++ {
		if i > 0 {
			if err := s.opts.Sleep(ctx, time.Duration(i)*s.opts.RetryBackoff); err != nil {
				return fmt.Errorf("%w: %v", err, lastErr)
			}
		}
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !retryable(lastErr) || ctx.Err() != nil {
			return lastErr
		}
	}
	return fmt.Errorf("%w: %w", ErrRetryExhausted, lastErr)
}

// retryable is false for errors that repeat on every attempt: missing
// rows, rejected input, constraint violations and cancellation.
func retryable(err error) bool {
	return !errors.Is(err, repository.ErrNotFound) &&
		!errors.Is(err, repository.ErrConflict) &&
		!errors.Is(err, ErrValidation) &&
		!errors.Is(err, context.Canceled) &&
		!errors.Is(err, context.DeadlineExceeded)
}

// asValidation marks a store conflict as rejected input, keeping the
// conflict in the chain.
func asValidation(err error) error {
	if err != nil && errors.Is(err, repository.ErrConflict) && !errors.Is(err, ErrValidation) {
		return fmt.Errorf("%w: %w", ErrValidation, err)
	}
	return err
}

func applyDetailsPatch(p *domain.Project, patch contract.ProjectDetailsPatch) error {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return fmt.Errorf("%w: project name must not be empty", ErrValidation)
		}
		p.Name = name
	}
	if patch.ClientName != nil {
		p.ClientName = strings.TrimSpace(*patch.ClientName)
	}
	if patch.ShortID != nil {
		p.ShortID = strings.ToUpper(strings.TrimSpace(*patch.ShortID))
		if err := p.ValidateShortID(); err != nil {
			return fmt.Errorf("%w: %v", ErrValidation, err)
		}
	}
	if patch.StartDate != nil {
		raw := strings.TrimSpace(*patch.StartDate)
		if raw == "" {
			p.StartDate = nil
		} else {
			d, err := domain.ParseDate(raw)
			if err != nil {
				return fmt.Errorf("%w: start date %q is not YYYY-MM-DD", ErrValidation, raw)
			}
			p.StartDate = &d
		}
	}
	if patch.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*patch.Status))
		if !domain.ValidProjectStatuses[status] {
			return fmt.Errorf("%w: unknown status %q", ErrValidation, status)
		}
		p.Status = domain.ProjectStatus(status)
	}
	return nil
}

func (s *projectService) Delete(ctx context.Context, id string, force bool) error {
	if !force {
		p, err := s.projects.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if p.Status != domain.ProjectArchived {
			return fmt.Errorf("project must be archived before deletion (use --force to override)")
		}
	}
	return s.projects.Delete(ctx, id)
}
