package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/feature"
	"github.com/alexanderramin/waypoint/internal/repository"
)

type featureService struct {
	projects repository.ProjectRepo
	settings repository.SettingsRepo
	observer UseCaseObserver
}

func NewFeatureService(projects repository.ProjectRepo, settings repository.SettingsRepo, observers ...UseCaseObserver) FeatureService {
	return &featureService{
		projects: projects,
		settings: settings,
		observer: useCaseObserverOrNoop(observers),
	}
}

func (s *featureService) Settings(ctx context.Context) (*domain.GlobalSettings, error) {
	return s.settings.Get(ctx)
}

func (s *featureService) SetGlobal(ctx context.Context, featureID string, enabled bool) error {
	if !domain.IsKnownFeature(featureID) {
		return fmt.Errorf("%w: unknown feature %q", ErrValidation, featureID)
	}
	return s.settings.Set(ctx, domain.FeatureKey(featureID), enabled)
}

func (s *featureService) SetProjectFeature(ctx context.Context, projectID, featureID string, enabled bool) (err error) {
	startedAt := time.Now().UTC()
	fields := map[string]any{
		"project_id": projectID,
		"feature":    featureID,
		"enabled":    enabled,
	}
	defer func() {
		observeUseCase(ctx, s.observer, "set-project-feature", startedAt, err, fields)
	}()

	var settings *domain.GlobalSettings
	settings, err = s.settings.Get(ctx)
	if err != nil {
		return err
	}
	guard := feature.CanToggle(feature.EnableContext{Feature: featureID, Enable: enabled, Settings: settings})
	if gerr := guard.Error(); gerr != nil {
		return fmt.Errorf("%w: %v", ErrValidation, gerr)
	}
	return s.projects.SetFeature(ctx, projectID, featureID, enabled)
}

func (s *featureService) States(ctx context.Context, projectID string) ([]feature.State, error) {
	project, settings, err := s.load(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return feature.States(project, settings), nil
}

func (s *featureService) Require(ctx context.Context, projectID, featureID string) error {
	project, settings, err := s.load(ctx, projectID)
	if err != nil {
		return err
	}
	if gerr := feature.CanUse(featureID, project, settings).Error(); gerr != nil {
		return fmt.Errorf("%w: %v", ErrFeatureDisabled, gerr)
	}
	return nil
}

func (s *featureService) load(ctx context.Context, projectID string) (*domain.Project, *domain.GlobalSettings, error) {
	project, err := s.projects.GetByID(ctx, projectID)
	if err != nil {
		return nil, nil, err
	}
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, nil, err
	}
	return project, settings, nil
}
