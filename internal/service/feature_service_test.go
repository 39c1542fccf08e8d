package service

import (
	"context"
	"testing"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/feature"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateOf(states []feature.State, id string) feature.State {
	for _, s := range states {
		if s.Feature == id {
			return s
		}
	}
	return feature.State{}
}

func TestFeatureService_DefaultsToEnabled(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewFeatureService(r.projects, r.settings)
	proj := r.seedProject(t, "Fresh")

	states, err := svc.States(ctx, proj.ID)
	require.NoError(t, err)
	require.Len(t, states, len(domain.KnownFeatures))
	for _, s := range states {
		assert.True(t, s.Enabled, s.Feature)
	}
	assert.NoError(t, svc.Require(ctx, proj.ID, domain.FeatureTimeline))
}

func TestFeatureService_ProjectOverride(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewFeatureService(r.projects, r.settings)
	proj := r.seedProject(t, "Quiet")

	require.NoError(t, svc.SetProjectFeature(ctx, proj.ID, domain.FeatureTesting, false))
	err := svc.Require(ctx, proj.ID, domain.FeatureTesting)
	assert.ErrorIs(t, err, ErrFeatureDisabled)
	assert.NoError(t, svc.Require(ctx, proj.ID, domain.FeatureTimeline))

	states, err := svc.States(ctx, proj.ID)
	require.NoError(t, err)
	testingState := stateOf(states, domain.FeatureTesting)
	assert.True(t, testingState.Global)
	assert.False(t, testingState.Project)
	assert.False(t, testingState.Enabled)
}

func TestFeatureService_GlobalSwitchWins(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewFeatureService(r.projects, r.settings)
	proj := r.seedProject(t, "Gated")

	require.NoError(t, svc.SetGlobal(ctx, domain.FeatureTimeline, false))
	assert.ErrorIs(t, svc.Require(ctx, proj.ID, domain.FeatureTimeline), ErrFeatureDisabled)

	err := svc.SetProjectFeature(ctx, proj.ID, domain.FeatureTimeline, true)
	require.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "disabled globally")

	require.NoError(t, svc.SetProjectFeature(ctx, proj.ID, domain.FeatureTimeline, false),
		"disabling is always allowed")

	require.NoError(t, svc.SetGlobal(ctx, domain.FeatureTimeline, true))
	assert.ErrorIs(t, svc.Require(ctx, proj.ID, domain.FeatureTimeline), ErrFeatureDisabled,
		"project override still applies")

	settings, err := svc.Settings(ctx)
	require.NoError(t, err)
	on, ok := settings.Lookup(domain.FeatureKey(domain.FeatureTimeline))
	assert.True(t, ok)
	assert.True(t, on)
}

func TestFeatureService_UnknownFeature(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()
	svc := NewFeatureService(r.projects, r.settings)
	proj := r.seedProject(t, "Any")

	assert.ErrorIs(t, svc.SetGlobal(ctx, "billing", false), ErrValidation)
	assert.ErrorIs(t, svc.SetProjectFeature(ctx, proj.ID, "billing", false), ErrValidation)
}
