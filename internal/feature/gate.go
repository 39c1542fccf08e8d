// Package feature decides whether optional dashboard modules are usable.
// A feature is usable unless an administrator switched it off globally or
// the project switched it off. The global switch always wins.
package feature

import (
	"fmt"

	"github.com/alexanderramin/waypoint/internal/domain"
)

// IsEnabled reports whether featureID is usable for project. Missing flags
// count as enabled; nil project or settings contribute no flags.
func IsEnabled(featureID string, project *domain.Project, settings *domain.GlobalSettings) bool {
	if on, ok := settings.Lookup(domain.FeatureKey(featureID)); ok && !on {
		return false
	}
	if project != nil {
		if on, ok := project.FeaturesEnabled[featureID]; ok && !on {
			return false
		}
	}
	return true
}

// State is the evaluated view of one feature for display.
type State struct {
	Feature string `json:"feature"`
	Global  bool   `json:"global"`
	Project bool   `json:"project"`
	Enabled bool   `json:"enabled"`
}

// States evaluates every known feature for project.
func States(project *domain.Project, settings *domain.GlobalSettings) []State {
	out := make([]State, 0, len(domain.KnownFeatures))
	for _, f := range domain.KnownFeatures {
		global := true
		if on, ok := settings.Lookup(domain.FeatureKey(f)); ok {
			global = on
		}
		proj := true
		if project != nil {
			if on, ok := project.FeaturesEnabled[f]; ok {
				proj = on
			}
		}
		out = append(out, State{Feature: f, Global: global, Project: proj, Enabled: global && proj})
	}
	return out
}

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the guard result to an error if not allowed.
func (r GuardResult) Error() error {
	if r.Allowed {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// EnableContext provides context for project-level feature toggles.
type EnableContext struct {
	Feature  string
	Enable   bool
	Settings *domain.GlobalSettings
}

// CanToggle evaluates whether a project-level feature flag may be set.
// Rules:
// - The feature must be known
// - Enabling is refused while the feature is switched off globally
func CanToggle(ctx EnableContext) GuardResult {
	if !domain.IsKnownFeature(ctx.Feature) {
		return GuardResult{Reason: fmt.Sprintf("unknown feature %q", ctx.Feature)}
	}
	if ctx.Enable {
		if on, ok := ctx.Settings.Lookup(domain.FeatureKey(ctx.Feature)); ok && !on {
			return GuardResult{Reason: fmt.Sprintf("feature %s is disabled globally", ctx.Feature)}
		}
	}
	return GuardResult{Allowed: true}
}

// CanUse evaluates whether a feature-backed operation may run for project.
func CanUse(featureID string, project *domain.Project, settings *domain.GlobalSettings) GuardResult {
	if IsEnabled(featureID, project, settings) {
		return GuardResult{Allowed: true}
	}
	if project == nil {
		return GuardResult{Reason: fmt.Sprintf("feature %s is disabled", featureID)}
	}
	return GuardResult{Reason: fmt.Sprintf("feature %s is disabled for project %s", featureID, project.DisplayID())}
}
