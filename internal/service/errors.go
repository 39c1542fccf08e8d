package service

import "errors"

var (
	// ErrValidation marks input rejected before any store call.
	ErrValidation = errors.New("validation failed")
	// ErrEmptyTemplate is returned when applying a template with no items.
	ErrEmptyTemplate = errors.New("template has no items")
	// ErrEmptyTimeline is returned when saving an empty timeline as a template.
	ErrEmptyTimeline = errors.New("timeline has no items")
	// ErrReplaceNotConfirmed is returned when applying a template would
	// delete existing timeline items and the caller did not confirm.
	ErrReplaceNotConfirmed = errors.New("project already has timeline items; replacing them needs confirmation")
	// ErrFeatureDisabled is returned when a feature-backed operation runs
	// while the feature is switched off.
	ErrFeatureDisabled = errors.New("feature disabled")
)

// ErrRetryExhausted is returned when every retry of a store write failed.
var ErrRetryExhausted = errors.New("retry attempts exhausted")
