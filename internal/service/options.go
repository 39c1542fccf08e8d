package service

import (
	"context"
	"time"
)

// Options tunes service behaviour. Zero values fall back to defaults,
// except RetryAttempts where zero disables retries.
type Options struct {
	// Concurrency bounds in-flight store calls in bulk phases.
	Concurrency int
	// RetryAttempts is how many times a failed details update is retried.
	// The configured default lives in config.
	RetryAttempts int
	// RetryBackoff is the base delay; retry n waits n*RetryBackoff.
	RetryBackoff time.Duration
	// Now is the clock used for "today" when a project has no start date.
	Now func() time.Time
	// Sleep waits between retries; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

const (
	DefaultConcurrency  = 8
	DefaultRetryBackoff = time.Second
)

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = DefaultConcurrency
	}
	if o.RetryAttempts < 0 {
		o.RetryAttempts = 0
	}
	if o.RetryBackoff <= 0 {
		o.RetryBackoff = DefaultRetryBackoff
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Sleep == nil {
		o.Sleep = sleepCtx
	}
	return o
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
