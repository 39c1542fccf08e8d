package contract

import (
	"fmt"
	"sync/atomic"
)

// BatchResult reports how a fan-out of store calls went. The engines do not
// roll back, so Failed > 0 means the store holds a partial result.
type BatchResult struct {
	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// Complete reports whether every attempted call succeeded.
func (b BatchResult) Complete() bool {
	return b.Failed == 0 && b.Succeeded == b.Attempted
}

// Merge adds other's counts to b.
func (b BatchResult) Merge(other BatchResult) BatchResult {
	return BatchResult{
		Attempted: b.Attempted + other.Attempted,
		Succeeded: b.Succeeded + other.Succeeded,
		Failed:    b.Failed + other.Failed,
	}
}

func (b BatchResult) String() string {
	if b.Failed == 0 {
		return fmt.Sprintf("%d of %d succeeded", b.Succeeded, b.Attempted)
	}
	return fmt.Sprintf("%d of %d succeeded, %d failed", b.Succeeded, b.Attempted, b.Failed)
}

// BatchCounter collects outcomes from concurrent workers.
type BatchCounter struct {
	attempted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
}

// Observe records one call outcome and returns err unchanged.
func (c *BatchCounter) Observe(err error) error {
	c.attempted.Add(1)
	if err != nil {
		c.failed.Add(1)
	} else {
		c.succeeded.Add(1)
	}
	return err
}

func (c *BatchCounter) Result() BatchResult {
	return BatchResult{
		Attempted: int(c.attempted.Load()),
		Succeeded: int(c.succeeded.Load()),
		Failed:    int(c.failed.Load()),
	}
}
