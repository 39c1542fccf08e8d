package repository

import (
	"context"
	"errors"
)

// DeleteFunc removes one record by ID.
type DeleteFunc func(ctx context.Context, id string) error

// BestEffortRemover wraps a delete so that a record already gone counts as
// removed. Any other failure is returned unchanged.
type BestEffortRemover struct {
	del DeleteFunc
}

func NewBestEffortRemover(del DeleteFunc) *BestEffortRemover {
	return &BestEffortRemover{del: del}
}

// Remove deletes id. The bool reports whether the record was present.
func (b *BestEffortRemover) Remove(ctx context.Context, id string) (bool, error) {
	err := b.del(ctx, id)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, ErrNotFound):
		return false, nil
	default:
		return false, err
	}
}
