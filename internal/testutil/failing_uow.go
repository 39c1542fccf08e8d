package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/alexanderramin/waypoint/internal/db"
)

// FailingDB wraps a DBTX and injects Err into ExecContext calls. Only
// statements containing Match are counted (every statement when Match is
// empty). Counting starts at 1: FailOn = 3 fails the third matching call
// and every later one when Sticky is set. FailOn = 0 with Sticky fails all
// matching calls. Reads pass through.
type FailingDB struct {
	db.DBTX
	Match  string
	FailOn int32
	Sticky bool
	Err    error

	count atomic.Int32
}

// NewFailingDB wraps inner, failing the Nth ExecContext whose query contains match.
func NewFailingDB(inner db.DBTX, match string, failOn int32, err error) *FailingDB {
	return &FailingDB{DBTX: inner, Match: match, FailOn: failOn, Err: err}
}

// Calls returns how many matching ExecContext calls were seen.
func (f *FailingDB) Calls() int { return int(f.count.Load()) }

func (f *FailingDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.Match == "" || strings.Contains(query, f.Match) {
		n := f.count.Add(1)
		if n == f.FailOn || (f.Sticky && n >= f.FailOn) {
			return nil, f.Err
		}
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}

// FailOnNthExecUoW is a test UoW that injects an error on the Nth ExecContext
// call within a transaction, for rollback tests of multi-write operations.
type FailOnNthExecUoW struct {
	DB     *sql.DB
	FailOn int32
	Err    error
}

func (u *FailOnNthExecUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	tx, err := u.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	wrapped := NewFailingDB(tx, "", u.FailOn, u.Err)
	if fnErr := fn(ctx, wrapped); fnErr != nil {
		_ = tx.Rollback()
		return fnErr
	}
	return tx.Commit()
}
