package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/alexanderramin/waypoint/internal/repository"
	tmpl "github.com/alexanderramin/waypoint/internal/template"
	"golang.org/x/sync/errgroup"
)

// treeWriter is the store surface needed to copy a tree of records.
type treeWriter[T any] struct {
	create    func(ctx context.Context, rec T) error
	idOf      func(rec T) string
	setParent func(ctx context.Context, id string, parentID *string) error
	// linked is called for every successful parent write, after all writes finish.
	linked func(rec T, parentID string)
}

// treeCopy is the outcome of copyTree. Created holds the records that were
// written, in step order; on failure it is a partial list.
type treeCopy[T any] struct {
	Created       []T
	ParentsLinked int
	Batch         contract.BatchResult
}

// copyTree writes steps in two passes: every record as a root first, then
// the parent links resolved through a Remapper. Within a pass up to limit
// calls run at once; the first failure stops launching new calls and is
// returned along with whatever was written.
func copyTree[T any](ctx context.Context, steps []tmpl.Step[T], w treeWriter[T], limit int) (treeCopy[T], error) {
	var out treeCopy[T]
	var counter contract.BatchCounter
	remap := tmpl.NewRemapper()

	written := make([]bool, len(steps))
	err := fanOut(ctx, len(steps), limit, func(ctx context.Context, i int) error {
		rec := steps[i].Record
		if err := counter.Observe(w.create(ctx, rec)); err != nil {
			return fmt.Errorf("creating %q: %w", steps[i].SourceID, err)
		}
		remap.Record(steps[i].SourceID, w.idOf(rec))
		written[i] = true
		return nil
	})
	byID := make(map[string]T, len(steps))
	for i, ok := range written {
		if ok {
			out.Created = append(out.Created, steps[i].Record)
			byID[w.idOf(steps[i].Record)] = steps[i].Record
		}
	}
	if err != nil {
		out.Batch = counter.Result()
		return out, err
	}

	links := tmpl.LinkParents(steps, remap)
	linkedOK := make([]bool, len(links))
	err = fanOut(ctx, len(links), limit, func(ctx context.Context, i int) error {
		parent := links[i].ParentID
		if err := counter.Observe(w.setParent(ctx, links[i].ChildID, &parent)); err != nil {
			return fmt.Errorf("linking parent of %s: %w", links[i].ChildID, err)
		}
		linkedOK[i] = true
		return nil
	})
	for i, ok := range linkedOK {
		if !ok {
			continue
		}
		out.ParentsLinked++
		if w.linked != nil {
			w.linked(byID[links[i].ChildID], links[i].ParentID)
		}
	}
	out.Batch = counter.Result()
	return out, err
}

// fanOut runs fn for 0..n-1 with at most limit calls in flight. Once a call
// fails, calls that have not started are skipped.
func fanOut(ctx context.Context, n, limit int, fn func(ctx context.Context, i int) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			return fn(gctx, i)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// removeAll deletes ids through a best-effort remover and reports how many
// records were actually present.
func removeAll(ctx context.Context, ids []string, del repository.DeleteFunc, limit int) (int, contract.BatchResult, error) {
	remover := repository.NewBestEffortRemover(del)
	var counter contract.BatchCounter
	var removed atomic.Int64
	err := fanOut(ctx, len(ids), limit, func(ctx context.Context, i int) error {
		present, err := remover.Remove(ctx, ids[i])
		if counter.Observe(err) != nil {
			return fmt.Errorf("deleting %s: %w", ids[i], err)
		}
		if present {
			removed.Add(1)
		}
		return nil
	})
	return int(removed.Load()), counter.Result(), err
}

// isNotFound reports whether err is a repository miss.
func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}
