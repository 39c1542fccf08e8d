package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/waypoint/internal/cli/formatter"
	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/editbuffer"
	"github.com/alexanderramin/waypoint/internal/service"
	"github.com/spf13/cobra"
)

// collection describes one editable project list for the CLI.
type collection[T editbuffer.Element[T]] struct {
	name    domain.Collection
	feature string
	buffer  func(projectID string) *editbuffer.Buffer[T]
	render  func(p *domain.Project, snap editbuffer.Snapshot[T], now time.Time) string
	title   func(item T) string

	// row renders one element for the interactive editor.
	row func(item T, now time.Time) string

	// completed reports the element's completion flag for toggling.
	completed func(item T) bool
}

func timelineCollection(app *App) collection[*domain.TimelineItem] {
	return collection[*domain.TimelineItem]{
		name:    domain.CollectionTimeline,
		feature: domain.FeatureTimeline,
		buffer:  app.Collections.TimelineBuffer,
		render:  formatter.FormatTimeline,
		title:   func(it *domain.TimelineItem) string { return it.Title },
		row: func(it *domain.TimelineItem, now time.Time) string {
			title := it.Title
			if it.ParentID != nil {
				title = formatter.Dim("↳ ") + title
			}
			return title + "  " + formatter.DueDateStyled(it.DueDate, it.IsCompleted, now)
		},
		completed: func(it *domain.TimelineItem) bool { return it.IsCompleted },
	}
}

func testingCollection(app *App) collection[*domain.TestingCard] {
	return collection[*domain.TestingCard]{
		name:      domain.CollectionTesting,
		feature:   domain.FeatureTesting,
		buffer:    app.Collections.TestingBuffer,
		render:    formatter.FormatTestingCards,
		title:     func(c *domain.TestingCard) string { return c.Title },
		row:       func(c *domain.TestingCard, _ time.Time) string { return c.Title },
		completed: func(c *domain.TestingCard) bool { return c.IsCompleted },
	}
}

// load resolves the project, checks the feature and loads its buffer.
func (col collection[T]) load(ctx context.Context, app *App, ref string) (*domain.Project, *editbuffer.Buffer[T], error) {
	p, err := requireProject(ctx, app, ref, col.feature)
	if err != nil {
		return nil, nil, err
	}
	b := col.buffer(p.ID)
	if err := b.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("loading %s: %w", col.name, err)
	}
	return p, b, nil
}

// publish writes b back and prints the outcome.
func (col collection[T]) publish(cmd *cobra.Command, app *App, b *editbuffer.Buffer[T]) error {
	done := app.busy(cmd.ErrOrStderr(), fmt.Sprintf("Publishing %s…", col.name))
	res, err := service.PublishObserved(cmd.Context(), app.Collections.Observer(), col.name, b)
	done()
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPublishResult(res))
	if err != nil {
		return fmt.Errorf("publishing %s: %w", col.name, err)
	}
	return nil
}

// collectionCommands returns the subcommands shared by every collection.
func collectionCommands[T editbuffer.Element[T]](app *App, col collection[T]) []*cobra.Command {
	return []*cobra.Command{
		newCollectionShowCmd(app, col),
		newCollectionAddCmd(app, col),
		newCollectionRemoveCmd(app, col),
		newCollectionMoveCmd(app, col),
		newCollectionSetCmd(app, col),
		newCollectionPublishCmd(app, col),
		newCollectionEditCmd(app, col),
	}
}

func newCollectionShowCmd[T editbuffer.Element[T]](app *App, col collection[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "show PROJECT",
		Short: fmt.Sprintf("Show the project's %s", col.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, b, err := col.load(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), col.render(p, b.Snapshot(), app.now()))
			return nil
		},
	}
}

func newCollectionAddCmd[T editbuffer.Element[T]](app *App, col collection[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "add PROJECT TITLE",
		Short: "Append a new entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, b, err := col.load(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			item, err := b.Add(cmd.Context(), args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added #%d %s\n", b.IndexOf(item.ElementID())+1, strings.TrimSpace(args[1]))
			return nil
		},
	}
}

func newCollectionRemoveCmd[T editbuffer.Element[T]](app *App, col collection[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "remove PROJECT ITEM",
		Short: "Delete an entry by position or ID",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, b, err := col.load(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			id, err := itemRef(b, args[1])
			if err != nil {
				return err
			}
			if err := b.Delete(cmd.Context(), id); err != nil {
				return err
			}
			// Publishing closes the order gap and stores children of a
			// deleted timeline item as roots.
			return col.publish(cmd, app, b)
		},
	}
}

func newCollectionMoveCmd[T editbuffer.Element[T]](app *App, col collection[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "move PROJECT FROM TO",
		Short: "Move an entry to a new position and publish",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			from, err := position(args[1])
			if err != nil {
				return err
			}
			to, err := position(args[2])
			if err != nil {
				return err
			}
			_, b, err := col.load(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			if err := b.Reorder(from, to); err != nil {
				return err
			}
			return col.publish(cmd, app, b)
		},
	}
}

func newCollectionSetCmd[T editbuffer.Element[T]](app *App, col collection[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "set PROJECT ITEM FIELD VALUE",
		Short: "Change one field of an entry and publish",
		Long: "Change one field of an entry and publish.\n\n" +
			"Fields: title, description, is_completed, and for timeline items\n" +
			"due_date, assigned_to and parent_id.",
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, b, err := col.load(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			id, err := itemRef(b, args[1])
			if err != nil {
				return err
			}
			value := args[3]
			if args[2] == domain.FieldParentID && value != "" {
				if value, err = itemRef(b, value); err != nil {
					return err
				}
			}
			if err := b.EditField(id, args[2], value); err != nil {
				return err
			}
			return col.publish(cmd, app, b)
		},
	}
}

func newCollectionPublishCmd[T editbuffer.Element[T]](app *App, col collection[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "publish PROJECT",
		Short: fmt.Sprintf("Mark the %s as published", col.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, b, err := col.load(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			return col.publish(cmd, app, b)
		},
	}
}

func newCollectionEditCmd[T editbuffer.Element[T]](app *App, col collection[T]) *cobra.Command {
	return &cobra.Command{
		Use:   "edit PROJECT",
		Short: fmt.Sprintf("Edit the %s interactively", col.name),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !app.interactive() {
				return errNotInteractive
			}
			p, b, err := col.load(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			return runEditor(cmd.Context(), app, col, p, b)
		},
	}
}

var errNotInteractive = errors.New("this command needs an interactive terminal")

// itemRef resolves a 1-based position or an element ID to an element ID.
func itemRef[T editbuffer.Element[T]](b *editbuffer.Buffer[T], ref string) (string, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		items := b.Snapshot().Items
		if n < 1 || n > len(items) {
			return "", fmt.Errorf("%w: position %d in list of %d", editbuffer.ErrIndexOutOfRange, n, len(items))
		}
		return items[n-1].ElementID(), nil
	}
	if b.IndexOf(ref) < 0 {
		return "", fmt.Errorf("%w: %s", editbuffer.ErrUnknownItem, ref)
	}
	return ref, nil
}

// position parses a 1-based CLI position into a 0-based index.
func position(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("position %q must be a number from 1", s)
	}
	return n - 1, nil
}

func newTestingCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "testing",
		Short: "Edit and publish client testing checklists",
	}
	cmd.AddCommand(collectionCommands(app, testingCollection(app))...)
	return cmd
}
