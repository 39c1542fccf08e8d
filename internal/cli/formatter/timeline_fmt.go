package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/editbuffer"
)

// FormatTimeline renders a timeline snapshot as a task tree with due dates.
func FormatTimeline(p *domain.Project, snap editbuffer.Snapshot[*domain.TimelineItem], now time.Time) string {
	var b strings.Builder
	b.WriteString(bufferHeading(p, domain.CollectionTimeline, snap.State, snap.LastPublished, now))
	if len(snap.Items) == 0 {
		b.WriteString(Dim("No timeline items. Apply a template with `waypoint timeline apply`.") + "\n")
		return RenderBox("", b.String())
	}

	nodes := make([]TreeNode, 0, len(snap.Items))
	for _, it := range snap.Items {
		detail := DueDateStyled(it.DueDate, it.IsCompleted, now)
		if who := domain.StrValue(it.AssignedTo); who != "" {
			detail += " " + StylePurple.Render("@"+who)
		}
		nodes = append(nodes, TreeNode{
			ID:        it.ID,
			ParentID:  it.ParentID,
			Title:     it.Title,
			Completed: it.IsCompleted,
			Detail:    detail,
		})
	}
	b.WriteString(RenderTree(BuildTree(nodes)))
	return RenderBox("", b.String())
}

// FormatTestingCards renders a testing checklist snapshot.
func FormatTestingCards(p *domain.Project, snap editbuffer.Snapshot[*domain.TestingCard], now time.Time) string {
	var b strings.Builder
	b.WriteString(bufferHeading(p, domain.CollectionTesting, snap.State, snap.LastPublished, now))
	if len(snap.Items) == 0 {
		b.WriteString(Dim("No testing cards.") + "\n")
		return RenderBox("", b.String())
	}
	items := make([]TreeItem, 0, len(snap.Items))
	for i, c := range snap.Items {
		items = append(items, TreeItem{Title: c.Title, Index: i + 1, Completed: c.IsCompleted})
	}
	b.WriteString(RenderTree(items))
	return RenderBox("", b.String())
}

func bufferHeading(p *domain.Project, c domain.Collection, state editbuffer.State, last *time.Time, now time.Time) string {
	title := fmt.Sprintf("%s · %s", p.DisplayID(), c)
	return fmt.Sprintf("%s  %s  %s\n\n",
		StyleHeader.Render(strings.ToUpper(title)),
		StateBadge(state),
		Dim("published "+HumanTimestamp(last, now)),
	)
}

// StateBadge renders an edit buffer state.
func StateBadge(state editbuffer.State) string {
	switch state {
	case editbuffer.StateClean:
		return StyleGreen.Render("● clean")
	case editbuffer.StateDirty:
		return StyleYellow.Render("● unpublished changes")
	case editbuffer.StatePublishing:
		return StyleBlue.Render("● publishing")
	case editbuffer.StateError:
		return StyleRed.Render("● publish failed")
	default:
		return Dim(string(state))
	}
}

// FormatBatch renders batch counts with a success bar.
func FormatBatch(res contract.BatchResult) string {
	if res.Attempted == 0 {
		return Dim("nothing to write")
	}
	pct := float64(res.Succeeded) / float64(res.Attempted)
	line := fmt.Sprintf("%s %d/%d written", RenderProgress(pct, 20), res.Succeeded, res.Attempted)
	if res.Failed > 0 {
		line += " " + StyleRed.Render(fmt.Sprintf("(%d failed)", res.Failed))
	}
	return line
}

// FormatPublishResult renders the outcome of publishing a collection.
func FormatPublishResult(res contract.PublishResult) string {
	var b strings.Builder
	if res.Batch.Failed == 0 {
		b.WriteString(Success(fmt.Sprintf("Published %s", res.Collection)) + "\n")
	} else {
		b.WriteString(Warning(fmt.Sprintf("Publishing %s failed; local edits kept for retry", res.Collection)) + "\n")
	}
	b.WriteString("  " + FormatBatch(res.Batch) + "\n")
	return b.String()
}

// FormatApplyResult renders the outcome of applying a template.
func FormatApplyResult(templateName string, res *contract.ApplyTemplateResult) string {
	var b strings.Builder
	if res.Batch.Failed == 0 {
		b.WriteString(Success("Applied template "+templateName) + "\n")
	} else {
		b.WriteString(Warning(fmt.Sprintf("Template %s applied partially", templateName)) + "\n")
	}
	rows := [][]string{
		{"deleted", fmt.Sprint(res.Deleted)},
		{"created", fmt.Sprint(len(res.Created))},
		{"parents linked", fmt.Sprint(res.ParentsLinked)},
	}
	b.WriteString(RenderAlignedTable([]string{"STEP", "COUNT"}, rows, map[int]bool{1: true}))
	b.WriteString(FormatBatch(res.Batch) + "\n")
	return b.String()
}
