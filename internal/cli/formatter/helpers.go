package formatter

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		return boxStyle.Render(titleRendered + "\n\n" + content)
	}
	return boxStyle.Render(content)
}

// daysUntil counts calendar days from now to t; negative when t is past.
func daysUntil(t, now time.Time) int {
	return int(math.Round(domain.DateOnly(t).Sub(domain.DateOnly(now)).Hours() / 24))
}

// RelativeDateFrom renders t relative to now: "Today", "In 3d", "2w ago".
func RelativeDateFrom(t time.Time, now time.Time) string {
	days := daysUntil(t, now)
	switch days {
	case 0:
		return "Today"
	case 1:
		return "Tomorrow"
	case -1:
		return "Yesterday"
	}

	n, unit := days, "d"
	if n < 0 {
		n = -n
	}
	switch {
	case n >= 60:
		n, unit = n/30, "mo"
	case n >= 14:
		n, unit = n/7, "w"
	}
	if days > 0 {
		return fmt.Sprintf("In %d%s", n, unit)
	}
	return fmt.Sprintf("%d%s ago", n, unit)
}

// DueDateStyled colors a due date red when overdue and yellow within a
// week. Completed items are dim.
func DueDateStyled(due time.Time, completed bool, now time.Time) string {
	text := due.Format(domain.DateLayout)
	switch days := daysUntil(due, now); {
	case completed:
		return Dim(text)
	case days < 0:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	}
	return StyleFg.Render(text)
}

// HumanTimestamp renders a timestamp relative to now, or "never" for nil.
func HumanTimestamp(t *time.Time, now time.Time) string {
	if t == nil {
		return Dim("never")
	}
	diff := now.Sub(*t)
	switch {
	case diff < 0:
		return t.Format("Jan 2, 2006 15:04")
	case diff < time.Minute:
		return "Just now"
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return t.Format("Jan 2, 2006")
	}
}

var statusPills = map[domain.ProjectStatus]string{
	domain.ProjectActive:   StyleGreen.Render("● Active"),
	domain.ProjectPaused:   StyleYellow.Render("○ Paused"),
	domain.ProjectDone:     StyleDim.Render("✔ Done"),
	domain.ProjectArchived: StyleDim.Render("✖ Archived"),
}

// StatusPill renders a project status with its glyph.
func StatusPill(status domain.ProjectStatus) string {
	if pill, ok := statusPills[status]; ok {
		return pill
	}
	return StyleDim.Render(string(status))
}

// PublishBadge shows whether a collection has been published.
func PublishBadge(published bool) string {
	if published {
		return StyleGreen.Render("● Published")
	}
	return StyleDim.Render("○ Draft")
}

// OnOff renders a boolean switch.
func OnOff(on bool) string {
	if on {
		return StyleGreen.Render("on")
	}
	return StyleRed.Render("off")
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}

// OrDash renders an empty string as a dim placeholder.
func OrDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return Dim("--")
	}
	return s
}
