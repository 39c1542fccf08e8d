package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/alexanderramin/waypoint/internal/domain"
)

// FormatTemplateList renders a styled template list inside a bordered box.
// templates must be the full list: the # column is the position accepted by
// template lookups, so hidden inactive templates keep their numbers.
func FormatTemplateList(templates []*domain.TimelineTemplate, showInactive bool) string {
	headers := []string{"#", "NAME", "CATEGORY", "STATUS", "ID"}
	rows := make([][]string, 0, len(templates))
	for i, t := range templates {
		if !t.Active && !showInactive {
			continue
		}
		status := StyleGreen.Render("active")
		if !t.Active {
			status = Dim("inactive")
		}
		rows = append(rows, []string{
			fmt.Sprint(i + 1),
			Bold(t.Name),
			OrDash(t.Category),
			status,
			TruncID(t.ID),
		})
	}
	return RenderBox("Templates", RenderAlignedTable(headers, rows, map[int]bool{0: true}))
}

// FormatTemplateShow renders a template card with its item tree and day
// offsets.
func FormatTemplateShow(d *contract.TemplateDetail) string {
	t := d.Template
	var b strings.Builder
	b.WriteString(StyleBold.Render(t.Name))
	if t.Category != "" {
		b.WriteString("  " + StylePurple.Render(t.Category))
	}
	b.WriteString("\n")
	if t.Description != "" {
		b.WriteString(Dim(t.Description) + "\n")
	}
	b.WriteString("\n")

	if len(d.Items) == 0 {
		b.WriteString(Dim("No items.") + "\n")
		return RenderBox("", b.String())
	}
	nodes := make([]TreeNode, 0, len(d.Items))
	for _, it := range d.Items {
		nodes = append(nodes, TreeNode{
			ID:       it.ID,
			ParentID: it.ParentID,
			Title:    it.Title,
			Detail:   FormatOffset(it.OffsetDays()),
		})
	}
	b.WriteString(RenderTree(BuildTree(nodes)))
	return RenderBox("", b.String())
}

// FormatOffset renders a day offset such as "day 0" or "day +14".
func FormatOffset(days int) string {
	if days == 0 {
		return "day 0"
	}
	return fmt.Sprintf("day %+d", days)
}
