package formatter

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TreeItem represents a single node in a tree display.
type TreeItem struct {
	Title string
	// Index is the 1-based display position; 0 hides it.
	Index     int
	Level     int
	IsLast    bool
	Completed bool
	Detail    string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeBlank  = "   "
)

// RenderTree renders TreeItems as an indented tree using box-drawing
// connectors. Completed items get a green ✔ prefix and detail badges are
// right-aligned.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	type lineInfo struct {
		content string
		badge   string
	}
	lines := make([]lineInfo, len(items))
	maxContentWidth := 0

	// lastAt[l] records whether the open ancestor at level l was the last
	// sibling, so deeper rows draw a blank instead of a pipe under it.
	var lastAt []bool
	for idx, item := range items {
		if item.Level >= len(lastAt) {
			lastAt = append(lastAt, make([]bool, item.Level-len(lastAt)+1)...)
		}
		lastAt[item.Level] = item.IsLast

		var prefix string
		if item.Level > 0 {
			for l := 1; l < item.Level; l++ {
				if lastAt[l] {
					prefix += treeBlank
				} else {
					prefix += treePipe
				}
			}
			if item.IsLast {
				prefix += treeCorner
			} else {
				prefix += treeBranch
			}
		}

		title := item.Title
		if item.Index > 0 {
			title = StyleDim.Render(fmt.Sprintf("%d. ", item.Index)) + title
		}
		statusPrefix := ""
		if item.Completed {
			statusPrefix = StyleGreen.Render("✔ ")
			title = Dim(title)
		}

		content := prefix + statusPrefix + title
		lines[idx].content = content
		if item.Detail != "" {
			lines[idx].badge = StyleBlue.Render(fmt.Sprintf("[ %s ]", item.Detail))
		}
		if w := lipgloss.Width(content); w > maxContentWidth {
			maxContentWidth = w
		}
	}

	var b strings.Builder
	for _, li := range lines {
		if li.badge != "" {
			pad := maxContentWidth - lipgloss.Width(li.content)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(li.content + strings.Repeat(" ", pad) + "  " + li.badge + "\n")
		} else {
			b.WriteString(li.content + "\n")
		}
	}
	return b.String()
}

// TreeNode is a flat list element that knows its parent.
type TreeNode struct {
	ID        string
	ParentID  *string
	Title     string
	Completed bool
	Detail    string
}

// BuildTree orders nodes depth-first under their parents, keeping the input
// order among siblings. Nodes whose parent is not in the list are roots.
// Index is the node's position in the input list.
func BuildTree(nodes []TreeNode) []TreeItem {
	present := make(map[string]bool, len(nodes))
	for _, n := range nodes {
		present[n.ID] = true
	}
	children := make(map[string][]int)
	var roots []int
	for i, n := range nodes {
		if n.ParentID != nil && present[*n.ParentID] && *n.ParentID != n.ID {
			children[*n.ParentID] = append(children[*n.ParentID], i)
			continue
		}
		roots = append(roots, i)
	}

	out := make([]TreeItem, 0, len(nodes))
	visited := make(map[string]bool, len(nodes))
	var walk func(idxs []int, level int)
	walk = func(idxs []int, level int) {
		for pos, i := range idxs {
			n := nodes[i]
			if visited[n.ID] {
				continue
			}
			visited[n.ID] = true
			out = append(out, TreeItem{
				Title:     n.Title,
				Index:     i + 1,
				Level:     level,
				IsLast:    pos == len(idxs)-1,
				Completed: n.Completed,
				Detail:    n.Detail,
			})
			walk(children[n.ID], level+1)
		}
	}
	walk(roots, 0)
	// Nodes caught in a parent cycle never hang off a root; list them flat.
	for i, n := range nodes {
		if !visited[n.ID] {
			out = append(out, TreeItem{Title: n.Title, Index: i + 1, Completed: n.Completed, Detail: n.Detail})
		}
	}
	return out
}
