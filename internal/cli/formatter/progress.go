package formatter

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderProgress draws pct (0..1) as "[████░░░░]  50%".
func RenderProgress(pct float64, width int) string {
	pct = math.Max(0, math.Min(1, pct))
	width = max(width, 2)
	filled := min(int(pct*float64(width)), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return fmt.Sprintf("[%s] %3.0f%%", progressStyle(pct).Render(bar), pct*100)
}

func progressStyle(pct float64) lipgloss.Style {
	switch {
	case pct < 1.0/3:
		return StyleRed
	case pct < 2.0/3:
		return StyleYellow
	}
	return StyleGreen
}
