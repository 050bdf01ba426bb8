package ui

import (
	"fmt"
	"strings"
)

// ProgressBar renders a bar of width cells with a percentage.
func (t Theme) ProgressBar(done, total, width int) string {
	if total <= 0 {
		total = 1
	}
	if width < 5 {
		width = 5
	}
	filled := done * width / total
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(t.SymBar, filled) + strings.Repeat(t.SymGap, width-filled)
	return fmt.Sprintf("%s %3d%%", bar, done*100/total)
}

// Panel draws lines inside a framed box using the theme's border.
func (t Theme) Panel(lines []string) string {
	return t.Frame.Render(strings.Join(lines, "\n"))
}
