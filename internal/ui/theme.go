package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Makepad-fr/tasktracker/internal/model"
)

// Theme bundles palette + symbols + box borders.
type Theme struct {
	Title, Muted, Accent, Success, Error, Pending, Selected, DoneText lipgloss.Style
	Frame                                                            lipgloss.Style

	BoxTodo, BoxProgress, BoxDone string
	SymOK, SymFail, SymBar, SymGap string
}

// NewTheme builds the named theme on r. Unknown names fall back to classic.
func NewTheme(name string, r *lipgloss.Renderer) Theme {
	base := r.NewStyle()
	switch strings.ToLower(name) {
	case "neon":
		return Theme{
			Title:       base.Bold(true).Foreground(lipgloss.Color("13")),
			Muted:       base.Faint(true),
			Accent:      base.Foreground(lipgloss.Color("14")),
			Success:     base.Foreground(lipgloss.Color("10")),
			Error:       base.Foreground(lipgloss.Color("9")).Bold(true),
			Pending:     base.Foreground(lipgloss.Color("11")),
			Selected:    base.Bold(true).Foreground(lipgloss.Color("13")),
			DoneText:    base.Faint(true).Strikethrough(true),
			Frame:       base.Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("13")).Padding(0, 1),
			BoxTodo:     "◻",
			BoxProgress: "◩",
			BoxDone:     "◼",
			SymOK:       "✔",
			SymFail:     "✖",
			SymBar:      "█",
			SymGap:      "░",
		}
	case "mono":
		return Theme{
			Title:       base.Bold(true),
			Muted:       base,
			Accent:      base,
			Success:     base,
			Error:       base,
			Pending:     base,
			Selected:    base.Reverse(true),
			DoneText:    base,
			Frame:       base.Border(lipgloss.ASCIIBorder()).Padding(0, 1),
			BoxTodo:     "[ ]",
			BoxProgress: "[~]",
			BoxDone:     "[x]",
			SymOK:       "ok:",
			SymFail:     "error:",
			SymBar:      "#",
			SymGap:      "-",
		}
	default: // classic
		return Theme{
			Title:       base.Bold(true),
			Muted:       base.Faint(true),
			Accent:      base.Foreground(lipgloss.Color("12")),
			Success:     base.Foreground(lipgloss.Color("42")),
			Error:       base.Foreground(lipgloss.Color("9")).Bold(true),
			Pending:     base.Foreground(lipgloss.Color("214")),
			Selected:    base.Bold(true).Reverse(true),
			DoneText:    base.Faint(true).Strikethrough(true),
			Frame:       base.Border(lipgloss.NormalBorder()).BorderForeground(lipgloss.Color("8")).Padding(0, 1),
			BoxTodo:     "☐",
			BoxProgress: "◐",
			BoxDone:     "☑",
			SymOK:       "✔",
			SymFail:     "✖",
			SymBar:      "█",
			SymGap:      "░",
		}
	}
}

// Box returns the checkbox symbol for a status.
func (t Theme) Box(s model.Status) string {
	switch s {
	case model.StatusDone:
		return t.BoxDone
	case model.StatusInProgress:
		return t.BoxProgress
	default:
		return t.BoxTodo
	}
}

// StatusStyle colors a status: success for done, pending for in progress.
func (t Theme) StatusStyle(s model.Status) lipgloss.Style {
	switch s {
	case model.StatusDone:
		return t.Success
	case model.StatusInProgress:
		return t.Pending
	default:
		return t.Muted
	}
}

// StatusLabel is the human label for a status.
func StatusLabel(s model.Status) string {
	switch s {
	case model.StatusInProgress:
		return "In progress"
	case model.StatusDone:
		return "Done"
	case model.StatusTodo:
		return "Todo"
	}
	return string(s)
}
