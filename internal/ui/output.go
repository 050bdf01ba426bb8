package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// Printer writes user-facing messages. Each stream gets its own lipgloss
// renderer so color is decided per writer: a redirected stdout prints plain
// text while a terminal stderr stays colored.
type Printer struct {
	Out io.Writer
	Err io.Writer

	out Theme
	err Theme
}

// NewPrinter builds a printer with the named theme (classic, neon, mono).
func NewPrinter(out, errw io.Writer, theme string) *Printer {
	return &Printer{
		Out: out,
		Err: errw,
		out: NewTheme(theme, lipgloss.NewRenderer(out)),
		err: NewTheme(theme, lipgloss.NewRenderer(errw)),
	}
}

// Theme returns the theme bound to Out.
func (p *Printer) Theme() Theme { return p.out }

func (p *Printer) OK(msg string) {
	fmt.Fprintln(p.Out, p.out.Success.Render(p.out.SymOK+" "+msg))
}

func (p *Printer) Fail(msg string) {
	fmt.Fprintln(p.Err, p.err.Error.Render(p.err.SymFail+" "+msg))
}

// Hint prints a muted follow-up line on Err, under a Fail.
func (p *Printer) Hint(msg string) {
	fmt.Fprintln(p.Err, p.err.Muted.Render(msg))
}

func (p *Printer) Println(s string) {
	fmt.Fprintln(p.Out, s)
}
