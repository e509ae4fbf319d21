// Package ui prints user-facing status lines.
package ui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	detailStyle  = lipgloss.NewStyle().Faint(true)
)

// Printer writes status lines unless quiet
type Printer struct {
	w     io.Writer
	quiet bool
}

func NewPrinter(w io.Writer, quiet bool) *Printer {
	return &Printer{w: w, quiet: quiet}
}

// Step announces work that is about to start
func (p *Printer) Step(format string, args ...any) {
	p.print(stepStyle, format, args...)
}

// Success reports finished work
func (p *Printer) Success(format string, args ...any) {
	p.print(successStyle, "✓ "+format, args...)
}

// Detail prints secondary information
func (p *Printer) Detail(format string, args ...any) {
	p.print(detailStyle, "  "+format, args...)
}

func (p *Printer) print(style lipgloss.Style, format string, args ...any) {
	if p == nil || p.quiet {
		return
	}

	fmt.Fprintln(p.w, style.Render(fmt.Sprintf(format, args...)))
}
