// Package ui renders CLI output.
package ui

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/quotesync/quotesync/internal/quote"
)

var (
	accentStyle   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#1d4ed8", Dark: "#60a5fa"}).Bold(true)
	passStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#15803d", Dark: "#4ade80"})
	warnStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b45309", Dark: "#fbbf24"})
	failStyle     = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#b91c1c", Dark: "#f87171"}).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	quoteStyle    = lipgloss.NewStyle().Italic(true).PaddingLeft(2).BorderStyle(lipgloss.NormalBorder()).BorderLeft(true).BorderForeground(lipgloss.Color("243"))
	categoryStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243")).PaddingLeft(3)
)

// ConfigureColors turns colors off when NO_COLOR is set or out is not a
// terminal.
func ConfigureColors(out io.Writer) {
	if !ColorEnabled(out) {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// ColorEnabled reports whether styled output should be written to out.
func ColorEnabled(out io.Writer) bool {
	if termenv.EnvNoColor() {
		return false
	}
	return IsTerminal(out)
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w interface{}) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func RenderAccent(s string) string { return accentStyle.Render(s) }
func RenderPass(s string) string   { return passStyle.Render(s) }
func RenderWarn(s string) string   { return warnStyle.Render(s) }
func RenderFail(s string) string   { return failStyle.Render(s) }
func RenderMuted(s string) string  { return mutedStyle.Render(s) }

// RenderQuote formats a quote with its display category.
func RenderQuote(q quote.Quote) string {
	return quoteStyle.Render(fmt.Sprintf("%q", q.Text)) + "\n" +
		categoryStyle.Render("Category: "+q.DisplayCategory())
}

// RenderCategories formats category names for display, marking the selected one.
func RenderCategories(categories []string, selected string) string {
	var b strings.Builder
	for _, c := range append([]string{"all"}, categories...) {
		marker := "  "
		name := quote.Capitalize(c)
		if c == selected {
			marker = RenderAccent("▸ ")
			name = RenderAccent(name)
		}
		b.WriteString(marker + name + "\n")
	}
	return b.String()
}
