package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"heapdb/pkg/database"
)

var (
	primaryColor = lipgloss.Color("#7C3AED")
	accentColor  = lipgloss.Color("#10B981")
	errorColor   = lipgloss.Color("#EF4444")
	mutedColor   = lipgloss.Color("#94A3B8")
)

var (
	headerStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().Padding(0, 1)

	borderStyle = lipgloss.NewStyle().Foreground(mutedColor)

	mutedStyle = lipgloss.NewStyle().Foreground(mutedColor)

	successStyle = lipgloss.NewStyle().
			Foreground(accentColor).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Width(22)
)

func renderResult(w io.Writer, res *database.Result) {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(res.Columns...).
		Rows(res.Rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	fmt.Fprintln(w, t.Render())
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("(%d rows)", len(res.Rows))))
}

// renderPairs prints aligned label/value lines.
func renderPairs(w io.Writer, pairs [][2]string) {
	for _, p := range pairs {
		fmt.Fprintln(w, lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(p[0]), p[1]))
	}
}
