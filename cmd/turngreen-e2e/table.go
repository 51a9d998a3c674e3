package main

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ternarybob/turngreen-e2e/internal/models"
)

var (
	accent = lipgloss.Color("35")
	dim    = lipgloss.Color("243")
	faint  = lipgloss.Color("238")

	statusStyles = map[models.RunStatus]lipgloss.Style{
		models.RunPassed:  lipgloss.NewStyle().Foreground(lipgloss.Color("76")),
		models.RunFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("204")),
		models.RunBroken:  lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		models.RunSkipped: lipgloss.NewStyle().Foreground(dim),
	}
)

// renderTable renders rows with rounded borders and a highlighted header.
func renderTable(headers []string, rows [][]string) string {
	headerStyle := lipgloss.NewStyle().Foreground(accent).Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)

	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(faint)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func styledStatus(s models.RunStatus) string {
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}
