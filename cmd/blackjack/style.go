package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("12")).
			Width(18)

	actionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("14"))

	winStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	lossStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

// row renders one aligned label and value
func row(label string, value any) string {
	return labelStyle.Render(label) + fmt.Sprint(value)
}

// money colours a signed amount
func money(d decimal.Decimal) string {
	s := d.StringFixed(2)
	switch {
	case d.IsPositive():
		return winStyle.Render("+" + s)
	case d.IsNegative():
		return lossStyle.Render(s)
	}
	return s
}

// box renders a titled block of rows
func box(title string, rows ...string) string {
	return boxStyle.Render(headerStyle.Render(title) + "\n" + strings.Join(rows, "\n"))
}
