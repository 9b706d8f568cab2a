package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	PrimaryColor = lipgloss.Color("#2D6CDF")
	SuccessColor = lipgloss.Color("#4ECDC4")
	WarningColor = lipgloss.Color("#FFE66D")
	ErrorColor   = lipgloss.Color("#FF6B6B")
	SubtleColor  = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)

	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	SubtleStyle  = lipgloss.NewStyle().Foreground(SubtleColor)

	TableHeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

	// TotalsStyle frames the report sums.
	TotalsStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(0, 1)
)

func FormatTitle(s string) string { return TitleStyle.Render(s) }

func FormatSuccess(s string) string { return SuccessStyle.Render("✓ " + s) }

func FormatWarning(s string) string { return WarningStyle.Render("! " + s) }

func FormatError(s string) string { return ErrorStyle.Render("✗ " + s) }

// FormatTotals renders the three report sums on one framed line.
func FormatTotals(cairo, tenth int) string {
	return TotalsStyle.Render(fmt.Sprintf("cairo %d   tenth %d   daily %d", cairo, tenth, cairo+tenth))
}

// Separator returns a rule of n box-drawing characters.
func Separator(n int) string {
	return SubtleStyle.Render(strings.Repeat("─", n))
}
