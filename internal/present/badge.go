package present

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/christopherklint97/ponto/internal/metrics"
	"github.com/christopherklint97/ponto/internal/report"
)

var (
	upStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10")).
			Bold(true)

	downStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9")).
			Bold(true)

	flatStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("8"))
)

// Badge is DeltaLabel colored by direction: green up, red down, dim when
// there is no base or no change.
func Badge(d metrics.Delta, unit report.Unit) string {
	label := DeltaLabel(d, unit)
	switch {
	case d.Kind == metrics.NoBase:
		return flatStyle.Render(label)
	case d.Value > 0:
		return upStyle.Render("▲ " + label)
	case d.Value < 0:
		return downStyle.Render("▼ " + label)
	default:
		return flatStyle.Render(label)
	}
}
