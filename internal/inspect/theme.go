package inspect

import "github.com/charmbracelet/lipgloss"

// Theme holds the styles used by Render.
type Theme struct {
	Border    lipgloss.Style
	Title     lipgloss.Style
	Header    lipgloss.Style
	Dim       lipgloss.Style
	Highlight lipgloss.Style

	Input  lipgloss.Style
	Filter lipgloss.Style
	Output lipgloss.Style
}

func NewDefaultTheme() Theme {
	purple := lipgloss.Color("#874BFD")

	return Theme{
		Border: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(purple).
			Padding(0, 1),
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")),
		Header: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#61AFEF")),
		Dim:       lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")),
		Highlight: lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B")),

		Input:  lipgloss.NewStyle().Foreground(lipgloss.Color("#98C379")),
		Filter: lipgloss.NewStyle().Foreground(lipgloss.Color("#C678DD")),
		Output: lipgloss.NewStyle().Foreground(lipgloss.Color("#E06C75")),
	}
}

// PlainTheme renders without colors or borders.
func PlainTheme() Theme {
	plain := lipgloss.NewStyle()
	return Theme{
		Border:    plain,
		Title:     plain,
		Header:    plain,
		Dim:       plain,
		Highlight: plain,
		Input:     plain,
		Filter:    plain,
		Output:    plain,
	}
}

func (t Theme) kindStyle(kind string) lipgloss.Style {
	switch kind {
	case "input", "source":
		return t.Input
	case "filter":
		return t.Filter
	default:
		return t.Output
	}
}
