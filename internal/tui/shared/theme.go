package shared

import "github.com/charmbracelet/lipgloss"

// Colors defines the color palette
type Colors struct {
	Primary lipgloss.Color
	Accent  lipgloss.Color
	Muted   lipgloss.Color
	Border  lipgloss.Color
	Error   lipgloss.Color
}

// BorderStyles defines border styling for components
type BorderStyles struct {
	Normal  lipgloss.Style
	Focused lipgloss.Style
}

// HeaderStyles defines styling for header component
type HeaderStyles struct {
	Title lipgloss.Style
	Host  lipgloss.Style
	Count lipgloss.Style
}

// PreviewStyles defines styling for the character list preview
type PreviewStyles struct {
	AccountName lipgloss.Style
	Label       lipgloss.Style
	Class       lipgloss.Style
	Separator   lipgloss.Style
}

type StatusStyles struct {
	Info  lipgloss.Style
	Error lipgloss.Style
	Help  lipgloss.Style
}

// Theme aggregates all style definitions
type Theme struct {
	Colors  Colors
	Border  BorderStyles
	Header  HeaderStyles
	Preview PreviewStyles
	Status  StatusStyles
}

// DefaultTheme returns the default color scheme
func DefaultTheme() Theme {
	colors := Colors{
		Primary: lipgloss.Color("205"),
		Accent:  lipgloss.Color("240"),
		Muted:   lipgloss.Color("240"),
		Border:  lipgloss.Color("205"),
		Error:   lipgloss.Color("196"),
	}

	return Theme{
		Colors: colors,
		Border: BorderStyles{
			Normal:  lipgloss.NewStyle().Border(lipgloss.RoundedBorder()),
			Focused: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colors.Border),
		},
		Header: HeaderStyles{
			Title: lipgloss.NewStyle().Bold(true).Italic(true),
			Host:  lipgloss.NewStyle().Bold(true),
			Count: lipgloss.NewStyle().Foreground(colors.Accent),
		},
		Preview: PreviewStyles{
			AccountName: lipgloss.NewStyle().Foreground(colors.Primary).Bold(true),
			Label:       lipgloss.NewStyle().Foreground(colors.Accent).PaddingRight(1),
			Class:       lipgloss.NewStyle().Bold(true).Width(12),
			Separator:   lipgloss.NewStyle().Foreground(colors.Muted),
		},
		Status: StatusStyles{
			Info:  lipgloss.NewStyle(),
			Error: lipgloss.NewStyle().Foreground(colors.Error),
			Help:  lipgloss.NewStyle().Foreground(colors.Muted),
		},
	}
}

// WithBorder applies border style based on focus state
func (t Theme) WithBorder(content string, focused bool) string {
	if focused {
		return t.Border.Focused.Render(content)
	}
	return t.Border.Normal.Render(content)
}
