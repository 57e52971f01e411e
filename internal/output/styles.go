package output

import "github.com/charmbracelet/lipgloss"

var (
	ColorPrimary   = lipgloss.Color("#7D56F4") // Indigo
	ColorSecondary = lipgloss.Color("#04B575") // Green
	ColorError     = lipgloss.Color("#FF5F87") // Red
	ColorWarning   = lipgloss.Color("#FFAF00") // Gold
	ColorInfo      = lipgloss.Color("#5FAFFF") // Blue
	ColorSubtle    = lipgloss.Color("#767676") // Gray
)

// Styles groups the lipgloss styles used for result lines and the live
// progress region.
type Styles struct {
	Index   lipgloss.Style
	Latency lipgloss.Style
	OK      lipgloss.Style
	Fail    lipgloss.Style
	Task    lipgloss.Style
	Spinner lipgloss.Style
	Subtle  lipgloss.Style
}

// NewStyles returns the colored palette bound to r, which decides whether
// escape sequences are emitted for its output.
func NewStyles(r *lipgloss.Renderer) Styles {
	return Styles{
		Index:   r.NewStyle().Foreground(ColorWarning),
		Latency: r.NewStyle().Foreground(ColorInfo),
		OK:      r.NewStyle().Foreground(ColorSecondary).Bold(true),
		Fail:    r.NewStyle().Foreground(ColorError).Bold(true),
		Task:    r.NewStyle().Foreground(ColorWarning),
		Spinner: r.NewStyle().Foreground(ColorPrimary),
		Subtle:  r.NewStyle().Foreground(ColorSubtle),
	}
}

// PlainStyles returns styles that render text unchanged.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Index:   plain,
		Latency: plain,
		OK:      plain,
		Fail:    plain,
		Task:    plain,
		Spinner: plain,
		Subtle:  plain,
	}
}
