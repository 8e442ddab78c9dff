package report

import "github.com/charmbracelet/lipgloss"

// Color constants.
const (
	cyanColor   = "63"  // cyan
	grayColor   = "241" // gray
	redColor    = "196" // red
	greenColor  = "46"  // green
	yellowColor = "226" // yellow
)

//nolint:gochecknoglobals // shared, immutable styles
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(cyanColor))
	BannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(greenColor))
	ValueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(yellowColor))
	NoteStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(yellowColor))
	HintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(grayColor))
	UpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(greenColor))
	DownStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color(redColor))
	StrongUp     = UpStyle.Bold(true)
	StrongDown   = DownStyle.Bold(true)
	ErrorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(redColor))
	SuccessStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(greenColor))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(yellowColor)).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// Signed renders a value green when non-negative and red otherwise.
func Signed(v float64, text string) string {
	if v >= 0 {
		return UpStyle.Render(text)
	}
	return DownStyle.Render(text)
}

// OnOff renders a boolean flag green or red.
func OnOff(on bool, text string) string {
	if on {
		return UpStyle.Render(text)
	}
	return DownStyle.Render(text)
}
