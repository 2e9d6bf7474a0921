package styles

import "github.com/charmbracelet/lipgloss"

var (
	Primary    = lipgloss.Color("#FFB454")
	Secondary  = lipgloss.Color("#82AAFF")
	Success    = lipgloss.Color("#C3E88D")
	Error      = lipgloss.Color("#F07178")
	Muted      = lipgloss.Color("#546E7A")
	Background = lipgloss.Color("#000000")
	Foreground = lipgloss.Color("#EEFFFF")
	KeyFill    = lipgloss.Color("#37474F")
)

var (
	TitleStyle = lipgloss.NewStyle().
			Foreground(Primary).
			Bold(true).
			MarginBottom(1)

	TextStyle = lipgloss.NewStyle().
			Foreground(Foreground)

	MutedStyle = lipgloss.NewStyle().
			Foreground(Muted)

	// menu entries
	ItemStyle = lipgloss.NewStyle().
			Foreground(Foreground).
			Padding(0, 2)

	SelectedItemStyle = lipgloss.NewStyle().
				Foreground(Background).
				Background(Primary).
				Bold(true).
				Padding(0, 2)

	InputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Muted).
			Padding(0, 1)

	FocusedInputStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(Primary).
				Padding(0, 1)

	// on-screen keyboard caps, one line high so rows map directly to screen lines
	KeyStyle = lipgloss.NewStyle().
			Foreground(Foreground).
			Background(KeyFill).
			Padding(0, 1)

	SelectedKeyStyle = lipgloss.NewStyle().
				Foreground(Background).
				Background(Primary).
				Bold(true).
				Padding(0, 1)

	MessageStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			MarginTop(1)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true).
			MarginTop(1)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	HelpStyle = lipgloss.NewStyle().
			Foreground(Muted).
			Italic(true).
			MarginTop(1)
)
