package dashboard

import "github.com/charmbracelet/lipgloss"

var (
	colorGreen = lipgloss.Color("#2F4F4F")
	colorGold  = lipgloss.Color("#FFD700")
	colorRed   = lipgloss.Color("167")
	colorWhite = lipgloss.Color("255")
	colorGray  = lipgloss.Color("245")
	colorDim   = lipgloss.Color("240")
)

var (
	styleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorGold)
	styleDim   = lipgloss.NewStyle().Foreground(colorDim)
	styleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleBadge = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("0")).
			Background(colorGold)

	styleCard = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1).
			Width(18)

	styleCardActive = styleCard.
			BorderForeground(colorGold).
			Foreground(colorGold).
			Bold(true)

	styleBarFull  = lipgloss.NewStyle().Foreground(colorGold)
	styleBarEmpty = lipgloss.NewStyle().Foreground(colorGreen)

	styleInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleSuccess = lipgloss.NewStyle().Foreground(lipgloss.Color("35"))
)
