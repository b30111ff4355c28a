package ui

import "github.com/charmbracelet/lipgloss"

var (
	normalDim   = lipgloss.AdaptiveColor{Light: "#A49FA5", Dark: "#777777"}
	gray        = lipgloss.AdaptiveColor{Light: "#909090", Dark: "#626262"}
	midGray     = lipgloss.AdaptiveColor{Light: "#B2B2B2", Dark: "#4A4A4A"}
	red         = lipgloss.AdaptiveColor{Light: "#FF4672", Dark: "#ED567A"}
	fuchsia     = lipgloss.Color("#EE6FF8")
	yellowGreen = lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"}
	cream       = lipgloss.AdaptiveColor{Light: "#FFFDF5", Dark: "#FFFDF5"}

	mintGreen = lipgloss.AdaptiveColor{Light: "#89F0CB", Dark: "#89F0CB"}
	darkGreen = lipgloss.AdaptiveColor{Light: "#1C8760", Dark: "#1C8760"}

	statusBarNoteFg = lipgloss.AdaptiveColor{Light: "#656565", Dark: "#7D7D7D"}
	statusBarBg     = lipgloss.AdaptiveColor{Light: "#E6E6E6", Dark: "#242424"}
)

var (
	logoStyle = lipgloss.NewStyle().
			Foreground(cream).
			Background(fuchsia).
			Bold(true).
			Render

	statusBarNoteStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(statusBarBg).
				Render

	statusBarStateStyle = lipgloss.NewStyle().
				Foreground(lipgloss.AdaptiveColor{Light: "#949494", Dark: "#5A5A5A"}).
				Background(statusBarBg).
				Render

	statusBarHelpStyle = lipgloss.NewStyle().
				Foreground(statusBarNoteFg).
				Background(lipgloss.AdaptiveColor{Light: "#DCDCDC", Dark: "#323232"}).
				Render

	statusBarMessageStyle = lipgloss.NewStyle().
				Foreground(mintGreen).
				Background(darkGreen).
				Render

	errorMessageStyle = lipgloss.NewStyle().
				Foreground(cream).
				Background(red).
				Render

	currentWordStyle = lipgloss.NewStyle().
				Foreground(yellowGreen).
				Bold(true)

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("0")).
			Background(yellowGreen).
			Render

	dimStyle = lipgloss.NewStyle().
			Foreground(normalDim).
			Render

	labelStyle = lipgloss.NewStyle().
			Foreground(gray).
			Width(8).
			Render

	selectedStyle = lipgloss.NewStyle().
			Foreground(fuchsia).
			Bold(true).
			Render

	disabledStyle = lipgloss.NewStyle().
			Foreground(midGray).
			Render

	helpViewStyle = lipgloss.NewStyle().
			Foreground(statusBarNoteFg).
			Render
)

func logoView() string {
	return logoStyle(" Hark ")
}
