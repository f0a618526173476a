package tui

import (
	"github.com/OFFIS-RIT/rhetorik/pkg/analysis"
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorError     = lipgloss.Color("196") // Red
)

// TitleStyle for the application header.
var TitleStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// LabelStyle for input labels and panel headings.
var LabelStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// HintStyle for key hints and disabled actions.
var HintStyle = lipgloss.NewStyle().
	Foreground(colorMuted)

// PanelStyle frames the article column and the graph panel.
var PanelStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorSecondary).
	Padding(0, 1)

// SelectedSentence marks the sentence under the cursor.
var SelectedSentence = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary)

// DimmedStyle renders elements outside the visible set.
var DimmedStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("237"))

// ErrorStyle for the error banner.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// emotionStyle colors text with the emotion's palette entry.
func emotionStyle(e analysis.EmotionLabel) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(analysis.EmotionHex(e)))
}
