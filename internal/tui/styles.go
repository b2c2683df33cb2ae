package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette shared by the views.
//
//nolint:gochecknoglobals // Lip Gloss colors and styles are package-level by convention.
var (
	ColorHeader    = lipgloss.Color("86")
	ColorLabel     = lipgloss.Color("245")
	ColorValue     = lipgloss.Color("255")
	ColorHighlight = lipgloss.Color("229")
	ColorSelected  = lipgloss.Color("57")
	ColorCritical  = lipgloss.Color("196")
	ColorBorder    = lipgloss.Color("240")

	TitleStyle    = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorHeader)
	LabelStyle    = lipgloss.NewStyle().Foreground(ColorLabel)
	SelectedStyle = lipgloss.NewStyle().Foreground(ColorHighlight).Background(ColorSelected)
	CriticalStyle = lipgloss.NewStyle().Foreground(ColorCritical).Bold(true)
	StatusStyle   = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderTop(true).
			BorderForeground(ColorBorder)
)

// Layout defaults used before the first tea.WindowSizeMsg.
const (
	defaultWidth  = 100
	defaultHeight = 24
	minHeight     = 3
)

// ViewState is the top-level state of an interactive view.
type ViewState int

// View states.
const (
	ViewStateLoading ViewState = iota
	ViewStateList
	ViewStateDetail
	ViewStateQuitting
)

// OutputMode is how results are presented on the current terminal.
type OutputMode int

// Output modes.
const (
	OutputModePlain OutputMode = iota
	OutputModeStyled
	OutputModeInteractive
)

// String returns the mode name.
func (m OutputMode) String() string {
	switch m {
	case OutputModePlain:
		return "plain"
	case OutputModeStyled:
		return "styled"
	case OutputModeInteractive:
		return "interactive"
	default:
		return fmt.Sprintf("OutputMode(%d)", int(m))
	}
}

// DetectOutputMode picks the richest mode stdout supports. forcePlain and a
// NO_COLOR or TERM=dumb environment give plain output; noInteractive or a CI
// environment caps the mode at styled.
func DetectOutputMode(forcePlain, noColor, noInteractive bool) OutputMode {
	if forcePlain || noColor || os.Getenv("NO_COLOR") != "" || strings.EqualFold(os.Getenv("TERM"), "dumb") {
		return OutputModePlain
	}
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return OutputModePlain
	}
	if noInteractive || os.Getenv("CI") != "" || !term.IsTerminal(int(os.Stdin.Fd())) {
		return OutputModeStyled
	}
	return OutputModeInteractive
}

// LoadingState drives the spinner shown while a page is being fetched.
type LoadingState struct {
	spinner spinner.Model
	message string
}

// NewLoadingState creates a spinner with the given message.
func NewLoadingState(message string) *LoadingState {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(ColorHeader)
	return &LoadingState{spinner: s, message: message}
}

// Init starts the spinner.
func (l *LoadingState) Init() tea.Cmd {
	return l.spinner.Tick
}

// Update advances the spinner on its tick messages.
func (l *LoadingState) Update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	l.spinner, cmd = l.spinner.Update(msg)
	return cmd
}

// View renders the spinner frame.
func (l *LoadingState) View() string {
	return l.spinner.View()
}

// RenderLoading returns the string to display for a loading screen.
func RenderLoading(loading *LoadingState) string {
	if loading == nil {
		return "Loading..."
	}
	return fmt.Sprintf("\n %s %s\n\n", loading.spinner.View(), loading.message)
}
