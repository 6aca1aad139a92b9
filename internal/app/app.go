// Package app is the root Bubble Tea model of the terminal client.
package app

import (
	"fmt"
	"os"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/lessonbuddy/internal/api"
	"github.com/abhisek/lessonbuddy/internal/router"
	"github.com/abhisek/lessonbuddy/internal/screen"
	"github.com/abhisek/lessonbuddy/internal/screens/chat"
	"github.com/abhisek/lessonbuddy/internal/screens/home"
	"github.com/abhisek/lessonbuddy/internal/ui/layout"
	"github.com/abhisek/lessonbuddy/internal/ui/theme"
)

// Options holds the dependencies of the client.
type Options struct {
	Client api.Service
	Topics []string

	// Transcript is the chat history shared by every screen. A new one is
	// created when nil.
	Transcript *chat.Transcript

	// Status is shown on the right of the header, e.g. the API host.
	Status string

	Logger zerolog.Logger
}

// AppModel is the root Bubble Tea model.
type AppModel struct {
	router *router.Router
	status string
	logger zerolog.Logger
	width  int
	height int
}

// newAppModel creates a new AppModel with the home screen.
func newAppModel(opts Options) AppModel {
	if opts.Transcript == nil {
		opts.Transcript = chat.NewTranscript()
	}
	homeScreen := home.New(home.Options{
		Client:     opts.Client,
		Topics:     opts.Topics,
		Transcript: opts.Transcript,
		Logger:     opts.Logger,
	})
	return AppModel{
		router: router.New(homeScreen),
		status: opts.Status,
		logger: opts.Logger,
	}
}

func (m AppModel) Init() tea.Cmd {
	return nil
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "ctrl+t":
			p := theme.Toggle()
			m.logger.Debug().Str("theme", p.Name).Msg("theme toggled")
			return m, nil
		case "esc":
			if m.router.Depth() > 1 {
				return m, func() tea.Msg { return router.PopScreenMsg{} }
			}
		}
	}

	cmd := m.router.Update(msg)
	return m, cmd
}

func (m AppModel) View() tea.View {
	v := tea.NewView(m.render())
	v.AltScreen = true
	return v
}

// render draws the full frame as a string.
func (m AppModel) render() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	if layout.IsTooSmall(m.width, m.height) {
		return layout.RenderMinSizeMessage(m.width, m.height)
	}

	active := m.router.Active()
	title := ""
	if active != nil {
		title = active.Title()
	}

	header := layout.RenderHeader(title, m.status, m.width)
	footer := layout.RenderFooter(m.footerHints(active), m.width)

	contentHeight := max(m.height-lipgloss.Height(header)-lipgloss.Height(footer), 0)
	content := m.router.View(m.width, contentHeight)

	return layout.RenderFrame(header, content, footer, m.width, m.height)
}

func (m AppModel) footerHints(active screen.Screen) []layout.KeyHint {
	if p, ok := active.(screen.KeyHintProvider); ok {
		return p.KeyHints()
	}
	if m.router.Depth() > 1 {
		return []layout.KeyHint{
			{Key: "Esc", Description: "Back"},
			{Key: "Ctrl+C", Description: "Quit"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	p := tea.NewProgram(newAppModel(opts))
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error running program:", err)
		return err
	}
	return nil
}
