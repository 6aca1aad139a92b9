package home

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/lessonbuddy/internal/api"
	"github.com/abhisek/lessonbuddy/internal/router"
	"github.com/abhisek/lessonbuddy/internal/screen"
	"github.com/abhisek/lessonbuddy/internal/screens/chat"
	"github.com/abhisek/lessonbuddy/internal/screens/lesson"
	"github.com/abhisek/lessonbuddy/internal/ui/components"
	"github.com/abhisek/lessonbuddy/internal/ui/layout"
	"github.com/abhisek/lessonbuddy/internal/ui/theme"
)

const (
	labelCustom = "Custom topic…"
	labelChat   = "Chat with tutor"
	labelQuit   = "Quit"

	maxTopicLen = 200
)

// Options configures the home screen.
type Options struct {
	Client     api.Service
	Topics     []string
	Transcript *chat.Transcript
	Logger     zerolog.Logger
}

// HomeScreen lists the configured topics and the other entry points.
type HomeScreen struct {
	opts  Options
	menu  components.Menu
	input components.TextInput

	// editing is set while the custom topic input has focus.
	editing bool
}

var _ screen.Screen = (*HomeScreen)(nil)

// New creates the home screen.
func New(opts Options) *HomeScreen {
	if opts.Transcript == nil {
		opts.Transcript = chat.NewTranscript()
	}
	h := &HomeScreen{opts: opts}

	items := make([]components.MenuItem, 0, len(opts.Topics)+3)
	for _, topic := range opts.Topics {
		items = append(items, components.MenuItem{Label: topic, Action: func() tea.Cmd {
			return h.openLesson(topic)
		}})
	}
	items = append(items,
		components.MenuItem{Label: labelCustom, Action: func() tea.Cmd {
			h.editing = true
			h.input.Reset()
			return h.input.Focus()
		}},
		components.MenuItem{Label: labelChat, Action: func() tea.Cmd {
			next := chat.New(opts.Client, opts.Transcript, "")
			return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
		}},
		components.MenuItem{Label: labelQuit, Action: func() tea.Cmd {
			return tea.Quit
		}},
	)

	h.menu = components.NewMenu(items)
	h.input = components.NewTextInput("e.g. The water cycle", maxTopicLen, 40)
	h.input.Blur()
	return h
}

func (h *HomeScreen) openLesson(topic string) tea.Cmd {
	next := lesson.New(lesson.Options{
		Client:     h.opts.Client,
		Topic:      topic,
		Transcript: h.opts.Transcript,
		Logger:     h.opts.Logger,
	})
	return func() tea.Msg { return router.PushScreenMsg{Screen: next} }
}

func (h *HomeScreen) Init() tea.Cmd {
	return nil
}

func (h *HomeScreen) Title() string {
	return "Home"
}

func (h *HomeScreen) KeyHints() []layout.KeyHint {
	if h.editing {
		return []layout.KeyHint{
			{Key: "Enter", Description: "Start lesson"},
			{Key: "Esc", Description: "Cancel"},
		}
	}
	return []layout.KeyHint{
		{Key: "↑↓", Description: "Navigate"},
		{Key: "Enter", Description: "Select"},
		{Key: "Ctrl+T", Description: "Theme"},
		{Key: "Ctrl+C", Description: "Quit"},
	}
}

// Editing reports whether the custom topic input has focus.
func (h *HomeScreen) Editing() bool { return h.editing }

func (h *HomeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	if !h.editing {
		var cmd tea.Cmd
		h.menu, cmd = h.menu.Update(msg)
		return h, cmd
	}

	if kmsg, ok := msg.(tea.KeyMsg); ok {
		switch kmsg.String() {
		case "esc":
			h.editing = false
			h.input.Blur()
			return h, nil
		case "enter":
			topic := h.input.Value()
			if topic == "" {
				return h, nil
			}
			h.editing = false
			h.input.Blur()
			h.input.Reset()
			return h, h.openLesson(topic)
		}
	}

	var cmd tea.Cmd
	h.input, cmd = h.input.Update(msg)
	return h, cmd
}

func (h *HomeScreen) View(width, height int) string {
	cw := min(width-4, 60)

	title := theme.Title.Width(cw).Render("What would you like to learn today?")
	subtitle := theme.Subtitle.Width(cw).Render("Pick a topic, or type your own.")

	sections := []string{title, subtitle, h.menu.View()}
	if h.editing {
		box := lipgloss.NewStyle().
			Width(cw).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(theme.Primary).
			Padding(0, 1).
			Render(h.input.View())
		sections = append(sections, box)
	}

	content := strings.Join(sections, "\n\n")
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
