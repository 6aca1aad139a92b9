package chat

import (
	"context"
	"strings"

	"charm.land/bubbles/v2/viewport"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lessonbuddy/internal/screen"
	"github.com/abhisek/lessonbuddy/internal/ui/components"
	"github.com/abhisek/lessonbuddy/internal/ui/layout"
	"github.com/abhisek/lessonbuddy/internal/ui/theme"
)

// Placeholder and failure texts shown in place of a bot reply.
const (
	ThinkingText = "Thinking..."
	ErrorText    = "Sorry, I encountered an error. Please try again."
)

const maxMessageLen = 4000

// Chatter sends one chat message. *api.Client satisfies it.
type Chatter interface {
	Chat(ctx context.Context, message string) (string, error)
}

type replyMsg struct {
	owner      *ChatScreen
	transcript *Transcript
	index      int
	reply      string
	err        error
}

func (m replyMsg) Owner() screen.Screen { return m.owner }

// Abandon settles the placeholder when the chat screen was closed before the
// reply arrived, so the next chat screen does not show it as pending.
func (m replyMsg) Abandon() { m.settle() }

func (m replyMsg) settle() {
	text := m.reply
	if m.err != nil || strings.TrimSpace(text) == "" {
		text = ErrorText
	}
	m.transcript.Resolve(m.index, text)
}

// ChatScreen is a conversation with the tutor.
type ChatScreen struct {
	client     Chatter
	transcript *Transcript
	input      components.TextInput
	viewport   viewport.Model

	// opening is sent as soon as the screen is shown.
	opening string

	// pending is the transcript index awaiting a reply, or -1.
	pending int
	// follow keeps the view pinned to the newest message.
	follow bool
}

var _ screen.Screen = (*ChatScreen)(nil)

// New creates a chat screen over transcript. A non-empty opening message is
// sent immediately.
func New(client Chatter, transcript *Transcript, opening string) *ChatScreen {
	if transcript == nil {
		transcript = NewTranscript()
	}
	return &ChatScreen{
		client:     client,
		transcript: transcript,
		input:      components.NewTextInput("Ask a question…", maxMessageLen, 0),
		viewport:   viewport.New(),
		opening:    strings.TrimSpace(opening),
		pending:    -1,
		follow:     true,
	}
}

func (s *ChatScreen) Init() tea.Cmd {
	if s.opening != "" {
		return tea.Batch(s.input.Focus(), s.send(s.opening))
	}
	return s.input.Focus()
}

func (s *ChatScreen) Title() string { return "Chat" }

func (s *ChatScreen) KeyHints() []layout.KeyHint {
	return []layout.KeyHint{
		{Key: "Enter", Description: "Send"},
		{Key: "PgUp/PgDn", Description: "Scroll"},
		{Key: "Esc", Description: "Back"},
	}
}

// Waiting reports whether a reply is outstanding.
func (s *ChatScreen) Waiting() bool { return s.pending >= 0 }

func (s *ChatScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case replyMsg:
		msg.settle()
		if msg.owner == s && msg.index == s.pending {
			s.pending = -1
		}
		s.follow = true
		return s, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			text := s.input.Value()
			if text == "" || s.Waiting() {
				return s, nil
			}
			s.input.Reset()
			return s, s.send(text)
		case "pgup", "pgdown":
			var cmd tea.Cmd
			s.viewport, cmd = s.viewport.Update(msg)
			s.follow = s.viewport.AtBottom()
			return s, cmd
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

// send records the user's message with a placeholder reply and starts the
// exchange.
func (s *ChatScreen) send(text string) tea.Cmd {
	s.transcript.Add(Entry{Role: RoleUser, Text: text})
	idx := s.transcript.Add(Entry{Role: RoleBot, Text: ThinkingText, Pending: true})
	s.pending = idx
	s.follow = true

	client, transcript := s.client, s.transcript
	return func() tea.Msg {
		reply, err := client.Chat(context.Background(), text)
		return replyMsg{owner: s, transcript: transcript, index: idx, reply: reply, err: err}
	}
}

func (s *ChatScreen) View(width, height int) string {
	inputView := lipgloss.NewStyle().
		Width(width-2).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Render(s.input.View())

	s.viewport.SetWidth(width)
	s.viewport.SetHeight(max(height-lipgloss.Height(inputView), 1))
	s.viewport.SetContent(renderTranscript(s.transcript.Entries(), width))
	if s.follow {
		s.viewport.GotoBottom()
	}

	return lipgloss.JoinVertical(lipgloss.Left, s.viewport.View(), inputView)
}

func renderTranscript(entries []Entry, width int) string {
	if len(entries) == 0 {
		return theme.Hint.Render("  Say hello to your tutor.")
	}

	wrap := lipgloss.NewStyle().Width(max(width-4, 10)).PaddingLeft(2)
	var b strings.Builder
	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n\n")
		}
		switch {
		case e.Role == RoleUser:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Primary).Bold(true).Render("You"))
			b.WriteString("\n" + wrap.Foreground(theme.Text).Render(e.Text))
		case e.Pending:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Tutor"))
			b.WriteString("\n" + wrap.Inherit(theme.Hint).Render(e.Text))
		default:
			b.WriteString(lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Tutor"))
			b.WriteString("\n" + wrap.Foreground(theme.Text).Render(e.Text))
		}
	}
	return b.String()
}
