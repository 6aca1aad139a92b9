// Package lesson shows a generated lesson and launches the notes, chat and
// assessment flows from it.
package lesson

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/lessonbuddy/internal/api"
	"github.com/abhisek/lessonbuddy/internal/router"
	"github.com/abhisek/lessonbuddy/internal/screen"
	"github.com/abhisek/lessonbuddy/internal/screens/chat"
	"github.com/abhisek/lessonbuddy/internal/screens/practice"
	"github.com/abhisek/lessonbuddy/internal/ui/layout"
	"github.com/abhisek/lessonbuddy/internal/ui/theme"
)

// User-facing messages.
const (
	MsgLessonFailed = "Could not generate the lesson."
	MsgNotesFailed  = "Could not generate revision notes."
)

// minExplainLen is the selection length, in characters, above which the
// Explain popup is offered.
const minExplainLen = 5

const explainLabel = "Explain (e)"

// ExplainPrompt is the chat message sent for a selection.
func ExplainPrompt(selection string) string {
	return fmt.Sprintf(`Can you explain this concept in simpler terms: "%s"`, selection)
}

type notesState int

const (
	notesNone notesState = iota
	notesLoading
	notesReady
	notesFailed
)

type lessonMsg struct {
	owner  *LessonScreen
	lesson *api.Lesson
	err    error
}

func (m lessonMsg) Owner() screen.Screen { return m.owner }

type notesMsg struct {
	owner *LessonScreen
	notes string
	err   error
}

func (m notesMsg) Owner() screen.Screen { return m.owner }

// Options configures a LessonScreen.
type Options struct {
	Client     api.Service
	Topic      string
	Transcript *chat.Transcript
	Logger     zerolog.Logger
}

// LessonScreen displays one lesson as a list of paragraphs with a cursor.
// The paragraph under the cursor is the current selection.
type LessonScreen struct {
	opts    Options
	logger  zerolog.Logger
	spinner spinner.Model

	loading    bool
	errMsg     string
	lesson     *api.Lesson
	paragraphs []string
	cursor     int
	offset     int

	notesState notesState
	notes      string
}

var _ screen.Screen = (*LessonScreen)(nil)

// New creates a lesson screen for opts.Topic.
func New(opts Options) *LessonScreen {
	if opts.Transcript == nil {
		opts.Transcript = chat.NewTranscript()
	}
	return &LessonScreen{
		opts:    opts,
		logger:  opts.Logger.With().Str("component", "lesson_screen").Logger(),
		loading: true,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)),
		),
	}
}

func (s *LessonScreen) Init() tea.Cmd {
	client, topic := s.opts.Client, s.opts.Topic
	fetch := func() tea.Msg {
		l, err := client.GenerateLesson(context.Background(), topic)
		return lessonMsg{owner: s, lesson: l, err: err}
	}
	return tea.Batch(fetch, s.spinner.Tick)
}

func (s *LessonScreen) Title() string { return s.opts.Topic }

func (s *LessonScreen) KeyHints() []layout.KeyHint {
	if s.loading {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	if s.lesson == nil {
		return []layout.KeyHint{
			{Key: "R", Description: "Retry"},
			{Key: "Esc", Description: "Back"},
		}
	}
	hints := []layout.KeyHint{
		{Key: "↑↓", Description: "Paragraph"},
		{Key: "N", Description: "Revision notes"},
		{Key: "A", Description: "Assessment"},
	}
	if s.CanExplain() {
		hints = append(hints, layout.KeyHint{Key: "E", Description: "Explain"})
	}
	return append(hints, layout.KeyHint{Key: "Esc", Description: "Back"})
}

// Selection returns the trimmed text of the highlighted paragraph.
func (s *LessonScreen) Selection() string {
	if s.cursor < 0 || s.cursor >= len(s.paragraphs) {
		return ""
	}
	return strings.TrimSpace(s.paragraphs[s.cursor])
}

// CanExplain reports whether the selection is long enough to explain.
func (s *LessonScreen) CanExplain() bool {
	return utf8.RuneCountInString(s.Selection()) > minExplainLen
}

func (s *LessonScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case lessonMsg:
		if msg.owner != s || !s.loading {
			return s, nil
		}
		s.loading = false
		if msg.err != nil || msg.lesson == nil {
			s.logger.Warn().Err(msg.err).Str("topic", s.opts.Topic).Msg("lesson request failed")
			s.errMsg = MsgLessonFailed
			return s, nil
		}
		s.lesson = msg.lesson
		s.paragraphs = splitParagraphs(msg.lesson.Content)
		return s, nil

	case notesMsg:
		if msg.owner != s || s.notesState != notesLoading {
			return s, nil
		}
		if msg.err != nil || strings.TrimSpace(msg.notes) == "" {
			s.logger.Warn().Err(msg.err).Msg("revision notes request failed")
			s.notesState = notesFailed
			return s, nil
		}
		s.notes = msg.notes
		s.notesState = notesReady
		return s, nil

	case spinner.TickMsg:
		if !s.loading && s.notesState != notesLoading {
			return s, nil
		}
		var cmd tea.Cmd
		s.spinner, cmd = s.spinner.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *LessonScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	key := msg.String()
	if s.lesson == nil {
		if !s.loading && key == "r" {
			return s, func() tea.Msg { return router.ReplaceScreenMsg{Screen: New(s.opts)} }
		}
		return s, nil
	}

	switch key {
	case "up", "k":
		if s.cursor > 0 {
			s.cursor--
		}
	case "down", "j":
		if s.cursor < len(s.paragraphs)-1 {
			s.cursor++
		}
	case "n":
		if s.notesState == notesLoading {
			return s, nil
		}
		s.notesState = notesLoading
		client, text := s.opts.Client, s.lesson.Content
		fetch := func() tea.Msg {
			notes, err := client.RevisionNotes(context.Background(), text)
			return notesMsg{owner: s, notes: notes, err: err}
		}
		return s, tea.Batch(fetch, s.spinner.Tick)
	case "a":
		next := practice.New(s.opts.Client, s.lesson.Content, s.opts.Logger)
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	case "e":
		if !s.CanExplain() {
			return s, nil
		}
		next := chat.New(s.opts.Client, s.opts.Transcript, ExplainPrompt(s.Selection()))
		return s, func() tea.Msg { return router.PushScreenMsg{Screen: next} }
	}
	return s, nil
}

func (s *LessonScreen) View(width, height int) string {
	pad := lipgloss.NewStyle().Padding(0, 1)
	switch {
	case s.loading:
		return pad.Render(fmt.Sprintf("\n%s %s", s.spinner.View(),
			theme.Hint.Render("Generating a lesson on "+s.opts.Topic+"...")))
	case s.lesson == nil:
		return pad.Render("\n" + theme.ErrorText.Render(s.errMsg) + "\n\n" + theme.Hint.Render("Press R to try again."))
	}

	notes := s.renderNotes(width, height/3)
	areaH := max(height-lipgloss.Height(notes), 3)
	if notes == "" {
		areaH = height
	}

	body := s.renderLesson(width, areaH)
	if notes == "" {
		return body
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, notes)
}

// renderLesson renders the visible slice of paragraphs with the cursor
// paragraph highlighted and the Explain popup above it.
func (s *LessonScreen) renderLesson(width, height int) string {
	cw := max(width-4, 10)
	normal := lipgloss.NewStyle().Foreground(theme.TextDim).PaddingLeft(2).Width(cw)
	selected := lipgloss.NewStyle().
		Foreground(theme.Text).
		Border(lipgloss.ThickBorder(), false, false, false, true).
		BorderForeground(theme.Primary).
		PaddingLeft(1).
		Width(cw)

	var rows []string
	selStart, selHeight := 0, 0
	for i, p := range s.paragraphs {
		if i > 0 {
			rows = append(rows, "")
		}
		style := normal
		if i == s.cursor {
			style = selected
			selStart = len(rows)
		}
		block := strings.Split(style.Render(p), "\n")
		if i == s.cursor {
			selHeight = len(block)
		}
		rows = append(rows, block...)
	}

	s.scrollTo(selStart, selHeight, len(rows), height)
	end := min(s.offset+height, len(rows))
	content := strings.Join(rows[s.offset:end], "\n")

	if !s.CanExplain() {
		return content
	}
	popup := theme.Popup.Render(explainLabel)
	x, y := layout.PopupPosition(
		layout.Rect{X: 0, Y: selStart - s.offset, Width: cw, Height: selHeight},
		lipgloss.Width(popup), lipgloss.Height(popup),
		layout.Rect{X: 0, Y: 0, Width: width, Height: end - s.offset},
	)
	return layout.Overlay(content, popup, x, y)
}

// scrollTo adjusts offset so the selected block, plus the row above it for
// the popup, is visible.
func (s *LessonScreen) scrollTo(start, h, total, height int) {
	top := max(start-1, 0)
	if top < s.offset {
		s.offset = top
	}
	if bottom := start + h; bottom > s.offset+height {
		s.offset = bottom - height
	}
	s.offset = max(min(s.offset, total-height), 0)
}

func (s *LessonScreen) renderNotes(width, maxHeight int) string {
	var content string
	switch s.notesState {
	case notesNone:
		return ""
	case notesLoading:
		content = s.spinner.View() + " " + theme.Hint.Render("Writing revision notes...")
	case notesFailed:
		content = theme.ErrorText.Render(MsgNotesFailed)
	case notesReady:
		content = s.notes
	}

	title := lipgloss.NewStyle().Foreground(theme.Secondary).Bold(true).Render("Revision notes")
	return lipgloss.NewStyle().
		Width(width-2).
		MaxHeight(max(maxHeight, 4)).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(theme.Border).
		Padding(0, 1).
		Render(title + "\n" + content)
}

// splitParagraphs breaks lesson text on blank lines.
func splitParagraphs(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	var out []string
	for _, p := range strings.Split(text, "\n\n") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
