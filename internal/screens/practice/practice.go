// Package practice is the assessment screen: it requests a quiz for the
// lesson text, presents it as a form and shows the score.
package practice

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/lessonbuddy/internal/assessment"
	"github.com/abhisek/lessonbuddy/internal/quiz"
	"github.com/abhisek/lessonbuddy/internal/screen"
	"github.com/abhisek/lessonbuddy/internal/ui/components"
	"github.com/abhisek/lessonbuddy/internal/ui/layout"
	"github.com/abhisek/lessonbuddy/internal/ui/theme"
)

type assessmentMsg struct {
	owner  *PracticeScreen
	ticket quiz.Ticket
	raw    string
	err    error
}

func (m assessmentMsg) Owner() screen.Screen { return m.owner }

// PracticeScreen hosts one quiz.Session.
type PracticeScreen struct {
	gen     quiz.Generator
	text    string
	session *quiz.Session

	form    components.QuizForm
	spinner spinner.Model
	errMsg  string
}

var _ screen.Screen = (*PracticeScreen)(nil)

// New creates a practice screen for the given study text.
func New(gen quiz.Generator, text string, logger zerolog.Logger) *PracticeScreen {
	return &PracticeScreen{
		gen:     gen,
		text:    text,
		session: quiz.NewSession(gen, logger),
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (p *PracticeScreen) Init() tea.Cmd {
	return p.request()
}

func (p *PracticeScreen) Title() string { return "Assessment" }

func (p *PracticeScreen) KeyHints() []layout.KeyHint {
	switch p.session.State() {
	case quiz.Presenting:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Tab", Description: "Next question"},
			{Key: "Space/1-9", Description: "Select"},
			{Key: "Ctrl+S", Description: "Submit"},
			{Key: "Esc", Description: "Back"},
		}
	case quiz.Requesting:
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	default:
		return []layout.KeyHint{
			{Key: "R", Description: "New assessment"},
			{Key: "Esc", Description: "Back to lesson"},
		}
	}
}

// Session exposes the underlying lifecycle for inspection.
func (p *PracticeScreen) Session() *quiz.Session { return p.session }

// request starts a new exchange. Results of earlier exchanges still in
// flight become stale.
func (p *PracticeScreen) request() tea.Cmd {
	ticket := p.session.Begin()
	p.errMsg = ""
	p.spinner = spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(theme.Primary)))

	gen, text := p.gen, p.text
	fetch := func() tea.Msg {
		raw, err := gen.GenerateAssessment(context.Background(), text)
		return assessmentMsg{owner: p, ticket: ticket, raw: raw, err: err}
	}
	return tea.Batch(fetch, p.spinner.Tick)
}

func (p *PracticeScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case assessmentMsg:
		if msg.owner != p {
			return p, nil
		}
		out := p.session.Complete(msg.ticket, msg.raw, msg.err)
		switch {
		case out.Stale:
		case out.OK():
			p.form = components.NewQuizForm(out.Assessment)
		default:
			p.errMsg = out.Message()
		}
		return p, nil

	case components.QuizSubmittedMsg:
		if _, err := p.session.Submit(msg.Form); err == nil {
			p.form = msg.Form
		}
		return p, nil

	case spinner.TickMsg:
		if p.session.State() != quiz.Requesting {
			return p, nil
		}
		var cmd tea.Cmd
		p.spinner, cmd = p.spinner.Update(msg)
		return p, cmd

	case tea.KeyMsg:
		if p.session.State() == quiz.Presenting {
			var cmd tea.Cmd
			p.form, cmd = p.form.Update(msg)
			return p, cmd
		}
		if msg.String() == "r" {
			return p, p.request()
		}
	}
	return p, nil
}

func (p *PracticeScreen) View(width, height int) string {
	cw := min(width-4, 90)
	var body string

	switch p.session.State() {
	case quiz.Requesting:
		body = p.spinner.View() + " " + theme.Hint.Render("Preparing your assessment...")

	case quiz.Idle:
		if p.errMsg != "" {
			body = theme.ErrorText.Render(p.errMsg) + "\n\n" + theme.Hint.Render("Press R to try again.")
		}

	case quiz.Presenting:
		progress := fmt.Sprintf("%d of %d answered", p.form.Answered(), p.form.Len())
		body = theme.Hint.Render(progress) + "\n\n" + p.form.View(cw)

	case quiz.Submitted:
		score, _ := p.session.Score()
		body = renderResult(score, cw) + "\n\n" + p.form.View(cw)
	}

	return lipgloss.NewStyle().Padding(1, 2).Width(width).MaxHeight(height).Render(body)
}

// renderResult renders the score banner shown after submission.
func renderResult(score assessment.Score, width int) string {
	bar := components.NewProgressBar("", score.Percent(), true, min(width, 50))
	verdict := "Review the lesson and try again."
	bar.Fill = theme.Accent
	if score.Passed() {
		verdict = "Great work!"
		bar.Fill = theme.Success
	}

	lines := []string{
		theme.Title.Align(lipgloss.Left).Render(fmt.Sprintf("You scored %d out of %d", score.Correct, score.Total)),
		bar.View(),
		theme.Body.Render(verdict),
	}
	return strings.Join(lines, "\n")
}
