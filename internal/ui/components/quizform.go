package components

import (
	"fmt"
	"slices"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/lessonbuddy/internal/assessment"
	"github.com/abhisek/lessonbuddy/internal/ui/theme"
)

// QuizSubmittedMsg is emitted when the learner submits a QuizForm.
type QuizSubmittedMsg struct {
	Form QuizForm
}

// QuizForm renders an assessment as one single-select block per question
// followed by a submit button. The block index is the question's identity.
type QuizForm struct {
	questions []assessment.Question

	// choice[i] is the selected option index for question i, or -1.
	choice []int
	// cursor[i] is the highlighted option within question i.
	cursor []int
	// focus is the active block; len(questions) is the submit button.
	focus int

	submitted bool
	submit    Button
}

var _ assessment.FormState = QuizForm{}

// NewQuizForm builds a form for a. Nothing is pre-selected.
func NewQuizForm(a *assessment.Assessment) QuizForm {
	var qs []assessment.Question
	if a != nil {
		qs = a.Questions
	}
	choice := make([]int, len(qs))
	for i := range choice {
		choice[i] = -1
	}
	f := QuizForm{
		questions: qs,
		choice:    choice,
		cursor:    make([]int, len(qs)),
	}
	f.submit = NewButton("Submit Answers", len(qs) == 0)
	return f
}

// Selected returns the option chosen for question index.
func (f QuizForm) Selected(index int) (string, bool) {
	if index < 0 || index >= len(f.choice) || f.choice[index] < 0 {
		return "", false
	}
	return f.questions[index].Options[f.choice[index]], true
}

// Answered returns how many questions have a selection.
func (f QuizForm) Answered() int {
	n := 0
	for _, c := range f.choice {
		if c >= 0 {
			n++
		}
	}
	return n
}

// Len returns the number of question blocks.
func (f QuizForm) Len() int { return len(f.questions) }

// Focus returns the focused block index; Len() means the submit button.
func (f QuizForm) Focus() int { return f.focus }

// Submitted reports whether the form has been submitted. A submitted form
// ignores input and shows the correct answers.
func (f QuizForm) Submitted() bool { return f.submitted }

// Update handles keyboard input.
func (f QuizForm) Update(msg tea.Msg) (QuizForm, tea.Cmd) {
	if f.submitted {
		return f, nil
	}
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return f, nil
	}

	key := kmsg.String()
	switch key {
	case "ctrl+s":
		return f.doSubmit()
	case "tab", "right", "l":
		f.moveFocus(1)
		return f, nil
	case "shift+tab", "left", "h":
		f.moveFocus(-1)
		return f, nil
	}

	if f.focus == len(f.questions) {
		if f.submit.Pressed(msg) {
			return f.doSubmit()
		}
		return f, nil
	}

	q := f.questions[f.focus]
	switch key {
	case "up", "k":
		if f.cursor[f.focus] > 0 {
			f.setCursor(f.cursor[f.focus] - 1)
		}
	case "down", "j":
		if f.cursor[f.focus] < len(q.Options)-1 {
			f.setCursor(f.cursor[f.focus] + 1)
		}
	case "space", " ", "enter":
		f.choose(f.cursor[f.focus])
	default:
		if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
			if i := int(key[0] - '1'); i < len(q.Options) {
				f.setCursor(i)
				f.choose(i)
			}
		}
	}
	return f, nil
}

func (f *QuizForm) moveFocus(delta int) {
	f.focus = min(max(f.focus+delta, 0), len(f.questions))
	f.submit.Active = f.focus == len(f.questions)
}

func (f *QuizForm) setCursor(i int) {
	f.cursor = slices.Clone(f.cursor)
	f.cursor[f.focus] = i
}

// choose selects option i in the focused block, replacing any previous
// selection there.
func (f *QuizForm) choose(i int) {
	f.choice = slices.Clone(f.choice)
	f.choice[f.focus] = i
}

func (f QuizForm) doSubmit() (QuizForm, tea.Cmd) {
	f.submitted = true
	f.submit.Active = false
	done := f
	return f, func() tea.Msg { return QuizSubmittedMsg{Form: done} }
}

// View renders every block and the submit button.
func (f QuizForm) View(width int) string {
	blocks := make([]string, 0, len(f.questions)+1)
	for i := range f.questions {
		blocks = append(blocks, f.viewBlock(i, width))
	}
	if !f.submitted {
		blocks = append(blocks, f.submit.View())
	}
	return strings.Join(blocks, "\n\n")
}

func (f QuizForm) viewBlock(i, width int) string {
	q := f.questions[i]
	focused := !f.submitted && i == f.focus

	titleStyle := lipgloss.NewStyle().Foreground(theme.Text).Bold(true)
	if focused {
		titleStyle = titleStyle.Foreground(theme.Primary)
	}
	if width > 4 {
		titleStyle = titleStyle.Width(width - 2)
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("%d. %s", i+1, q.Prompt)))
	for j, opt := range q.Options {
		mark := "( )"
		if f.choice[i] == j {
			mark = "(•)"
		}
		prefix := "  "
		if focused && f.cursor[i] == j {
			prefix = "▸ "
		}
		line := fmt.Sprintf("%s%s %d) %s", prefix, mark, j+1, opt)

		style := theme.Unselected
		switch {
		case f.submitted && opt == q.CorrectAnswer:
			style = theme.Correct
		case f.submitted && f.choice[i] == j:
			style = theme.Incorrect
		case f.submitted:
			style = lipgloss.NewStyle().Foreground(theme.TextDim)
		case focused && f.cursor[i] == j:
			style = theme.Selected
		}
		b.WriteString("\n" + style.Render(line))
	}
	return b.String()
}
