package assessment

// Question is a single multiple-choice item.
type Question struct {
	// Prompt is the question text shown to the learner.
	Prompt string

	// Options are the selectable choices, in display order. Unique within
	// the question.
	Options []string

	// CorrectAnswer is the text of the correct option. Always equal to
	// exactly one member of Options.
	CorrectAnswer string
}

// Assessment is a decoded quiz. Treat it as read-only once decoded.
type Assessment struct {
	Questions []Question
}

// Len returns the number of questions.
func (a *Assessment) Len() int {
	if a == nil {
		return 0
	}
	return len(a.Questions)
}

// Response maps a question index to the option the learner selected.
// Unanswered questions have no entry.
type Response map[int]string

// Score is the result of grading a Response.
type Score struct {
	Correct int
	Total   int
}

// Percent returns Correct/Total in [0, 1], or 0 for an empty score.
func (s Score) Percent() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Correct) / float64(s.Total)
}

// PassMark is the fraction of correct answers below which the learner is
// pointed back to the lesson.
const PassMark = 0.7

// Passed reports whether the score reaches PassMark.
func (s Score) Passed() bool {
	return s.Total > 0 && s.Percent() >= PassMark
}

// FormState is the read side of a rendered assessment form.
type FormState interface {
	// Selected returns the option currently selected for the question at
	// index, or false if nothing is selected.
	Selected(index int) (string, bool)
}
