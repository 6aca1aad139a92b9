package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mapForm is a FormState backed by a plain map.
type mapForm map[int]string

func (f mapForm) Selected(i int) (string, bool) {
	s, ok := f[i]
	return s, ok
}

func sampleAssessment() *Assessment {
	return &Assessment{Questions: []Question{
		{Prompt: "2+2?", Options: []string{"3", "4", "5"}, CorrectAnswer: "4"},
		{Prompt: "Capital of France?", Options: []string{"Paris", "Lyon"}, CorrectAnswer: "Paris"},
		{Prompt: "Largest planet?", Options: []string{"Mars", "Jupiter", "Earth", "Venus"}, CorrectAnswer: "Jupiter"},
	}}
}

func TestGrade_TotalAlwaysQuestionCount(t *testing.T) {
	a := sampleAssessment()
	responses := []Response{
		{},
		{0: "4"},
		{0: "3", 1: "Lyon", 2: "Mars"},
		{0: "4", 1: "Paris", 2: "Jupiter"},
		{7: "4"},
	}
	for _, r := range responses {
		s := Grade(a, r)
		assert.Equal(t, 3, s.Total)
		assert.LessOrEqual(t, s.Correct, s.Total)
	}
}

func TestGrade_FullyCorrect(t *testing.T) {
	a := sampleAssessment()
	r := Response{}
	for i, q := range a.Questions {
		r[i] = q.CorrectAnswer
	}
	assert.Equal(t, Score{Correct: 3, Total: 3}, Grade(a, r))
}

func TestGrade_EmptyResponse(t *testing.T) {
	assert.Equal(t, Score{Correct: 0, Total: 3}, Grade(sampleAssessment(), Response{}))
	assert.Equal(t, Score{Correct: 0, Total: 3}, Grade(sampleAssessment(), nil))
}

func TestGrade_ExactMatchOnly(t *testing.T) {
	a := sampleAssessment()
	tests := []struct {
		name   string
		answer string
		want   int
	}{
		{"exact", "Paris", 1},
		{"lowercase", "paris", 0},
		{"trailing space", "Paris ", 0},
		{"leading space", " Paris", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Grade(a, Response{1: tt.answer})
			assert.Equal(t, tt.want, s.Correct)
		})
	}
}

func TestGrade_NilAssessment(t *testing.T) {
	assert.Equal(t, Score{}, Grade(nil, Response{0: "x"}))
}

func TestCollect_OnlySelectedIndices(t *testing.T) {
	a := sampleAssessment()
	r := Collect(mapForm{0: "4", 2: "Mars"}, a)
	require.Len(t, r, 2)
	assert.Equal(t, "4", r[0])
	assert.Equal(t, "Mars", r[2])
	_, answered := r[1]
	assert.False(t, answered, "unanswered question must be absent")
}

func TestCollect_IgnoresIndicesBeyondAssessment(t *testing.T) {
	r := Collect(mapForm{0: "4", 9: "x"}, sampleAssessment())
	assert.Equal(t, Response{0: "4"}, r)
}

func TestCollect_NilForm(t *testing.T) {
	assert.Empty(t, Collect(nil, sampleAssessment()))
}

func TestEndToEnd_OneOfTwoCorrect(t *testing.T) {
	a, err := Decode(validRaw)
	require.NoError(t, err)

	r := Collect(mapForm{0: "4", 1: "Lyon"}, a)
	assert.Equal(t, Score{Correct: 1, Total: 2}, Grade(a, r))
}

func TestEndToEnd_NoSelections(t *testing.T) {
	a, err := Decode(validRaw)
	require.NoError(t, err)

	r := Collect(mapForm{}, a)
	assert.Equal(t, Score{Correct: 0, Total: 2}, Grade(a, r))
}

func TestScore_Percent(t *testing.T) {
	assert.InDelta(t, 0.5, Score{Correct: 1, Total: 2}.Percent(), 1e-9)
	assert.Zero(t, Score{}.Percent())
}

func TestScore_Passed(t *testing.T) {
	assert.True(t, Score{Correct: 3, Total: 3}.Passed())
	assert.True(t, Score{Correct: 7, Total: 10}.Passed())
	assert.False(t, Score{Correct: 2, Total: 3}.Passed())
	assert.False(t, Score{}.Passed())
}
