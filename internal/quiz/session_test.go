package quiz

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/lessonbuddy/internal/api"
	"github.com/abhisek/lessonbuddy/internal/assessment"
)

const twoQuestions = `{"questions":[
	{"question":"2+2?","options":["3","4","5"],"answer":"4"},
	{"question":"Capital of France?","options":["Paris","Lyon"],"answer":"Paris"}
]}`

const oneQuestion = `{"questions":[{"question":"Sky colour?","options":["Blue","Green"],"answer":"Blue"}]}`

type formMap map[int]string

func (f formMap) Selected(i int) (string, bool) {
	v, ok := f[i]
	return v, ok
}

type stubGenerator struct {
	raw   string
	err   error
	calls int
	texts []string
}

func (g *stubGenerator) GenerateAssessment(_ context.Context, text string) (string, error) {
	g.calls++
	g.texts = append(g.texts, text)
	return g.raw, g.err
}

func newSession(gen Generator) *Session {
	return NewSession(gen, zerolog.Nop())
}

func TestSession_StartsIdle(t *testing.T) {
	s := newSession(nil)
	assert.Equal(t, Idle, s.State())
	assert.Nil(t, s.Current())
	_, ok := s.Score()
	assert.False(t, ok)
}

func TestSession_HappyPath(t *testing.T) {
	s := newSession(nil)

	tk := s.Begin()
	assert.Equal(t, Requesting, s.State())

	out := s.Complete(tk, twoQuestions, nil)
	require.True(t, out.OK())
	assert.Equal(t, Presenting, s.State())
	assert.Equal(t, 2, s.Current().Len())

	score, err := s.Submit(formMap{0: "4", 1: "Lyon"})
	require.NoError(t, err)
	assert.Equal(t, assessment.Score{Correct: 1, Total: 2}, score)
	assert.Equal(t, Submitted, s.State())

	got, ok := s.Score()
	require.True(t, ok)
	assert.Equal(t, score, got)
}

func TestSession_SubmitWithoutSelections(t *testing.T) {
	s := newSession(nil)
	s.Complete(s.Begin(), twoQuestions, nil)

	score, err := s.Submit(formMap{})
	require.NoError(t, err)
	assert.Equal(t, assessment.Score{Correct: 0, Total: 2}, score)
}

func TestSession_SubmitOutsidePresenting(t *testing.T) {
	s := newSession(nil)
	_, err := s.Submit(formMap{})
	assert.ErrorIs(t, err, ErrNotPresenting)

	s.Begin()
	_, err = s.Submit(formMap{})
	assert.ErrorIs(t, err, ErrNotPresenting)
	assert.Equal(t, Requesting, s.State())
}

func TestSession_SubmitTwiceIsRejected(t *testing.T) {
	s := newSession(nil)
	s.Complete(s.Begin(), twoQuestions, nil)
	_, err := s.Submit(formMap{0: "4"})
	require.NoError(t, err)

	_, err = s.Submit(formMap{0: "4", 1: "Paris"})
	assert.ErrorIs(t, err, ErrNotPresenting)
	got, _ := s.Score()
	assert.Equal(t, assessment.Score{Correct: 1, Total: 2}, got)
}

func TestSession_TransportFailure(t *testing.T) {
	s := newSession(nil)
	tk := s.Begin()

	out := s.Complete(tk, "", &api.TransportError{Op: api.OpGenerateAssessment, StatusCode: 500})
	assert.False(t, out.OK())
	assert.Equal(t, FailureTransport, out.Failure)
	assert.Equal(t, MsgTransportFailure, out.Message())
	assert.Equal(t, Idle, s.State())
	assert.Nil(t, s.Current())
	assert.Equal(t, FailureTransport, s.LastFailure())
}

func TestSession_DecodeFailures(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		err  error
	}{
		{"malformed", "{not json", nil},
		{"empty questions", `{"questions": []}`, nil},
		{"answer not in options", `{"questions":[{"question":"Q","options":["A","B"],"answer":"C"}]}`, nil},
		{"bad envelope", "", &api.PayloadError{Op: api.OpGenerateAssessment, Err: errors.New("boom")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newSession(nil)
			out := s.Complete(s.Begin(), tt.raw, tt.err)
			assert.Equal(t, FailureDecode, out.Failure)
			assert.Equal(t, MsgDecodeFailure, out.Message())
			assert.Equal(t, Idle, s.State())
			assert.Nil(t, s.Current())
		})
	}
}

func TestSession_LastRequestWins(t *testing.T) {
	s := newSession(nil)

	first := s.Begin()
	second := s.Begin()

	// The second response arrives first and is presented.
	out := s.Complete(second, oneQuestion, nil)
	require.True(t, out.OK())
	assert.Equal(t, "Sky colour?", s.Current().Questions[0].Prompt)

	// The late first response must not replace it.
	late := s.Complete(first, twoQuestions, nil)
	assert.True(t, late.Stale)
	assert.Empty(t, late.Message())
	assert.Equal(t, Presenting, s.State())
	assert.Equal(t, 1, s.Current().Len())
}

func TestSession_LateResponseAfterNewRequestIsDiscarded(t *testing.T) {
	s := newSession(nil)

	first := s.Begin()
	s.Begin()

	late := s.Complete(first, twoQuestions, nil)
	assert.True(t, late.Stale)
	assert.Equal(t, Requesting, s.State(), "newer request still outstanding")
	assert.Nil(t, s.Current())
}

func TestSession_StaleFailureDoesNotResetState(t *testing.T) {
	s := newSession(nil)

	first := s.Begin()
	second := s.Begin()
	require.True(t, s.Complete(second, oneQuestion, nil).OK())

	out := s.Complete(first, "", &api.TransportError{Op: api.OpGenerateAssessment})
	assert.True(t, out.Stale)
	assert.Equal(t, Presenting, s.State())
	assert.Equal(t, FailureNone, s.LastFailure())
}

func TestSession_TicketFromAnotherSessionIsStale(t *testing.T) {
	abandoned := newSession(nil)
	old := abandoned.Begin()

	s := newSession(nil)
	current := s.Begin()
	require.NotEqual(t, old, current)

	out := s.Complete(old, twoQuestions, nil)
	assert.True(t, out.Stale)
	assert.Equal(t, Requesting, s.State())

	require.True(t, s.Complete(current, oneQuestion, nil).OK())
	assert.Equal(t, "Sky colour?", s.Current().Questions[0].Prompt)
}

func TestSession_CompleteTwiceForSameTicket(t *testing.T) {
	s := newSession(nil)
	tk := s.Begin()
	require.True(t, s.Complete(tk, oneQuestion, nil).OK())

	again := s.Complete(tk, twoQuestions, nil)
	assert.True(t, again.Stale)
	assert.Equal(t, 1, s.Current().Len())
}

func TestSession_NewRequestDiscardsPriorResult(t *testing.T) {
	s := newSession(nil)
	s.Complete(s.Begin(), twoQuestions, nil)
	_, err := s.Submit(formMap{0: "4"})
	require.NoError(t, err)

	s.Begin()
	assert.Equal(t, Requesting, s.State())
	assert.Nil(t, s.Current())
	_, ok := s.Score()
	assert.False(t, ok)
}

func TestSession_RetryAfterFailure(t *testing.T) {
	s := newSession(nil)
	s.Complete(s.Begin(), "{not json", nil)
	require.Equal(t, Idle, s.State())

	out := s.Complete(s.Begin(), oneQuestion, nil)
	assert.True(t, out.OK())
	assert.Equal(t, FailureNone, s.LastFailure())
}

func TestSession_Generate(t *testing.T) {
	gen := &stubGenerator{raw: twoQuestions}
	s := newSession(gen)

	out := s.Generate(context.Background(), "lesson text")
	require.True(t, out.OK())
	assert.Equal(t, 1, gen.calls)
	assert.Equal(t, []string{"lesson text"}, gen.texts)
	assert.Equal(t, Presenting, s.State())
}

func TestSession_GenerateTransportError(t *testing.T) {
	gen := &stubGenerator{err: &api.TransportError{Op: api.OpGenerateAssessment, Err: context.DeadlineExceeded}}
	s := newSession(gen)

	out := s.Generate(context.Background(), "lesson text")
	assert.Equal(t, FailureTransport, out.Failure)
	assert.Equal(t, Idle, s.State())
}

func TestSession_GenerateWithoutGenerator(t *testing.T) {
	s := newSession(nil)
	out := s.Generate(context.Background(), "text")
	assert.Equal(t, FailureTransport, out.Failure)
	assert.Equal(t, Idle, s.State())
}
