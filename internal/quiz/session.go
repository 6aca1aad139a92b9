package quiz

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/abhisek/lessonbuddy/internal/api"
	"github.com/abhisek/lessonbuddy/internal/assessment"
)

// User-facing failure messages.
const (
	MsgTransportFailure = "Something went wrong. Please try again."
	MsgDecodeFailure    = "Could not generate the assessment."
)

// ErrNotPresenting is returned by Submit when no assessment is on screen.
var ErrNotPresenting = errors.New("quiz: no assessment is being presented")

// State is the lifecycle position of a Session.
type State int

const (
	Idle State = iota
	Requesting
	Presenting
	Submitted
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Requesting:
		return "requesting"
	case Presenting:
		return "presenting"
	case Submitted:
		return "submitted"
	default:
		return "unknown"
	}
}

// Failure classifies why a request did not produce an assessment.
type Failure int

const (
	FailureNone Failure = iota
	FailureTransport
	FailureDecode
)

// Message returns the text shown to the user for f.
func (f Failure) Message() string {
	switch f {
	case FailureTransport:
		return MsgTransportFailure
	case FailureDecode:
		return MsgDecodeFailure
	default:
		return ""
	}
}

// Ticket identifies one assessment request. Only the most recent ticket can
// complete; results for older tickets are discarded. Tickets are unique
// across sessions, so a result can never complete a session other than the
// one that issued it.
type Ticket uint64

var lastTicket atomic.Uint64

// Outcome is the result of applying a completed exchange to the session.
type Outcome struct {
	// Stale is set when the result belonged to a superseded request and was
	// dropped without touching the session.
	Stale bool

	Failure Failure
	Err     error

	// Assessment is set on success.
	Assessment *assessment.Assessment
}

// OK reports whether the outcome put a new assessment on screen.
func (o Outcome) OK() bool { return !o.Stale && o.Failure == FailureNone && o.Assessment != nil }

// Message returns the user-facing failure text, or "" when there is none.
func (o Outcome) Message() string {
	if o.Stale {
		return ""
	}
	return o.Failure.Message()
}

// Generator produces raw assessment text for a body of study text.
// *api.Client satisfies it.
type Generator interface {
	GenerateAssessment(ctx context.Context, text string) (string, error)
}

// Session drives one assessment lifecycle:
// Idle -> Requesting -> Presenting -> Submitted, and back to Requesting on
// the next request. It is not safe for concurrent use; the owning screen
// touches it only from its Update loop.
type Session struct {
	gen    Generator
	logger zerolog.Logger

	state   State
	seq     Ticket
	current *assessment.Assessment
	score   *assessment.Score
	failure Failure
}

// NewSession creates an idle Session. gen may be nil when the caller only
// uses Begin/Complete and performs the exchange itself.
func NewSession(gen Generator, logger zerolog.Logger) *Session {
	return &Session{
		gen:    gen,
		logger: logger.With().Str("component", "quiz").Logger(),
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State { return s.state }

// Current returns the assessment being presented or already submitted.
func (s *Session) Current() *assessment.Assessment { return s.current }

// Score returns the result of the last submission, if any.
func (s *Session) Score() (assessment.Score, bool) {
	if s.score == nil {
		return assessment.Score{}, false
	}
	return *s.score, true
}

// LastFailure returns the failure of the most recent completed request.
func (s *Session) LastFailure() Failure { return s.failure }

// Begin starts a new request. Any current assessment, in-progress responses
// and result are discarded, and earlier outstanding tickets become stale.
// Begin is valid from every state.
func (s *Session) Begin() Ticket {
	s.seq = Ticket(lastTicket.Add(1))
	s.state = Requesting
	s.current = nil
	s.score = nil
	s.failure = FailureNone
	s.logger.Debug().Uint64("ticket", uint64(s.seq)).Msg("assessment requested")
	return s.seq
}

// Complete applies the result of the exchange started by t. raw is the
// assessment text and err the exchange error, as returned by a Generator.
func (s *Session) Complete(t Ticket, raw string, err error) Outcome {
	if t != s.seq || s.state != Requesting {
		s.logger.Debug().
			Uint64("ticket", uint64(t)).
			Uint64("current", uint64(s.seq)).
			Stringer("state", s.state).
			Msg("discarding stale assessment result")
		return Outcome{Stale: true}
	}

	if err != nil {
		f := classify(err)
		s.state = Idle
		s.failure = f
		s.logger.Warn().Err(err).Uint64("ticket", uint64(t)).Msg("assessment request failed")
		return Outcome{Failure: f, Err: err}
	}

	a, derr := assessment.Decode(raw)
	if derr != nil {
		var de *assessment.DecodeError
		if errors.As(derr, &de) {
			s.logger.Debug().
				Str("kind", de.Kind.String()).
				Str("field", de.Field).
				Msg("assessment rejected")
		}
		s.state = Idle
		s.failure = FailureDecode
		return Outcome{Failure: FailureDecode, Err: derr}
	}

	s.state = Presenting
	s.current = a
	return Outcome{Assessment: a}
}

// Generate is Begin, a synchronous call to the Generator, then Complete.
func (s *Session) Generate(ctx context.Context, text string) Outcome {
	t := s.Begin()
	if s.gen == nil {
		return s.Complete(t, "", errors.New("quiz: no generator configured"))
	}
	raw, err := s.gen.GenerateAssessment(ctx, text)
	return s.Complete(t, raw, err)
}

// Submit collects the selections from form, scores them against the
// current assessment and moves to Submitted.
func (s *Session) Submit(form assessment.FormState) (assessment.Score, error) {
	if s.state != Presenting {
		return assessment.Score{}, ErrNotPresenting
	}
	r := assessment.Collect(form, s.current)
	score := assessment.Grade(s.current, r)
	s.score = &score
	s.state = Submitted
	s.logger.Info().Int("correct", score.Correct).Int("total", score.Total).Msg("assessment submitted")
	return score, nil
}

// classify maps an exchange error to a failure kind. A malformed response
// envelope is a content problem, so it reports like a decode failure.
func classify(err error) Failure {
	var pe *api.PayloadError
	if errors.As(err, &pe) {
		return FailureDecode
	}
	var de *assessment.DecodeError
	if errors.As(err, &de) {
		return FailureDecode
	}
	return FailureTransport
}
