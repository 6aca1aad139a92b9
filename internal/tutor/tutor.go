// Package tutor implements the AI operations served by the API: chat,
// lesson generation, revision notes and assessment generation.
package tutor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/abhisek/lessonbuddy/internal/llm"
	"github.com/abhisek/lessonbuddy/internal/store"
)

// ErrNotConfigured is returned by every operation when the server has no
// model provider.
var ErrNotConfigured = llm.ErrNotConfigured

// Tutor is the set of AI operations exposed over HTTP.
type Tutor interface {
	Ready() bool
	Chat(ctx context.Context, message string) (string, error)
	GenerateLesson(ctx context.Context, topic string) (Lesson, error)
	RevisionNotes(ctx context.Context, text string) (string, error)
	GenerateAssessment(ctx context.Context, text string) (string, error)
}

// Lesson is a generated lesson.
type Lesson struct {
	Topic   string `json:"topic"`
	Content string `json:"lesson_content"`
	Cached  bool   `json:"-"`
}

// Options configures a Service. Only Provider is needed to serve requests;
// a nil Provider yields a Service that reports ErrNotConfigured.
type Options struct {
	Provider llm.Provider
	Lessons  store.LessonRepo
	Cache    *redis.Client
	CacheTTL time.Duration

	// Questions and Choices shape generated assessments.
	Questions int
	Choices   int

	Logger zerolog.Logger
}

type service struct {
	provider  llm.Provider
	lessons   store.LessonRepo
	cache     *redis.Client
	cacheTTL  time.Duration
	questions int
	choices   int
	logger    zerolog.Logger
}

// NewService builds the tutor.
func NewService(opts Options) Tutor {
	s := &service{
		provider:  opts.Provider,
		lessons:   opts.Lessons,
		cache:     opts.Cache,
		cacheTTL:  opts.CacheTTL,
		questions: opts.Questions,
		choices:   opts.Choices,
		logger:    opts.Logger.With().Str("component", "tutor_service").Logger(),
	}
	if s.questions < 1 {
		s.questions = 3
	}
	if s.choices < 2 {
		s.choices = 4
	}
	return s
}

func (s *service) Ready() bool {
	return s.provider != nil
}

func (s *service) Chat(ctx context.Context, message string) (string, error) {
	return s.text(llm.WithPurpose(ctx, llm.PurposeChat), chatPrompt(message))
}

func (s *service) GenerateLesson(ctx context.Context, topic string) (Lesson, error) {
	if !s.Ready() {
		return Lesson{}, ErrNotConfigured
	}
	topic = strings.TrimSpace(topic)
	key := lessonCacheKey(topic)

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, key).Result()
		if err == nil {
			var lesson Lesson
			if jsonErr := json.Unmarshal([]byte(cached), &lesson); jsonErr == nil {
				s.logger.Debug().Str("topic", topic).Msg("lesson cache hit")
				lesson.Topic = topic
				lesson.Cached = true
				return lesson, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("failed to read lesson cache")
		}
	}

	resp, err := s.generate(llm.WithPurpose(ctx, llm.PurposeLesson), lessonPrompt(topic))
	if err != nil {
		return Lesson{}, err
	}
	lesson := Lesson{Topic: topic, Content: resp.Text()}

	if s.lessons != nil {
		if _, err := s.lessons.SaveLesson(ctx, topic, lesson.Content, resp.Model); err != nil {
			s.logger.Warn().Err(err).Str("topic", topic).Msg("failed to archive lesson")
		}
	}
	if s.cache != nil {
		if payload, err := json.Marshal(lesson); err == nil {
			if err := s.cache.Set(ctx, key, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("failed to store lesson cache")
			}
		}
	}
	return lesson, nil
}

func (s *service) RevisionNotes(ctx context.Context, text string) (string, error) {
	return s.text(llm.WithPurpose(ctx, llm.PurposeNotes), notesPrompt(text))
}

func (s *service) text(ctx context.Context, req llm.Request) (string, error) {
	resp, err := s.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (s *service) generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	if !s.Ready() {
		return nil, ErrNotConfigured
	}
	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", llm.PurposeFrom(ctx), err)
	}
	return resp, nil
}

func lessonCacheKey(topic string) string {
	return "lessonbuddy:lesson:" + store.TopicKey(topic)
}
