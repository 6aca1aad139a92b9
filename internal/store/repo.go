package store

import (
	"context"
	"strings"
	"time"
)

// QueryOpts filters and pages event queries.
type QueryOpts struct {
	Limit   int   // max results (0 = unlimited)
	After   int64 // sequence > After
	Before  int64 // sequence < Before
	Purpose string
}

// LLMRequestEventData captures a single LLM request.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a recorded LLM request.
type LLMEvent struct {
	ID        int64
	Sequence  int64
	Timestamp time.Time
	LLMRequestEventData
}

// PurposeUsage aggregates LLM calls by purpose.
type PurposeUsage struct {
	Purpose      string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int
}

// ModelUsage aggregates LLM calls by model.
type ModelUsage struct {
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
}

// EventRepo is the append side of the LLM request log, used by the LLM
// logging decorator.
type EventRepo interface {
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error
}

// Lesson is a generated lesson as archived by the server.
type Lesson struct {
	ID        int64
	Topic     string
	Content   string
	Model     string
	CreatedAt time.Time
}

// LessonRepo archives generated lessons.
type LessonRepo interface {
	SaveLesson(ctx context.Context, topic, content, model string) (*Lesson, error)
	LatestLesson(ctx context.Context, topic string) (*Lesson, error)
	RecentLessons(ctx context.Context, limit int) ([]Lesson, error)
}

// TopicKey normalizes a topic for lookups: "  Photosynthesis " and
// "photosynthesis" name the same lesson.
func TopicKey(topic string) string {
	return strings.ToLower(strings.Join(strings.Fields(topic), " "))
}

var (
	_ EventRepo  = (*EventStore)(nil)
	_ LessonRepo = (*LessonStore)(nil)
)
