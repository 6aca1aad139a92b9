package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/abhisek/lessonbuddy/internal/store"
)

// LoggingProvider records every Generate call as an LLM request event and
// as a structured log line.
type LoggingProvider struct {
	inner  Provider
	events store.EventRepo
	logger zerolog.Logger
}

// WithLogging wraps p. events may be nil, in which case only the log line
// is written.
func WithLogging(p Provider, events store.EventRepo, logger zerolog.Logger) Provider {
	return &LoggingProvider{
		inner:  p,
		events: events,
		logger: logger.With().Str("component", "llm").Logger(),
	}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	resp, err := l.inner.Generate(ctx, req)
	latency := time.Since(start)

	ev := store.LLMRequestEventData{
		Provider:    providerName(l.inner),
		Model:       l.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		LatencyMs:   latency.Milliseconds(),
		Success:     err == nil,
		RequestBody: describeRequest(req),
	}
	if resp != nil {
		ev.Model = resp.Model
		ev.InputTokens = resp.Usage.InputTokens
		ev.OutputTokens = resp.Usage.OutputTokens
		ev.ResponseBody = string(resp.Content)
	}
	if err != nil {
		ev.ErrorMessage = err.Error()
	}

	entry := l.logger.Info()
	if err != nil {
		entry = l.logger.Warn().Err(err)
	}
	entry.Str("purpose", ev.Purpose).
		Str("model", ev.Model).
		Int("input_tokens", ev.InputTokens).
		Int("output_tokens", ev.OutputTokens).
		Dur("latency", latency).
		Msg("llm request")

	if l.events != nil {
		if logErr := l.events.AppendLLMRequest(ctx, ev); logErr != nil {
			l.logger.Warn().Err(logErr).Msg("failed to record llm request event")
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func providerName(p Provider) string {
	switch p.(type) {
	case *GeminiProvider:
		return ProviderGemini
	case *OpenAIProvider:
		return ProviderOpenAI
	case *AnthropicProvider:
		return ProviderAnthropic
	case *MockProvider:
		return ProviderMock
	default:
		return p.ModelID()
	}
}

// describeRequest renders req as readable text for the event log.
func describeRequest(req Request) string {
	var b strings.Builder
	if req.System != "" {
		fmt.Fprintf(&b, "[system]\n%s\n\n", req.System)
	}
	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}
	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}
	return b.String()
}
