package tutor

import (
	"context"
	"errors"
	"strings"

	"github.com/abhisek/lessonbuddy/internal/assessment"
	"github.com/abhisek/lessonbuddy/internal/llm"
)

// assessmentAttempts bounds regeneration when the model returns JSON that
// is well-formed but fails the answer-in-options check.
const assessmentAttempts = 2

// GenerateAssessment returns the assessment as JSON text. The server
// encodes it as a JSON string, so clients decode twice.
func (s *service) GenerateAssessment(ctx context.Context, text string) (string, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeAssessment)
	req := assessmentPrompt(text, s.questions, s.choices)
	req.Schema = assessmentSchema(s.questions, s.choices)

	var lastErr error
	for range assessmentAttempts {
		resp, err := s.generate(ctx, req)
		if err != nil {
			return "", err
		}
		raw := StripCodeFences(resp.Text())
		if _, err := assessment.Decode(raw); err != nil {
			var de *assessment.DecodeError
			if errors.As(err, &de) {
				s.logger.Debug().Str("field", de.Field).Err(err).Msg("model assessment rejected")
			}
			lastErr = err
			continue
		}
		return raw, nil
	}
	return "", &llm.ErrInvalidResponse{Err: lastErr}
}

// assessmentSchema pins the question and option counts on top of the
// shared assessment schema.
func assessmentSchema(questions, choices int) *llm.Schema {
	def := assessment.SchemaDefinition()
	qs := def["properties"].(map[string]any)["questions"].(map[string]any)
	qs["minItems"] = questions
	qs["maxItems"] = questions
	opts := qs["items"].(map[string]any)["properties"].(map[string]any)["options"].(map[string]any)
	opts["minItems"] = choices
	opts["maxItems"] = choices

	return &llm.Schema{
		Name:        assessment.SchemaName,
		Description: "A multiple-choice assessment on a lesson",
		Definition:  def,
	}
}

// StripCodeFences removes markdown code fences that models wrap JSON in.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
