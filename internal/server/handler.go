package server

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/lessonbuddy/internal/api"
	"github.com/abhisek/lessonbuddy/internal/llm"
	"github.com/abhisek/lessonbuddy/internal/tutor"
)

// Error messages sent to clients.
const (
	MsgNotConfigured = "AI model is not configured correctly."
	MsgServiceError  = "An error occurred with the AI service."
	MsgBadPayload    = "invalid payload"
)

// TutorHandler serves the four tutor operations under /api.
type TutorHandler struct {
	tutor    tutor.Tutor
	validate *validator.Validate
	logger   zerolog.Logger
}

// NewTutorHandler constructs the handler.
func NewTutorHandler(t tutor.Tutor, validate *validator.Validate, logger zerolog.Logger) *TutorHandler {
	return &TutorHandler{
		tutor:    t,
		validate: validate,
		logger:   logger.With().Str("component", "tutor_handler").Logger(),
	}
}

// Register wires the tutor routes.
func (h *TutorHandler) Register(router fiber.Router) {
	router.Post("/"+api.OpChat, h.chat)
	router.Post("/"+api.OpGenerateLesson, h.generateLesson)
	router.Post("/"+api.OpRevisionNotes, h.revisionNotes)
	router.Post("/"+api.OpGenerateAssessment, h.generateAssessment)
}

func (h *TutorHandler) chat(c *fiber.Ctx) error {
	var req api.ChatRequest
	if done, err := h.bind(c, &req, "Message"); done {
		return err
	}
	reply, err := h.tutor.Chat(c.UserContext(), req.Message)
	if err != nil {
		return h.fail(c, api.OpChat, err)
	}
	return c.JSON(api.ChatResponse{Reply: reply})
}

func (h *TutorHandler) generateLesson(c *fiber.Ctx) error {
	var req api.LessonRequest
	if done, err := h.bind(c, &req, "Topic"); done {
		return err
	}
	lesson, err := h.tutor.GenerateLesson(c.UserContext(), req.Topic)
	if err != nil {
		return h.fail(c, api.OpGenerateLesson, err)
	}
	if lesson.Cached {
		c.Set("X-Cache", "HIT")
	}
	return c.JSON(api.Lesson{Topic: lesson.Topic, Content: lesson.Content})
}

func (h *TutorHandler) revisionNotes(c *fiber.Ctx) error {
	var req api.TextRequest
	if done, err := h.bind(c, &req, "Lesson content"); done {
		return err
	}
	notes, err := h.tutor.RevisionNotes(c.UserContext(), req.Text)
	if err != nil {
		return h.fail(c, api.OpRevisionNotes, err)
	}
	return c.JSON(api.NotesResponse{Notes: notes})
}

// generateAssessment responds with the assessment JSON encoded as a JSON
// string, which is the shape existing clients decode.
func (h *TutorHandler) generateAssessment(c *fiber.Ctx) error {
	var req api.TextRequest
	if done, err := h.bind(c, &req, "Lesson content"); done {
		return err
	}
	raw, err := h.tutor.GenerateAssessment(c.UserContext(), req.Text)
	if err != nil {
		return h.fail(c, api.OpGenerateAssessment, err)
	}
	return c.JSON(raw)
}

// bind checks the model is configured, then parses and validates the body.
// It reports done when a response has already been sent.
func (h *TutorHandler) bind(c *fiber.Ctx, dst any, field string) (bool, error) {
	if !h.tutor.Ready() {
		return true, sendError(c, fiber.StatusInternalServerError, MsgNotConfigured)
	}
	if err := c.BodyParser(dst); err != nil {
		return true, sendError(c, fiber.StatusBadRequest, MsgBadPayload)
	}
	if err := h.validate.Struct(dst); err != nil {
		return true, sendError(c, fiber.StatusBadRequest, validationMessage(err, field))
	}
	return false, nil
}

func (h *TutorHandler) fail(c *fiber.Ctx, op string, err error) error {
	reason := failureReason(err)
	tutorFailures.WithLabelValues(op, reason).Inc()

	if errors.Is(err, tutor.ErrNotConfigured) {
		return sendError(c, fiber.StatusInternalServerError, MsgNotConfigured)
	}
	h.logger.Error().Err(err).
		Str("op", op).
		Str("reason", reason).
		Str("correlation_id", correlationIDOf(c)).
		Msg("tutor operation failed")
	return sendError(c, fiber.StatusInternalServerError, MsgServiceError)
}

func failureReason(err error) string {
	var (
		rateLimit *llm.ErrRateLimit
		invalid   *llm.ErrInvalidResponse
		truncated *llm.ErrMaxTokensExceeded
	)
	switch {
	case errors.Is(err, tutor.ErrNotConfigured):
		return "not_configured"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.As(err, &rateLimit):
		return "rate_limited"
	case errors.As(err, &invalid), errors.As(err, &truncated):
		return "invalid_response"
	default:
		return "provider"
	}
}

func validationMessage(err error, field string) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 && verrs[0].Tag() == "max" {
		return fmt.Sprintf("%s is too long", field)
	}
	return fmt.Sprintf("%s is required", field)
}

func sendError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(api.ErrorResponse{Error: msg})
}
