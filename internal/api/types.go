package api

import "time"

// Remote operation names. Each is served at POST {base}/{op}.
const (
	OpChat               = "chat"
	OpGenerateLesson     = "generate_lesson"
	OpRevisionNotes      = "revision_notes"
	OpGenerateAssessment = "generate_assessment"
)

// OpHealth labels errors from the GET /healthz check.
const OpHealth = "healthz"

// ChatRequest is the body of the chat operation.
type ChatRequest struct {
	Message string `json:"message" validate:"required,notblank,max=4000"`
}

// ChatResponse is the result of the chat operation.
type ChatResponse struct {
	Reply string `json:"reply"`
}

// LessonRequest is the body of the generate_lesson operation.
type LessonRequest struct {
	Topic string `json:"topic" validate:"required,notblank,max=200"`
}

// Lesson is the result of the generate_lesson operation.
type Lesson struct {
	Topic   string `json:"topic"`
	Content string `json:"lesson_content"`
}

// TextRequest is the body of revision_notes and generate_assessment.
type TextRequest struct {
	Text string `json:"text" validate:"required,notblank,max=50000"`
}

// NotesResponse is the result of the revision_notes operation.
type NotesResponse struct {
	Notes string `json:"notes"`
}

// ErrorResponse is the body the server sends with a non-2xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health is the server's /healthz report.
type Health struct {
	Status          string    `json:"status"`
	ModelConfigured bool      `json:"model_configured"`
	Model           string    `json:"model,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
}
