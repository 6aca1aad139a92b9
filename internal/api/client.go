package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single exchange when Options.Timeout is zero.
const DefaultTimeout = 30 * time.Second

// maxBodyBytes caps how much of a response body is read. A larger 2xx body
// is a *PayloadError wrapping ErrResponseTooLarge.
const maxBodyBytes = 4 << 20

// Options configures a Client.
type Options struct {
	// BaseURL is the API root, e.g. "http://127.0.0.1:5000/api".
	BaseURL string

	// Timeout bounds each exchange. Defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the underlying client. Its Timeout is left as is.
	HTTPClient *http.Client

	Logger zerolog.Logger
}

// Service is the set of remote operations the terminal client uses.
// *Client implements it; screens accept it so tests can substitute fakes.
type Service interface {
	Chat(ctx context.Context, message string) (string, error)
	GenerateLesson(ctx context.Context, topic string) (*Lesson, error)
	RevisionNotes(ctx context.Context, text string) (string, error)
	GenerateAssessment(ctx context.Context, text string) (string, error)
}

var _ Service = (*Client)(nil)

// Client talks to the lesson API. It holds no per-request state and is safe
// for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	maxBody int64
	logger  zerolog.Logger
}

// New creates a Client from opts.
func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		http:    hc,
		maxBody: maxBodyBytes,
		logger:  opts.Logger.With().Str("component", "api_client").Logger(),
	}
}

// BaseURL returns the API root the client sends requests to.
func (c *Client) BaseURL() string { return c.baseURL }

// Call performs one request/response exchange with the named operation.
// payload is sent as the JSON body; a 2xx body is decoded into out when out
// is non-nil. Failures are *TransportError or *PayloadError.
func (c *Client) Call(ctx context.Context, op string, payload, out any) error {
	body, err := c.post(ctx, op, payload)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &PayloadError{Op: op, Body: body, Err: err}
	}
	return nil
}

// Chat sends a chat message and returns the tutor's reply.
func (c *Client) Chat(ctx context.Context, message string) (string, error) {
	var resp ChatResponse
	if err := c.Call(ctx, OpChat, ChatRequest{Message: message}, &resp); err != nil {
		return "", err
	}
	return resp.Reply, nil
}

// GenerateLesson requests a lesson for topic.
func (c *Client) GenerateLesson(ctx context.Context, topic string) (*Lesson, error) {
	var resp Lesson
	if err := c.Call(ctx, OpGenerateLesson, LessonRequest{Topic: topic}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RevisionNotes requests condensed notes for text.
func (c *Client) RevisionNotes(ctx context.Context, text string) (string, error) {
	var resp NotesResponse
	if err := c.Call(ctx, OpRevisionNotes, TextRequest{Text: text}, &resp); err != nil {
		return "", err
	}
	return resp.Notes, nil
}

// GenerateAssessment requests an assessment for text and returns the raw
// assessment text for assessment.Decode.
//
// The server encodes the assessment as a JSON string holding JSON. A bare
// JSON object is also accepted and returned verbatim. Any other body shape
// is a *PayloadError.
func (c *Client) GenerateAssessment(ctx context.Context, text string) (string, error) {
	body, err := c.post(ctx, OpGenerateAssessment, TextRequest{Text: text})
	if err != nil {
		return "", err
	}
	return unwrapAssessment(body)
}

func unwrapAssessment(body []byte) (string, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return "", &PayloadError{Op: OpGenerateAssessment, Body: body, Err: fmt.Errorf("empty body")}
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", &PayloadError{Op: OpGenerateAssessment, Body: body, Err: err}
		}
		return s, nil
	case '{':
		if !json.Valid(trimmed) {
			return "", &PayloadError{Op: OpGenerateAssessment, Body: body, Err: fmt.Errorf("invalid JSON object")}
		}
		return string(trimmed), nil
	default:
		return "", &PayloadError{
			Op:   OpGenerateAssessment,
			Body: body,
			Err:  fmt.Errorf("expected a JSON string or object, got %q", trimmed[:1]),
		}
	}
}

func (c *Client) post(ctx context.Context, op string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
	}
	return c.do(ctx, op, http.MethodPost, c.baseURL+"/"+op, bytes.NewReader(data))
}

// Health fetches the server's /healthz report. The endpoint lives at the
// server root, beside the API prefix.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	body, err := c.do(ctx, OpHealth, http.MethodGet, serverRoot(c.baseURL)+"/healthz", nil)
	if err != nil {
		return nil, err
	}
	var h Health
	if err := json.Unmarshal(body, &h); err != nil {
		return nil, &PayloadError{Op: OpHealth, Body: body, Err: err}
	}
	return &h, nil
}

func serverRoot(baseURL string) string {
	return strings.TrimSuffix(baseURL, "/api")
}

func (c *Client) do(ctx context.Context, op, method, url string, body io.Reader) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	correlationID := uuid.NewString()
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Correlation-ID", correlationID)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).
			Str("op", op).
			Str("correlation_id", correlationID).
			Dur("latency", time.Since(start)).
			Msg("request failed")
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	// One byte past the limit tells a body that is exactly at the limit from
	// one that was cut short.
	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, &TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("read body: %w", err)}
	}
	tooLarge := int64(len(data)) > c.maxBody
	if tooLarge {
		data = data[:c.maxBody]
	}

	c.logger.Debug().
		Str("op", op).
		Str("correlation_id", correlationID).
		Int("status", resp.StatusCode).
		Bool("truncated", tooLarge).
		Dur("latency", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(op, resp.StatusCode, data)
	}
	if tooLarge {
		return nil, &PayloadError{Op: op, Body: data, Err: fmt.Errorf("%w: over %d bytes", ErrResponseTooLarge, c.maxBody)}
	}
	return data, nil
}

func statusError(op string, status int, body []byte) *TransportError {
	e := &TransportError{Op: op, StatusCode: status}
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.Error != "" {
		e.Message = er.Error
	}
	e.Err = fmt.Errorf("unexpected status %d", status)
	return e
}
