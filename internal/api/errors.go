package api

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// ErrResponseTooLarge is wrapped by the *PayloadError returned for a 2xx
// body over the client's size limit.
var ErrResponseTooLarge = errors.New("response too large")

// TransportError indicates the exchange with the remote operation failed:
// the request could not be sent, the connection failed or timed out, or the
// server answered with a non-2xx status.
type TransportError struct {
	Op string

	// StatusCode is the HTTP status returned by the server. Zero when no
	// response was received.
	StatusCode int

	// Message is the server's "error" field, when the body carried one.
	Message string

	Err error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("api %s: http %d: %s", e.Op, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("api %s: http %d", e.Op, e.StatusCode)
	default:
		return fmt.Sprintf("api %s: %v", e.Op, e.Err)
	}
}

func (e *TransportError) Unwrap() error { return e.Err }

// Timeout reports whether the exchange failed because a deadline passed.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// PayloadError indicates the server answered 2xx but the body was not the
// JSON shape the operation promises. This is the outer decode stage; the
// inner assessment text is checked separately by assessment.Decode.
type PayloadError struct {
	Op   string
	Body []byte
	Err  error
}

func (e *PayloadError) Error() string {
	return fmt.Sprintf("api %s: unexpected response body: %v", e.Op, e.Err)
}

func (e *PayloadError) Unwrap() error { return e.Err }
