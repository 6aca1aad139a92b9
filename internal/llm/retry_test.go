package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRetry returns a RetryProvider that records waits instead of
// sleeping.
func newTestRetry(inner Provider, cfg RetryConfig) (*RetryProvider, *[]time.Duration) {
	var waits []time.Duration
	r := WithRetry(inner, cfg).(*RetryProvider)
	r.sleep = func(ctx context.Context, d time.Duration) error {
		waits = append(waits, d)
		return ctx.Err()
	}
	return r, &waits
}

func testRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		InitialWait: 100 * time.Millisecond,
		MaxWait:     150 * time.Millisecond,
		Multiplier:  2,
	}
}

func unavailable() MockResponse {
	return MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}}
}

func TestRetry_FirstAttemptSucceeds(t *testing.T) {
	mock := NewMockProvider(MockText("ok"))
	p, waits := newTestRetry(mock, testRetryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
	assert.Equal(t, 1, mock.CallCount())
	assert.Empty(t, *waits)
}

func TestRetry_TransientThenSuccess(t *testing.T) {
	mock := NewMockProvider(unavailable(), MockText("ok"))
	p, waits := newTestRetry(mock, testRetryConfig())

	resp, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Text())
	assert.Equal(t, 2, mock.CallCount())
	require.Len(t, *waits, 1)
	assert.InDelta(t, float64(100*time.Millisecond), float64((*waits)[0]), float64(20*time.Millisecond))
}

func TestRetry_BackoffIsCapped(t *testing.T) {
	mock := NewMockProvider(unavailable(), unavailable(), unavailable())
	p, waits := newTestRetry(mock, testRetryConfig())

	_, err := p.Generate(context.Background(), Request{})
	var down *ErrProviderUnavailable
	require.ErrorAs(t, err, &down)
	assert.Equal(t, 3, mock.CallCount())

	// No wait after the final attempt; the second wait is capped at MaxWait.
	require.Len(t, *waits, 2)
	assert.LessOrEqual(t, (*waits)[1], time.Duration(float64(150*time.Millisecond)*1.2))
}

func TestRetry_ZeroAttemptsStillCallsOnce(t *testing.T) {
	mock := NewMockProvider(unavailable())
	p, _ := newTestRetry(mock, RetryConfig{})

	_, err := p.Generate(context.Background(), Request{})
	require.Error(t, err)
	assert.Equal(t, 1, mock.CallCount())
}

func TestRetry_NotRetried(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"max tokens", &ErrMaxTokensExceeded{Content: json.RawMessage(`{`)}},
		{"not configured", ErrNotConfigured},
		{"canceled", context.Canceled},
		{"deadline", context.DeadlineExceeded},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := NewMockProvider(MockResponse{Err: tt.err}, MockText("unreached"))
			p, waits := newTestRetry(mock, testRetryConfig())

			_, err := p.Generate(context.Background(), Request{})
			require.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1, mock.CallCount())
			assert.Empty(t, *waits)
		})
	}
}

func TestRetry_InvalidResponseRetriedOnce(t *testing.T) {
	bad := MockResponse{Err: &ErrInvalidResponse{Content: json.RawMessage(`bad`), Err: errors.New("bad")}}
	mock := NewMockProvider(bad, bad, MockText("unreached"))
	p, _ := newTestRetry(mock, RetryConfig{MaxAttempts: 5})

	_, err := p.Generate(context.Background(), Request{})
	var invalid *ErrInvalidResponse
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, 2, mock.CallCount())
}

func TestRetry_RateLimitUsesRetryAfter(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Err: &ErrRateLimit{RetryAfter: 7 * time.Second, Err: errors.New("429")}},
		MockText("ok"),
	)
	p, waits := newTestRetry(mock, testRetryConfig())

	_, err := p.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, []time.Duration{7 * time.Second}, *waits)
}

func TestRetry_CanceledDuringWait(t *testing.T) {
	mock := NewMockProvider(unavailable(), MockText("unreached"))
	ctx, cancel := context.WithCancel(context.Background())
	r := WithRetry(mock, testRetryConfig()).(*RetryProvider)
	r.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	_, err := r.Generate(ctx, Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, mock.CallCount())
}

func TestTimeout_BoundsCall(t *testing.T) {
	slow := providerFunc(func(ctx context.Context, _ Request) (*Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	_, err := WithTimeout(slow, 10*time.Millisecond).Generate(context.Background(), Request{})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSleepCtx(t *testing.T) {
	require.NoError(t, sleepCtx(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
	require.ErrorIs(t, sleepCtx(ctx, 0), context.Canceled)
}

type providerFunc func(context.Context, Request) (*Response, error)

func (f providerFunc) Generate(ctx context.Context, req Request) (*Response, error) { return f(ctx, req) }
func (f providerFunc) ModelID() string                                           { return "func" }
