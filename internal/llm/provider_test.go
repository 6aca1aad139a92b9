package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockProvider_ReplaysInOrder(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15}},
		MockText("plain reply"),
	)

	first, err := mock.Generate(context.Background(), UserPrompt("", "first"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(first.Content))
	assert.Equal(t, 10, first.Usage.InputTokens)
	assert.Equal(t, "end", first.StopReason)

	second, err := mock.Generate(context.Background(), UserPrompt("", "second"))
	require.NoError(t, err)
	assert.Equal(t, "plain reply", second.Text())
}

func TestMockProvider_EmptyQueue(t *testing.T) {
	_, err := NewMockProvider().Generate(context.Background(), Request{})
	var unavailable *ErrProviderUnavailable
	require.ErrorAs(t, err, &unavailable)
}

func TestMockProvider_RecordsCalls(t *testing.T) {
	mock := NewMockProvider(MockText("hi"))
	_, err := mock.Generate(context.Background(), UserPrompt("be brief", "hello"))
	require.NoError(t, err)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "be brief", calls[0].System)
	assert.Equal(t, []Message{{Role: RoleUser, Content: "hello"}}, calls[0].Messages)
	assert.Equal(t, 1, mock.CallCount())
}

func TestMockProvider_ValidatesAgainstSchema(t *testing.T) {
	schema := &Schema{
		Name: "pair",
		Definition: map[string]any{
			"type":     "object",
			"required": []string{"x"},
			"properties": map[string]any{
				"x": map[string]any{"type": "integer"},
			},
		},
	}
	mock := NewMockProvider(MockJSON(map[string]any{"y": 1}), MockJSON(map[string]any{"x": 1}))
	req := Request{Schema: schema}

	_, err := mock.Generate(context.Background(), req)
	var invalid *ErrInvalidResponse
	require.ErrorAs(t, err, &invalid)

	resp, err := mock.Generate(context.Background(), req)
	require.NoError(t, err)
	var out struct{ X int }
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, 1, out.X)
}

func TestMockProvider_CanceledContext(t *testing.T) {
	mock := NewMockProvider(MockText("unused"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.Generate(ctx, Request{})
	require.ErrorIs(t, err, context.Canceled)

	mock.Enqueue(MockText("later"))
	resp, err := mock.Generate(context.Background(), Request{})
	require.NoError(t, err)
	assert.Equal(t, "unused", resp.Text())
}

func TestResponse_TextAndDecode(t *testing.T) {
	var nilResp *Response
	assert.Equal(t, "", nilResp.Text())
	assert.Error(t, nilResp.Decode(&struct{}{}))

	resp := &Response{Content: json.RawMessage("  spaced out \n")}
	assert.Equal(t, "spaced out", resp.Text())

	err := resp.Decode(&struct{}{})
	var invalid *ErrInvalidResponse
	require.ErrorAs(t, err, &invalid)
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "unknown", PurposeFrom(ctx))
	assert.Equal(t, PurposeNotes, PurposeFrom(WithPurpose(ctx, PurposeNotes)))
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"unconfigured", Config{}, true},
		{"gemini without key", Config{Provider: ProviderGemini}, true},
		{"gemini with key", Config{Provider: ProviderGemini, Gemini: GeminiConfig{APIKey: "k"}}, false},
		{"openai without key", Config{Provider: ProviderOpenAI}, true},
		{"openai with key", Config{Provider: ProviderOpenAI, OpenAI: OpenAIConfig{APIKey: "k"}}, false},
		{"anthropic without key", Config{Provider: ProviderAnthropic}, true},
		{"anthropic with key", Config{Provider: ProviderAnthropic, Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"mock needs no key", Config{Provider: ProviderMock}, false},
		{"unknown provider", Config{Provider: "llama"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			assert.Equal(t, tt.wantErr, err != nil, "Validate() = %v", err)
		})
	}
	assert.ErrorIs(t, Config{}.Validate(), ErrNotConfigured)
}

func TestDiscoverConfig(t *testing.T) {
	for _, k := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY", "OPENAI_API_KEY", "ANTHROPIC_API_KEY"} {
		t.Setenv(k, "")
	}

	_, ok := DiscoverConfig()
	assert.False(t, ok)

	t.Setenv("ANTHROPIC_API_KEY", "a-key")
	cfg, ok := DiscoverConfig()
	require.True(t, ok)
	assert.Equal(t, ProviderAnthropic, cfg.Provider)

	t.Setenv("OPENAI_API_KEY", "o-key")
	cfg, _ = DiscoverConfig()
	assert.Equal(t, ProviderOpenAI, cfg.Provider)

	t.Setenv("GOOGLE_API_KEY", "g-key")
	cfg, _ = DiscoverConfig()
	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.Equal(t, "g-key", cfg.Gemini.APIKey)
	assert.Equal(t, "gemini-flash", cfg.Gemini.Model)
}

func TestNewProvider(t *testing.T) {
	_, err := NewProvider(context.Background(), Config{}, nil, zerolog.Nop())
	require.ErrorIs(t, err, ErrNotConfigured)

	cfg := DefaultConfig()
	cfg.Provider = ProviderMock
	cfg.Retry.MaxAttempts = 1
	p, err := NewProvider(context.Background(), cfg, nil, zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, ProviderMock, p.ModelID())

	_, err = p.Generate(context.Background(), UserPrompt("", "anything"))
	var unavailable *ErrProviderUnavailable
	assert.True(t, errors.As(err, &unavailable))
}

func TestPriceOf(t *testing.T) {
	alias, ok := PriceOf("gemini-flash")
	require.True(t, ok)
	full, ok := PriceOf("gemini-2.5-flash")
	require.True(t, ok)
	assert.Equal(t, full, alias)
	assert.InDelta(t, 0.3+2.5, full.Cost(1_000_000, 1_000_000), 1e-9)

	_, ok = PriceOf("no-such-model")
	assert.False(t, ok)
}
