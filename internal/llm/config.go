package llm

import (
	"fmt"
	"os"
	"time"
)

// Provider names accepted in Config.Provider.
const (
	ProviderGemini    = "gemini"
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// Config selects and configures the model provider used by the server.
type Config struct {
	// Provider is one of the Provider* names. Empty means unconfigured.
	Provider string

	Gemini    GeminiConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Retry     RetryConfig

	// Timeout bounds one Generate call including retries.
	Timeout time.Duration
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey string
	Model  string

	// BaseURL points the client at an OpenAI-compatible API such as
	// OpenRouter or a local gateway.
	BaseURL string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

// RetryConfig controls backoff for transient provider failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns defaults with Gemini selected.
func DefaultConfig() Config {
	return Config{
		Provider:  ProviderGemini,
		Gemini:    GeminiConfig{Model: "gemini-flash"},
		OpenAI:    OpenAIConfig{Model: "gpt-4o-mini"},
		Anthropic: AnthropicConfig{Model: "claude-haiku"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     8 * time.Second,
			Multiplier:  2,
		},
		Timeout: 60 * time.Second,
	}
}

// DiscoverConfig looks for a vendor API key in the environment and returns
// a Config for the first one found. Gemini keys are checked first, under
// both GEMINI_API_KEY and GOOGLE_API_KEY.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	for _, name := range []string{"GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		if k := os.Getenv(name); k != "" {
			cfg.Provider = ProviderGemini
			cfg.Gemini.APIKey = k
			return cfg, true
		}
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = ProviderOpenAI
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = ProviderAnthropic
		cfg.Anthropic.APIKey = k
		return cfg, true
	}
	return Config{}, false
}

// Validate checks that the selected provider can be constructed.
func (c Config) Validate() error {
	switch c.Provider {
	case "":
		return ErrNotConfigured
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini provider needs LESSONBUDDY_GEMINI_API_KEY or GOOGLE_API_KEY")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai provider needs LESSONBUDDY_OPENAI_API_KEY or OPENAI_API_KEY")
		}
	case ProviderAnthropic:
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("anthropic provider needs LESSONBUDDY_ANTHROPIC_API_KEY or ANTHROPIC_API_KEY")
		}
	case ProviderMock:
	default:
		return fmt.Errorf("unknown llm provider %q", c.Provider)
	}
	return nil
}
