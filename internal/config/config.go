package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/abhisek/lessonbuddy/internal/llm"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. LESSONBUDDY_API_URL for the "api.url" key.
const EnvPrefix = "LESSONBUDDY"

// DefaultTopics are offered on the home screen when none are configured.
var DefaultTopics = []string{
	"Photosynthesis",
	"The Water Cycle",
	"Newton's Laws of Motion",
	"The French Revolution",
	"Introduction to Algebra",
}

// Config holds runtime configuration for both the client and the server.
type Config struct {
	API        APIConfig
	Topics     []string
	Server     ServerConfig
	Redis      RedisConfig
	Log        LogConfig
	Assessment AssessmentConfig
	LLM        llm.Config
}

// APIConfig configures the client transport.
type APIConfig struct {
	URL     string
	Timeout time.Duration
}

// ServerConfig configures the API server.
type ServerConfig struct {
	Addr     string
	DBPath   string
	CacheTTL time.Duration
}

// RedisConfig configures the optional lesson cache. Empty URL disables it.
type RedisConfig struct {
	URL string
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level string
	File  string
}

// AssessmentConfig controls the shape of generated assessments.
type AssessmentConfig struct {
	Questions int
	Options   int
}

// Load reads configuration from an optional .env file, an optional config
// file at path, and LESSONBUDDY_* environment variables, in increasing
// order of precedence.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := Config{
		API: APIConfig{
			URL:     v.GetString("api.url"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Topics: topics(v),
		Server: ServerConfig{
			Addr:     v.GetString("server.addr"),
			DBPath:   v.GetString("server.db"),
			CacheTTL: v.GetDuration("server.cache_ttl"),
		},
		Redis: RedisConfig{URL: v.GetString("redis.url")},
		Log: LogConfig{
			Level: strings.ToLower(v.GetString("log.level")),
			File:  v.GetString("log.file"),
		},
		Assessment: AssessmentConfig{
			Questions: v.GetInt("assessment.questions"),
			Options:   v.GetInt("assessment.options"),
		},
		LLM: llmConfig(v),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.url", "http://127.0.0.1:5000/api")
	v.SetDefault("api.timeout", "30s")
	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.db", "")
	v.SetDefault("server.cache_ttl", "24h")
	v.SetDefault("redis.url", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.file", "")
	v.SetDefault("assessment.questions", 3)
	v.SetDefault("assessment.options", 4)
	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.timeout", "60s")
}

// topics accepts a list from a config file or a comma-separated env value.
func topics(v *viper.Viper) []string {
	var raw []string
	switch val := v.Get("topics").(type) {
	case string:
		raw = strings.Split(val, ",")
	case nil:
	default:
		raw = v.GetStringSlice("topics")
	}
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), DefaultTopics...)
	}
	return out
}

// llmConfig resolves the provider settings. An explicit llm.provider wins;
// otherwise the standard vendor key variables are probed.
func llmConfig(v *viper.Viper) llm.Config {
	cfg := llm.DefaultConfig()
	if provider := v.GetString("llm.provider"); provider != "" {
		cfg.Provider = strings.ToLower(provider)
	} else if discovered, ok := llm.DiscoverConfig(); ok {
		cfg = discovered
	} else {
		cfg.Provider = ""
	}

	override := func(dst *string, key string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	override(&cfg.Gemini.APIKey, "gemini.api_key")
	override(&cfg.Gemini.Model, "gemini.model")
	override(&cfg.OpenAI.APIKey, "openai.api_key")
	override(&cfg.OpenAI.Model, "openai.model")
	override(&cfg.OpenAI.BaseURL, "openai.base_url")
	override(&cfg.Anthropic.APIKey, "anthropic.api_key")
	override(&cfg.Anthropic.Model, "anthropic.model")

	if d := v.GetDuration("llm.timeout"); d > 0 {
		cfg.Timeout = d
	}
	return cfg
}

// Validate checks values that would otherwise fail late and confusingly.
// LLM settings are validated by the server, since the client never needs
// them.
func (c Config) Validate() error {
	u, err := url.Parse(c.API.URL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("api.url must be an absolute URL, got %q", c.API.URL)
	}
	if c.API.Timeout <= 0 {
		return fmt.Errorf("api.timeout must be positive")
	}
	if c.Assessment.Questions < 1 {
		return fmt.Errorf("assessment.questions must be at least 1")
	}
	if c.Assessment.Options < 2 {
		return fmt.Errorf("assessment.options must be at least 2")
	}
	if c.Assessment.Options > 9 {
		return fmt.Errorf("assessment.options must be at most 9")
	}
	return nil
}

// StateDir returns the directory for the client's log file and the server's
// database, following the XDG base directory layout.
func StateDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "lessonbuddy"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "lessonbuddy"), nil
}
