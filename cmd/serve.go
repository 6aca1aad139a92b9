package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abhisek/lessonbuddy/internal/llm"
	"github.com/abhisek/lessonbuddy/internal/logging"
	"github.com/abhisek/lessonbuddy/internal/server"
	"github.com/abhisek/lessonbuddy/internal/store"
	"github.com/abhisek/lessonbuddy/internal/tutor"
)

const redisPingTimeout = 3 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the lesson API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServer(cmd)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides LESSONBUDDY_SERVER_ADDR)")
	serveCmd.Flags().Bool("access-log", false, "Write a plain-text access log line per request to stderr")
}

// runServer wires the store, cache, model provider and HTTP API, then
// serves until SIGINT or SIGTERM.
func runServer(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:     cfg.Log.Level,
		File:      cfg.Log.File,
		Writer:    os.Stdout,
		Component: "server",
	})
	if err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPath, err := resolveDBPath(cmd, cfg)
	if err != nil {
		return fmt.Errorf("resolve database path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info().Str("path", dbPath).Msg("store opened")

	cache := openCache(ctx, cfg.Redis.URL, logger)
	if cache != nil {
		defer cache.Close()
	}

	opts := tutor.Options{
		Lessons:   st.LessonRepo(),
		Cache:     cache,
		CacheTTL:  cfg.Server.CacheTTL,
		Questions: cfg.Assessment.Questions,
		Choices:   cfg.Assessment.Options,
		Logger:    logger,
	}
	model := ""
	provider, err := llm.NewProvider(ctx, cfg.LLM, st.EventRepo(), logger)
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		logger.Warn().Msg("no model provider configured; AI routes will answer 500")
	case err != nil:
		logger.Error().Err(err).Str("provider", cfg.LLM.Provider).Msg("model provider unavailable; AI routes will answer 500")
	default:
		opts.Provider = provider
		model = provider.ModelID()
		logger.Info().Str("provider", cfg.LLM.Provider).Str("model", model).Msg("model provider ready")
	}

	deps := server.Dependencies{
		Tutor:  tutor.NewService(opts),
		Logger: logger,
		Model:  model,
	}
	if on, _ := cmd.Flags().GetBool("access-log"); on {
		deps.AccessLog = os.Stderr
	}

	return server.Run(ctx, server.New(deps), cfg.Server.Addr, logger)
}

// openCache connects to Redis when url is set. Any failure disables the
// cache instead of failing startup.
func openCache(ctx context.Context, url string, logger zerolog.Logger) *redis.Client {
	if url == "" {
		return nil
	}
	opt, err := redis.ParseURL(url)
	if err != nil {
		logger.Warn().Err(err).Msg("invalid redis url; lesson cache disabled")
		return nil
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn().Err(err).Str("addr", opt.Addr).Msg("redis unreachable; lesson cache disabled")
		_ = client.Close()
		return nil
	}
	logger.Info().Str("addr", opt.Addr).Msg("lesson cache enabled")
	return client
}
