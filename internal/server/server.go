// Package server is the HTTP API consumed by the lessonbuddy client.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/abhisek/lessonbuddy/internal/api"
	"github.com/abhisek/lessonbuddy/internal/tutor"
)

const shutdownTimeout = 5 * time.Second

// Dependencies are the collaborators the API needs.
type Dependencies struct {
	Tutor  tutor.Tutor
	Logger zerolog.Logger

	// Model names the configured model on /healthz. Empty when none is.
	Model string

	// AccessLog, when set, receives one plain-text line per request.
	AccessLog io.Writer
}

// NewValidator returns the request validator with the custom tags the API
// DTOs use.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(fmt.Sprintf("register notblank: %v", err))
	}
	return v
}

// New builds the Fiber app with every route registered.
func New(deps Dependencies) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "lessonbuddy",
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	registerMiddleware(app, deps.Logger, deps.AccessLog)

	app.Get("/", func(c *fiber.Ctx) error {
		return c.SendString("Hello, World!")
	})
	app.Get("/healthz", healthCheck(deps))
	app.Get("/metrics", metricsHandler())

	NewTutorHandler(deps.Tutor, NewValidator(), deps.Logger).Register(app.Group("/api"))
	return app
}

// Run serves app on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, app *fiber.App, addr string, logger zerolog.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("api server listening")
		errCh <- app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	logger.Info().Msg("api server stopped")
	return nil
}

func healthCheck(deps Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(api.Health{
			Status:          "ok",
			ModelConfigured: deps.Tutor.Ready(),
			Model:           deps.Model,
			Timestamp:       time.Now().UTC(),
		})
	}
}

// errorHandler renders Fiber errors (unknown route, wrong method, body
// too large) in the API's {"error": ...} shape.
func errorHandler(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	msg := "internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		status, msg = fe.Code, fe.Message
	}
	return sendError(c, status, msg)
}
