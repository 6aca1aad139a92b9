package server

import (
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CorrelationHeader carries the request correlation ID in both directions.
const CorrelationHeader = "X-Correlation-ID"

type correlationIDKey struct{}

// registerMiddleware attaches the middleware chain shared by every route.
func registerMiddleware(app *fiber.App, log zerolog.Logger, accessLog io.Writer) {
	app.Use(recover.New())
	app.Use(correlationID())
	app.Use(observability(log))
	if accessLog != nil {
		app.Use(logger.New(logger.Config{Output: accessLog}))
	}
	// The browser frontend and the terminal client both call the API.
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, " + CorrelationHeader,
		AllowMethods: "GET,POST,OPTIONS",
	}))
}

// correlationID reuses the caller's correlation ID or assigns a new one.
func correlationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(CorrelationHeader))
		if id == "" {
			id = strings.TrimSpace(c.Get("X-Request-ID"))
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals("correlation_id", id)
		c.Set(CorrelationHeader, id)
		c.SetUserContext(context.WithValue(c.UserContext(), correlationIDKey{}, id))
		return c.Next()
	}
}

// CorrelationIDFromContext returns the request's correlation ID, if any.
func CorrelationIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey{}).(string)
	return id
}

func correlationIDOf(c *fiber.Ctx) string {
	id, _ := c.Locals("correlation_id").(string)
	return id
}

// observability records request metrics and one log line per request.
func observability(log zerolog.Logger) fiber.Handler {
	registerMetrics()

	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		duration := time.Since(start)

		// Let the error handler settle the status before it is recorded.
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
			err = nil
		}

		route := routeTemplate(c)
		method := c.Method()
		status := c.Response().StatusCode()
		requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(method, route).Observe(duration.Seconds())

		reqLog := log.With().
			Str("correlation_id", correlationIDOf(c)).
			Str("route", route).
			Str("method", method).
			Int("status", status).
			Dur("latency", duration).
			Logger()
		switch {
		case status >= fiber.StatusInternalServerError:
			reqLog.Error().Msg("request failed")
		case status >= fiber.StatusBadRequest:
			reqLog.Warn().Msg("request completed with client error")
		default:
			reqLog.Info().Msg("request completed")
		}
		return err
	}
}

func routeTemplate(c *fiber.Ctx) string {
	if r := c.Route(); r != nil && r.Path != "" && r.Path != "/" {
		return r.Path
	}
	return c.Path()
}
