package server

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce    sync.Once
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	tutorFailures   *prometheus.CounterVec
)

func registerMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lessonbuddy_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		requestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name: "lessonbuddy_http_request_duration_seconds",
			Help: "Latency of API requests. Model calls dominate.",
			// Lessons routinely take several seconds to generate.
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40},
		}, []string{"method", "route"})

		tutorFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lessonbuddy_tutor_failures_total",
			Help: "Tutor operations that failed, by operation and reason.",
		}, []string{"op", "reason"})

		prometheus.MustRegister(requestsTotal, requestDuration, tutorFailures)
	})
}

// metricsHandler exposes the Prometheus scrape endpoint.
func metricsHandler() fiber.Handler {
	registerMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}
