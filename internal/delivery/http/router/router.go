package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/linkcard/internal/delivery/http/handler"
	"github.com/user/linkcard/internal/delivery/http/middleware"
	"github.com/user/linkcard/internal/monitoring"
)

// New wires the API routes. gatherer backs /metrics.
func New(h *handler.Handler, m *monitoring.Metrics, gatherer prometheus.Gatherer, logger *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Metrics(m))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Get("/metadata", h.HandleGetMetadata)
		r.Get("/card", h.HandleGetCard)
		r.Post("/render", h.HandleRender)
	})

	return r
}
