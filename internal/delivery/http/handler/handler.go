package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/user/linkcard/internal/delivery/http/request"
	"github.com/user/linkcard/internal/delivery/http/response"
	"github.com/user/linkcard/internal/entity"
	"github.com/user/linkcard/internal/markdown"
	"github.com/user/linkcard/internal/render"
	"github.com/user/linkcard/internal/usecase"
	"github.com/user/linkcard/pkg/utils"
)

const maxRenderBody = 1 << 20

// HealthCheck reports whether a backing service is reachable.
type HealthCheck func(ctx context.Context) error

// CardDefaults are used by /api/card when the query does not say otherwise.
type CardDefaults struct {
	Target      entity.Target
	ClassPrefix string
}

type Handler struct {
	resolver  usecase.MetadataResolver
	converter *markdown.Converter
	cards     render.CardRenderer
	defaults  CardDefaults
	checks    map[string]HealthCheck
	logger    *zap.Logger
}

func NewHandler(
	resolver usecase.MetadataResolver,
	converter *markdown.Converter,
	cards render.CardRenderer,
	defaults CardDefaults,
	checks map[string]HealthCheck,
	logger *zap.Logger,
) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		resolver:  resolver,
		converter: converter,
		cards:     cards,
		defaults:  defaults,
		checks:    checks,
		logger:    logger,
	}
}

func (h *Handler) HandleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	healthStatus := map[string]string{"status": "ok"}
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			healthStatus[name] = "unhealthy"
			healthy = false
			h.logger.Error("health check failed", zap.String("component", name), zap.Error(err))
			continue
		}
		healthStatus[name] = "healthy"
	}

	if !healthy {
		healthStatus["status"] = "degraded"
		h.writeJSON(w, http.StatusServiceUnavailable, healthStatus)
		return
	}
	h.writeJSON(w, http.StatusOK, healthStatus)
}

func (h *Handler) HandleGetMetadata(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := h.urlParam(w, r)
	if !ok {
		return
	}

	meta, err := h.resolver.Resolve(r.Context(), rawURL)
	if err != nil {
		h.logger.Error("Failed to resolve metadata", zap.String("url", rawURL), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if meta == nil {
		h.writeJSONError(w, "No metadata found for the given URL", http.StatusNotFound)
		return
	}

	h.writeJSON(w, http.StatusOK, response.MetadataResponse{URL: rawURL, Metadata: meta})
}

func (h *Handler) HandleGetCard(w http.ResponseWriter, r *http.Request) {
	rawURL, ok := h.urlParam(w, r)
	if !ok {
		return
	}

	meta, err := h.resolver.Resolve(r.Context(), rawURL)
	if err != nil {
		h.logger.Error("Failed to resolve metadata", zap.String("url", rawURL), zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if meta == nil {
		h.writeJSONError(w, "No metadata found for the given URL", http.StatusNotFound)
		return
	}

	q := r.URL.Query()
	opts := entity.CardOptions{
		Href:        rawURL,
		LinkTitle:   q.Get("title"),
		Target:      h.defaults.Target,
		ClassPrefix: h.defaults.ClassPrefix,
	}
	if t := q.Get("target"); t != "" {
		opts.Target = entity.Target(t)
	}
	if p := q.Get("class_prefix"); p != "" {
		opts.ClassPrefix = p
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, h.cards.Render(meta, opts))
}

func (h *Handler) HandleRender(w http.ResponseWriter, r *http.Request) {
	var req request.RenderRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxRenderBody)).Decode(&req); err != nil {
		h.writeJSONError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ctx := markdown.WithOverrides(r.Context(), markdown.Overrides{
		Target:      entity.Target(req.Target),
		ClassPrefix: req.ClassPrefix,
	})
	out, err := h.converter.Convert(ctx, []byte(req.Markdown))
	if err != nil {
		h.logger.Error("Failed to render markdown", zap.Error(err))
		h.writeJSONError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, http.StatusOK, response.RenderResponse{HTML: string(out)})
}

func (h *Handler) urlParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	rawURL := r.URL.Query().Get("url")
	if rawURL == "" {
		h.writeJSONError(w, "URL query parameter is required", http.StatusBadRequest)
		return "", false
	}
	if !utils.IsAbsoluteURL(rawURL) {
		h.writeJSONError(w, "Invalid URL format in query parameter", http.StatusBadRequest)
		return "", false
	}
	return rawURL, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to write JSON response", zap.Error(err))
	}
}

func (h *Handler) writeJSONError(w http.ResponseWriter, message string, status int) {
	h.writeJSON(w, status, response.ErrorResponse{Error: message})
}
