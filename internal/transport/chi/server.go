// Package chi exposes the search API over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/stephen-mccullough/fashion-search/internal/domain"
	"github.com/stephen-mccullough/fashion-search/internal/domain/search/filter"
	"github.com/stephen-mccullough/fashion-search/internal/metrics"
	healthuc "github.com/stephen-mccullough/fashion-search/internal/usecase/health"
)

const maxPromptBytes = 1 << 14 // 16 KiB is plenty for a search prompt

// Searcher runs the search pipeline for one prompt.
type Searcher interface {
	Search(ctx context.Context, prompt string) (domain.SearchResult, error)
}

// ItemGetter looks up one product by parent ASIN.
type ItemGetter interface {
	Get(ctx context.Context, parentASIN string) (domain.Product, error)
}

// HealthChecker reports component availability.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server wires the use-case services to HTTP routes.
type Server struct {
	search        Searcher
	items         ItemGetter
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search Searcher, items ItemGetter, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		search: search,
		items:  items,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, "product_not_found"),
		sentinelHandler(domain.ErrFilterExtraction, http.StatusBadGateway, "filter_extraction_failed"),
		sentinelHandler(domain.ErrEmbedding, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrRecommendation, http.StatusBadGateway, "recommendation_failed"),
		sentinelHandler(domain.ErrRetrieval, http.StatusInternalServerError, "retrieval_failed"),
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Post("/search", s.SearchItems)
	r.Get("/items/{parentASIN}", s.GetItem)
	r.Get("/healthz", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "The requested resource was not found")
	})
}

// searchRequest is the POST /search body.
type searchRequest struct {
	Prompt string `json:"prompt"`
}

// searchEnvelope is the POST /search response shape. Response is null for
// out-of-domain queries and an empty array when nothing matched.
type searchEnvelope struct {
	Response       []domain.ScoredCandidate `json:"response"`
	Recommendation *string                  `json:"recommendation"`
	Warnings       []string                 `json:"warnings"`
	Filters        filter.Predicate         `json:"filters"`
}

// SearchItems handles POST /search.
func (s *Server) SearchItems(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPromptBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "Prompt is required")
		return
	}

	result, err := s.search.Search(r.Context(), req.Prompt)
	if err != nil {
		metrics.SearchesTotal.WithLabelValues("error").Inc()
		s.handleDomainError(w, err)
		return
	}

	outcome := "ok"
	if result.Items == nil {
		outcome = "out_of_domain"
	}
	metrics.SearchesTotal.WithLabelValues(outcome).Inc()

	warnings := result.Warnings
	if warnings == nil {
		warnings = []string{}
	}

	writeJSON(w, http.StatusOK, searchEnvelope{
		Response:       result.Items,
		Recommendation: result.Recommendation,
		Warnings:       warnings,
		Filters:        result.Filters,
	})
}

// GetItem handles GET /items/{parentASIN}.
func (s *Server) GetItem(w http.ResponseWriter, r *http.Request) {
	parentASIN := chi.URLParam(r, "parentASIN")

	p, err := s.items.Get(r.Context(), parentASIN)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, p)
}

// HealthCheck handles GET /healthz.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if report.Status != healthuc.Healthy {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, report)
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrProductNotFound,
		domain.ErrFilterExtraction,
		domain.ErrEmbedding,
		domain.ErrRetrieval,
		domain.ErrRecommendation,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
