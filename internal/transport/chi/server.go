// Package chi exposes the search pipeline over HTTP.
package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vendora-cloud/semsearch/internal/domain"
	"github.com/vendora-cloud/semsearch/internal/domain/search/filter"
	"github.com/vendora-cloud/semsearch/internal/domain/search/measure"
	"github.com/vendora-cloud/semsearch/internal/domain/search/query"
	healthuc "github.com/vendora-cloud/semsearch/internal/usecase/health"
	searchuc "github.com/vendora-cloud/semsearch/internal/usecase/search"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, r *http.Request, start time.Time, err error) bool

// Server is the HTTP API server.
type Server struct {
	search        *searchuc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(search *searchuc.Service, health *healthuc.Service, logger *zap.Logger) *Server {
	s := &Server{search: search, health: health, logger: logger}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrConfiguration,
			http.StatusInternalServerError, codeConfigurationError, "service misconfigured"),
		sentinelHandler(domain.ErrStoreUnavailable,
			http.StatusInternalServerError, codeSearchFailed, "search temporarily unavailable"),
		sentinelHandler(domain.ErrEmbeddingUnavailable,
			http.StatusInternalServerError, codeSearchFailed, "search temporarily unavailable"),
	}
	return s
}

// Routes registers the API endpoints on a router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/api/v1/search", s.SearchListings)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

// SearchListings handles POST /api/v1/search.
func (s *Server) SearchListings(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, r, start, http.StatusBadRequest,
			codeInvalidJSON, invalidJSONMessage(err), "")
		return
	}

	opts, errMsg, errField := optionsFromRequest(req.Options)
	if errMsg != "" {
		writeError(w, r, start, http.StatusBadRequest,
			codeValidationError, errMsg, errField)
		return
	}

	var filters filter.FilterSet
	if req.Filters != nil {
		filters = *req.Filters
	}

	q, err := query.New(req.Query, filters, opts)
	if err != nil {
		s.handleDomainError(w, r, start, err)
		return
	}

	resp, err := s.search.Execute(r.Context(), &q)
	if err != nil {
		s.handleDomainError(w, r, start, err)
		return
	}

	writeSuccess(w, r, start, http.StatusOK, searchResponseToDTO(resp))
}

// HealthCheck handles GET /health. An unhealthy report is served as 503
// with success=false and the full report attached.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	report := s.health.Check(r.Context())

	status := http.StatusOK
	if !report.Healthy {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, envelope{
		Success:  report.Healthy,
		Data:     report,
		Metadata: newMetadata(r, start),
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// optionsFromRequest validates explicitly provided options and applies
// defaults for absent ones. Out-of-range explicit values are rejected here
// rather than clamped: silent clamping would hide a caller bug.
func optionsFromRequest(in *searchOptions) (query.Options, string, string) {
	opts := query.Options{IncludeTextSearch: true}
	if in == nil {
		return opts, "", ""
	}

	if in.Limit != nil {
		if *in.Limit < 1 || *in.Limit > query.MaxLimit {
			return opts, fmt.Sprintf("Limit must be between 1 and %d", query.MaxLimit), "options.limit"
		}
		opts.Limit = *in.Limit
	}
	if in.Offset != nil {
		if *in.Offset < 0 {
			return opts, "Offset must be a non-negative number", "options.offset"
		}
		opts.Offset = *in.Offset
	}
	if in.Threshold != nil {
		if *in.Threshold < 0 || *in.Threshold > 1 {
			return opts, "Threshold must be between 0 and 1", "options.threshold"
		}
		opts.Threshold = *in.Threshold
	}
	if in.DistanceMeasure != nil {
		m := measure.Measure(*in.DistanceMeasure)
		if !m.IsValid() {
			return opts, fmt.Sprintf("distanceMeasure must be one of cosine, euclidean, dot, got %q",
				*in.DistanceMeasure), "options.distanceMeasure"
		}
		opts.Measure = m
	}
	if in.IncludeTextSearch != nil {
		opts.IncludeTextSearch = *in.IncludeTextSearch
	}
	if in.IncludeExplanation != nil {
		opts.IncludeExplanation = *in.IncludeExplanation
	}
	if in.Diversify != nil {
		opts.Diversify = *in.Diversify
	}
	return opts, "", ""
}

// invalidJSONMessage keeps type errors actionable without echoing the body.
func invalidJSONMessage(err error) string {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return fmt.Sprintf("invalid type for field %q: expected %s", typeErr.Field, typeErr.Type)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Sprintf("malformed JSON at offset %d", syntaxErr.Offset)
	}
	return "invalid request body"
}

func validationHandler(w http.ResponseWriter, r *http.Request, start time.Time, err error) bool {
	if !errors.Is(err, domain.ErrValidation) {
		return false
	}
	var ve *domain.ValidationError
	field := ""
	if errors.As(err, &ve) {
		field = ve.Field
	}
	writeError(w, r, start, http.StatusBadRequest,
		codeValidationError, domain.ValidationMessage(err), field)
	return true
}

// sentinelHandler returns an errorHandler matching a single sentinel error.
// The client gets a fixed message; the detail stays in the logs.
func sentinelHandler(sentinel error, status int, code, message string) errorHandler {
	return func(w http.ResponseWriter, r *http.Request, start time.Time, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, r, start, status, code, message, "")
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, start time.Time, err error) {
	s.logger.Warn("request failed", zap.Error(err))
	for _, h := range s.errorHandlers {
		if h(w, r, start, err) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, r, start, http.StatusInternalServerError,
		codeInternalError, "internal error", "")
}
