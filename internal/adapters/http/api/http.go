// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	service "github.com/okian/prepdeck/internal/app"
	"github.com/okian/prepdeck/internal/domain/types"
)

const defaultMaxBodyBytes = 1 << 20

// SessionDependencies runs adaptive test sessions.
type SessionDependencies interface {
	CreateSession(ctx context.Context, req service.CreateSessionRequest) (types.SessionView, error)
	GetSession(ctx context.Context, id string) (types.SessionView, error)
	SubmitAnswer(ctx context.Context, id string, req service.AnswerRequest) (types.AnswerFeedback, error)
	EndSession(ctx context.Context, id string) (types.SessionView, error)
	Result(ctx context.Context, id string) (types.Result, error)
}

// AnalysisDependencies scores resumes and exposes the reference data.
type AnalysisDependencies interface {
	Analyze(ctx context.Context, resume string) (types.Analysis, error)
	Catalog(ctx context.Context) types.CatalogView
	Topics(ctx context.Context) types.TopicList
}

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SessionDependencies
	AnalysisDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	sessionsHandler *SessionsHandler
	analysisHandler *AnalysisHandler

	limiter      *RateLimiter
	maxBodyBytes int64
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler(statsProvider)
	s.statsHandler = NewStatsHandler(statsProvider)
	s.sessionsHandler = NewSessionsHandler(deps, s.maxBodyBytes)
	s.analysisHandler = NewAnalysisHandler(deps, s.maxBodyBytes)
	return s
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(_ context.Context, r *mux.Router) {
	r.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz")).Methods(http.MethodGet)
	r.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats")).Methods(http.MethodGet)

	r.HandleFunc("/sessions", s.route(s.sessionsHandler.HandleCreate, "sessions")).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}", s.route(s.sessionsHandler.HandleGet, "session")).Methods(http.MethodGet)
	r.HandleFunc("/sessions/{id}", s.route(s.sessionsHandler.HandleEnd, "session")).Methods(http.MethodDelete)
	r.HandleFunc("/sessions/{id}/answers", s.route(s.sessionsHandler.HandleAnswer, "answers")).Methods(http.MethodPost)
	r.HandleFunc("/sessions/{id}/result", s.route(s.sessionsHandler.HandleResult, "result")).Methods(http.MethodGet)

	r.HandleFunc("/analyses", s.route(s.analysisHandler.HandleAnalyze, "analyses")).Methods(http.MethodPost)
	r.HandleFunc("/catalog", s.route(s.analysisHandler.HandleCatalog, "catalog")).Methods(http.MethodGet)
	r.HandleFunc("/topics", s.route(s.analysisHandler.HandleTopics, "topics")).Methods(http.MethodGet)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", NewKind("api.route", ErrNotFound))
	})
}

// route applies rate limiting and request metrics to a business endpoint.
func (s *Server) route(h http.HandlerFunc, endpoint string) http.HandlerFunc {
	if s.limiter != nil {
		h = s.limiter.Middleware(h, endpoint)
	}
	return MetricsMiddleware(h, endpoint)
}

// CORSConfig lists what cross-origin callers may send.
type CORSConfig struct {
	AllowedOrigins []string
}

// corsHeaders are the request headers browser clients of the API send.
var corsHeaders = []string{"authorization", "x-client-info", "apikey", "content-type"}

// NewHandler wraps the router with CORS and request tracing.
func NewHandler(r *mux.Router, cors CORSConfig) http.Handler {
	origins := cors.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	h := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders(corsHeaders),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
	)(r)
	return otelhttp.NewHandler(h, "prepdeck.http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps service errors to status codes.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, ErrBadRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrUnknownTopic):
		return http.StatusNotFound, "unknown_topic"
	case errors.Is(err, service.ErrSessionFinished):
		return http.StatusConflict, "session_finished"
	case errors.Is(err, service.ErrStalePosition):
		return http.StatusConflict, "stale_position"
	case errors.Is(err, service.ErrCapacity):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return err
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
