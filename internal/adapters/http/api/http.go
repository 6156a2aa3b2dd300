// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/reelplan/internal/adapters/repository"
	service "github.com/okian/reelplan/internal/app"
	"github.com/okian/reelplan/internal/domain/ingest"
	"github.com/okian/reelplan/internal/domain/model"
	"github.com/okian/reelplan/internal/domain/policy"
	"github.com/okian/reelplan/internal/domain/types"
)

const defaultMaxBodyBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Plan(ctx context.Context, in types.PlanInput) (model.Plan, error)
	PlanBatch(ctx context.Context, inputs []types.PlanInput) ([]types.BatchResult, error)
	Submit(ctx context.Context, in types.PlanInput) (types.Job, error)
	Job(ctx context.Context, id string) (types.Job, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler *HealthHandler
	statsHandler  *StatsHandler
	plansHandler  *PlansHandler
	jobsHandler   *JobsHandler

	maxBodyBytes int64
}

// Option configures a Server.
type Option func(*Server)

// WithMaxBodyBytes caps request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{maxBodyBytes: defaultMaxBodyBytes}
	for _, opt := range opts {
		opt(s)
	}
	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.plansHandler = NewPlansHandler(deps, s.maxBodyBytes)
	s.jobsHandler = NewJobsHandler(deps, s.maxBodyBytes)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /plans", MetricsMiddleware(s.plansHandler.HandlePostPlan, "plans"))
	mux.HandleFunc("POST /plans/batch", MetricsMiddleware(s.plansHandler.HandlePostBatch, "plans_batch"))
	mux.HandleFunc("POST /jobs", MetricsMiddleware(s.jobsHandler.HandlePostJob, "jobs"))
	mux.HandleFunc("GET /jobs/{id}", MetricsMiddleware(s.jobsHandler.HandleGetJob, "job"))
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

// decodeJSON reads one JSON document of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	body := http.MaxBytesReader(w, r.Body, limit)
	dec := json.NewDecoder(body)
	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return ErrTooLarge
		}
		return err
	}
	return nil
}

// statusFor maps service errors onto HTTP status codes and error codes.
func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrTooLarge), errors.Is(err, service.ErrBatchTooLarge):
		return http.StatusRequestEntityTooLarge, "too_large"
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, model.ErrInvalidInput),
		errors.Is(err, policy.ErrInvalidPolicy),
		errors.Is(err, ingest.ErrInvalidPayload):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, service.ErrQueueFull):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// fail writes err wrapped with op, using the status derived from it.
func fail(w http.ResponseWriter, op string, err error) {
	status, code := statusFor(err)
	kind := ErrInternal
	switch status {
	case http.StatusBadRequest:
		kind = ErrBadRequest
	case http.StatusNotFound:
		kind = ErrNotFound
	case http.StatusTooManyRequests:
		kind = ErrBackpressure
	case http.StatusRequestEntityTooLarge:
		kind = ErrTooLarge
	case http.StatusServiceUnavailable:
		kind = ErrUnavailable
	}
	if errors.Is(err, kind) {
		writeError(w, status, code, WrapKind(op, nil, err))
		return
	}
	writeError(w, status, code, WrapKind(op, kind, err))
}
