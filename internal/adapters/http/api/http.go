// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/scoutbook/internal/adapters/http/idempotency"
	service "github.com/okian/scoutbook/internal/app"
	"github.com/okian/scoutbook/internal/domain/aggregation"
	"github.com/okian/scoutbook/internal/domain/identity"
	"github.com/okian/scoutbook/internal/domain/lifecycle"
	"github.com/okian/scoutbook/internal/domain/model"
	"github.com/okian/scoutbook/internal/domain/taxonomy"
	"github.com/okian/scoutbook/pkg/logger"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 1 << 20

// PlayerDependencies covers the roster operations.
type PlayerDependencies interface {
	CheckDuplicates(ctx context.Context, p model.Player) error
	CreatePlayer(ctx context.Context, p model.Player, bundled *model.Report) (model.Player, error)
	GetPlayer(ctx context.Context, id string) (model.Player, error)
	ListPlayers(ctx context.Context, state model.LifecycleState) ([]model.Player, error)
	SimilarPlayers(ctx context.Context, name string) ([]identity.Match, error)
}

// ReportDependencies covers report submission and maintenance.
type ReportDependencies interface {
	SubmitReport(ctx context.Context, r model.Report) (service.Submission, error)
	ListReports(ctx context.Context, playerID string) ([]model.Report, error)
	DeleteReport(ctx context.Context, reportID string) error
	AttachDirectorFeedback(ctx context.Context, reportID, name, feedback string) (model.Report, error)
	Reevaluate(ctx context.Context, playerID string) (lifecycle.Outcome, error)
}

// ViewDependencies covers the read-only aggregate views.
type ViewDependencies interface {
	Summary(ctx context.Context, playerID string) (aggregation.Summary, error)
	Dashboard(ctx context.Context) (aggregation.Stats, error)
	SuggestTerms(text string, kind taxonomy.Kind) []taxonomy.Suggestion
}

// Dependencies required by HTTP handlers. *service.Service satisfies it.
type Dependencies interface {
	PlayerDependencies
	ReportDependencies
	ViewDependencies
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger used for server-side failures.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIdempotencyKeys replaces the store of Idempotency-Key values guarding
// the create endpoints.
func WithIdempotencyKeys(k idempotency.Keys) Option {
	return func(s *Server) {
		if k != nil {
			s.keys = k
		}
	}
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	playersHandler *PlayersHandler
	reportsHandler *ReportsHandler
	viewsHandler   *ViewsHandler
	keys           idempotency.Keys
	logger         logger.Logger
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		keys:   idempotency.New(),
		logger: logger.Get().Named("api"),
	}
	for _, opt := range opts {
		opt(s)
	}
	fail := failureWriter(s.logger)
	s.healthHandler = NewHealthHandler()
	s.playersHandler = &PlayersHandler{deps: deps, fail: fail}
	s.reportsHandler = &ReportsHandler{deps: deps, fail: fail}
	s.viewsHandler = &ViewsHandler{deps: deps, fail: fail}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /metrics", s.healthHandler.HandleMetrics)

	mux.HandleFunc("POST /players", MetricsMiddleware(Idempotent(s.keys, "players_create", s.playersHandler.HandleCreate), "players_create"))
	mux.HandleFunc("GET /players", MetricsMiddleware(s.playersHandler.HandleList, "players_list"))
	mux.HandleFunc("POST /players/check", MetricsMiddleware(s.playersHandler.HandleCheck, "players_check"))
	mux.HandleFunc("GET /players/similar", MetricsMiddleware(s.playersHandler.HandleSimilar, "players_similar"))
	mux.HandleFunc("GET /players/{id}", MetricsMiddleware(s.playersHandler.HandleGet, "players_get"))

	mux.HandleFunc("GET /players/{id}/reports", MetricsMiddleware(s.reportsHandler.HandleList, "reports_list"))
	mux.HandleFunc("POST /players/{id}/reports", MetricsMiddleware(Idempotent(s.keys, "reports_submit", s.reportsHandler.HandleSubmit), "reports_submit"))
	mux.HandleFunc("POST /players/{id}/reevaluate", MetricsMiddleware(s.reportsHandler.HandleReevaluate, "players_reevaluate"))
	mux.HandleFunc("DELETE /reports/{id}", MetricsMiddleware(s.reportsHandler.HandleDelete, "reports_delete"))
	mux.HandleFunc("POST /reports/{id}/feedback", MetricsMiddleware(s.reportsHandler.HandleFeedback, "reports_feedback"))

	mux.HandleFunc("GET /players/{id}/summary", MetricsMiddleware(s.viewsHandler.HandleSummary, "players_summary"))
	mux.HandleFunc("GET /dashboard", MetricsMiddleware(s.viewsHandler.HandleDashboard, "dashboard"))
	mux.HandleFunc("GET /taxonomy/suggest", MetricsMiddleware(s.viewsHandler.HandleSuggest, "taxonomy_suggest"))
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

// failFunc writes the response for a failed operation.
type failFunc func(w http.ResponseWriter, r *http.Request, op string, err error)

func failureWriter(log logger.Logger) failFunc {
	return func(w http.ResponseWriter, r *http.Request, op string, err error) {
		var dup *service.DuplicatePlayerError
		if errors.As(err, &dup) {
			writeJSON(w, http.StatusConflict, duplicateResponse{
				Code:            codeDuplicate,
				Message:         dup.Message,
				Reason:          dup.Reason,
				SuggestedAction: dup.SuggestedAction(),
				Existing:        toPlayer(dup.Existing),
			})
			return
		}
		status, code := classify(err)
		if status >= http.StatusInternalServerError {
			log.Error(r.Context(), "request failed",
				logger.String("op", op),
				logger.String("path", r.URL.Path),
				logger.Error(err),
			)
			writeError(w, status, code, NewKind(op, errors.New(http.StatusText(status))))
			return
		}
		writeError(w, status, code, err)
	}
}

// decodeJSON reads a single JSON object from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, op string, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return WrapKind(op, ErrBadRequest, fmt.Errorf("decode body: %w", err))
	}
	return nil
}
