// Package api exposes one table and its session over a loopback HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/lox/blackjack-trainer/internal/betting"
	"github.com/lox/blackjack-trainer/internal/game"
	"github.com/lox/blackjack-trainer/internal/history"
	"github.com/lox/blackjack-trainer/internal/session"
)

// Server serialises HTTP requests into a single table. The table itself is
// not safe for concurrent use, so every handler holds mu.
type Server struct {
	mu        sync.Mutex
	table     *game.Table
	tracker   *session.Tracker
	spread    betting.Spread
	maxSpread int
	store     history.Store
	logger    *log.Logger
	startTime time.Time
}

// Option configures a Server
type Option func(*Server)

// WithSpread sets the spread used when a round is started without a bet
func WithSpread(s betting.Spread, maxSpread int) Option {
	return func(srv *Server) {
		srv.spread = s
		srv.maxSpread = maxSpread
	}
}

// WithHistory enables saving and listing session summaries
func WithHistory(store history.Store) Option {
	return func(srv *Server) { srv.store = store }
}

// WithLogger sets the logger. Default discards output.
func WithLogger(logger *log.Logger) Option {
	return func(srv *Server) { srv.logger = logger }
}

// NewServer wraps a table and the tracker registered as its wallet and sink
func NewServer(table *game.Table, tracker *session.Tracker, opts ...Option) *Server {
	s := &Server{
		table:     table,
		tracker:   tracker,
		spread:    betting.DefaultSpread(),
		maxSpread: betting.DefaultMaxSpread,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	s.logger = s.logger.WithPrefix("api")
	return s
}

// Routes sets up the HTTP routes with middleware
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Second))

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/rounds", s.handleStartRound)
		r.Post("/insurance", s.handleInsurance)
		r.Post("/hands/{hand}/actions", s.handleAction)
		r.Get("/hands/{hand}/recommendation", s.handleRecommendation)
		r.Get("/round", s.handleRound)
		r.Get("/count", s.handleCount)
		r.Get("/rules", s.handleRules)
		r.Get("/session", s.handleSession)
		r.Post("/session", s.handleSaveSession)
		r.Get("/history", s.handleHistory)
	})

	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("Request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with proper headers
func (s *Server) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("Failed to encode response", "error", err)
	}
}

// writeError maps engine errors onto HTTP status codes
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, kind := http.StatusInternalServerError, "internal"
	switch {
	case errors.Is(err, errBadRequest):
		status, kind = http.StatusBadRequest, "bad_request"
	case errors.Is(err, game.ErrIllegalAction):
		status, kind = http.StatusConflict, "illegal_action"
	case errors.Is(err, game.ErrInsufficientBankroll):
		status, kind = http.StatusPaymentRequired, "insufficient_bankroll"
	case errors.Is(err, game.ErrShoeExhausted):
		status, kind = http.StatusInternalServerError, "shoe_exhausted"
	case errors.Is(err, history.ErrNotFound):
		status, kind = http.StatusNotFound, "not_found"
	}
	if status >= 500 {
		s.logger.Error("Request failed", "path", r.URL.Path, "error", err)
	}
	s.writeJSON(w, status, ErrorResponse{
		Error:     kind,
		Message:   err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	})
}
