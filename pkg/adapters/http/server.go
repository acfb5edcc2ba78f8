// Package http exposes the assistant over a small REST API and a websocket
// endpoint.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/unifecaf/triagebot"
	"github.com/unifecaf/triagebot/internal/logging"
	"github.com/unifecaf/triagebot/pkg/domain"
)

// DefaultMaxBodyBytes bounds request bodies and websocket frames.
const DefaultMaxBodyBytes = 64 << 10

// Assistant is the part of triagebot.Assistant the transport needs.
type Assistant interface {
	Handle(ctx context.Context, userID, text string) (*triagebot.Reply, error)
	Restart(ctx context.Context, userID string) (*triagebot.Reply, error)
	QueryCourses(ctx context.Context, filter domain.CourseFilter) (string, error)
}

// Server routes HTTP requests to an Assistant.
type Server struct {
	Assistant Assistant

	metrics  http.Handler
	logger   *slog.Logger
	maxBody  int64
	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithMaxBodyBytes bounds request bodies and websocket frames.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBody = n
		}
	}
}

// NewHandler creates the HTTP handler for a.
func NewHandler(a Assistant, opts ...Option) http.Handler {
	s := &Server{
		Assistant: a,
		logger:    logging.NewNop(),
		maxBody:   DefaultMaxBodyBytes,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/messages", s.PostMessage)
		r.Post("/sessions/{userID}/restart", s.RestartSession)
		r.Get("/courses", s.GetCourses)
	})
	r.Get("/ws/{userID}", s.ServeWebSocket)
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// MessageRequest is the body of POST /v1/messages.
type MessageRequest struct {
	UserID string `json:"user_id"`
	Text   string `json:"text"`
}

// CoursesResponse is the body returned by GET /v1/courses.
type CoursesResponse struct {
	Text string `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// PostMessage handles POST /v1/messages.
func (s *Server) PostMessage(w http.ResponseWriter, r *http.Request) {
	var body MessageRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, s.maxBody)).Decode(&body); err != nil {
		s.logger.Warn("PostMessage: invalid request body", "err", err)
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	reply, err := s.Assistant.Handle(r.Context(), strings.TrimSpace(body.UserID), body.Text)
	if err != nil {
		s.fail(w, "PostMessage", err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// RestartSession handles POST /v1/sessions/{userID}/restart.
func (s *Server) RestartSession(w http.ResponseWriter, r *http.Request) {
	reply, err := s.Assistant.Restart(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		s.fail(w, "RestartSession", err)
		return
	}
	writeJSON(w, http.StatusOK, reply)
}

// GetCourses handles GET /v1/courses.
func (s *Server) GetCourses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	text, err := s.Assistant.QueryCourses(r.Context(), domain.CourseFilter{
		Course:     q.Get("course"),
		Semester:   q.Get("semester"),
		Discipline: q.Get("discipline"),
	})
	if err != nil {
		s.fail(w, "GetCourses", err)
		return
	}
	writeJSON(w, http.StatusOK, CoursesResponse{Text: text})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"app":     "triagebot-http",
		"version": strings.TrimSpace(triagebot.Version),
	})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, triagebot.ErrEmptyUserID) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error(op+" failed", "err", err)
	writeError(w, http.StatusInternalServerError, "internal error")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
