package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/toyrobot"
	"github.com/aretw0/toyrobot/internal/logging"
	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/aretw0/toyrobot/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// DefaultCookie names the cookie holding the session ID.
const DefaultCookie = "toyrobot_session"

// Server exposes a robot per client session over HTTP.
type Server struct {
	engine   *toyrobot.Engine
	sessions *session.Manager
	streams  *StreamManager
	cookie   string
	metrics  http.Handler
	logger   *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithCookieName overrides DefaultCookie.
func WithCookieName(name string) Option {
	return func(s *Server) {
		s.cookie = name
	}
}

// WithMetrics mounts handler at /metrics.
func WithMetrics(handler http.Handler) Option {
	return func(s *Server) {
		s.metrics = handler
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer wires the engine and session manager into a Server.
func NewServer(engine *toyrobot.Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		cookie:   DefaultCookie,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)
	return s
}

// Streams returns the SSE hub fed by robot commands.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

// Routes builds the router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/", s.GetRoot)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/openapi.yaml", s.GetSpec)

	r.Post("/place", s.Place)
	r.Post("/move", s.Move)
	r.Post("/left", s.Left)
	r.Post("/right", s.Right)
	r.Get("/report", s.Report)
	r.Delete("/session", s.DeleteSession)
	r.Get("/events", s.SubscribeEvents)

	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

// NewHandler creates the HTTP handler for the robot API.
func NewHandler(engine *toyrobot.Engine, sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(engine, sessions, opts...).Routes()
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetRoot handles GET /.
func (s *Server) GetRoot(w http.ResponseWriter, r *http.Request) {
	writeMessage(w, http.StatusOK, "Hello from toyrobot")
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if spec, err := GetSwagger(); err == nil && spec.Info != nil {
		apiVersion = spec.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "toyrobot-http",
		"version":     strings.TrimSpace(toyrobot.Version),
		"api_version": apiVersion,
	})
}

// GetSpec handles GET /openapi.yaml.
func (s *Server) GetSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/yaml")
	if _, err := w.Write(RawSpec()); err != nil {
		s.logger.Error("failed to write spec", "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageResponse{Message: msg})
}

// writeError maps domain errors to the API's 400 replies.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, errNoSession),
		errors.Is(err, domain.ErrOutOfBounds),
		errors.Is(err, domain.ErrMalformedState),
		errors.Is(err, domain.ErrUnreadableState),
		errors.Is(err, domain.ErrInvalidDirection):
		writeMessage(w, http.StatusBadRequest, msgBadRequest)
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
		writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
	}
}
