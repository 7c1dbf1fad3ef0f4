package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aretw0/storyloom"
	"github.com/aretw0/storyloom/internal/logging"
	"github.com/aretw0/storyloom/pkg/domain"
	"github.com/aretw0/storyloom/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SlotStore manages save slots shared by every session.
type SlotStore interface {
	ListSlots(ctx context.Context) ([]domain.Slot, error)
	RenameSlot(ctx context.Context, id, name string) error
	DeleteSlot(ctx context.Context, id string) error
	CopySlot(ctx context.Context, id, name string) (string, error)
}

// Watcher emits the ids of changed scenes.
type Watcher interface {
	Watch(ctx context.Context) (<-chan string, error)
}

// Server serves a story over HTTP.
type Server struct {
	Story    *domain.AuthoringGraph
	Sessions *session.Manager
	Slots    SlotStore
	Streams  *StreamManager

	watcher Watcher
	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request and error logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsHandler mounts h on GET /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithWatcher enables GET /events, streaming scene changes.
func WithWatcher(w Watcher) Option {
	return func(s *Server) {
		s.watcher = w
	}
}

// NewServer creates a server for a story, its sessions and its slots.
func NewServer(story *domain.AuthoringGraph, sessions *session.Manager, slots SlotStore, opts ...Option) *Server {
	s := &Server{
		Story:    story,
		Sessions: sessions,
		Slots:    slots,
		Streams:  NewStreamManager(),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger
	return s
}

// NewHandler creates a new HTTP handler for the story.
func NewHandler(story *domain.AuthoringGraph, sessions *session.Manager, slots SlotStore, opts ...Option) http.Handler {
	return NewServer(story, sessions, slots, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	if s.watcher != nil {
		r.Get("/events", s.SubscribeScenes)
	}

	r.Route("/story", func(r chi.Router) {
		r.Get("/", s.GetStory)
		r.Get("/analysis", s.GetAnalysis)
		r.Get("/mermaid", s.GetMermaid)
	})

	r.Route("/sessions/{id}", func(r chi.Router) {
		r.Post("/", s.OpenSession)
		r.Get("/", s.GetSession)
		r.Delete("/", s.DeleteSession)
		r.Get("/events", s.SubscribeSession)
		r.Post("/choose", s.Choose)
		r.Post("/back", s.navigate((*storyloom.Game).Back))
		r.Post("/forward", s.navigate((*storyloom.Game).Forward))
		r.Post("/reset", s.navigate((*storyloom.Game).Reset))
		r.Post("/load/{slot}", s.LoadSlot)
	})

	r.Route("/slots", func(r chi.Router) {
		r.Get("/", s.ListSlots)
		r.Post("/", s.CreateSlot)
		r.Get("/{slot}", s.GetSlot)
		r.Patch("/{slot}", s.RenameSlot)
		r.Delete("/{slot}", s.DeleteSlot)
		r.Post("/{slot}/copy", s.CopySlot)
	})

	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"app":     "storyloom-http",
		"version": strings.TrimSpace(storyloom.Version),
		"story":   s.Story.Meta.Title,
		"nodes":   len(s.Story.Nodes),
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	s.writeJSON(w, status, errorResponse{Error: err.Error()})
}

// errBadRequest marks malformed request bodies.
var errBadRequest = errors.New("bad request")

func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, session.ErrInvalidSessionID):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSlotNotFound), errors.Is(err, errSessionNotOpen):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrChoiceUnavailable),
		errors.Is(err, domain.ErrUnknownNode),
		errors.Is(err, domain.ErrNoHistory),
		errors.Is(err, domain.ErrNoForward),
		errors.Is(err, domain.ErrStaleHistory):
		return http.StatusConflict
	case errors.Is(err, domain.ErrPersistence):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(errBadRequest, err)
	}
	return nil
}
