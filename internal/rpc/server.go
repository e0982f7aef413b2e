package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/productmaster/internal/platform/httpx"
)

// HandlerFunc serves one operation. raw holds the undecoded request object.
type HandlerFunc func(ctx context.Context, raw json.RawMessage) (any, error)

// Server dispatches POST /rpc/{operation} to registered handlers.
type Server struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
	logger   *slog.Logger
}

// NewServer builds an empty operation registry.
func NewServer(logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{handlers: make(map[string]HandlerFunc), logger: logger}
}

// Handle registers fn under op, replacing any previous handler.
func (s *Server) Handle(op string, fn HandlerFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers[op] = fn
}

// Operations lists the registered operation names.
func (s *Server) Operations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ops := make([]string, 0, len(s.handlers))
	for op := range s.handlers {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}

// MountRoutes attaches the dispatcher.
func (s *Server) MountRoutes(r chi.Router) {
	r.Post("/rpc/{operation}", s.dispatch)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	op := chi.URLParam(r, "operation")
	s.mu.RLock()
	fn, ok := s.handlers[op]
	s.mu.RUnlock()
	if !ok {
		httpx.RespondError(w, fmt.Errorf("operation %q: %w", op, httpx.ErrNotFound))
		return
	}

	var env envelope
	if err := httpx.DecodeJSON(r, &env); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode envelope: %w", httpx.ErrBadRequest))
		return
	}
	if len(env.Request) == 0 {
		env.Request = json.RawMessage("{}")
	}

	result, err := fn(r.Context(), env.Request)
	if err != nil {
		status, _ := httpx.StatusFor(err)
		if status >= http.StatusInternalServerError {
			s.logger.Error("rpc operation failed", slog.String("op", op), slog.Any("error", err))
		} else {
			s.logger.Info("rpc operation rejected", slog.String("op", op), slog.Any("error", err))
		}
		httpx.RespondError(w, err)
		return
	}
	if result == nil {
		result = struct{}{}
	}
	httpx.JSON(w, http.StatusOK, result)
}

// Decode unmarshals raw into a fresh T, reporting malformed input as a bad request.
func Decode[T any](raw json.RawMessage) (T, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("decode request: %v: %w", err, httpx.ErrBadRequest)
	}
	return v, nil
}
