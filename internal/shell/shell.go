// Package shell keeps the per-session application state of the web front end:
// the overlay and the state of each screen.
package shell

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/odyssey-erp/productmaster/internal/overlay"
	"github.com/odyssey-erp/productmaster/internal/shared"
)

// Shell is the application shell of one browser session.
type Shell struct {
	ID      string
	Overlay *overlay.Store

	mu       sync.Mutex
	slots    map[string]any
	lastSeen time.Time
}

// Load returns the value stored under key, creating it with init on first use.
func Load[T any](sh *Shell, key string, init func() T) T {
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if v, ok := sh.slots[key].(T); ok {
		return v
	}
	v := init()
	sh.slots[key] = v
	return v
}

// Registry owns the shells of all live sessions.
type Registry struct {
	mu       sync.Mutex
	shells   map[string]*Shell
	idleTTL  time.Duration
	onChange overlay.Listener
	logger   *slog.Logger
	now      func() time.Time
}

// NewRegistry builds a Registry evicting shells idle for longer than idleTTL.
// onChange, when set, is attached to every shell overlay.
func NewRegistry(idleTTL time.Duration, onChange overlay.Listener, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		shells:   make(map[string]*Shell),
		idleTTL:  idleTTL,
		onChange: onChange,
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the shell for id, creating it when missing.
func (r *Registry) Get(id string) *Shell {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	if sh, ok := r.shells[id]; ok {
		sh.lastSeen = now
		return sh
	}
	sh := &Shell{ID: id, Overlay: overlay.NewStore(), slots: make(map[string]any), lastSeen: now}
	if r.onChange != nil {
		sh.Overlay.OnChange(r.onChange)
	}
	r.shells[id] = sh
	return sh
}

// Len returns the number of live shells.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shells)
}

// Sweep drops shells idle for longer than the configured TTL.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.idleTTL)
	removed := 0
	for id, sh := range r.shells {
		if sh.lastSeen.Before(cutoff) {
			delete(r.shells, id)
			removed++
		}
	}
	return removed
}

// RunSweeper evicts idle shells periodically until ctx is done.
func (r *Registry) RunSweeper(ctx context.Context, every time.Duration) {
	if every <= 0 {
		return
	}
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.logger.Debug("evicted idle shells", slog.Int("count", n))
			}
		}
	}
}

type shellKey struct{}

// WithShell attaches sh and both overlay channels to ctx.
func WithShell(ctx context.Context, sh *Shell) context.Context {
	ctx = context.WithValue(ctx, shellKey{}, sh)
	ctx = overlay.WithControls(ctx, sh.Overlay)
	return overlay.WithContent(ctx, sh.Overlay)
}

// FromContext returns the shell carried by ctx.
func FromContext(ctx context.Context) *Shell {
	sh, _ := ctx.Value(shellKey{}).(*Shell)
	return sh
}

// Middleware resolves the shell of the current session. It must run after the
// session middleware.
func (r *Registry) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		id := shared.SessionIDFromContext(req.Context())
		if id == "" {
			r.logger.Error("shell requested without session", slog.String("path", req.URL.Path))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		sh := r.Get(id)
		next.ServeHTTP(w, req.WithContext(WithShell(req.Context(), sh)))
	})
}
