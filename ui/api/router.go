package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/linkpg/linkpg/auth"
	"github.com/linkpg/linkpg/ui/service"
)

// Config holds API router configuration.
type Config struct {
	// ReadOnly disables write operations.
	ReadOnly bool

	// Logger for structured logging.
	Logger Logger
}

// Logger interface for structured logging.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// router holds the API router state.
type router[TTx any] struct {
	svc    *service.Service[TTx]
	mgr    *auth.Manager
	config *Config
}

// NewRouter creates a new API router.
func NewRouter[TTx any](svc *service.Service[TTx], mgr *auth.Manager, cfg *Config) http.Handler {
	if cfg == nil {
		cfg = &Config{}
	}

	rt := &router[TTx]{
		svc:    svc,
		mgr:    mgr,
		config: cfg,
	}

	r := chi.NewRouter()
	r.Use(jsonMiddleware)
	r.Use(rt.recoveryMiddleware)
	r.Use(rt.authMiddleware)

	r.Get("/session", rt.handleSession)
	r.Get("/bookmarks", rt.handleListBookmarks)
	r.Post("/bookmarks", rt.handleCreateBookmark)
	r.Delete("/bookmarks/{id}", rt.handleDeleteBookmark)
	r.Post("/sign-out", rt.handleSignOut)

	return r
}

type contextKey string

const sessionContextKey contextKey = "session"

// sessionFrom returns the authenticated session stored by authMiddleware.
func sessionFrom(ctx context.Context) *auth.Session {
	sess, _ := ctx.Value(sessionContextKey).(*auth.Session)
	return sess
}

// authMiddleware resolves the bearer token to a session and rejects
// requests without one.
func (rt *router[TTx]) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "unauthorized", "missing bearer token")
			return
		}

		sess, err := rt.mgr.SessionFromToken(r.Context(), token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired session")
			return
		}

		ctx := context.WithValue(r.Context(), sessionContextKey, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// jsonMiddleware sets JSON content type for all responses.
func jsonMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	})
}

// recoveryMiddleware recovers from panics and returns 500.
func (rt *router[TTx]) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if rt.config.Logger != nil {
					rt.config.Logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				}
				http.Error(w, `{"error":{"code":"internal_error","message":"internal server error"}}`, http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
