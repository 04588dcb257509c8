package frontend

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linkpg/linkpg/auth"
	"github.com/linkpg/linkpg/ui/service"
)

//go:embed templates/*
var templatesFS embed.FS

//go:embed static/*
var staticFS embed.FS

// Config holds frontend router configuration.
type Config struct {
	// BasePath is the URL prefix where the UI is mounted.
	// All navigation links will be prefixed with this path.
	BasePath string

	// ReadOnly disables write operations (create, delete).
	ReadOnly bool

	// CookieName is the name of the session cookie.
	CookieName string

	// CookieSecure marks the session cookie as Secure.
	CookieSecure bool

	// RefreshInterval is the SSE heartbeat interval.
	RefreshInterval time.Duration

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

// router holds the frontend router state.
type router[TTx any] struct {
	svc      *service.Service[TTx]
	mgr      *auth.Manager
	config   *Config
	renderer *renderer
}

// NewRouter creates a new frontend router.
func NewRouter[TTx any](svc *service.Service[TTx], mgr *auth.Manager, cfg *Config) http.Handler {
	if cfg == nil {
		cfg = &Config{
			CookieName:      "linkpg_session",
			RefreshInterval: 15 * time.Second,
		}
	}

	// Parse base templates (layout and shared fragments). Page templates
	// are parsed per request by the renderer so that "content" blocks in
	// different pages do not collide.
	baseTmpl := template.Must(template.New("").
		Funcs(templateFuncs()).
		ParseFS(templatesFS,
			"templates/base.html",
			"templates/fragments/bookmark-list.html",
		))

	rt := &router[TTx]{
		svc:      svc,
		mgr:      mgr,
		config:   cfg,
		renderer: newRenderer(baseTmpl, templatesFS, cfg),
	}

	r := chi.NewRouter()
	r.Use(rt.recoveryMiddleware)

	// Static assets
	staticSub, _ := fs.Sub(staticFS, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))

	// Auth flow
	r.Get("/auth/sign-in", rt.handleSignIn)
	r.Get("/auth/callback", rt.handleCallback)
	r.Post("/auth/sign-out", rt.handleSignOut)

	// Pages and actions
	r.Get("/", rt.handleIndex)
	r.Post("/bookmarks", rt.handleCreateBookmark)
	r.Post("/bookmarks/{id}/delete", rt.handleDeleteBookmark)

	// Live updates
	r.Get("/events", rt.handleEvents)
	r.Get("/fragments/bookmarks", rt.handleFragmentBookmarks)

	return r
}

// recoveryMiddleware recovers from panics.
func (rt *router[TTx]) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				if rt.config.Logger != nil {
					rt.config.Logger.Error("panic recovered", "error", err, "path", r.URL.Path)
				}
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatTime":    formatTime,
		"formatTimeAgo": formatTimeAgo,
		"truncate":      truncate,
		"hostOf":        hostOf,
	}
}
