package ui

import (
	"net/http"

	"github.com/linkpg/linkpg"
	"github.com/linkpg/linkpg/auth"
	"github.com/linkpg/linkpg/ui/api"
	"github.com/linkpg/linkpg/ui/frontend"
	"github.com/linkpg/linkpg/ui/service"
)

// UIHandler returns an http.Handler for the server-rendered frontend.
//
// The handler serves the sign-in page, the bookmark list, the create/delete
// forms, and a Server-Sent Events stream for live updates.
//
// Usage:
//
//	http.Handle("/app/", http.StripPrefix("/app", ui.UIHandler(client, mgr, cfg)))
//	r.Mount("/app", ui.UIHandler(client, mgr, cfg))
func UIHandler[TTx any](client *linkpg.Client[TTx], mgr *auth.Manager, cfg *Config) http.Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg.applyDefaults()
	}

	// Validate configuration (panic on invalid config as this is a programmer error)
	if err := cfg.validate(); err != nil {
		panic("ui: invalid configuration: " + err.Error())
	}

	svc := service.New(client)
	return frontend.NewRouter(svc, mgr, &frontend.Config{
		BasePath:        cfg.BasePath,
		ReadOnly:        cfg.ReadOnly,
		CookieName:      cfg.CookieName,
		CookieSecure:    cfg.CookieSecure,
		RefreshInterval: cfg.RefreshInterval,
		Logger:          cfg.Logger,
	})
}

// APIHandler returns an http.Handler for the JSON REST API.
//
// Every route requires a bearer session token obtained from the frontend
// sign-in flow (or minted directly via auth.Manager).
func APIHandler[TTx any](client *linkpg.Client[TTx], mgr *auth.Manager, cfg *Config) http.Handler {
	if cfg == nil {
		cfg = DefaultConfig()
	} else {
		cfg.applyDefaults()
	}

	if err := cfg.validate(); err != nil {
		panic("ui: invalid configuration: " + err.Error())
	}

	svc := service.New(client)
	return api.NewRouter(svc, mgr, &api.Config{
		ReadOnly: cfg.ReadOnly,
		Logger:   cfg.Logger,
	})
}
