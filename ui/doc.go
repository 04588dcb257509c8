// Package ui provides the embedded web interface for linkpg.
//
// The package exposes two http.Handler constructors:
//   - UIHandler: server-rendered frontend (html/template + SSE live updates)
//   - APIHandler: JSON REST API with bearer-token authentication
//
// # Quick Start
//
//	pool, _ := pgxpool.New(ctx, os.Getenv("DATABASE_URL"))
//	drv := pgxv5.New(pool)
//
//	client, _ := linkpg.NewClient(drv, nil)
//	client.Start(ctx)
//
//	mgr, _ := auth.NewManager(&auth.ManagerConfig{...})
//
//	mux := http.NewServeMux()
//	mux.Handle("/", ui.UIHandler(client, mgr, nil))
//	mux.Handle("/api/", http.StripPrefix("/api", ui.APIHandler(client, mgr, nil)))
//
//	http.ListenAndServe(":8080", mux)
//
// # Framework Integration
//
// Both handlers return standard http.Handler, compatible with any Go framework:
//
//	// Standard library
//	http.Handle("/app/", http.StripPrefix("/app", ui.UIHandler(client, mgr, cfg)))
//
//	// Chi
//	r.Mount("/app", ui.UIHandler(client, mgr, cfg))
//
// # Live Updates
//
// The frontend opens a Server-Sent Events stream per signed-in visitor. When
// the bookmark list changes, a "changed" event is pushed and the browser
// refetches the rendered list fragment. The event only signals that something
// changed; the fragment is always rendered from the synchronizer's cache.
package ui
