// Package auth provides session management over external OAuth2 identity
// providers.
//
// The package tracks the current authenticated identity and propagates
// transitions to dependents. Sign-in is redirect-based: SignInURL starts
// the handshake, HandleCallback completes it, and completion is observed
// through the change listener rather than a synchronous return value.
//
// Sessions are persisted in a SessionStore (Redis or in-memory) and
// carried as signed tokens (HS256 JWT) suitable for cookies. Absence of
// a session is a normal result everywhere, never an error.
//
//	mgr, _ := auth.NewManager(&auth.ManagerConfig{
//	    Providers: []auth.Provider{google},
//	    Store:     auth.NewRedisStore(rdb),
//	    Tokens:    auth.NewTokenProvider(secret, "linkpg", 24*time.Hour),
//	})
//
//	unsub := mgr.OnAuthStateChange(func(event auth.EventType, s *auth.Session) {
//	    // signed-in, signed-out, token-refreshed
//	})
//	defer unsub()
package auth
