package frontend

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/linkpg/linkpg/auth"
	"github.com/linkpg/linkpg/storage"
	"github.com/linkpg/linkpg/ui/service"
)

// sessionFromRequest resolves the session cookie, if any.
// A missing or invalid cookie means signed out, not an error.
func (rt *router[TTx]) sessionFromRequest(r *http.Request) *auth.Session {
	cookie, err := r.Cookie(rt.config.CookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	sess, err := rt.mgr.SessionFromToken(r.Context(), cookie.Value)
	if err != nil {
		return nil
	}
	return sess
}

// redirect issues a SeeOther redirect relative to the mount point.
func (rt *router[TTx]) redirect(w http.ResponseWriter, r *http.Request, path string) {
	http.Redirect(w, r, rt.config.BasePath+path, http.StatusSeeOther)
}

// logError logs an error if the logger is configured.
func (rt *router[TTx]) logError(msg string, err error) {
	if rt.config.Logger != nil {
		rt.config.Logger.Warn(msg, "error", err.Error())
	}
}

// flashFromQuery maps the flash query parameter to a message.
func flashFromQuery(r *http.Request) *FlashMessage {
	switch r.URL.Query().Get("flash") {
	case "invalid_url":
		return &FlashMessage{Type: "error", Message: "Only http and https links can be saved."}
	case "auth_failed":
		return &FlashMessage{Type: "error", Message: "Sign-in failed. Please try again."}
	case "write_failed":
		return &FlashMessage{Type: "error", Message: "The change could not be saved. Your list shows the last known state."}
	case "signed_out":
		return &FlashMessage{Type: "info", Message: "You have been signed out."}
	default:
		return nil
	}
}

// Page handlers

func (rt *router[TTx]) handleIndex(w http.ResponseWriter, r *http.Request) {
	sess := rt.sessionFromRequest(r)
	if sess == nil {
		data := map[string]any{
			"Providers": rt.mgr.Providers(),
		}
		if err := rt.renderer.render(w, r, "login.html", "Sign in", "", flashFromQuery(r), data); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
		return
	}

	bookmarks, err := rt.svc.ListBookmarks(r.Context(), sess.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Bookmarks": bookmarks,
		"BasePath":  rt.config.BasePath,
		"ReadOnly":  rt.config.ReadOnly,
	}
	if err := rt.renderer.render(w, r, "index.html", "Bookmarks", sess.Email, flashFromQuery(r), data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// Auth handlers

func (rt *router[TTx]) handleSignIn(w http.ResponseWriter, r *http.Request) {
	provider := r.URL.Query().Get("provider")
	if provider == "" {
		provider = "google"
	}

	url, err := rt.mgr.SignInURL(r.Context(), provider)
	if err != nil {
		rt.logError("sign-in failed", err)
		rt.redirect(w, r, "/?flash=auth_failed")
		return
	}
	http.Redirect(w, r, url, http.StatusSeeOther)
}

func (rt *router[TTx]) handleCallback(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		rt.logError("callback denied", fmt.Errorf("provider error: %s", errParam))
		rt.redirect(w, r, "/?flash=auth_failed")
		return
	}

	sess, err := rt.mgr.HandleCallback(r.Context(), q.Get("state"), q.Get("code"))
	if err != nil {
		rt.logError("callback failed", err)
		rt.redirect(w, r, "/?flash=auth_failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     rt.config.CookieName,
		Value:    sess.Token,
		Path:     rt.config.BasePath + "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		Secure:   rt.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	rt.redirect(w, r, "/")
}

func (rt *router[TTx]) handleSignOut(w http.ResponseWriter, r *http.Request) {
	if sess := rt.sessionFromRequest(r); sess != nil {
		if err := rt.mgr.SignOutSession(r.Context(), sess.ID); err != nil {
			rt.logError("sign-out failed", err)
		}
		rt.svc.Release(sess.UserID)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     rt.config.CookieName,
		Value:    "",
		Path:     rt.config.BasePath + "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   rt.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	rt.redirect(w, r, "/?flash=signed_out")
}

// Bookmark actions

func (rt *router[TTx]) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	sess := rt.sessionFromRequest(r)
	if sess == nil {
		rt.redirect(w, r, "/")
		return
	}
	if rt.config.ReadOnly {
		http.Error(w, "read-only mode", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}

	err := rt.svc.CreateBookmark(r.Context(), sess.UserID, r.PostFormValue("title"), r.PostFormValue("url"))
	if errors.Is(err, service.ErrInvalidURL) {
		rt.redirect(w, r, "/?flash=invalid_url")
		return
	}
	if err != nil {
		rt.logError("create bookmark failed", err)
		rt.redirect(w, r, "/?flash=write_failed")
		return
	}
	rt.redirect(w, r, "/")
}

func (rt *router[TTx]) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	sess := rt.sessionFromRequest(r)
	if sess == nil {
		rt.redirect(w, r, "/")
		return
	}
	if rt.config.ReadOnly {
		http.Error(w, "read-only mode", http.StatusForbidden)
		return
	}

	if err := rt.svc.DeleteBookmark(r.Context(), sess.UserID, chi.URLParam(r, "id")); err != nil {
		rt.logError("delete bookmark failed", err)
		rt.redirect(w, r, "/?flash=write_failed")
		return
	}
	rt.redirect(w, r, "/")
}

// Live update handlers

func (rt *router[TTx]) handleFragmentBookmarks(w http.ResponseWriter, r *http.Request) {
	sess := rt.sessionFromRequest(r)
	if sess == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	bookmarks, err := rt.svc.ListBookmarks(r.Context(), sess.UserID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"Bookmarks": bookmarks,
		"BasePath":  rt.config.BasePath,
		"ReadOnly":  rt.config.ReadOnly,
	}
	if err := rt.renderer.renderFragment(w, "fragments/bookmark-list.html", data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// handleEvents streams "changed" events over SSE whenever the visitor's
// cached list is replaced. The event carries no payload; the browser
// refetches the rendered fragment.
func (rt *router[TTx]) handleEvents(w http.ResponseWriter, r *http.Request) {
	sess := rt.sessionFromRequest(r)
	if sess == nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Coalescing buffer: a burst of refetches collapses into one event.
	changed := make(chan struct{}, 1)
	unsubscribe, err := rt.svc.SubscribeBookmarks(r.Context(), sess.UserID, func([]*storage.Bookmark) {
		select {
		case changed <- struct{}{}:
		default:
		}
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	flusher.Flush()

	heartbeat := time.NewTicker(rt.config.RefreshInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changed:
			if _, err := fmt.Fprint(w, "event: changed\ndata: {}\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
