package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/linkpg/linkpg"
	"github.com/linkpg/linkpg/ui/service"
)

// Response wraps all API responses.
type Response struct {
	Data  any       `json:"data,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// APIError represents an API error.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{Data: data})
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(Response{
		Error: &APIError{Code: code, Message: message},
	})
}

func (rt *router[TTx]) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sessionFrom(r.Context()))
}

func (rt *router[TTx]) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	bookmarks, err := rt.svc.ListBookmarks(r.Context(), sess.UserID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

type createBookmarkRequest struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (rt *router[TTx]) handleCreateBookmark(w http.ResponseWriter, r *http.Request) {
	if rt.config.ReadOnly {
		writeError(w, http.StatusForbidden, "read_only", "write operations are disabled")
		return
	}
	sess := sessionFrom(r.Context())

	var req createBookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return
	}

	err := rt.svc.CreateBookmark(r.Context(), sess.UserID, req.Title, req.URL)
	switch {
	case errors.Is(err, service.ErrInvalidURL):
		writeError(w, http.StatusBadRequest, "invalid_url", "url must be http or https")
		return
	case errors.Is(err, linkpg.ErrNotActive):
		writeError(w, http.StatusConflict, "not_active", "session cache is torn down")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	// The cache converges via the change-event stream; no body to return.
	writeJSON(w, http.StatusAccepted, nil)
}

func (rt *router[TTx]) handleDeleteBookmark(w http.ResponseWriter, r *http.Request) {
	if rt.config.ReadOnly {
		writeError(w, http.StatusForbidden, "read_only", "write operations are disabled")
		return
	}
	sess := sessionFrom(r.Context())

	err := rt.svc.DeleteBookmark(r.Context(), sess.UserID, chi.URLParam(r, "id"))
	switch {
	case errors.Is(err, service.ErrInvalidID):
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a UUID")
		return
	case errors.Is(err, linkpg.ErrNotActive):
		writeError(w, http.StatusConflict, "not_active", "session cache is torn down")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, nil)
}

func (rt *router[TTx]) handleSignOut(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r.Context())

	if err := rt.mgr.SignOutSession(r.Context(), sess.ID); err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
		return
	}
	rt.svc.Release(sess.UserID)

	w.WriteHeader(http.StatusNoContent)
}
