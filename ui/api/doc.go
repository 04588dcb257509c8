// Package api provides the JSON REST API for linkpg.
//
// All routes require a bearer session token:
//
//	Authorization: Bearer <token>
//
// Tokens are minted by the auth.Manager during the OAuth callback and
// returned to API clients by the frontend sign-in flow.
//
// # Endpoints
//
//	GET    /session         - current session
//	GET    /bookmarks       - cached bookmark list, newest first
//	POST   /bookmarks       - create a bookmark {"title": ..., "url": ...}
//	DELETE /bookmarks/{id}  - delete a bookmark
//	POST   /sign-out        - revoke the session and tear down its cache
//
// Writes return 202 Accepted: the list is not patched in place, it converges
// through the change-event stream and a subsequent GET observes the result.
package api
