// Package frontend provides the server-rendered web frontend for linkpg.
//
// Pages are rendered with html/template from embedded templates. Live
// updates use Server-Sent Events: when the signed-in visitor's bookmark
// list changes, the stream emits a "changed" event and the browser
// refetches the rendered list fragment.
//
// The session is carried in an HTTP-only cookie holding the JWT minted by
// auth.Manager during the OAuth callback.
package frontend
