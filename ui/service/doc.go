// Package service provides the shared business logic for the linkpg web UI.
//
// The service layer is HTTP-agnostic and used by both the REST API and the
// SSR frontend handlers. This ensures consistency and avoids duplication.
//
// # Design
//
// The service keeps one Synchronizer per signed-in identity, activated on
// first use and torn down on sign-out. Handlers never touch the store
// directly: reads come from the synchronizer's cache, writes go through the
// synchronizer so the cache converges via change events.
//
// User-supplied titles are sanitized with bluemonday's strict policy before
// they reach storage.
package service
