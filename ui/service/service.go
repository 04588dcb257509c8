package service

import (
	"context"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/linkpg/linkpg"
)

// Service provides UI operations on top of a linkpg client.
// The TTx type parameter represents the native transaction type
// from the driver (e.g., pgx.Tx or *sql.Tx).
type Service[TTx any] struct {
	client *linkpg.Client[TTx]
	policy *bluemonday.Policy

	// baseCtx outlives any single request. Synchronizers are shared across
	// requests, so they must be activated with a context that does not die
	// when the activating request finishes.
	baseCtx context.Context
	cancel  context.CancelFunc

	mu    sync.Mutex
	syncs map[string]*linkpg.Synchronizer
}

// New creates a new Service with the given client.
func New[TTx any](client *linkpg.Client[TTx]) *Service[TTx] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Service[TTx]{
		client:  client,
		policy:  bluemonday.StrictPolicy(),
		baseCtx: ctx,
		cancel:  cancel,
		syncs:   make(map[string]*linkpg.Synchronizer),
	}
}

// Client returns the underlying client.
// This is useful for advanced operations not covered by the service.
func (s *Service[TTx]) Client() *linkpg.Client[TTx] {
	return s.client
}

// SyncFor returns the synchronizer for the given identity, activating one on
// first use. Callers for the same identity share a single synchronizer and
// therefore a single cache.
//
// Activation is bound to the service lifetime, never to a request context:
// the synchronizer must keep refetching long after the request that first
// touched the identity has finished.
func (s *Service[TTx]) SyncFor(identity string) (*linkpg.Synchronizer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sync, ok := s.syncs[identity]; ok {
		return sync, nil
	}

	// Activate does not block on the initial fetch, so holding the lock
	// across it keeps concurrent callers from racing on the same identity.
	sync := s.client.NewSynchronizer(nil)
	if err := sync.Activate(s.baseCtx, identity); err != nil {
		return nil, err
	}
	s.syncs[identity] = sync
	return sync, nil
}

// Release tears down the synchronizer for the given identity, if any.
// Called on sign-out. Safe to call for identities that were never activated.
func (s *Service[TTx]) Release(identity string) {
	s.mu.Lock()
	sync, ok := s.syncs[identity]
	delete(s.syncs, identity)
	s.mu.Unlock()

	if ok {
		sync.Deactivate()
	}
}

// Close releases all synchronizers. Called on server shutdown.
func (s *Service[TTx]) Close() {
	s.cancel()

	s.mu.Lock()
	syncs := make([]*linkpg.Synchronizer, 0, len(s.syncs))
	for _, sync := range s.syncs {
		syncs = append(syncs, sync)
	}
	s.syncs = make(map[string]*linkpg.Synchronizer)
	s.mu.Unlock()

	for _, sync := range syncs {
		sync.Deactivate()
	}
}
