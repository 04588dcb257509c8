// Package hooks provides observation points for synchronizer activity.
//
// Hooks are pure observers: they cannot veto or alter the operation they
// observe, and they run synchronously on the synchronizer's loop, so they
// should be quick.
package hooks

import "sync"

// FetchStartHook is called when a fetch begins.
type FetchStartHook func(identity string, seq uint64)

// FetchDoneHook is called when a fetch completes.
// count is the number of rows returned; err is non-nil on failure.
type FetchDoneHook func(identity string, seq uint64, count int, err error)

// StateChangeHook is called on every synchronizer state transition.
type StateChangeHook func(identity, from, to string)

// Registry holds all registered hooks.
type Registry struct {
	mu          sync.RWMutex
	fetchStart  []FetchStartHook
	fetchDone   []FetchDoneHook
	stateChange []StateChangeHook
}

// NewRegistry creates a new hook registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// OnFetchStart registers a hook to be called when a fetch begins.
func (r *Registry) OnFetchStart(hook FetchStartHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchStart = append(r.fetchStart, hook)
}

// OnFetchDone registers a hook to be called when a fetch completes.
func (r *Registry) OnFetchDone(hook FetchDoneHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.fetchDone = append(r.fetchDone, hook)
}

// OnStateChange registers a hook to be called on state transitions.
func (r *Registry) OnStateChange(hook StateChangeHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stateChange = append(r.stateChange, hook)
}

// TriggerFetchStart calls all registered fetch-start hooks.
func (r *Registry) TriggerFetchStart(identity string, seq uint64) {
	r.mu.RLock()
	hooks := make([]FetchStartHook, len(r.fetchStart))
	copy(hooks, r.fetchStart)
	r.mu.RUnlock()

	for _, hook := range hooks {
		hook(identity, seq)
	}
}

// TriggerFetchDone calls all registered fetch-done hooks.
func (r *Registry) TriggerFetchDone(identity string, seq uint64, count int, err error) {
	r.mu.RLock()
	hooks := make([]FetchDoneHook, len(r.fetchDone))
	copy(hooks, r.fetchDone)
	r.mu.RUnlock()

	for _, hook := range hooks {
		hook(identity, seq, count, err)
	}
}

// TriggerStateChange calls all registered state-change hooks.
func (r *Registry) TriggerStateChange(identity, from, to string) {
	r.mu.RLock()
	hooks := make([]StateChangeHook, len(r.stateChange))
	copy(hooks, r.stateChange)
	r.mu.RUnlock()

	for _, hook := range hooks {
		hook(identity, from, to)
	}
}
