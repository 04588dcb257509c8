package linkpg

import (
	"context"
	"sync"
	"time"

	"github.com/linkpg/linkpg/hooks"
	"github.com/linkpg/linkpg/notifier"
	"github.com/linkpg/linkpg/storage"
)

// State represents the lifecycle state of a Synchronizer.
type State int

// Synchronizer states.
const (
	// StateInactive means no identity is bound and no subscription is held.
	StateInactive State = iota

	// StateInitializing means an identity was just bound and the initial
	// fetch is in flight.
	StateInitializing

	// StateActive means the subscription is live and the cache reflects
	// the last completed fetch.
	StateActive

	// StateRefreshing means a change event arrived and a new fetch is in
	// flight; the cache still shows the previous snapshot until the fetch
	// resolves.
	StateRefreshing

	// StateTornDown means the identity went away; the subscription is
	// closed and the cache discarded. Activate resets the machine.
	StateTornDown
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateInactive:
		return "inactive"
	case StateInitializing:
		return "initializing"
	case StateActive:
		return "active"
	case StateRefreshing:
		return "refreshing"
	case StateTornDown:
		return "torn_down"
	default:
		return "unknown"
	}
}

// SyncConfig holds configuration for a Synchronizer.
type SyncConfig struct {
	// FetchTimeout bounds each list query. Default: 10 seconds.
	FetchTimeout time.Duration

	// OnError is called with *FetchError or *WriteError when a background
	// operation fails. Fetch failures retain the previous cache.
	OnError func(err error)

	// Hooks receives fetch and state-transition observations.
	Hooks *hooks.Registry
}

// DefaultSyncConfig returns the default synchronizer configuration.
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		FetchTimeout: 10 * time.Second,
	}
}

// Synchronizer keeps a local list of bookmarks consistent with the remote
// table scoped to one identity, and issues write commands.
//
// The cache is rebuilt wholesale on every sync event, never patched. All
// refetches run on a single loop per activation; change notices arriving
// while a fetch is in flight coalesce into exactly one more fetch after
// the in-flight one settles. Every fetch carries a sequence number and a
// completed fetch only replaces the cache if no newer fetch has been
// applied, so an old, slow response can never overwrite a newer one, and
// a response resolving after teardown can never resurrect the cache.
type Synchronizer struct {
	store  storage.Store
	notif  *notifier.Notifier
	config *SyncConfig

	mu          sync.Mutex
	state       State
	identity    string
	cache       []*storage.Bookmark
	unsubscribe func()
	cancelRun   context.CancelFunc
	runDone     chan struct{}
	notices     chan struct{}
	generation  uint64
	fetchSeq    uint64
	lastApplied uint64

	listeners      map[int64]func([]*storage.Bookmark)
	nextListenerID int64
}

// NewSynchronizer creates a synchronizer over the given store.
// notif may be nil, in which case change events must be delivered manually
// via Invalidate (useful for tests and custom transports).
func NewSynchronizer(store storage.Store, notif *notifier.Notifier, config *SyncConfig) *Synchronizer {
	if config == nil {
		config = DefaultSyncConfig()
	}
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = 10 * time.Second
	}

	return &Synchronizer{
		store:     store,
		notif:     notif,
		config:    config,
		state:     StateInactive,
		listeners: make(map[int64]func([]*storage.Bookmark)),
	}
}

// Activate binds the synchronizer to an identity, performs the initial
// fetch, and opens the change subscription. The synchronizer stays live
// until Deactivate is called or ctx is cancelled.
//
// Activate is re-entrant-safe: calling it again with the same identity is
// a no-op and does not leak a second subscription. Calling it with a
// different identity tears the old activation down first.
func (s *Synchronizer) Activate(ctx context.Context, identity string) error {
	if identity == "" {
		return ErrNoIdentity
	}

	s.mu.Lock()
	if s.state != StateInactive && s.state != StateTornDown {
		if s.identity == identity {
			s.mu.Unlock()
			return nil
		}
		s.mu.Unlock()
		s.Deactivate()
		s.mu.Lock()
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.generation++
	gen := s.generation
	s.identity = identity
	s.cache = nil
	s.cancelRun = cancel
	s.runDone = make(chan struct{})
	s.notices = make(chan struct{}, 1)
	change := s.setStateLocked(StateInitializing)

	// The ordering of first-fetch vs subscribe is deliberately not relied
	// upon: an event landing mid-initial-fetch parks a notice that forces
	// one more fetch after the first one settles.
	if s.notif != nil {
		s.unsubscribe = s.notif.Subscribe(notifier.EventBookmarksChanged, func(*notifier.Event) {
			s.Invalidate()
		})
	}
	notices := s.notices
	done := s.runDone
	s.mu.Unlock()

	s.fireStateChange(change)
	go s.run(runCtx, gen, identity, notices, done)
	return nil
}

// Deactivate closes the subscription and clears the cache. It is
// idempotent and blocks until the refetch loop has exited, so no callback
// fires after it returns. A fetch still in flight is cancelled and its
// result discarded.
func (s *Synchronizer) Deactivate() {
	s.mu.Lock()
	if s.state == StateInactive || s.state == StateTornDown {
		s.mu.Unlock()
		return
	}

	unsub := s.unsubscribe
	s.unsubscribe = nil
	cancel := s.cancelRun
	s.cancelRun = nil
	done := s.runDone
	s.runDone = nil
	s.notices = nil
	// In-flight fetches now belong to a dead generation and cannot apply.
	s.generation++
	s.cache = nil
	change := s.setStateLocked(StateTornDown)
	s.identity = ""
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
	s.fireStateChange(change)
}

// Invalidate schedules a full refetch. Multiple calls while a fetch is in
// flight coalesce into a single follow-up fetch. Calling Invalidate on an
// inactive synchronizer is a no-op.
func (s *Synchronizer) Invalidate() {
	s.mu.Lock()
	notices := s.notices
	s.mu.Unlock()

	if notices == nil {
		return
	}
	select {
	case notices <- struct{}{}:
	default:
	}
}

// Create inserts a bookmark owned by the bound identity. If either title
// or url is empty, no remote call is made and no error is raised. The
// cache is not updated here; the new row arrives via the change
// subscription.
func (s *Synchronizer) Create(ctx context.Context, title, url string) error {
	// Presence check only; URL well-formedness is not validated.
	if title == "" || url == "" {
		return nil
	}

	s.mu.Lock()
	identity := s.identity
	active := s.state == StateInitializing || s.state == StateActive || s.state == StateRefreshing
	s.mu.Unlock()

	if !active {
		return ErrNotActive
	}

	if _, err := s.store.CreateBookmark(ctx, title, url, identity); err != nil {
		werr := &WriteError{Op: "create", Err: err}
		s.reportError(werr)
		return werr
	}
	return nil
}

// Delete removes the bookmark with the given ID. No ownership check is
// performed here; the store's access policy is the sole enforcement
// point. The cache is not updated here; the removal arrives via the
// change subscription.
func (s *Synchronizer) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	active := s.state == StateInitializing || s.state == StateActive || s.state == StateRefreshing
	s.mu.Unlock()

	if !active {
		return ErrNotActive
	}

	if err := s.store.DeleteBookmark(ctx, id); err != nil {
		werr := &WriteError{Op: "delete", Err: err}
		s.reportError(werr)
		return werr
	}
	return nil
}

// Bookmarks returns a snapshot of the cached list, newest first. The
// returned slice is a copy; callers must treat the elements as read-only.
func (s *Synchronizer) Bookmarks() []*storage.Bookmark {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the current lifecycle state.
func (s *Synchronizer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Identity returns the bound identity, or "" when inactive.
func (s *Synchronizer) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// OnChange registers a listener invoked with a fresh snapshot every time
// the cache is replaced. Returns an unsubscribe function. Listeners run
// on the refetch loop and should be quick.
func (s *Synchronizer) OnChange(fn func(bookmarks []*storage.Bookmark)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextListenerID
	s.nextListenerID++
	s.listeners[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// run is the refetch loop for one activation. It performs the initial
// fetch, then one full refetch per coalesced change notice.
func (s *Synchronizer) run(ctx context.Context, gen uint64, identity string, notices chan struct{}, done chan struct{}) {
	defer close(done)
	defer s.teardownFromRun(gen)

	s.fetch(ctx, gen, identity)
	s.transition(gen, StateInitializing, StateActive)

	for {
		select {
		case <-ctx.Done():
			return
		case <-notices:
			s.transition(gen, StateActive, StateRefreshing)
			s.fetch(ctx, gen, identity)
			s.transition(gen, StateRefreshing, StateActive)
		}
	}
}

// teardownFromRun releases the activation when the run loop exits because
// its parent context was cancelled from the outside. Without this, a
// cancelled context would leave a synchronizer that still reports Active
// but whose notices nobody consumes. When Deactivate drove the exit it has
// already bumped the generation and this is a no-op.
func (s *Synchronizer) teardownFromRun(gen uint64) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	unsub := s.unsubscribe
	s.unsubscribe = nil
	s.cancelRun = nil
	s.runDone = nil
	s.notices = nil
	s.generation++
	s.cache = nil
	change := s.setStateLocked(StateTornDown)
	s.identity = ""
	s.mu.Unlock()

	if unsub != nil {
		unsub()
	}
	s.fireStateChange(change)
}

// fetch performs one full list query and applies the result in completion
// order: only the highest-sequence response seen so far may replace the
// cache, and only within the generation it was issued for.
func (s *Synchronizer) fetch(ctx context.Context, gen uint64, identity string) {
	s.mu.Lock()
	if s.generation != gen {
		s.mu.Unlock()
		return
	}
	s.fetchSeq++
	seq := s.fetchSeq
	s.mu.Unlock()

	if s.config.Hooks != nil {
		s.config.Hooks.TriggerFetchStart(identity, seq)
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	bookmarks, err := s.store.ListBookmarks(fetchCtx, identity)

	if s.config.Hooks != nil {
		s.config.Hooks.TriggerFetchDone(identity, seq, len(bookmarks), err)
	}

	if err != nil {
		// Previous cache retained; a failed fetch is not an empty list.
		if ctx.Err() == nil {
			s.reportError(&FetchError{Err: err})
		}
		return
	}

	s.mu.Lock()
	if s.generation != gen || seq <= s.lastApplied {
		// Torn down, or a newer fetch already applied.
		s.mu.Unlock()
		return
	}
	s.lastApplied = seq
	s.cache = bookmarks
	snapshot := s.snapshotLocked()
	listeners := make([]func([]*storage.Bookmark), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snapshot)
	}
}

// transition moves from one expected state to another, skipping silently
// if the activation has been torn down in the meantime.
func (s *Synchronizer) transition(gen uint64, from, to State) {
	s.mu.Lock()
	if s.generation != gen || s.state != from {
		s.mu.Unlock()
		return
	}
	change := s.setStateLocked(to)
	s.mu.Unlock()
	s.fireStateChange(change)
}

// stateChange records one transition for hook delivery after unlock.
type stateChange struct {
	identity string
	from, to State
}

// setStateLocked updates the state and returns the transition record.
// Caller must hold s.mu and fire the change after unlocking, so hooks
// never run under the lock.
func (s *Synchronizer) setStateLocked(to State) stateChange {
	from := s.state
	s.state = to
	return stateChange{identity: s.identity, from: from, to: to}
}

func (s *Synchronizer) fireStateChange(change stateChange) {
	if s.config.Hooks != nil {
		s.config.Hooks.TriggerStateChange(change.identity, change.from.String(), change.to.String())
	}
}

// snapshotLocked copies the cache slice. Caller must hold s.mu.
func (s *Synchronizer) snapshotLocked() []*storage.Bookmark {
	if s.cache == nil {
		return []*storage.Bookmark{}
	}
	out := make([]*storage.Bookmark, len(s.cache))
	copy(out, s.cache)
	return out
}

func (s *Synchronizer) reportError(err error) {
	if s.config.OnError != nil {
		s.config.OnError(err)
	}
}
