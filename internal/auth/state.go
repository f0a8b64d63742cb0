package auth

import (
	"sync"
)

// Session describes the currently authenticated user, or nil when
// signed out.
type Session struct {
	UserID      string
	Email       string
	DisplayName string
}

// State tracks the current authentication session and notifies
// subscribers of transitions. It replaces process-global auth state
// with an owned object: callers Start it once, Subscribe for changes,
// and Stop it on teardown to release every registration.
//
// Loading reports true until Start has completed the initial
// resolution, mirroring the behavior of provider SDKs that resolve
// persisted sessions asynchronously.
type State struct {
	mu      sync.RWMutex
	started bool
	loading bool
	current *Session
	nextID  int
	subs    map[int]func(*Session)
}

// NewState creates an auth State in the loading phase.
func NewState() *State {
	return &State{
		loading: true,
		subs:    make(map[int]func(*Session)),
	}
}

// Start completes the initial session resolution with the given
// session (nil for signed out) and notifies subscribers. Calling Start
// twice is a no-op.
func (s *State) Start(initial *Session) {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.loading = false
	s.current = initial
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(initial)
	}
}

// Stop releases all subscriptions. After Stop, Subscribe registrations
// made earlier no longer fire.
func (s *State) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = make(map[int]func(*Session))
}

// Current returns the current session (nil when signed out) and the
// loading flag.
func (s *State) Current() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.loading
}

// Subscribe registers a callback invoked on every session transition.
// The returned function releases the registration; callers must invoke
// it (or Stop the State) on teardown.
func (s *State) Subscribe(fn func(*Session)) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Set publishes a session transition (sign-in passes the new session,
// sign-out passes nil).
func (s *State) Set(session *Session) {
	s.mu.Lock()
	s.current = session
	subs := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range subs {
		fn(session)
	}
}

// snapshotSubs copies the subscriber list; callers must hold mu.
// Callbacks run outside the lock so a subscriber may unsubscribe
// itself.
func (s *State) snapshotSubs() []func(*Session) {
	subs := make([]func(*Session), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}
