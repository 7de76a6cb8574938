package draft

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// FailureFunc receives the owning user and the store error whenever a
// settle fails. Deliveries happen on the timer goroutine, so implementations
// should not block.
type FailureFunc func(userID string, err error)

// Registry maps user IDs to their live autosave coordinators. One session
// per user; a new session for the same user replaces (and closes) the old
// one.
type Registry struct {
	store     Store
	logger    *zap.Logger
	onFailure FailureFunc

	mu       sync.Mutex
	sessions map[string]*Coordinator
}

// NewRegistry builds a registry. onFailure may be nil when no outbound
// notification is wanted.
func NewRegistry(store Store, logger *zap.Logger, onFailure FailureFunc) *Registry {
	return &Registry{
		store:     store,
		logger:    logger,
		onFailure: onFailure,
		sessions:  make(map[string]*Coordinator),
	}
}

// Obtain returns the user's coordinator, creating one with the given
// settings if no session is live.
func (r *Registry) Obtain(userID string, quiet time.Duration, enabled bool) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.sessions[userID]; ok {
		return c
	}
	c := NewCoordinator(r.store, r.logger, userID, quiet, enabled)
	if r.onFailure != nil {
		c.onFailure = func(err error) { r.onFailure(userID, err) }
	}
	r.sessions[userID] = c
	return c
}

// Get returns the live coordinator for the user, or nil.
func (r *Registry) Get(userID string) *Coordinator {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[userID]
}

// Close tears down the user's session if one is live.
func (r *Registry) Close(userID string) {
	r.mu.Lock()
	c, ok := r.sessions[userID]
	if ok {
		delete(r.sessions, userID)
	}
	r.mu.Unlock()
	if ok {
		c.Close()
	}
}

// CloseAll tears down every live session, used on shutdown.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	sessions := r.sessions
	r.sessions = make(map[string]*Coordinator)
	r.mu.Unlock()
	for _, c := range sessions {
		c.Close()
	}
}
