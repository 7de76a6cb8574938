package draft

import (
	"context"
	"sync"
	"time"

	"github.com/seoforge/core/internal/pkg/debounce"
	"go.uber.org/zap"
)

// Store persists draft snapshots. *Service implements it against Postgres;
// tests substitute a fake.
type Store interface {
	UpsertSnapshot(ctx context.Context, userID string, snap Snapshot) error
}

// Coordinator owns one user's autosave session. It debounces observed
// snapshots, skips saves when nothing changed since the last confirmed
// write, and performs at most one store call per settle.
//
// lastConfirmed starts empty, which never equals any canonical form, so the
// first settle of a session always writes even if every field is blank.
type Coordinator struct {
	store   Store
	logger  *zap.Logger
	userID  string
	enabled bool

	deb *debounce.Debouncer

	// onFailure, when set, is invoked after a settle whose store write
	// failed. The registry points it at the outbound webhook notifier.
	onFailure func(error)

	mu            sync.Mutex
	pending       Snapshot
	hasPending    bool
	lastConfirmed string
	closed        bool

	// saveMu serializes store calls so a flush racing a timer fire cannot
	// produce two concurrent writes for the same user.
	saveMu sync.Mutex
}

// NewCoordinator starts an autosave session. The enabled flag is captured
// once here; a preference change mid-session applies to the next session.
func NewCoordinator(store Store, logger *zap.Logger, userID string, quiet time.Duration, enabled bool) *Coordinator {
	c := &Coordinator{
		store:   store,
		logger:  logger,
		userID:  userID,
		enabled: enabled,
	}
	c.deb = debounce.New(quiet, c.settle)
	return c
}

// Observe records the latest wizard state and reschedules the quiet-period
// timer. Rapid successive calls coalesce into a single save attempt. A
// disabled session never arms the timer.
func (c *Coordinator) Observe(snap Snapshot) {
	if !c.enabled {
		return
	}
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.pending = snap
	c.hasPending = true
	c.mu.Unlock()

	c.deb.Trigger()
}

func (c *Coordinator) settle() {
	if err := c.save(context.Background()); err != nil {
		c.logger.Warn("autosave failed, will retry on next change",
			zap.String("user_id", c.userID), zap.Error(err))
		if c.onFailure != nil {
			c.onFailure(err)
		}
	}
}

// Flush performs an immediate save of the pending snapshot, cancelling any
// scheduled timer fire.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.deb.Cancel()
	return c.save(ctx)
}

// Close tears the session down. A pending timer fire is cancelled, so a
// snapshot observed inside the quiet period before Close is never written.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	c.deb.Stop()
}

// save writes the pending snapshot if it differs from the last confirmed
// state. The store call runs outside the mutex; lastConfirmed only advances
// after the store reports success, so a failed write is retried on the next
// settle.
func (c *Coordinator) save(ctx context.Context) error {
	c.saveMu.Lock()
	defer c.saveMu.Unlock()

	c.mu.Lock()
	if c.closed || !c.hasPending {
		c.mu.Unlock()
		return nil
	}
	snap := c.pending
	form := snap.Canonical()
	unchanged := form == c.lastConfirmed
	c.mu.Unlock()

	if unchanged || !c.enabled {
		return nil
	}

	if err := c.store.UpsertSnapshot(ctx, c.userID, snap); err != nil {
		return err
	}

	c.mu.Lock()
	c.lastConfirmed = form
	c.mu.Unlock()
	return nil
}
