package draft

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/seoforge/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu    sync.Mutex
	saves []Snapshot
	err   error
}

func (f *fakeStore) UpsertSnapshot(_ context.Context, _ string, snap Snapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.saves = append(f.saves, snap)
	return nil
}

func (f *fakeStore) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func (f *fakeStore) saveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.saves)
}

func (f *fakeStore) lastSave() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saves[len(f.saves)-1]
}

const quiet = 30 * time.Millisecond

func snapWithIntro(intro string) Snapshot {
	return Snapshot{
		Keywords:   models.KeywordSet{Primary: []string{"coffee grinders"}},
		MetaTags:   models.MetaTags{Title: "Best Coffee Grinders", Slug: "best-coffee-grinders"},
		ShortIntro: intro,
	}
}

func TestBurstOfEditsProducesOneSave(t *testing.T) {
	store := &fakeStore{}
	c := NewCoordinator(store, zap.NewNop(), "u1", quiet, true)
	defer c.Close()

	for i := 0; i < 5; i++ {
		c.Observe(snapWithIntro("v" + string(rune('a'+i))))
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(3 * quiet)
	require.Equal(t, 1, store.saveCount())
	assert.Equal(t, "ve", store.lastSave().ShortIntro)
}

func TestUnchangedSnapshotIsNotResaved(t *testing.T) {
	store := &fakeStore{}
	c := NewCoordinator(store, zap.NewNop(), "u1", quiet, true)
	defer c.Close()

	c.Observe(snapWithIntro("stable"))
	time.Sleep(3 * quiet)
	require.Equal(t, 1, store.saveCount())

	// same content again: detector sees no change, no second write
	c.Observe(snapWithIntro("stable"))
	time.Sleep(3 * quiet)
	assert.Equal(t, 1, store.saveCount())
}

func TestEmptySnapshotStillSavesOnce(t *testing.T) {
	store := &fakeStore{}
	c := NewCoordinator(store, zap.NewNop(), "u1", quiet, true)
	defer c.Close()

	c.Observe(Snapshot{})
	time.Sleep(3 * quiet)
	require.Equal(t, 1, store.saveCount())

	c.Observe(Snapshot{})
	time.Sleep(3 * quiet)
	assert.Equal(t, 1, store.saveCount())
}

func TestSequentialChangesEachSave(t *testing.T) {
	store := &fakeStore{}
	c := NewCoordinator(store, zap.NewNop(), "u1", quiet, true)
	defer c.Close()

	c.Observe(snapWithIntro("first"))
	time.Sleep(3 * quiet)
	c.Observe(snapWithIntro("second"))
	time.Sleep(3 * quiet)

	require.Equal(t, 2, store.saveCount())
	assert.Equal(t, "second", store.lastSave().ShortIntro)
}

func TestCloseCancelsPendingSave(t *testing.T) {
	store := &fakeStore{}
	c := NewCoordinator(store, zap.NewNop(), "u1", quiet, true)

	c.Observe(snapWithIntro("about to vanish"))
	c.Close()

	time.Sleep(3 * quiet)
	assert.Equal(t, 0, store.saveCount())
}

func TestFailedSaveRetriesOnNextSettle(t *testing.T) {
	store := &fakeStore{}
	c := NewCoordinator(store, zap.NewNop(), "u1", quiet, true)
	defer c.Close()

	store.setErr(errors.New("connection refused"))
	c.Observe(snapWithIntro("important"))
	time.Sleep(3 * quiet)
	require.Equal(t, 0, store.saveCount())

	// the confirmed state did not advance, so the same content saves once
	// the store recovers
	store.setErr(nil)
	c.Observe(snapWithIntro("important"))
	time.Sleep(3 * quiet)
	require.Equal(t, 1, store.saveCount())
	assert.Equal(t, "important", store.lastSave().ShortIntro)
}

func TestDisabledSessionNeverSaves(t *testing.T) {
	store := &fakeStore{}
	c := NewCoordinator(store, zap.NewNop(), "u1", quiet, false)
	defer c.Close()

	c.Observe(snapWithIntro("ignored"))
	time.Sleep(3 * quiet)
	assert.Equal(t, 0, store.saveCount())
}

func TestDisabledSessionDoesNotArmTimer(t *testing.T) {
	store := &fakeStore{}
	c := NewCoordinator(store, zap.NewNop(), "u1", time.Hour, false)
	defer c.Close()

	c.Observe(snapWithIntro("ignored"))
	assert.False(t, c.deb.Pending())
}

func TestFlushSavesImmediately(t *testing.T) {
	store := &fakeStore{}
	c := NewCoordinator(store, zap.NewNop(), "u1", time.Hour, true)
	defer c.Close()

	c.Observe(snapWithIntro("flush me"))
	require.NoError(t, c.Flush(context.Background()))
	assert.Equal(t, 1, store.saveCount())

	// the cancelled timer must not produce a second save later
	time.Sleep(3 * quiet)
	assert.Equal(t, 1, store.saveCount())
}

func TestRegistryReplacesAndClosesSessions(t *testing.T) {
	store := &fakeStore{}
	r := NewRegistry(store, zap.NewNop(), nil)

	c1 := r.Obtain("u1", quiet, true)
	assert.Same(t, c1, r.Obtain("u1", quiet, true))
	assert.Same(t, c1, r.Get("u1"))

	c1.Observe(snapWithIntro("pending"))
	r.Close("u1")
	assert.Nil(t, r.Get("u1"))

	time.Sleep(3 * quiet)
	assert.Equal(t, 0, store.saveCount())
}

func TestFailedSettleReportsToFailureHook(t *testing.T) {
	store := &fakeStore{}
	store.setErr(errors.New("connection refused"))

	var mu sync.Mutex
	var gotUser string
	var gotErr error
	r := NewRegistry(store, zap.NewNop(), func(userID string, err error) {
		mu.Lock()
		defer mu.Unlock()
		gotUser = userID
		gotErr = err
	})

	c := r.Obtain("u1", quiet, true)
	defer r.CloseAll()

	c.Observe(snapWithIntro("doomed"))
	time.Sleep(3 * quiet)

	mu.Lock()
	defer mu.Unlock()
	require.Error(t, gotErr)
	assert.Equal(t, "u1", gotUser)
	assert.Equal(t, "connection refused", gotErr.Error())
}

func TestSuccessfulSettleSkipsFailureHook(t *testing.T) {
	store := &fakeStore{}
	var calls atomic.Int32
	r := NewRegistry(store, zap.NewNop(), func(string, error) { calls.Add(1) })

	c := r.Obtain("u1", quiet, true)
	defer r.CloseAll()

	c.Observe(snapWithIntro("fine"))
	time.Sleep(3 * quiet)

	require.Equal(t, 1, store.saveCount())
	assert.Equal(t, int32(0), calls.Load())
}
