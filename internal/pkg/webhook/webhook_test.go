package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(enabled bool, throttle time.Duration) ConfigFunc {
	return func() (bool, time.Duration, time.Duration) {
		return enabled, 2 * time.Second, throttle
	}
}

func TestNotifyPostsEvent(t *testing.T) {
	var got Event
	var header string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header = r.Header.Get("X-SeoForge-Event")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := New(testConfig(true, 0))
	require.NoError(t, n.Notify(context.Background(), srv.URL, "post.published", map[string]string{"id": "p1"}))

	assert.Equal(t, "post.published", header)
	assert.Equal(t, "post.published", got.Event)
}

func TestNotifyDisabledSendsNothing(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	n := New(testConfig(false, 0))
	require.NoError(t, n.Notify(context.Background(), srv.URL, "post.saved", nil))
	assert.Equal(t, int32(0), hits.Load())
}

func TestNotifyThrottledCollapsesRepeats(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	n := New(testConfig(true, time.Minute))
	for i := 0; i < 5; i++ {
		n.NotifyThrottled(context.Background(), srv.URL, "draft.autosave_failed", nil)
	}
	assert.Equal(t, int32(1), hits.Load())

	// a different event for the same URL is its own throttle bucket
	n.NotifyThrottled(context.Background(), srv.URL, "post.saved", nil)
	assert.Equal(t, int32(2), hits.Load())
}

func TestNotifyThrottledSendsAgainAfterWindow(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
	}))
	defer srv.Close()

	n := New(testConfig(true, time.Minute))
	n.NotifyThrottled(context.Background(), srv.URL, "draft.autosave_failed", nil)
	require.Equal(t, int32(1), hits.Load())

	n.mu.Lock()
	n.lastSentAt[srv.URL+"|draft.autosave_failed"] = time.Now().Add(-2 * time.Minute)
	n.mu.Unlock()

	n.NotifyThrottled(context.Background(), srv.URL, "draft.autosave_failed", nil)
	assert.Equal(t, int32(2), hits.Load())
}
