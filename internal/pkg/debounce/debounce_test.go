package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCoalescesBurstIntoSingleFire(t *testing.T) {
	var fires atomic.Int32
	d := New(30*time.Millisecond, func() { fires.Add(1) })

	for i := 0; i < 5; i++ {
		d.Trigger()
		time.Sleep(5 * time.Millisecond)
	}

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load())
}

func TestTriggerResetsCountdown(t *testing.T) {
	var fires atomic.Int32
	d := New(50*time.Millisecond, func() { fires.Add(1) })

	d.Trigger()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())

	d.Trigger()
	time.Sleep(30 * time.Millisecond)
	// the reset pushed the fire past the original deadline
	assert.Equal(t, int32(0), fires.Load())

	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load())
}

func TestStopCancelsPendingFire(t *testing.T) {
	var fires atomic.Int32
	d := New(20*time.Millisecond, func() { fires.Add(1) })

	d.Trigger()
	d.Stop()

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())
}

func TestStoppedDebouncerIgnoresTriggers(t *testing.T) {
	var fires atomic.Int32
	d := New(10*time.Millisecond, func() { fires.Add(1) })

	d.Stop()
	d.Trigger()

	time.Sleep(40 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())
	assert.False(t, d.Pending())
}

func TestCancelAllowsLaterFires(t *testing.T) {
	var fires atomic.Int32
	d := New(20*time.Millisecond, func() { fires.Add(1) })

	d.Trigger()
	d.Cancel()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())

	d.Trigger()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load())
}

func TestStaleFireAfterRetriggerIsDiscarded(t *testing.T) {
	var fires atomic.Int32
	d := New(30*time.Millisecond, func() { fires.Add(1) })

	d.Trigger()
	stale := d.gen
	d.Trigger()

	// An expired timer from the first schedule delivering late must not
	// invoke the callback ahead of the rescheduled deadline.
	d.fire(stale)
	assert.Equal(t, int32(0), fires.Load())
	assert.True(t, d.Pending())

	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load())
}

func TestStaleFireAfterCancelIsDiscarded(t *testing.T) {
	var fires atomic.Int32
	d := New(30*time.Millisecond, func() { fires.Add(1) })

	d.Trigger()
	stale := d.gen
	d.Cancel()

	d.fire(stale)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())
}
