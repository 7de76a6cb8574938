package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListSortedByName(t *testing.T) {
	s := New()
	s.Register(Job{Name: "zeta", Interval: time.Hour, Fn: func(context.Context) error { return nil }})
	s.Register(Job{Name: "alpha", Interval: time.Hour, Fn: func(context.Context) error { return nil }})

	items := s.List()
	require.Len(t, items, 2)
	assert.Equal(t, "alpha", items[0].Name)
	assert.Equal(t, "zeta", items[1].Name)
	assert.Equal(t, StatusIdle, items[0].Status)
	assert.Equal(t, time.Hour.Milliseconds(), items[0].IntervalMS)
}

func TestRunExecutesJob(t *testing.T) {
	s := New()
	done := make(chan struct{})
	s.Register(Job{Name: "once", Interval: time.Hour, Fn: func(context.Context) error {
		close(done)
		return nil
	}})

	require.NoError(t, s.Run(context.Background(), "once"))
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not execute")
	}

	assert.Eventually(t, func() bool {
		result, err := s.GetTask("once")
		return err == nil && result.Status == StatusFulfill
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunRecordsFailure(t *testing.T) {
	s := New()
	s.Register(Job{Name: "broken", Interval: time.Hour, Fn: func(context.Context) error {
		return errors.New("boom")
	}})

	require.NoError(t, s.Run(context.Background(), "broken"))
	assert.Eventually(t, func() bool {
		result, err := s.GetTask("broken")
		return err == nil && result.Status == StatusReject && result.Message == "boom"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestRunUnknownJob(t *testing.T) {
	s := New()
	err := s.Run(context.Background(), "missing")
	require.Error(t, err)

	_, err = s.GetTask("missing")
	require.Error(t, err)
}
