package taskqueue

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOwnedBy(t *testing.T) {
	task := &Task{ID: "t1", GroupKey: "u1"}

	assert.True(t, task.OwnedBy("u1"))
	assert.False(t, task.OwnedBy("u2"))

	// an unauthenticated caller owns nothing, including legacy tasks
	// enqueued without a group key
	assert.False(t, task.OwnedBy(""))
	assert.False(t, (&Task{ID: "t2"}).OwnedBy(""))

	var missing *Task
	assert.False(t, missing.OwnedBy("u1"))
}

func TestMatchesFilter(t *testing.T) {
	typ := "ai:content"
	status := TaskCompleted
	owner := "u1"
	task := &Task{ID: "t1", Type: typ, Status: status, GroupKey: owner}

	assert.True(t, matchesFilter(task, nil, nil, nil))
	assert.True(t, matchesFilter(task, &typ, &status, &owner))

	otherType := "export:docx"
	otherStatus := TaskPending
	otherOwner := "u2"
	assert.False(t, matchesFilter(task, &otherType, nil, nil))
	assert.False(t, matchesFilter(task, nil, &otherStatus, nil))
	assert.False(t, matchesFilter(task, nil, nil, &otherOwner))
}
