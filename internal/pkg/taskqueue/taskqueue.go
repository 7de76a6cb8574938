package taskqueue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	redisc "github.com/seoforge/core/internal/pkg/redis"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskPending   TaskStatus = "pending"
	TaskRunning   TaskStatus = "running"
	TaskCompleted TaskStatus = "completed"
	TaskFailed    TaskStatus = "failed"
	TaskCancelled TaskStatus = "cancelled"
)

func isTerminal(status TaskStatus) bool {
	return status == TaskCompleted || status == TaskFailed || status == TaskCancelled
}

// Task is a unit of background work stored in Redis.
type Task struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Status    TaskStatus      `json:"status"`
	Result    json.RawMessage `json:"result,omitempty"`
	Error     string          `json:"error,omitempty"`
	DedupKey  string          `json:"dedup_key,omitempty"`
	GroupKey  string          `json:"group_key,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// OwnedBy reports whether userID enqueued the task. GroupKey carries the
// enqueuing user's ID, so tasks from other users never match.
func (t *Task) OwnedBy(userID string) bool {
	return t != nil && userID != "" && t.GroupKey == userID
}

// matchesFilter applies the optional List filters. A nil filter matches
// everything.
func matchesFilter(task *Task, taskType *string, status *TaskStatus, groupKey *string) bool {
	if taskType != nil && task.Type != *taskType {
		return false
	}
	if status != nil && task.Status != *status {
		return false
	}
	if groupKey != nil && task.GroupKey != *groupKey {
		return false
	}
	return true
}

const (
	keyPrefix   = "sf:task:"
	keyIndex    = "sf:tasks:index"  // sorted set: score=created_at, member=task_id
	keyDedupSet = "sf:tasks:dedup:" // hash per task type: dedup_key -> task_id
	taskTTL     = 7 * 24 * time.Hour
)

// ErrNotFound is returned when a task id resolves to nothing.
var ErrNotFound = errors.New("task not found")

// ErrNotCancellable is returned when cancelling a task that already started.
var ErrNotCancellable = errors.New("can only cancel pending tasks")

// Service manages the Redis-backed task queue.
type Service struct {
	rc *redisc.Client
}

func NewService(rc *redisc.Client) *Service {
	return &Service{rc: rc}
}

func (s *Service) taskKey(id string) string { return keyPrefix + id }

func (s *Service) dedupKey(taskType string) string { return keyDedupSet + taskType }

// Enqueue stores a new pending task. When dedupKey is non-empty and a live
// task with the same key exists for this type, that task is returned instead
// of creating a duplicate.
func (s *Service) Enqueue(ctx context.Context, taskType string, payload interface{}, dedupKey, groupKey string) (*Task, error) {
	if dedupKey != "" {
		existing, err := s.rc.Raw().HGet(ctx, s.dedupKey(taskType), dedupKey).Result()
		if err == nil && existing != "" {
			if task, getErr := s.GetByID(ctx, existing); getErr == nil && task != nil {
				return task, nil
			}
		}
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	task := &Task{
		ID:        uuid.New().String(),
		Type:      taskType,
		Payload:   payloadBytes,
		Status:    TaskPending,
		DedupKey:  dedupKey,
		GroupKey:  groupKey,
		CreatedAt: now,
		UpdatedAt: now,
	}

	pipe := s.rc.Raw().TxPipeline()
	if err := s.writeTask(ctx, pipe, task); err != nil {
		return nil, err
	}
	pipe.ZAdd(ctx, keyIndex, redis.Z{
		Score:  float64(task.CreatedAt.UnixMilli()),
		Member: task.ID,
	})
	if dedupKey != "" {
		pipe.HSet(ctx, s.dedupKey(taskType), dedupKey, task.ID)
		pipe.Expire(ctx, s.dedupKey(taskType), taskTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Service) writeTask(ctx context.Context, cmd redis.Cmdable, task *Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return err
	}
	cmd.Set(ctx, s.taskKey(task.ID), data, taskTTL)
	return nil
}

// GetByID retrieves a task. Returns (nil, nil) when the id is unknown.
func (s *Service) GetByID(ctx context.Context, id string) (*Task, error) {
	data, err := s.rc.Raw().Get(ctx, s.taskKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var task Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// UpdateStatus transitions a task and stores its result or error message.
// Reaching a terminal status releases the task's dedup slot.
func (s *Service) UpdateStatus(ctx context.Context, id string, status TaskStatus, result interface{}, errMsg string) error {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrNotFound
	}

	task.Status = status
	task.UpdatedAt = time.Now()
	task.Error = errMsg
	if result != nil {
		data, marshalErr := json.Marshal(result)
		if marshalErr != nil {
			return marshalErr
		}
		task.Result = data
	}

	if isTerminal(status) && task.DedupKey != "" {
		s.rc.Raw().HDel(ctx, s.dedupKey(task.Type), task.DedupKey)
	}

	if err := s.writeTask(ctx, s.rc.Raw(), task); err != nil {
		return err
	}
	return nil
}

// List returns tasks newest first, filtered by type and status when the
// filters are non-nil.
func (s *Service) List(ctx context.Context, page, size int, taskType *string, status *TaskStatus, groupKey *string) ([]*Task, int64, error) {
	ids, err := s.rc.Raw().ZRevRange(ctx, keyIndex, 0, -1).Result()
	if err != nil {
		return nil, 0, err
	}

	matched := make([]*Task, 0, len(ids))
	for _, id := range ids {
		task, err := s.GetByID(ctx, id)
		if err != nil || task == nil {
			continue
		}
		if !matchesFilter(task, taskType, status, groupKey) {
			continue
		}
		matched = append(matched, task)
	}

	total := int64(len(matched))
	start := (page - 1) * size
	if start >= len(matched) || start < 0 {
		return []*Task{}, total, nil
	}
	end := start + size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], total, nil
}

// Cancel marks a pending task as cancelled.
func (s *Service) Cancel(ctx context.Context, id string) error {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrNotFound
	}
	if task.Status != TaskPending {
		return ErrNotCancellable
	}
	return s.UpdateStatus(ctx, id, TaskCancelled, nil, "cancelled by user")
}

// DeleteByID removes a single task and its index and dedup entries.
func (s *Service) DeleteByID(ctx context.Context, id string) error {
	task, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return ErrNotFound
	}
	pipe := s.rc.Raw().TxPipeline()
	s.dropTask(ctx, pipe, task)
	_, err = pipe.Exec(ctx)
	return err
}

func (s *Service) dropTask(ctx context.Context, pipe redis.Pipeliner, task *Task) {
	pipe.Del(ctx, s.taskKey(task.ID))
	pipe.ZRem(ctx, keyIndex, task.ID)
	if task.DedupKey != "" {
		pipe.HDel(ctx, s.dedupKey(task.Type), task.DedupKey)
	}
}

// DeleteCompleted removes tasks in a terminal status. When beforeMS is
// positive only tasks created before that unix-millisecond timestamp are
// removed. Returns how many tasks were purged.
func (s *Service) DeleteCompleted(ctx context.Context, beforeMS int64) (int64, error) {
	ids, err := s.rc.Raw().ZRange(ctx, keyIndex, 0, -1).Result()
	if err != nil {
		return 0, err
	}

	var purged int64
	pipe := s.rc.Raw().TxPipeline()
	for _, id := range ids {
		task, err := s.GetByID(ctx, id)
		if err != nil || task == nil {
			continue
		}
		if !isTerminal(task.Status) {
			continue
		}
		if beforeMS > 0 && task.CreatedAt.UnixMilli() >= beforeMS {
			continue
		}
		s.dropTask(ctx, pipe, task)
		purged++
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return purged, nil
}
