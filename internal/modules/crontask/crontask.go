package crontask

import (
	"encoding/json"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/seoforge/core/internal/middleware"
	pkgcron "github.com/seoforge/core/internal/pkg/cron"
	"github.com/seoforge/core/internal/pkg/pagination"
	"github.com/seoforge/core/internal/pkg/response"
	"github.com/seoforge/core/internal/pkg/taskqueue"
)

// Handler wraps the scheduler and the task queue for admin HTTP access.
type Handler struct {
	sched   *pkgcron.Scheduler
	taskSvc *taskqueue.Service
}

func NewHandler(sched *pkgcron.Scheduler, taskSvc *taskqueue.Service) *Handler {
	return &Handler{sched: sched, taskSvc: taskSvc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/cron", authMW)
	g.GET("", h.list)
	g.GET("/:name", h.get)
	g.POST("/:name/run", h.run)

	tasks := g.Group("/tasks")
	tasks.GET("", h.listTasks)
	tasks.GET("/:taskId", h.getTask)
	tasks.POST("/:taskId/cancel", h.cancelTask)
	tasks.POST("/:taskId/retry", h.retryTask)
	tasks.DELETE("/:taskId", h.deleteTask)
	tasks.DELETE("", h.deleteTasks)
}

// GET /cron lists all jobs
func (h *Handler) list(c *gin.Context) {
	response.OK(c, h.sched.List())
}

// GET /cron/:name reports single job status
func (h *Handler) get(c *gin.Context) {
	result, err := h.sched.GetTask(c.Param("name"))
	if err != nil {
		response.NotFoundMsg(c, "cron job not found")
		return
	}
	response.OK(c, result)
}

// POST /cron/:name/run triggers a job out of schedule
func (h *Handler) run(c *gin.Context) {
	if err := h.sched.Run(c.Request.Context(), c.Param("name")); err != nil {
		response.NotFoundMsg(c, "cron job not found")
		return
	}
	response.OK(c, gin.H{"message": "job triggered"})
}

// GET /cron/tasks lists the caller's tasks only
func (h *Handler) listTasks(c *gin.Context) {
	q := pagination.FromContext(c)
	taskType := c.Query("type")
	statusStr := c.Query("status")
	userID := middleware.CurrentUserID(c)

	var taskTypePtr *string
	var statusPtr *taskqueue.TaskStatus
	if taskType != "" {
		taskTypePtr = &taskType
	}
	if statusStr != "" {
		s := taskqueue.TaskStatus(statusStr)
		statusPtr = &s
	}

	tasks, total, err := h.taskSvc.List(c.Request.Context(), q.Page, q.Size, taskTypePtr, statusPtr, &userID)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, tasks, pagination.Meta(q, total))
}

// ownedTask fetches the task and hides it behind a 404 unless the caller
// enqueued it. Returns nil after writing the response on any miss.
func (h *Handler) ownedTask(c *gin.Context) *taskqueue.Task {
	task, err := h.taskSvc.GetByID(c.Request.Context(), c.Param("taskId"))
	if err != nil {
		response.InternalError(c, err)
		return nil
	}
	if !task.OwnedBy(middleware.CurrentUserID(c)) {
		response.NotFoundMsg(c, "task not found")
		return nil
	}
	return task
}

// GET /cron/tasks/:taskId
func (h *Handler) getTask(c *gin.Context) {
	task := h.ownedTask(c)
	if task == nil {
		return
	}
	response.OK(c, task)
}

// POST /cron/tasks/:taskId/cancel
func (h *Handler) cancelTask(c *gin.Context) {
	if h.ownedTask(c) == nil {
		return
	}
	if err := h.taskSvc.Cancel(c.Request.Context(), c.Param("taskId")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.NoContent(c)
}

// POST /cron/tasks/:taskId/retry re-enqueues with the same type and payload,
// clearing the dedup key so the retry is not swallowed.
func (h *Handler) retryTask(c *gin.Context) {
	task := h.ownedTask(c)
	if task == nil {
		return
	}
	var rawPayload interface{}
	if err := json.Unmarshal(task.Payload, &rawPayload); err != nil {
		response.BadRequest(c, "invalid task payload")
		return
	}
	newTask, err := h.taskSvc.Enqueue(c.Request.Context(), task.Type, rawPayload, "", task.GroupKey)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, newTask)
}

// DELETE /cron/tasks/:taskId
func (h *Handler) deleteTask(c *gin.Context) {
	if h.ownedTask(c) == nil {
		return
	}
	if err := h.taskSvc.DeleteByID(c.Request.Context(), c.Param("taskId")); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	response.NoContent(c)
}

// DELETE /cron/tasks purges finished tasks, optionally ?before=<unix_ms>
func (h *Handler) deleteTasks(c *gin.Context) {
	beforeStr := c.Query("before")
	var before int64
	if beforeStr != "" {
		if v, err := strconv.ParseInt(beforeStr, 10, 64); err == nil {
			before = v
		}
	}
	purged, err := h.taskSvc.DeleteCompleted(c.Request.Context(), before)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"purged": purged})
}
