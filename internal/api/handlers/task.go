package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"taskguardian/internal/models"
	"taskguardian/internal/policy"
	"taskguardian/internal/repository"
	"taskguardian/pkg/logger"
)

// caller rebuilds the authenticated identity the middleware stored.
func caller(c *fiber.Ctx) policy.Caller {
	return policy.Caller{
		ID:   c.Locals("userID").(int),
		Role: policy.Role(c.Locals("role").(string)),
	}
}

func taskView(task models.Task) policy.TaskView {
	return policy.TaskView{
		Status:     policy.Status(task.Status),
		AssignedTo: task.AssignedTo,
	}
}

// ListTasks returns every task as a bare array. Any authenticated caller
// sees the full list. Served from the Redis cache when warm.
func (h *Handler) ListTasks(c *fiber.Ctx) error {
	if cached, err := h.Cache.Get(h.Ctx, tasksCacheKey).Result(); err == nil {
		var tasks []models.Task
		if err := json.Unmarshal([]byte(cached), &tasks); err == nil {
			return c.JSON(tasks)
		}
	}

	tasks, err := h.Tasks.List()
	if err != nil {
		logger.ErrorLogger.Error("Error fetching tasks", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	if payload, err := json.Marshal(tasks); err == nil {
		if err := h.Cache.Set(h.Ctx, tasksCacheKey, payload, cacheTTL).Err(); err != nil {
			logger.ErrorLogger.Error("Error caching tasks", zap.Error(err))
		}
	}

	return c.JSON(tasks)
}

// CreateTask opens a new PENDING, unassigned task owned by the caller.
func (h *Handler) CreateTask(c *fiber.Ctx) error {
	who := caller(c)

	type CreateTaskRequest struct {
		Title       string `json:"title" validate:"required,min=3,max=50"`
		Description string `json:"description" validate:"required,min=3,max=255"`
	}

	var req CreateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		logger.ErrorLogger.Error("Bad request in create task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide all required fields"})
	}
	if err := h.Validate.Struct(req); err != nil {
		logger.AuditLogger.Warn("Validation error in create task", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide all required fields"})
	}

	task, err := h.Tasks.Create(req.Title, req.Description, who.ID)
	if err != nil {
		logger.ErrorLogger.Error("Error creating task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	h.dropTasksCache()
	h.publish("created", task)

	logger.AuditLogger.Info("Task created", zap.Int("task_id", task.ID), zap.Int("created_by", who.ID))
	return c.JSON(fiber.Map{
		"state": "success",
		"task":  task,
	})
}

// UpdateTaskStatus moves a task between PENDING, INPROGRESS and
// COMPLETED. A REGULAR caller may only touch the task assigned to them.
func (h *Handler) UpdateTaskStatus(c *fiber.Ctx) error {
	who := caller(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide task id"})
	}

	type UpdateStatusRequest struct {
		Status string `json:"status"`
	}
	var req UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil || req.Status == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide all required fields"})
	}
	if !policy.ValidStatus(req.Status) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid status"})
	}

	task, err := h.Tasks.GetByID(taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	if err := policy.CanModifyTask(who, taskView(task)); err != nil {
		logger.SecurityLogger.Warn("Status update denied",
			zap.Int("user_id", who.ID), zap.Int("task_id", taskID))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	updated, err := h.Tasks.UpdateStatus(taskID, req.Status)
	if err != nil {
		logger.ErrorLogger.Error("Error updating task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	h.dropTasksCache()
	h.publish("status_changed", updated)

	logger.AuditLogger.Info("Task status updated",
		zap.Int("task_id", taskID), zap.String("status", req.Status))
	return c.JSON(fiber.Map{
		"state": "success",
		"task":  updated,
	})
}

// DeleteTask removes a task under the same authorization rule as status
// updates and returns the removed record.
func (h *Handler) DeleteTask(c *fiber.Ctx) error {
	who := caller(c)

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide task id"})
	}

	task, err := h.Tasks.GetByID(taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	if err := policy.CanModifyTask(who, taskView(task)); err != nil {
		logger.SecurityLogger.Warn("Task delete denied",
			zap.Int("user_id", who.ID), zap.Int("task_id", taskID))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	deleted, err := h.Tasks.Delete(taskID)
	if err != nil {
		logger.ErrorLogger.Error("Error deleting task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	h.dropTasksCache()
	h.publish("deleted", deleted)

	logger.AuditLogger.Info("Task deleted", zap.Int("task_id", taskID))
	return c.JSON(fiber.Map{
		"state": "success",
		"task":  deleted,
	})
}

// AssignTask hands a task to a REGULAR user, once. The policy checks
// give precise error messages; the store write is conditional so a
// concurrent assignment cannot slip past them.
func (h *Handler) AssignTask(c *fiber.Ctx) error {
	who := caller(c)

	if err := policy.CanAssignTask(who); err != nil {
		logger.SecurityLogger.Warn("Task assign denied", zap.Int("user_id", who.ID))
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Unauthorized"})
	}

	taskID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide task id"})
	}

	type AssignRequest struct {
		AssignedTo int `json:"assignedTo"`
	}
	var req AssignRequest
	if err := c.BodyParser(&req); err != nil || req.AssignedTo == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Please provide all required fields"})
	}

	task, err := h.Tasks.GetByID(taskID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "Task not found"})
		}
		logger.ErrorLogger.Error("Error fetching task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	assignee, err := h.Users.GetByID(req.AssignedTo)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"message": "User not found"})
		}
		logger.ErrorLogger.Error("Error fetching assignee", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	if err := policy.CheckAssignment(taskView(task), policy.Role(assignee.Role)); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": assignmentMessage(err)})
	}

	assigned, err := h.Tasks.Assign(taskID, assignee.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotAssignable) {
			// Lost a race with another assignment
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Task already assigned"})
		}
		logger.ErrorLogger.Error("Error assigning task", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Internal Server Error"})
	}

	h.dropTasksCache()
	h.publish("assigned", assigned)

	logger.AuditLogger.Info("Task assigned",
		zap.Int("task_id", taskID), zap.Int("assigned_to", assignee.ID), zap.Int("assigned_by", who.ID))
	return c.JSON(fiber.Map{
		"state": "success",
		"task":  assigned,
	})
}

func assignmentMessage(err error) string {
	switch {
	case errors.Is(err, policy.ErrAssigneeAdmin):
		return "Cannot assign task to ADMIN"
	case errors.Is(err, policy.ErrTaskCompleted):
		return "Cannot assign completed task"
	case errors.Is(err, policy.ErrAssigneeManager):
		return "Cannot assign task to MANAGER"
	case errors.Is(err, policy.ErrAlreadyAssigned):
		return "Task already assigned"
	default:
		return "Invalid assignment"
	}
}
