// handlers/tasks.go - Sprint board endpoints
package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
	"github.com/Prem30-jr/Hack-Tracker/middleware"
	"github.com/Prem30-jr/Hack-Tracker/services"
	"github.com/Prem30-jr/Hack-Tracker/utils"
)

type TaskHandler struct {
	tasks  *services.TaskService
	events *services.TeamEventBus
}

func NewTaskHandler(tasks *services.TaskService, events *services.TeamEventBus) *TaskHandler {
	return &TaskHandler{tasks: tasks, events: events}
}

type createTaskRequest struct {
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Priority     string     `json:"priority"`
	Deadline     *time.Time `json:"deadline"`
	AssignedToID *uint      `json:"assignedTo"`
}

// Create adds a task to the team board.
// POST /api/tasks/:teamId
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var req createTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}

	user := middleware.CurrentUser(c)
	team := middleware.CurrentTeam(c)
	task, err := h.tasks.CreateTask(team.ID, user.ID, services.CreateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Priority:     req.Priority,
		Deadline:     req.Deadline,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		return utils.Error(c, err)
	}

	h.events.Publish(services.TeamEvent{
		Type:    services.EventTaskCreated,
		TeamID:  team.ID,
		Actor:   user.DisplayName,
		Payload: task,
	})
	return c.Status(fiber.StatusCreated).JSON(task)
}

// List returns every task on the team board.
// GET /api/tasks/:teamId
func (h *TaskHandler) List(c *fiber.Ctx) error {
	tasks, err := h.tasks.ListTasks(middleware.CurrentTeam(c).ID)
	if err != nil {
		return utils.Error(c, err)
	}
	return c.JSON(tasks)
}

type updateTaskRequest struct {
	Title        *string    `json:"title"`
	Description  *string    `json:"description"`
	Status       *string    `json:"status"`
	Priority     *string    `json:"priority"`
	Deadline     *time.Time `json:"deadline"`
	AssignedToID *uint      `json:"assignedTo"`
}

// Update applies a partial task update.
// PATCH /api/tasks/:teamId/:taskId
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	taskID, err := strconv.ParseUint(c.Params("taskId"), 10, 32)
	if err != nil {
		return utils.Error(c, apperr.Validation("Invalid task ID"))
	}

	var req updateTaskRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, apperr.Validation("Invalid request body"))
	}

	team := middleware.CurrentTeam(c)
	task, err := h.tasks.UpdateTask(team.ID, uint(taskID), services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		Deadline:     req.Deadline,
		AssignedToID: req.AssignedToID,
	})
	if err != nil {
		return utils.Error(c, err)
	}

	h.events.Publish(services.TeamEvent{
		Type:    services.EventTaskUpdated,
		TeamID:  team.ID,
		Actor:   middleware.CurrentUser(c).DisplayName,
		Payload: task,
	})
	return c.JSON(task)
}

// Delete removes a task, admin only.
// DELETE /api/tasks/:teamId/:taskId
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	taskID, err := strconv.ParseUint(c.Params("taskId"), 10, 32)
	if err != nil {
		return utils.Error(c, apperr.Validation("Invalid task ID"))
	}

	team := middleware.CurrentTeam(c)
	if err := h.tasks.DeleteTask(team.ID, uint(taskID)); err != nil {
		return utils.Error(c, err)
	}

	h.events.Publish(services.TeamEvent{
		Type:    services.EventTaskDeleted,
		TeamID:  team.ID,
		Actor:   middleware.CurrentUser(c).DisplayName,
		Payload: fiber.Map{"task_id": taskID},
	})
	return c.JSON(fiber.Map{"message": "Task removed"})
}
