// services/task_service.go - Sprint board task business logic
package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/Prem30-jr/Hack-Tracker/apperr"
	"github.com/Prem30-jr/Hack-Tracker/models"
)

type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

type CreateTaskInput struct {
	Title        string
	Description  string
	Priority     string
	Deadline     *time.Time
	AssignedToID *uint
}

// CreateTask creates a task on the team's board.
func (s *TaskService) CreateTask(teamID, createdBy uint, input CreateTaskInput) (*models.Task, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperr.Validation("Task title is required")
	}

	priority := models.TaskPriorityMedium
	if input.Priority != "" {
		priority = models.TaskPriority(input.Priority)
		if !models.ValidTaskPriority(priority) {
			return nil, apperr.Validation("Invalid task priority")
		}
	}

	task := &models.Task{
		Title:        strings.TrimSpace(input.Title),
		Description:  input.Description,
		Status:       models.TaskStatusTodo,
		Priority:     priority,
		Deadline:     input.Deadline,
		TeamID:       teamID,
		AssignedToID: input.AssignedToID,
		CreatedByID:  createdBy,
	}
	if err := s.db.Create(task).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return s.getTask(task.ID)
}

// ListTasks returns every task on the team's board with assignee and
// creator resolved.
func (s *TaskService) ListTasks(teamID uint) ([]models.Task, error) {
	var tasks []models.Task
	err := s.db.Where("team_id = ?", teamID).
		Preload("AssignedTo").
		Preload("CreatedBy").
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return tasks, nil
}

type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *string
	Priority     *string
	Deadline     *time.Time
	AssignedToID *uint
}

// UpdateTask applies a partial update after verifying the task belongs
// to the given team.
func (s *TaskService) UpdateTask(teamID, taskID uint, input UpdateTaskInput) (*models.Task, error) {
	task, err := s.getTask(taskID)
	if err != nil {
		return nil, err
	}
	if task.TeamID != teamID {
		return nil, apperr.Validation("Task does not belong to this team")
	}

	updates := map[string]interface{}{"updated_at": time.Now()}
	if input.Title != nil {
		if strings.TrimSpace(*input.Title) == "" {
			return nil, apperr.Validation("Task title is required")
		}
		updates["title"] = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Status != nil {
		status := models.TaskStatus(*input.Status)
		if !models.ValidTaskStatus(status) {
			return nil, apperr.Validation("Invalid task status")
		}
		updates["status"] = status
	}
	if input.Priority != nil {
		priority := models.TaskPriority(*input.Priority)
		if !models.ValidTaskPriority(priority) {
			return nil, apperr.Validation("Invalid task priority")
		}
		updates["priority"] = priority
	}
	if input.Deadline != nil {
		updates["deadline"] = *input.Deadline
	}
	if input.AssignedToID != nil {
		updates["assigned_to_id"] = *input.AssignedToID
	}

	if err := s.db.Model(&models.Task{}).Where("id = ?", taskID).Updates(updates).Error; err != nil {
		return nil, apperr.Internal(err)
	}
	return s.getTask(taskID)
}

// DeleteTask removes a task from the team's board.
func (s *TaskService) DeleteTask(teamID, taskID uint) error {
	task, err := s.getTask(taskID)
	if err != nil {
		return err
	}
	if task.TeamID != teamID {
		return apperr.Validation("Task does not belong to this team")
	}

	if err := s.db.Delete(&models.Task{}, task.ID).Error; err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *TaskService) getTask(taskID uint) (*models.Task, error) {
	var task models.Task
	err := s.db.Where("id = ?", taskID).
		Preload("AssignedTo").
		Preload("CreatedBy").
		First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("Task not found")
		}
		return nil, apperr.Internal(err)
	}
	return &task, nil
}
