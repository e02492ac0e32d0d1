package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/dto"
	apierrors "github.com/taskflow/taskflow-api/internal/errors"
	"github.com/taskflow/taskflow-api/internal/middleware"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/services"
	"github.com/taskflow/taskflow-api/internal/utils"
)

const suggestTimeout = 30 * time.Second

type TaskHandler struct {
	taskService *services.TaskService
}

func NewTaskHandler(taskService *services.TaskService) *TaskHandler {
	return &TaskHandler{
		taskService: taskService,
	}
}

// ListTasks returns the current user's tasks
// Supports status, priority, search, sortBy and order query parameters
func (h *TaskHandler) ListTasks(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	tasks, err := h.taskService.ListTasks(c.Request.Context(), services.ListTasksInput{
		UserID:   userID,
		Status:   c.Query("status"),
		Priority: c.Query("priority"),
		Search:   c.Query("search"),
		SortBy:   c.Query("sortBy"),
		Order:    c.Query("order"),
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OKList(dto.ToTaskDTOs(tasks), len(tasks)))
}

// GetStats returns per-status task counts for the current user
func (h *TaskHandler) GetStats(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	stats, err := h.taskService.GetStats(c.Request.Context(), userID)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToTaskStatsDTO(stats)))
}

// GetTask returns a specific task by ID
// Task is already loaded by RequireTaskOwnership middleware
func (h *TaskHandler) GetTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToTaskDTO(*task)))
}

// CreateTask creates a new task owned by the current user
func (h *TaskHandler) CreateTask(c *gin.Context) {
	userID, exists := middleware.GetUserID(c)
	if !exists {
		apierrors.Unauthorized(c, "")
		return
	}

	type CreateTaskRequest struct {
		Title       string              `json:"title"`
		Description string              `json:"description"`
		Status      models.TaskStatus   `json:"status"`
		Priority    models.TaskPriority `json:"priority"`
		DueDate     utils.NullableDate  `json:"dueDate"`
		Tags        []string            `json:"tags"`
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid request body")
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), services.CreateTaskInput{
		UserID:      userID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate.Value,
		Tags:        req.Tags,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.OK(dto.ToTaskDTO(*task)))
}

// UpdateTask updates the provided fields of an existing task
func (h *TaskHandler) UpdateTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	// Pointers tell absent fields apart; dueDate also distinguishes null
	type UpdateTaskRequest struct {
		Title       *string              `json:"title"`
		Description *string              `json:"description"`
		Status      *models.TaskStatus   `json:"status"`
		Priority    *models.TaskPriority `json:"priority"`
		DueDate     utils.NullableDate   `json:"dueDate"`
		Tags        *[]string            `json:"tags"`
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Invalid request body")
		return
	}

	updated, err := h.taskService.UpdateTask(c.Request.Context(), task, services.UpdateTaskInput{
		Title:        req.Title,
		Description:  req.Description,
		Status:       req.Status,
		Priority:     req.Priority,
		DueDate:      req.DueDate.Value,
		ClearDueDate: req.DueDate.Set && req.DueDate.Value == nil,
		Tags:         req.Tags,
	})
	if err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OK(dto.ToTaskDTO(*updated)))
}

// DeleteTask deletes a task
func (h *TaskHandler) DeleteTask(c *gin.Context) {
	task, ok := middleware.GetTask(c)
	if !ok {
		apierrors.InternalError(c, "")
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), task); err != nil {
		respondTaskError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.OKWithMessage("Task deleted successfully", gin.H{}))
}

// SuggestTasks extracts task suggestions from free-form text using AI.
// Suggestions are returned to the client and not saved.
func (h *TaskHandler) SuggestTasks(c *gin.Context) {
	type SuggestTasksRequest struct {
		Text string `json:"text" binding:"required"`
	}

	var req SuggestTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err, "Text is required")
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), suggestTimeout)
	defer cancel()

	suggestions, err := h.taskService.SuggestTasks(ctx, req.Text)
	if err != nil {
		respondTaskError(c, err)
		return
	}

	items := make([]dto.SuggestedTaskDTO, len(suggestions))
	for i, s := range suggestions {
		items[i] = dto.SuggestedTaskDTO{
			Title:       s.Title,
			Description: s.Description,
			Priority:    s.Priority,
			DueDate:     s.DueDate,
		}
	}

	c.JSON(http.StatusOK, dto.OKList(items, len(items)))
}

func respondTaskError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTitleRequired):
		apierrors.BadRequest(c, "Title is required")
	case errors.Is(err, services.ErrTitleTooLong):
		apierrors.BadRequest(c, fmt.Sprintf("Title cannot exceed %d characters", constants.MaxTaskTitleLength))
	case errors.Is(err, services.ErrDescriptionTooLong):
		apierrors.BadRequest(c, fmt.Sprintf("Description cannot exceed %d characters", constants.MaxTaskDescLength))
	case errors.Is(err, services.ErrInvalidStatus):
		apierrors.BadRequest(c, "Status must be pending, in-progress, or completed")
	case errors.Is(err, services.ErrInvalidPriority):
		apierrors.BadRequest(c, "Priority must be low, medium, or high")
	case errors.Is(err, services.ErrInvalidSortField):
		apierrors.BadRequest(c, "sortBy must be one of createdAt, updatedAt, dueDate, priority, title, status")
	case errors.Is(err, services.ErrInvalidSortOrder):
		apierrors.BadRequest(c, "order must be asc or desc")
	case errors.Is(err, services.ErrTooManyTags):
		apierrors.BadRequest(c, fmt.Sprintf("A task cannot have more than %d tags", constants.MaxTagsPerTask))
	case errors.Is(err, services.ErrTagTooLong):
		apierrors.BadRequest(c, fmt.Sprintf("Tags cannot exceed %d characters", constants.MaxTagLength))
	case errors.Is(err, services.ErrSuggestTextRequired):
		apierrors.BadRequest(c, "Text is required")
	case errors.Is(err, services.ErrSuggestTextTooLong):
		apierrors.BadRequest(c, fmt.Sprintf("Text cannot exceed %d characters", constants.MaxSuggestTextLength))
	case errors.Is(err, services.ErrTaskNotFound):
		apierrors.NotFound(c, "Task not found")
	case errors.Is(err, services.ErrTaskForbidden):
		apierrors.Forbidden(c, "Not authorized to access this task")
	case errors.Is(err, services.ErrAIServiceNotConfigured):
		apierrors.ServiceUnavailable(c, "AI service is not configured. Please set OPENAI_API_KEY environment variable.")
	default:
		_ = c.Error(err)
		apierrors.InternalError(c, "")
	}
}
