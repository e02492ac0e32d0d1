package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/utils"
)

var (
	ErrTaskNotFound           = errors.New("task not found")
	ErrTaskForbidden          = errors.New("not authorized to access this task")
	ErrTitleRequired          = errors.New("title is required")
	ErrTitleTooLong           = errors.New("title is too long")
	ErrDescriptionTooLong     = errors.New("description is too long")
	ErrInvalidStatus          = errors.New("status must be pending, in-progress, or completed")
	ErrInvalidPriority        = errors.New("priority must be low, medium, or high")
	ErrInvalidSortField       = errors.New("sortBy must be one of createdAt, updatedAt, dueDate, priority, title, status")
	ErrInvalidSortOrder       = errors.New("order must be asc or desc")
	ErrTooManyTags            = errors.New("too many tags")
	ErrTagTooLong             = errors.New("tag is too long")
	ErrSuggestTextRequired    = errors.New("text is required")
	ErrSuggestTextTooLong     = errors.New("text is too long")
	ErrAIServiceNotConfigured = errors.New("AI service is not configured")
)

// StatsCache caches per-user task stats. Implementations must tolerate misses.
type StatsCache interface {
	Get(ctx context.Context, userID uint64) (models.TaskStats, bool)
	Set(ctx context.Context, userID uint64, stats models.TaskStats)
	Evict(ctx context.Context, userID uint64)
}

// TaskService handles task business logic
type TaskService struct {
	taskRepo   repository.TaskRepository
	statsCache StatsCache
	suggester  TaskSuggester
}

// NewTaskService creates a new TaskService. statsCache and suggester may be nil.
func NewTaskService(taskRepo repository.TaskRepository, statsCache StatsCache, suggester TaskSuggester) *TaskService {
	return &TaskService{
		taskRepo:   taskRepo,
		statsCache: statsCache,
		suggester:  suggester,
	}
}

// ListTasksInput holds the raw list query parameters
type ListTasksInput struct {
	UserID   uint64
	Status   string
	Priority string
	Search   string
	SortBy   string
	Order    string
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	UserID      uint64
	Title       string
	Description string
	Status      models.TaskStatus
	Priority    models.TaskPriority
	DueDate     *time.Time
	Tags        []string
}

// UpdateTaskInput represents input for updating a task; nil fields are kept
type UpdateTaskInput struct {
	Title        *string
	Description  *string
	Status       *models.TaskStatus
	Priority     *models.TaskPriority
	DueDate      *time.Time
	ClearDueDate bool
	Tags         *[]string
}

// ListTasks returns the user's tasks matching the provided filters
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, error) {
	filter := repository.TaskFilter{
		UserID:   input.UserID,
		Search:   strings.TrimSpace(input.Search),
		SortBy:   repository.SortByCreatedAt,
		SortDesc: true,
	}

	if input.Status != "" {
		status := models.TaskStatus(input.Status)
		if !status.Valid() {
			return nil, ErrInvalidStatus
		}
		filter.Status = &status
	}
	if input.Priority != "" {
		priority := models.TaskPriority(input.Priority)
		if !priority.Valid() {
			return nil, ErrInvalidPriority
		}
		filter.Priority = &priority
	}
	if input.SortBy != "" {
		filter.SortBy = repository.TaskSortField(input.SortBy)
		if !filter.SortBy.Valid() {
			return nil, ErrInvalidSortField
		}
	}
	switch strings.ToLower(input.Order) {
	case "", "desc":
	case "asc":
		filter.SortDesc = false
	default:
		return nil, ErrInvalidSortOrder
	}

	tasks, err := s.taskRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}

	return tasks, nil
}

// GetOwnedTask returns a task if userID owns it
func (s *TaskService) GetOwnedTask(ctx context.Context, taskID, userID uint64) (*models.Task, error) {
	task, err := s.taskRepo.FindByID(ctx, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	if task.UserID != userID {
		return nil, ErrTaskForbidden
	}

	return task, nil
}

// CreateTask validates input and creates a task owned by input.UserID
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	title, err := validateTitle(input.Title)
	if err != nil {
		return nil, err
	}
	description, err := validateDescription(input.Description)
	if err != nil {
		return nil, err
	}

	if input.Status == "" {
		input.Status = models.TaskStatusPending
	}
	if !input.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	if input.Priority == "" {
		input.Priority = models.TaskPriorityMedium
	}
	if !input.Priority.Valid() {
		return nil, ErrInvalidPriority
	}

	tags, err := validateTags(input.Tags)
	if err != nil {
		return nil, err
	}

	task := &models.Task{
		Title:       title,
		Description: description,
		Status:      input.Status,
		Priority:    input.Priority,
		DueDate:     input.DueDate,
		Tags:        tags,
		UserID:      input.UserID,
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	s.evictStats(ctx, task.UserID)
	return task, nil
}

// UpdateTask applies the provided fields to a task already checked for ownership
func (s *TaskService) UpdateTask(ctx context.Context, task *models.Task, input UpdateTaskInput) (*models.Task, error) {
	if input.Title != nil {
		title, err := validateTitle(*input.Title)
		if err != nil {
			return nil, err
		}
		task.Title = title
	}
	if input.Description != nil {
		description, err := validateDescription(*input.Description)
		if err != nil {
			return nil, err
		}
		task.Description = description
	}
	if input.Status != nil {
		if !input.Status.Valid() {
			return nil, ErrInvalidStatus
		}
		task.Status = *input.Status
	}
	if input.Priority != nil {
		if !input.Priority.Valid() {
			return nil, ErrInvalidPriority
		}
		task.Priority = *input.Priority
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.Tags != nil {
		tags, err := validateTags(*input.Tags)
		if err != nil {
			return nil, err
		}
		task.Tags = tags
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	s.evictStats(ctx, task.UserID)
	return task, nil
}

// DeleteTask deletes a task already checked for ownership
func (s *TaskService) DeleteTask(ctx context.Context, task *models.Task) error {
	if err := s.taskRepo.Delete(ctx, task.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrTaskNotFound
		}
		return fmt.Errorf("failed to delete task: %w", err)
	}

	s.evictStats(ctx, task.UserID)
	return nil
}

// GetStats returns the user's task counts per status
func (s *TaskService) GetStats(ctx context.Context, userID uint64) (models.TaskStats, error) {
	if s.statsCache != nil {
		if stats, ok := s.statsCache.Get(ctx, userID); ok {
			return stats, nil
		}
	}

	counts, err := s.taskRepo.CountByStatus(ctx, userID)
	if err != nil {
		return models.TaskStats{}, fmt.Errorf("failed to count tasks: %w", err)
	}

	stats := models.NewTaskStats(counts)
	if s.statsCache != nil {
		s.statsCache.Set(ctx, userID, stats)
	}
	return stats, nil
}

// SuggestedTask is a validated, unsaved task extracted from text
type SuggestedTask struct {
	Title       string
	Description string
	Priority    models.TaskPriority
	DueDate     *time.Time
}

// SuggestTasks asks the AI service for tasks found in text. Suggestions are
// not persisted; invalid fields are dropped rather than failing the request.
func (s *TaskService) SuggestTasks(ctx context.Context, text string) ([]SuggestedTask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrSuggestTextRequired
	}
	if len([]rune(text)) > constants.MaxSuggestTextLength {
		return nil, ErrSuggestTextTooLong
	}

	if s.suggester == nil {
		return nil, ErrAIServiceNotConfigured
	}

	generated, err := s.suggester.GenerateTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tasks: %w", err)
	}

	suggestions := make([]SuggestedTask, 0, len(generated))
	cutoff := time.Now().Add(-24 * time.Hour)
	for _, g := range generated {
		title, err := validateTitle(g.Title)
		if err != nil {
			continue
		}

		suggestion := SuggestedTask{
			Title:       title,
			Description: truncateRunes(strings.TrimSpace(g.Description), constants.MaxTaskDescLength),
			Priority:    models.TaskPriority(strings.ToLower(strings.TrimSpace(g.Priority))),
		}
		if !suggestion.Priority.Valid() {
			suggestion.Priority = models.TaskPriorityMedium
		}
		if g.DueDate != "" {
			if due, err := utils.ParseDate(g.DueDate); err == nil && due.After(cutoff) {
				suggestion.DueDate = &due
			}
		}

		suggestions = append(suggestions, suggestion)
		if len(suggestions) == constants.MaxSuggestedTasks {
			break
		}
	}

	return suggestions, nil
}

func (s *TaskService) evictStats(ctx context.Context, userID uint64) {
	if s.statsCache != nil {
		s.statsCache.Evict(ctx, userID)
	}
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if len([]rune(title)) > constants.MaxTaskTitleLength {
		return "", ErrTitleTooLong
	}
	return title, nil
}

func validateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if len([]rune(description)) > constants.MaxTaskDescLength {
		return "", ErrDescriptionTooLong
	}
	return description, nil
}

func validateTags(tags []string) (models.StringList, error) {
	normalized := utils.NormalizeTags(tags)
	if len(normalized) > constants.MaxTagsPerTask {
		return nil, ErrTooManyTags
	}
	for _, tag := range normalized {
		if len([]rune(tag)) > constants.MaxTagLength {
			return nil, ErrTagTooLong
		}
	}
	return models.StringList(normalized), nil
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
