package repository

import (
	"context"
	"errors"

	"github.com/taskflow/taskflow-api/internal/models"
)

var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("repository: record not found")
	// ErrDuplicateEmail is returned when a user write violates the unique email index.
	ErrDuplicateEmail = errors.New("repository: email already in use")
)

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// FindByID finds a task by ID
	FindByID(ctx context.Context, id uint64) (*models.Task, error)

	// List retrieves a user's tasks with filtering and sorting
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	// Update saves all fields of a task
	Update(ctx context.Context, task *models.Task) error

	// Delete permanently deletes a task
	Delete(ctx context.Context, id uint64) error

	// CountByStatus returns the number of a user's tasks per status
	CountByStatus(ctx context.Context, userID uint64) (map[models.TaskStatus]int64, error)
}

// TaskSortField names a sortable task attribute as exposed by the API.
type TaskSortField string

const (
	SortByCreatedAt TaskSortField = "createdAt"
	SortByUpdatedAt TaskSortField = "updatedAt"
	SortByDueDate   TaskSortField = "dueDate"
	SortByPriority  TaskSortField = "priority"
	SortByTitle     TaskSortField = "title"
	SortByStatus    TaskSortField = "status"
)

// Valid reports whether f is a supported sort field.
func (f TaskSortField) Valid() bool {
	_, ok := sortColumns[f]
	return ok
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	UserID   uint64
	Status   *models.TaskStatus
	Priority *models.TaskPriority
	Search   string
	SortBy   TaskSortField
	SortDesc bool
}

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *models.User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uint64) (*models.User, error)

	// FindByEmail finds a user by normalized email
	FindByEmail(ctx context.Context, email string) (*models.User, error)

	// Update saves all fields of a user
	Update(ctx context.Context, user *models.User) error
}
