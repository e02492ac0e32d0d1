package repository

import (
	"context"
	"strings"

	"github.com/taskflow/taskflow-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

var sortColumns = map[TaskSortField]string{
	SortByCreatedAt: "tasks.created_at",
	SortByUpdatedAt: "tasks.updated_at",
	SortByDueDate:   "tasks.due_date",
	SortByPriority:  "CASE tasks.priority WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 ELSE 0 END",
	SortByTitle:     "tasks.title",
	SortByStatus:    "tasks.status",
}

// likeEscaper escapes LIKE metacharacters with '!', which needs no quoting
// in any supported dialect.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// FindByID finds a task by ID
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := r.db.WithContext(ctx).First(&task, id).Error; err != nil {
		return nil, translateError(err)
	}
	return &task, nil
}

// List retrieves a user's tasks with filtering and sorting
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, error) {
	tasks := []models.Task{}

	query := r.db.WithContext(ctx).Model(&models.Task{}).Where("tasks.user_id = ?", filter.UserID)

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.Priority != nil {
		query = query.Where("tasks.priority = ?", *filter.Priority)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		query = query.Where(
			"(LOWER(tasks.title) LIKE ? ESCAPE '!' OR LOWER(tasks.description) LIKE ? ESCAPE '!')",
			pattern, pattern,
		)
	}

	query = applySort(query, filter.SortBy, filter.SortDesc)

	if err := query.Find(&tasks).Error; err != nil {
		return nil, err
	}

	return tasks, nil
}

func applySort(query *gorm.DB, field TaskSortField, desc bool) *gorm.DB {
	column, ok := sortColumns[field]
	if !ok {
		column = sortColumns[SortByCreatedAt]
	}

	direction := "ASC"
	if desc {
		direction = "DESC"
	}

	if field == SortByDueDate {
		// Tasks without a due date always sort last.
		query = query.Order("CASE WHEN tasks.due_date IS NULL THEN 1 ELSE 0 END")
	}

	return query.Order(column + " " + direction).Order("tasks.id " + direction)
}

// Update saves all fields of a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Save(task).Error
}

// Delete permanently deletes a task
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) error {
	result := r.db.WithContext(ctx).Delete(&models.Task{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type statusCount struct {
	Status models.TaskStatus
	Count  int64
}

// CountByStatus returns the number of a user's tasks per status
func (r *GormTaskRepository) CountByStatus(ctx context.Context, userID uint64) (map[models.TaskStatus]int64, error) {
	var rows []statusCount
	err := r.db.WithContext(ctx).
		Model(&models.Task{}).
		Select("status, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TaskStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
