package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/testutil"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func titles(tasks []models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.Title
	}
	return out
}

func TestTaskRepository_ListScopesToUser(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com")
	testutil.CreateTask(t, db, alice.ID, "Alice task", models.TaskStatusPending, models.TaskPriorityLow)
	testutil.CreateTask(t, db, bob.ID, "Bob task", models.TaskStatusPending, models.TaskPriorityLow)

	tasks, err := repo.List(ctx, TaskFilter{UserID: alice.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alice task"}, titles(tasks))
}

func TestTaskRepository_ListFilters(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	testutil.CreateTask(t, db, user.ID, "Write report", models.TaskStatusPending, models.TaskPriorityHigh)
	testutil.CreateTask(t, db, user.ID, "Buy milk", models.TaskStatusCompleted, models.TaskPriorityHigh)
	testutil.CreateTask(t, db, user.ID, "Call mom", models.TaskStatusPending, models.TaskPriorityLow)

	status := models.TaskStatusPending
	priority := models.TaskPriorityHigh

	tasks, err := repo.List(ctx, TaskFilter{UserID: user.ID, Status: &status})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Write report", "Call mom"}, titles(tasks))

	tasks, err = repo.List(ctx, TaskFilter{UserID: user.ID, Status: &status, Priority: &priority})
	require.NoError(t, err)
	assert.Equal(t, []string{"Write report"}, titles(tasks))
}

func TestTaskRepository_ListSearch(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	report := testutil.CreateTask(t, db, user.ID, "Quarterly REPORT", models.TaskStatusPending, models.TaskPriorityLow)
	groceries := testutil.CreateTask(t, db, user.ID, "Groceries", models.TaskStatusPending, models.TaskPriorityLow)
	groceries.Description = "remember the report folder"
	require.NoError(t, db.Save(groceries).Error)
	testutil.CreateTask(t, db, user.ID, "100% done", models.TaskStatusPending, models.TaskPriorityLow)

	tasks, err := repo.List(ctx, TaskFilter{UserID: user.ID, Search: "Report"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{report.Title, groceries.Title}, titles(tasks))

	// LIKE wildcards in the search term are matched literally.
	tasks, err = repo.List(ctx, TaskFilter{UserID: user.ID, Search: "0%"})
	require.NoError(t, err)
	assert.Equal(t, []string{"100% done"}, titles(tasks))

	tasks, err = repo.List(ctx, TaskFilter{UserID: user.ID, Search: "_"})
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskRepository_ListSort(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	testutil.CreateTask(t, db, user.ID, "medium", models.TaskStatusPending, models.TaskPriorityMedium)
	testutil.CreateTask(t, db, user.ID, "high", models.TaskStatusPending, models.TaskPriorityHigh)
	testutil.CreateTask(t, db, user.ID, "low", models.TaskStatusPending, models.TaskPriorityLow)

	tasks, err := repo.List(ctx, TaskFilter{UserID: user.ID, SortBy: SortByPriority})
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "medium", "high"}, titles(tasks))

	tasks, err = repo.List(ctx, TaskFilter{UserID: user.ID, SortBy: SortByPriority, SortDesc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "medium", "low"}, titles(tasks))

	tasks, err = repo.List(ctx, TaskFilter{UserID: user.ID, SortBy: SortByTitle})
	require.NoError(t, err)
	assert.Equal(t, []string{"high", "low", "medium"}, titles(tasks))

	// Newest first by default; id breaks created_at ties.
	tasks, err = repo.List(ctx, TaskFilter{UserID: user.ID, SortBy: SortByCreatedAt, SortDesc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "high", "medium"}, titles(tasks))
}

func TestTaskRepository_ListSortDueDateNullsLast(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	now := time.Now().UTC()
	later := testutil.CreateTask(t, db, user.ID, "later", models.TaskStatusPending, models.TaskPriorityLow)
	later.DueDate = ptrTime(now.Add(48 * time.Hour))
	require.NoError(t, db.Save(later).Error)
	testutil.CreateTask(t, db, user.ID, "undated", models.TaskStatusPending, models.TaskPriorityLow)
	sooner := testutil.CreateTask(t, db, user.ID, "sooner", models.TaskStatusPending, models.TaskPriorityLow)
	sooner.DueDate = ptrTime(now.Add(time.Hour))
	require.NoError(t, db.Save(sooner).Error)

	tasks, err := repo.List(ctx, TaskFilter{UserID: user.ID, SortBy: SortByDueDate})
	require.NoError(t, err)
	assert.Equal(t, []string{"sooner", "later", "undated"}, titles(tasks))

	tasks, err = repo.List(ctx, TaskFilter{UserID: user.ID, SortBy: SortByDueDate, SortDesc: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"later", "sooner", "undated"}, titles(tasks))
}

func TestTaskRepository_CountByStatus(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	other := testutil.CreateUser(t, db, "Bob", "bob@example.com")
	testutil.CreateTask(t, db, user.ID, "a", models.TaskStatusPending, models.TaskPriorityLow)
	testutil.CreateTask(t, db, user.ID, "b", models.TaskStatusPending, models.TaskPriorityLow)
	testutil.CreateTask(t, db, user.ID, "c", models.TaskStatusCompleted, models.TaskPriorityLow)
	testutil.CreateTask(t, db, other.ID, "d", models.TaskStatusInProgress, models.TaskPriorityLow)

	counts, err := repo.CountByStatus(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, map[models.TaskStatus]int64{
		models.TaskStatusPending:   2,
		models.TaskStatusCompleted: 1,
	}, counts)
}

func TestTaskRepository_CRUD(t *testing.T) {
	db := testutil.NewDB(t)
	repo := NewTaskRepository(db)
	ctx := context.Background()

	user := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	task := &models.Task{
		Title:    "Plan trip",
		Status:   models.TaskStatusPending,
		Priority: models.TaskPriorityMedium,
		Tags:     models.StringList{"travel", "summer"},
		UserID:   user.ID,
	}
	require.NoError(t, repo.Create(ctx, task))
	require.NotZero(t, task.ID)

	found, err := repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StringList{"travel", "summer"}, found.Tags)

	found.Status = models.TaskStatusCompleted
	require.NoError(t, repo.Update(ctx, found))

	found, err = repo.FindByID(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, found.Status)

	require.NoError(t, repo.Delete(ctx, task.ID))
	_, err = repo.FindByID(ctx, task.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, task.ID), ErrNotFound)
}

func TestTaskRepository_CountByStatusDatabaseError(t *testing.T) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer sqlDB.Close()

	db, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Discard})
	require.NoError(t, err)

	mock.ExpectQuery("SELECT status, COUNT").WillReturnError(errors.New("connection reset"))

	repo := NewTaskRepository(db)
	_, err = repo.CountByStatus(context.Background(), 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	require.NoError(t, mock.ExpectationsWereMet())
}

func ptrTime(t time.Time) *time.Time {
	return &t
}
