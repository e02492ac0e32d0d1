package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/taskflow/taskflow-api/internal/constants"
	"github.com/taskflow/taskflow-api/internal/dto"
	"github.com/taskflow/taskflow-api/internal/models"
	"github.com/taskflow/taskflow-api/internal/repository"
	"github.com/taskflow/taskflow-api/internal/services"
	"github.com/taskflow/taskflow-api/internal/testutil"
	"gorm.io/gorm"
)

type stubSuggester struct {
	tasks []services.GeneratedTask
}

func (s stubSuggester) GenerateTasksFromText(context.Context, string) ([]services.GeneratedTask, error) {
	return s.tasks, nil
}

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	suite.Suite
	db      *gorm.DB
	service *services.TaskService
	handler *TaskHandler
}

// SetupTest runs before each test
func (suite *TaskHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)

	suite.db = testutil.NewDB(suite.T())
	suite.service = services.NewTaskService(repository.NewTaskRepository(suite.db), nil, nil)

	// Create handler (without AI service for tests)
	suite.handler = NewTaskHandler(suite.service)
}

func (suite *TaskHandlerTestSuite) createTestUser(email string) *models.User {
	return testutil.CreateUser(suite.T(), suite.db, "Test User", email)
}

func (suite *TaskHandlerTestSuite) createTestTask(title string, userID uint64) *models.Task {
	return testutil.CreateTask(suite.T(), suite.db, userID, title, models.TaskStatusPending, models.TaskPriorityMedium)
}

// Helper function to create authenticated context
func (suite *TaskHandlerTestSuite) createAuthContext(method, url string, body []byte, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	c.Set(constants.ContextKeyUserID, userID)

	return c, w
}

// Helper function to set task context (simulates RequireTaskOwnership middleware)
func (suite *TaskHandlerTestSuite) setTaskContext(c *gin.Context, task *models.Task) {
	c.Set(constants.ContextKeyTask, task)
}

type taskResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    dto.TaskDTO `json:"data"`
}

type taskListResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Data    []dto.TaskDTO `json:"data"`
}

func (suite *TaskHandlerTestSuite) TestListTasks_Success() {
	user := suite.createTestUser("test@example.com")
	other := suite.createTestUser("other@example.com")
	task := suite.createTestTask("Test Task", user.ID)
	suite.createTestTask("Not Mine", other.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user.ID)

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response taskListResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(suite.T(), response.Success)
	assert.Equal(suite.T(), 1, response.Count)
	suite.Require().Len(response.Data, 1)
	assert.Equal(suite.T(), task.Title, response.Data[0].Title)
	assert.Equal(suite.T(), user.ID, response.Data[0].User)
}

func (suite *TaskHandlerTestSuite) TestListTasks_EmptyIsArray() {
	user := suite.createTestUser("test@example.com")

	c, w := suite.createAuthContext("GET", "/api/tasks", nil, user.ID)
	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"success":true,"count":0,"data":[]}`, w.Body.String())
}

func (suite *TaskHandlerTestSuite) TestListTasks_InvalidQuery() {
	user := suite.createTestUser("test@example.com")

	for _, query := range []string{"status=done", "priority=urgent", "sortBy=owner", "order=up"} {
		c, w := suite.createAuthContext("GET", "/api/tasks?"+query, nil, user.ID)
		suite.handler.ListTasks(c)
		assert.Equal(suite.T(), http.StatusBadRequest, w.Code, query)
	}
}

func (suite *TaskHandlerTestSuite) TestListTasks_Unauthorized() {
	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/tasks", nil)
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	suite.handler.ListTasks(c)

	assert.Equal(suite.T(), http.StatusUnauthorized, w.Code)
}

func (suite *TaskHandlerTestSuite) TestGetTask_Success() {
	user := suite.createTestUser("test@example.com")
	task := suite.createTestTask("Test Task", user.ID)

	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, user.ID)
	suite.setTaskContext(c, task)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response taskResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), task.ID, response.Data.ID)
	assert.Equal(suite.T(), task.Title, response.Data.Title)
	assert.Equal(suite.T(), []string{}, response.Data.Tags)
}

func (suite *TaskHandlerTestSuite) TestGetTask_NotFoundInContext() {
	user := suite.createTestUser("test@example.com")
	c, w := suite.createAuthContext("GET", "/api/tasks/1", nil, user.ID)

	suite.handler.GetTask(c)

	assert.Equal(suite.T(), http.StatusInternalServerError, w.Code)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	user := suite.createTestUser("test@example.com")

	requestBody := map[string]interface{}{
		"title":       "New Task",
		"description": "Task Description",
		"priority":    "high",
		"dueDate":     "2026-11-01",
		"tags":        []string{"work", " work ", "urgent"},
		"user":        9999,
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("POST", "/api/tasks", body, user.ID)

	suite.handler.CreateTask(c)

	assert.Equal(suite.T(), http.StatusCreated, w.Code)

	var response taskResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "New Task", response.Data.Title)
	assert.Equal(suite.T(), models.TaskStatusPending, response.Data.Status)
	assert.Equal(suite.T(), models.TaskPriorityHigh, response.Data.Priority)
	assert.Equal(suite.T(), []string{"work", "urgent"}, response.Data.Tags)
	assert.Equal(suite.T(), user.ID, response.Data.User)
	suite.Require().NotNil(response.Data.DueDate)
	assert.True(suite.T(), response.Data.DueDate.Equal(time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC)))
}

func (suite *TaskHandlerTestSuite) TestCreateTask_InvalidRequest() {
	user := suite.createTestUser("test@example.com")

	tests := []struct {
		name    string
		body    string
		message string
	}{
		{"missing title", `{"description":"no title"}`, "Title is required"},
		{"blank title", `{"title":"   "}`, "Title is required"},
		{"bad status", `{"title":"x","status":"done"}`, "Status must be pending, in-progress, or completed"},
		{"bad priority", `{"title":"x","priority":"urgent"}`, "Priority must be low, medium, or high"},
		{"bad date", `{"title":"x","dueDate":"next tuesday"}`, "Invalid request body"},
		{"malformed", `{"title":`, "Invalid request body"},
	}

	for _, tt := range tests {
		suite.Run(tt.name, func() {
			c, w := suite.createAuthContext("POST", "/api/tasks", []byte(tt.body), user.ID)
			suite.handler.CreateTask(c)

			assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
			var response map[string]interface{}
			suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
			assert.Equal(suite.T(), false, response["success"])
			assert.Equal(suite.T(), tt.message, response["message"])
		})
	}

	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_Success() {
	user := suite.createTestUser("test@example.com")
	task := suite.createTestTask("Original Title", user.ID)

	requestBody := map[string]interface{}{
		"title":   "Updated Title",
		"status":  "in-progress",
		"dueDate": "2026-12-24T18:00:00Z",
	}
	body, _ := json.Marshal(requestBody)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", body, user.ID)
	suite.setTaskContext(c, task)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var response taskResponse
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(suite.T(), "Updated Title", response.Data.Title)
	assert.Equal(suite.T(), models.TaskStatusInProgress, response.Data.Status)
	assert.Equal(suite.T(), "Test Description", response.Data.Description)
	suite.Require().NotNil(response.Data.DueDate)

	var updated models.Task
	suite.db.First(&updated, task.ID)
	assert.Equal(suite.T(), "Updated Title", updated.Title)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ClearDueDate() {
	user := suite.createTestUser("test@example.com")
	due := time.Now().Add(48 * time.Hour).UTC()
	task := suite.createTestTask("Has Due Date", user.ID)
	task.DueDate = &due
	suite.Require().NoError(suite.db.Save(task).Error)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", []byte(`{"dueDate":null}`), user.ID)
	suite.setTaskContext(c, task)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)

	var updated models.Task
	suite.db.First(&updated, task.ID)
	assert.Nil(suite.T(), updated.DueDate)
	assert.Equal(suite.T(), "Has Due Date", updated.Title)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_BlankTitle() {
	user := suite.createTestUser("test@example.com")
	task := suite.createTestTask("Keep Me", user.ID)

	c, w := suite.createAuthContext("PUT", "/api/tasks/1", []byte(`{"title":""}`), user.ID)
	suite.setTaskContext(c, task)

	suite.handler.UpdateTask(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)

	var stored models.Task
	suite.db.First(&stored, task.ID)
	assert.Equal(suite.T(), "Keep Me", stored.Title)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask_Success() {
	user := suite.createTestUser("test@example.com")
	task := suite.createTestTask("Task to Delete", user.ID)

	c, w := suite.createAuthContext("DELETE", "/api/tasks/1", nil, user.ID)
	suite.setTaskContext(c, task)

	suite.handler.DeleteTask(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"success":true,"message":"Task deleted successfully","data":{}}`, w.Body.String())

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *TaskHandlerTestSuite) TestGetStats() {
	user := suite.createTestUser("test@example.com")
	suite.createTestTask("One", user.ID)
	done := suite.createTestTask("Two", user.ID)
	done.Status = models.TaskStatusCompleted
	suite.Require().NoError(suite.db.Save(done).Error)

	c, w := suite.createAuthContext("GET", "/api/tasks/stats", nil, user.ID)
	suite.handler.GetStats(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(), `{"success":true,"data":{"total":2,"pending":1,"in-progress":0,"completed":1}}`, w.Body.String())
}

func (suite *TaskHandlerTestSuite) TestSuggestTasks_NotConfigured() {
	user := suite.createTestUser("test@example.com")

	c, w := suite.createAuthContext("POST", "/api/tasks/suggest", []byte(`{"text":"buy milk"}`), user.ID)
	suite.handler.SuggestTasks(c)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, w.Code)
}

func (suite *TaskHandlerTestSuite) TestSuggestTasks_Success() {
	user := suite.createTestUser("test@example.com")
	handler := NewTaskHandler(services.NewTaskService(repository.NewTaskRepository(suite.db), nil, stubSuggester{
		tasks: []services.GeneratedTask{{Title: "Buy milk", Description: "2 liters", Priority: "low"}},
	}))

	c, w := suite.createAuthContext("POST", "/api/tasks/suggest", []byte(`{"text":"remember to buy milk"}`), user.ID)
	handler.SuggestTasks(c)

	assert.Equal(suite.T(), http.StatusOK, w.Code)
	assert.JSONEq(suite.T(),
		`{"success":true,"count":1,"data":[{"title":"Buy milk","description":"2 liters","priority":"low","dueDate":null}]}`,
		w.Body.String())

	// Suggestions are not persisted.
	var count int64
	suite.db.Model(&models.Task{}).Count(&count)
	assert.Zero(suite.T(), count)
}

func (suite *TaskHandlerTestSuite) TestSuggestTasks_MissingText() {
	user := suite.createTestUser("test@example.com")

	c, w := suite.createAuthContext("POST", "/api/tasks/suggest", []byte(`{}`), user.ID)
	suite.handler.SuggestTasks(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestSuggestTasks_BlankTextWithoutAIKey() {
	user := suite.createTestUser("test@example.com")

	c, w := suite.createAuthContext("POST", "/api/tasks/suggest", []byte(`{"text":"   "}`), user.ID)
	suite.handler.SuggestTasks(c)

	assert.Equal(suite.T(), http.StatusBadRequest, w.Code)
	assert.Contains(suite.T(), w.Body.String(), "Text is required")
}

// TestTaskHandlerTestSuite runs the test suite
func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
