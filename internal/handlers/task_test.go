package handlers

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/constants"
	"github.com/yukikurage/org-task-api/internal/dto"
	apierrors "github.com/yukikurage/org-task-api/internal/errors"
	"github.com/yukikurage/org-task-api/internal/logging"
	"github.com/yukikurage/org-task-api/internal/models"
)

// TaskHandlerTestSuite defines the test suite for TaskHandler
type TaskHandlerTestSuite struct {
	handlerSuite
	handler *TaskHandler

	org     *models.Organization
	owner   *models.User
	admin   *models.User
	viewer  *models.User
	outside *models.User
}

func (suite *TaskHandlerTestSuite) SetupTest() {
	suite.handlerSuite.SetupTest()
	suite.handler = NewTaskHandler(suite.tasks, logging.Discard())

	suite.org = suite.createTestOrganization("Acme", nil)
	other := suite.createTestOrganization("Globex", nil)
	suite.owner = suite.createMember("owner@example.com", authz.RoleOwner, suite.org)
	suite.admin = suite.createMember("admin@example.com", authz.RoleAdmin, suite.org)
	suite.viewer = suite.createMember("viewer@example.com", authz.RoleViewer, suite.org)
	suite.outside = suite.createMember("outside@example.com", authz.RoleOwner, other)
}

func (suite *TaskHandlerTestSuite) withTaskID(c *gin.Context, id uint64) {
	c.Set(constants.ContextKeyTaskID, id)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_Success() {
	body := map[string]any{
		"title":        "Write report",
		"description":  "Quarterly numbers",
		"priority":     3,
		"assignedToId": suite.viewer.ID,
	}
	c, w := suite.createAuthContext(http.MethodPost, "/api/tasks", body, suite.admin.ID)

	suite.handler.CreateTask(c)

	suite.Equal(http.StatusCreated, w.Code)
	var task dto.TaskDTO
	suite.decode(w, &task)
	suite.Equal("Write report", task.Title)
	suite.Equal(models.TaskStatusTodo, task.Status)
	suite.Equal(models.TaskCategoryOther, task.Category)
	suite.Equal(3, task.Priority)
	suite.Equal(suite.admin.ID, task.CreatedByID)
	suite.Equal(suite.org.ID, task.OrganizationID)
	suite.Require().NotNil(task.AssignedTo)
	suite.Equal("viewer@example.com", task.AssignedTo.Email)
}

func (suite *TaskHandlerTestSuite) TestCreateTask_ValidationErrors() {
	cases := []struct {
		name string
		body map[string]any
	}{
		{"missing title", map[string]any{"description": "x"}},
		{"bad priority", map[string]any{"title": "t", "priority": 11}},
		{"bad status", map[string]any{"title": "t", "status": "done"}},
		{"bad category", map[string]any{"title": "t", "category": "misc"}},
		{"assignee in other org", map[string]any{"title": "t", "assignedToId": suite.outside.ID}},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			c, w := suite.createAuthContext(http.MethodPost, "/api/tasks", tc.body, suite.admin.ID)
			suite.handler.CreateTask(c)
			suite.Equal(http.StatusBadRequest, w.Code)
			suite.Equal(apierrors.ErrCodeInvalidInput, suite.errorCode(w))
		})
	}
}

func (suite *TaskHandlerTestSuite) TestGetTask_VisibleToCreatorAndAssignee() {
	task := suite.createTestTask("Assigned", suite.admin, &suite.viewer.ID)

	for _, user := range []*models.User{suite.admin, suite.viewer, suite.owner} {
		c, w := suite.createAuthContext(http.MethodGet, "/api/tasks/1", nil, user.ID)
		suite.withTaskID(c, task.ID)
		suite.handler.GetTask(c)
		suite.Equal(http.StatusOK, w.Code, user.Email)
	}
}

func (suite *TaskHandlerTestSuite) TestGetTask_HiddenTasksReturnNotFound() {
	task := suite.createTestTask("Owner only", suite.owner, nil)

	for _, user := range []*models.User{suite.admin, suite.viewer, suite.outside} {
		c, w := suite.createAuthContext(http.MethodGet, "/api/tasks/1", nil, user.ID)
		suite.withTaskID(c, task.ID)
		suite.handler.GetTask(c)
		suite.Equal(http.StatusNotFound, w.Code, user.Email)
		suite.Equal(apierrors.ErrCodeNotFound, suite.errorCode(w))
	}

	c, w := suite.createAuthContext(http.MethodGet, "/api/tasks/999", nil, suite.owner.ID)
	suite.withTaskID(c, 999)
	suite.handler.GetTask(c)
	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestListTasks_FiltersAndPagination() {
	suite.createTestTask("Alpha", suite.admin, nil)
	suite.createTestTask("Beta", suite.admin, &suite.viewer.ID)
	suite.createTestTask("Gamma", suite.owner, nil)

	c, w := suite.createAuthContext(http.MethodGet, "/api/tasks?limit=1&sortBy=title&sortOrder=ASC", nil, suite.admin.ID)
	suite.handler.ListTasks(c)

	suite.Equal(http.StatusOK, w.Code)
	var resp dto.TaskListResponse
	suite.decode(w, &resp)
	suite.Equal(int64(3), resp.Meta.Total)
	suite.Equal(3, resp.Meta.TotalPages)
	suite.Require().Len(resp.Data, 1)
	suite.Equal("Alpha", resp.Data[0].Title)

	c, w = suite.createAuthContext(http.MethodGet, "/api/tasks?search=gAm", nil, suite.owner.ID)
	suite.handler.ListTasks(c)
	suite.decode(w, &resp)
	suite.Require().Len(resp.Data, 1)
	suite.Equal("Gamma", resp.Data[0].Title)

	c, w = suite.createAuthContext(http.MethodGet, "/api/tasks", nil, suite.viewer.ID)
	suite.handler.ListTasks(c)
	suite.decode(w, &resp)
	suite.Require().Len(resp.Data, 1)
	suite.Equal("Beta", resp.Data[0].Title)
}

func (suite *TaskHandlerTestSuite) TestListTasks_InvalidQuery() {
	for _, query := range []string{"sortBy=owner", "sortOrder=sideways", "assignedToId=abc", "status=done"} {
		c, w := suite.createAuthContext(http.MethodGet, "/api/tasks?"+query, nil, suite.owner.ID)
		suite.handler.ListTasks(c)
		suite.Equal(http.StatusBadRequest, w.Code, query)
	}
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ExplicitNullClearsFields() {
	task := suite.createTestTask("Due soon", suite.admin, &suite.viewer.ID)
	suite.Require().NoError(suite.db.Model(task).Update("due_date", time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)).Error)

	body := map[string]any{"title": "Renamed", "dueDate": nil, "assignedToId": nil}
	c, w := suite.createAuthContext(http.MethodPut, "/api/tasks/1", body, suite.admin.ID)
	suite.withTaskID(c, task.ID)
	suite.handler.UpdateTask(c)

	suite.Equal(http.StatusOK, w.Code)
	var updated dto.TaskDTO
	suite.decode(w, &updated)
	suite.Equal("Renamed", updated.Title)
	suite.Nil(updated.DueDate)
	suite.Nil(updated.AssignedToID)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_ViewerAssigneeIsForbidden() {
	task := suite.createTestTask("Assigned", suite.admin, &suite.viewer.ID)

	c, w := suite.createAuthContext(http.MethodPut, "/api/tasks/1", map[string]any{"title": "Mine now"}, suite.viewer.ID)
	suite.withTaskID(c, task.ID)
	suite.handler.UpdateTask(c)

	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal(apierrors.ErrCodeForbidden, suite.errorCode(w))
	assert.Contains(suite.T(), w.Body.String(), apierrors.MessageNotPermitted)
}

func (suite *TaskHandlerTestSuite) TestUpdateTask_OtherOrganizationIsNotFound() {
	task := suite.createTestTask("Acme task", suite.owner, nil)

	c, w := suite.createAuthContext(http.MethodPut, "/api/tasks/1", map[string]any{"title": "x"}, suite.outside.ID)
	suite.withTaskID(c, task.ID)
	suite.handler.UpdateTask(c)

	suite.Equal(http.StatusNotFound, w.Code)
}

func (suite *TaskHandlerTestSuite) TestReorderTask() {
	task := suite.createTestTask("Reorder me", suite.admin, nil)

	c, w := suite.createAuthContext(http.MethodPut, "/api/tasks/1/reorder", map[string]any{"priority": 7}, suite.admin.ID)
	suite.withTaskID(c, task.ID)
	suite.handler.ReorderTask(c)
	suite.Equal(http.StatusOK, w.Code)

	var stored models.Task
	suite.Require().NoError(suite.db.First(&stored, task.ID).Error)
	suite.Equal(7, stored.Priority)

	c, w = suite.createAuthContext(http.MethodPut, "/api/tasks/1/reorder", map[string]any{}, suite.admin.ID)
	suite.withTaskID(c, task.ID)
	suite.handler.ReorderTask(c)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *TaskHandlerTestSuite) TestDeleteTask() {
	task := suite.createTestTask("Delete me", suite.admin, nil)

	c, w := suite.createAuthContext(http.MethodDelete, "/api/tasks/1", nil, suite.admin.ID)
	suite.withTaskID(c, task.ID)
	suite.handler.DeleteTask(c)
	c.Writer.WriteHeaderNow()
	suite.Equal(http.StatusNoContent, w.Code)

	var count int64
	suite.db.Model(&models.Task{}).Where("id = ?", task.ID).Count(&count)
	suite.Equal(int64(0), count)

	var audits int64
	suite.db.Model(&models.AuditLog{}).
		Where("action = ? AND resource = ? AND resource_id = ?", models.AuditActionDelete, models.AuditResourceTask, fmt.Sprint(task.ID)).
		Count(&audits)
	suite.Equal(int64(1), audits)
}

func (suite *TaskHandlerTestSuite) TestGenerateTasks_WithoutAIReturnsUnavailable() {
	c, w := suite.createAuthContext(http.MethodPost, "/api/tasks/generate", map[string]any{"text": "plan the offsite"}, suite.admin.ID)
	suite.handler.GenerateTasks(c)
	suite.Equal(http.StatusServiceUnavailable, w.Code)

	c, w = suite.createAuthContext(http.MethodPost, "/api/tasks/generate", map[string]any{}, suite.admin.ID)
	suite.handler.GenerateTasks(c)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func TestTaskHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(TaskHandlerTestSuite))
}
