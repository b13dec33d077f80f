package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/constants"
	"github.com/yukikurage/org-task-api/internal/database"
	"github.com/yukikurage/org-task-api/internal/logging"
	"github.com/yukikurage/org-task-api/internal/models"
	"github.com/yukikurage/org-task-api/internal/repository"
	"github.com/yukikurage/org-task-api/internal/services"
	"github.com/yukikurage/org-task-api/internal/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// handlerSuite holds the shared in-memory database and services used by the
// handler suites.
type handlerSuite struct {
	suite.Suite
	db            *gorm.DB
	auth          *services.AuthService
	registrations *services.RegistrationService
	tasks         *services.TaskService
	audit         *services.AuditService
}

func (suite *handlerSuite) SetupTest() {
	var err error

	// Create in-memory SQLite database
	suite.db, err = gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	suite.Require().NoError(err)
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.SetMaxOpenConns(1)

	log := logging.Discard()
	suite.Require().NoError(database.Migrate(suite.db, log))

	tokens, err := token.NewManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	suite.Require().NoError(err)

	userRepo := repository.NewUserRepository(suite.db)
	orgRepo := repository.NewOrganizationRepository(suite.db)
	directory := services.NewOrganizationDirectory(orgRepo, 16, time.Minute)

	suite.auth = services.NewAuthService(userRepo, tokens, directory)
	suite.registrations = services.NewRegistrationService(userRepo, orgRepo, directory, log)
	suite.tasks = services.NewTaskService(repository.NewTaskRepository(suite.db), userRepo, nil, log)
	suite.audit = services.NewAuditService(repository.NewAuditRepository(suite.db))

	// Set Gin to test mode
	gin.SetMode(gin.TestMode)
}

func (suite *handlerSuite) TearDownTest() {
	sqlDB, err := suite.db.DB()
	suite.Require().NoError(err)
	sqlDB.Close()
}

func (suite *handlerSuite) createTestOrganization(name string, parentID *uint64) *models.Organization {
	org := &models.Organization{Name: name, ParentID: parentID}
	suite.Require().NoError(suite.db.Create(org).Error)
	return org
}

func (suite *handlerSuite) createTestUser(email string, status authz.Status, role *authz.Role, orgID *uint64) *models.User {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	suite.Require().NoError(err)

	user := &models.User{
		Email:          email,
		PasswordHash:   string(hash),
		FirstName:      "Test",
		LastName:       email,
		Role:           role,
		Status:         status,
		OrganizationID: orgID,
	}
	suite.Require().NoError(suite.db.Create(user).Error)
	return user
}

func (suite *handlerSuite) createMember(email string, role authz.Role, org *models.Organization) *models.User {
	return suite.createTestUser(email, authz.StatusActive, &role, &org.ID)
}

func (suite *handlerSuite) createTestTask(title string, creator *models.User, assignee *uint64) *models.Task {
	task := &models.Task{
		Title:          title,
		Description:    "Test Description",
		Status:         models.TaskStatusTodo,
		Category:       models.TaskCategoryOther,
		CreatedByID:    creator.ID,
		AssignedToID:   assignee,
		OrganizationID: *creator.OrganizationID,
	}
	suite.Require().NoError(suite.db.Create(task).Error)
	return task
}

// createAuthContext builds a context carrying the resolved actor of userID,
// as RequireAuth would.
func (suite *handlerSuite) createAuthContext(method, url string, body any, userID uint64) (*gin.Context, *httptest.ResponseRecorder) {
	c, w := suite.createContext(method, url, body)

	actor, err := suite.auth.ResolveActor(userID)
	suite.Require().NoError(err)
	c.Set(constants.ContextKeyUserID, userID)
	c.Set(constants.ContextKeyActor, actor)

	return c, w
}

func (suite *handlerSuite) createContext(method, url string, body any) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	var req *http.Request
	if body != nil {
		raw, err := json.Marshal(body)
		suite.Require().NoError(err)
		req = httptest.NewRequest(method, url, bytes.NewReader(raw))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	c, _ := gin.CreateTestContext(w)
	c.Request = req
	return c, w
}

func (suite *handlerSuite) decode(w *httptest.ResponseRecorder, out any) {
	suite.Require().NoError(json.Unmarshal(w.Body.Bytes(), out))
}

func (suite *handlerSuite) errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code string `json:"code"`
	}
	suite.decode(w, &body)
	return body.Code
}

func rolePtr(r authz.Role) *authz.Role { return &r }

func uintString(v uint64) string { return strconv.FormatUint(v, 10) }
