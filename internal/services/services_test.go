package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/database"
	"github.com/yukikurage/org-task-api/internal/logging"
	"github.com/yukikurage/org-task-api/internal/models"
	"github.com/yukikurage/org-task-api/internal/repository"
	"github.com/yukikurage/org-task-api/internal/token"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testEnv struct {
	db            *gorm.DB
	userRepo      repository.UserRepository
	orgRepo       repository.OrganizationRepository
	directory     *OrganizationDirectory
	auth          *AuthService
	registrations *RegistrationService
	tasks         *TaskService
	audit         *AuditService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	log := logging.Discard()
	require.NoError(t, database.Migrate(db, log))

	tokens, err := token.NewManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)
	require.NoError(t, err)

	userRepo := repository.NewUserRepository(db)
	orgRepo := repository.NewOrganizationRepository(db)
	directory := NewOrganizationDirectory(orgRepo, 16, time.Minute)

	return &testEnv{
		db:            db,
		userRepo:      userRepo,
		orgRepo:       orgRepo,
		directory:     directory,
		auth:          NewAuthService(userRepo, tokens, directory),
		registrations: NewRegistrationService(userRepo, orgRepo, directory, log),
		tasks:         NewTaskService(repository.NewTaskRepository(db), userRepo, nil, log),
		audit:         NewAuditService(repository.NewAuditRepository(db)),
	}
}

func (e *testEnv) createOrg(t *testing.T, name string, parentID *uint64) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: name, ParentID: parentID}
	require.NoError(t, e.orgRepo.Create(org))
	return org
}

// createMember inserts an active user and returns it as a resolved actor.
func (e *testEnv) createMember(t *testing.T, email string, role authz.Role, org *models.Organization) authz.Actor {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Email:          email,
		PasswordHash:   string(hash),
		FirstName:      email[:1],
		Role:           &role,
		Status:         authz.StatusActive,
		OrganizationID: &org.ID,
	}
	require.NoError(t, e.userRepo.Create(user))
	return e.actor(t, user.ID)
}

func (e *testEnv) actor(t *testing.T, userID uint64) authz.Actor {
	t.Helper()
	actor, err := e.auth.ResolveActor(userID)
	require.NoError(t, err)
	return *actor
}

func (e *testEnv) auditCount(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, e.db.Model(&models.AuditLog{}).Count(&count).Error)
	return count
}
