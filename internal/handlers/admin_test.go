package handlers

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/dto"
	apierrors "github.com/yukikurage/org-task-api/internal/errors"
	"github.com/yukikurage/org-task-api/internal/logging"
	"github.com/yukikurage/org-task-api/internal/models"
)

type AdminHandlerTestSuite struct {
	handlerSuite
	handler *AdminHandler

	org   *models.Organization
	owner *models.User
	admin *models.User
}

func (suite *AdminHandlerTestSuite) SetupTest() {
	suite.handlerSuite.SetupTest()
	suite.handler = NewAdminHandler(suite.registrations, logging.Discard())

	suite.org = suite.createTestOrganization("Acme", nil)
	suite.owner = suite.createMember("owner@example.com", authz.RoleOwner, suite.org)
	suite.admin = suite.createMember("admin@example.com", authz.RoleAdmin, suite.org)
}

func (suite *AdminHandlerTestSuite) withUserID(c *gin.Context, id uint64) {
	c.Params = gin.Params{{Key: "userId", Value: uintString(id)}}
}

func (suite *AdminHandlerTestSuite) TestListRegistrations() {
	suite.createTestUser("first@example.com", authz.StatusPending, nil, nil)
	suite.createTestUser("second@example.com", authz.StatusPending, nil, nil)
	suite.createTestUser("done@example.com", authz.StatusRejected, nil, nil)

	c, w := suite.createAuthContext(http.MethodGet, "/api/admin/registrations", nil, suite.admin.ID)
	suite.handler.ListRegistrations(c)

	suite.Equal(http.StatusOK, w.Code)
	var pending []dto.PendingUserDTO
	suite.decode(w, &pending)
	suite.Len(pending, 2)
}

func (suite *AdminHandlerTestSuite) TestApproveRegistration_Success() {
	pending := suite.createTestUser("alice@example.com", authz.StatusPending, nil, nil)

	body := map[string]any{"organizationId": suite.org.ID, "role": "viewer"}
	c, w := suite.createAuthContext(http.MethodPost, "/api/admin/registrations/1/approve", body, suite.admin.ID)
	suite.withUserID(c, pending.ID)
	suite.handler.ApproveRegistration(c)

	suite.Equal(http.StatusOK, w.Code)
	var user dto.UserDTO
	suite.decode(w, &user)
	suite.Equal(authz.StatusActive, user.Status)
	suite.Require().NotNil(user.Role)
	suite.Equal(authz.RoleViewer, *user.Role)
	suite.Require().NotNil(user.OrganizationID)
	suite.Equal(suite.org.ID, *user.OrganizationID)

	// A second decision on the same user conflicts.
	c, w = suite.createAuthContext(http.MethodPost, "/api/admin/registrations/1/reject", nil, suite.admin.ID)
	suite.withUserID(c, pending.ID)
	suite.handler.RejectRegistration(c)
	suite.Equal(http.StatusConflict, w.Code)
}

func (suite *AdminHandlerTestSuite) TestApproveRegistration_OwnerGrantRequiresOwner() {
	pending := suite.createTestUser("bob@example.com", authz.StatusPending, nil, nil)
	body := map[string]any{"organizationId": suite.org.ID, "role": "owner"}

	c, w := suite.createAuthContext(http.MethodPost, "/api/admin/registrations/1/approve", body, suite.admin.ID)
	suite.withUserID(c, pending.ID)
	suite.handler.ApproveRegistration(c)
	suite.Equal(http.StatusForbidden, w.Code)
	suite.Equal(apierrors.ErrCodeInsufficientPermissions, suite.errorCode(w))

	c, w = suite.createAuthContext(http.MethodPost, "/api/admin/registrations/1/approve", body, suite.owner.ID)
	suite.withUserID(c, pending.ID)
	suite.handler.ApproveRegistration(c)
	suite.Equal(http.StatusOK, w.Code)
}

func (suite *AdminHandlerTestSuite) TestApproveRegistration_Errors() {
	pending := suite.createTestUser("carol@example.com", authz.StatusPending, nil, nil)

	cases := []struct {
		name   string
		userID uint64
		body   map[string]any
		status int
	}{
		{"unknown user", 999, map[string]any{"organizationId": suite.org.ID, "role": "admin"}, http.StatusNotFound},
		{"unknown organization", pending.ID, map[string]any{"organizationId": 999, "role": "admin"}, http.StatusNotFound},
		{"invalid role", pending.ID, map[string]any{"organizationId": suite.org.ID, "role": "SUPERUSER"}, http.StatusBadRequest},
		{"missing body fields", pending.ID, map[string]any{}, http.StatusBadRequest},
	}

	for _, tc := range cases {
		suite.Run(tc.name, func() {
			c, w := suite.createAuthContext(http.MethodPost, "/api/admin/registrations/1/approve", tc.body, suite.owner.ID)
			suite.withUserID(c, tc.userID)
			suite.handler.ApproveRegistration(c)
			suite.Equal(tc.status, w.Code)
		})
	}
}

func (suite *AdminHandlerTestSuite) TestRejectRegistration() {
	pending := suite.createTestUser("dave@example.com", authz.StatusPending, nil, nil)

	c, w := suite.createAuthContext(http.MethodPost, "/api/admin/registrations/1/reject", nil, suite.admin.ID)
	suite.withUserID(c, pending.ID)
	suite.handler.RejectRegistration(c)

	suite.Equal(http.StatusOK, w.Code)
	var user dto.UserDTO
	suite.decode(w, &user)
	suite.Equal(authz.StatusRejected, user.Status)
	suite.Nil(user.Role)
}

func (suite *AdminHandlerTestSuite) TestCreateOrganization() {
	c, w := suite.createAuthContext(http.MethodPost, "/api/admin/organizations",
		map[string]any{"name": "Acme EU", "parentId": suite.org.ID}, suite.owner.ID)
	suite.handler.CreateOrganization(c)

	suite.Equal(http.StatusCreated, w.Code)
	var org dto.OrganizationDTO
	suite.decode(w, &org)
	suite.Equal("Acme EU", org.Name)
	suite.Require().NotNil(org.ParentID)
	suite.Equal(suite.org.ID, *org.ParentID)

	c, w = suite.createAuthContext(http.MethodPost, "/api/admin/organizations",
		map[string]any{"name": "Orphan", "parentId": 999}, suite.owner.ID)
	suite.handler.CreateOrganization(c)
	suite.Equal(http.StatusBadRequest, w.Code)

	c, w = suite.createAuthContext(http.MethodPost, "/api/admin/organizations", map[string]any{"name": "  "}, suite.owner.ID)
	suite.handler.CreateOrganization(c)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func (suite *AdminHandlerTestSuite) TestListOrganizations_OrderedByName() {
	suite.createTestOrganization("Zeta", nil)
	suite.createTestOrganization("Beta", nil)

	c, w := suite.createAuthContext(http.MethodGet, "/api/admin/organizations", nil, suite.admin.ID)
	suite.handler.ListOrganizations(c)

	suite.Equal(http.StatusOK, w.Code)
	var orgs []dto.OrganizationDTO
	suite.decode(w, &orgs)
	suite.Require().Len(orgs, 3)
	suite.Equal("Acme", orgs[0].Name)
	suite.Equal("Beta", orgs[1].Name)
	suite.Equal("Zeta", orgs[2].Name)
}

func (suite *AdminHandlerTestSuite) TestListUsers_DefaultsToOwnOrganization() {
	suite.createTestUser("pending@example.com", authz.StatusPending, nil, &suite.org.ID)

	c, w := suite.createAuthContext(http.MethodGet, "/api/admin/users", nil, suite.admin.ID)
	suite.handler.ListUsers(c)

	suite.Equal(http.StatusOK, w.Code)
	var users []dto.UserDTO
	suite.decode(w, &users)
	suite.Len(users, 2)
	for _, u := range users {
		suite.Equal(authz.StatusActive, u.Status)
	}

	c, w = suite.createAuthContext(http.MethodGet, "/api/admin/users?organizationId=abc", nil, suite.admin.ID)
	suite.handler.ListUsers(c)
	suite.Equal(http.StatusBadRequest, w.Code)
}

func TestAdminHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AdminHandlerTestSuite))
}
