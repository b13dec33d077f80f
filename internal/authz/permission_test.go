package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var taskPermissions = []Permission{PermTaskCreate, PermTaskRead, PermTaskUpdate, PermTaskDelete}

func TestPermissionsFor_Deterministic(t *testing.T) {
	for _, role := range Roles {
		assert.Equal(t, PermissionsFor(role), PermissionsFor(role))
	}
}

func TestPermissionsFor_ReturnsCopy(t *testing.T) {
	perms := PermissionsFor(RoleViewer)
	perms[0] = PermAuditView
	assert.False(t, Has(RoleViewer, PermAuditView))
}

func TestPermissionsFor_OwnerCoversAdminTaskPermissions(t *testing.T) {
	for _, perm := range taskPermissions {
		if Has(RoleAdmin, perm) {
			assert.True(t, Has(RoleOwner, perm), perm)
		}
	}
}

func TestPermissionsFor_Viewer(t *testing.T) {
	assert.ElementsMatch(t, []Permission{PermTaskRead, PermOrgView}, PermissionsFor(RoleViewer))
	for _, perm := range []Permission{PermTaskCreate, PermTaskUpdate, PermTaskDelete, PermAuditView} {
		assert.False(t, Has(RoleViewer, perm), perm)
	}
}

func TestPermissionsFor_Admin(t *testing.T) {
	assert.True(t, HasAll(RoleAdmin, taskPermissions...))
	assert.True(t, Has(RoleAdmin, PermAuditView))
	assert.False(t, Has(RoleAdmin, PermOrgManage))
	assert.False(t, Has(RoleAdmin, PermUserManage))
}

func TestPermissionsFor_UnknownRoleIsEmpty(t *testing.T) {
	assert.Empty(t, PermissionsFor(RoleNone))
	assert.Empty(t, PermissionsFor(Role("root")))
}

func TestHasAll(t *testing.T) {
	for _, role := range []Role{RoleOwner, RoleAdmin, RoleViewer, RoleNone, Role("root")} {
		assert.True(t, HasAll(role), "empty requirement must pass for %q", role)
	}
	assert.True(t, HasAll(RoleOwner, PermOrgManage, PermAuditView))
	assert.False(t, HasAll(RoleAdmin, PermTaskRead, PermOrgManage))
	assert.False(t, HasAll(RoleNone, PermTaskRead))
}
