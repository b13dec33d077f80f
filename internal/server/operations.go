package server

import "github.com/yukikurage/org-task-api/internal/authz"

// Route gates. Every data route requires an active account.

// opAdminConsole is the Admin floor the admin group applies ahead of its
// per-route operations.
var opAdminConsole = authz.NewOperation("admin.console").
	RequireActive().
	RequireRoles(authz.RoleAdmin)

var opRegistrationsList = authz.NewOperation("registrations.list").
	RequireActive().
	RequirePermissions(authz.PermUserView)

var opRegistrationsDecide = authz.NewOperation("registrations.decide").
	RequireActive().
	RequirePermissions(authz.PermUserView)

var opOrganizationsList = authz.NewOperation("organizations.list").
	RequireActive().
	RequirePermissions(authz.PermOrgView)

var opOrganizationsCreate = authz.NewOperation("organizations.create").
	RequireActive().
	RequireRoles(authz.RoleOwner).
	RequirePermissions(authz.PermOrgManage)

var opUsersList = authz.NewOperation("users.list").
	RequireActive().
	RequirePermissions(authz.PermUserView).
	WithOrgScope(authz.OrgScope{AllowChildOrg: true, Field: "organizationId"})

var opTasksList = authz.NewOperation("tasks.list").
	RequireActive().
	RequirePermissions(authz.PermTaskRead)

var opTasksView = authz.NewOperation("tasks.view").
	RequireActive().
	RequirePermissions(authz.PermTaskRead)

var opTasksCreate = authz.NewOperation("tasks.create").
	RequireActive().
	RequireRoles(authz.RoleOwner, authz.RoleAdmin).
	RequirePermissions(authz.PermTaskCreate)

var opTasksUpdate = authz.NewOperation("tasks.update").
	RequireActive().
	RequirePermissions(authz.PermTaskUpdate)

var opTasksDelete = authz.NewOperation("tasks.delete").
	RequireActive().
	RequirePermissions(authz.PermTaskDelete)

var opTasksGenerate = authz.NewOperation("tasks.generate").
	RequireActive().
	RequireRoles(authz.RoleOwner, authz.RoleAdmin).
	RequirePermissions(authz.PermTaskCreate)

var opAuditView = authz.NewOperation("audit.view").
	RequireActive().
	RequireRoles(authz.RoleAdmin).
	RequirePermissions(authz.PermAuditView)
