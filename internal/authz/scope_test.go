package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u64(v uint64) *uint64 { return &v }

func TestInScope(t *testing.T) {
	const orgA, orgB, orgParent, orgChild = 10, 20, 30, 40

	withTree := func(role Role) Actor {
		return Actor{
			ID:             1,
			Role:           role,
			Status:         StatusActive,
			OrganizationID: u64(orgA),
			Organization:   &OrgNode{ID: orgA, ParentID: u64(orgParent), ChildIDs: []uint64{orgChild}},
		}
	}
	withoutTree := func(role Role) Actor {
		a := withTree(role)
		a.Organization = nil
		return a
	}

	tests := []struct {
		name   string
		actor  Actor
		target *uint64
		policy OrgScope
		want   bool
	}{
		{"no target", withTree(RoleViewer), nil, OrgScope{}, true},
		{"same org", withTree(RoleViewer), u64(orgA), OrgScope{}, true},
		{"other org without flags", withTree(RoleAdmin), u64(orgB), OrgScope{}, false},
		{"parent allowed", withTree(RoleViewer), u64(orgParent), OrgScope{AllowParentOrg: true}, true},
		{"parent not allowed", withTree(RoleViewer), u64(orgParent), OrgScope{AllowChildOrg: true}, false},
		{"child allowed", withTree(RoleAdmin), u64(orgChild), OrgScope{AllowChildOrg: true}, true},
		{"child not allowed", withTree(RoleAdmin), u64(orgChild), OrgScope{AllowParentOrg: true}, false},
		{"unrelated with both flags", withTree(RoleAdmin), u64(orgB), OrgScope{AllowParentOrg: true, AllowChildOrg: true}, false},
		{"owner anywhere", withTree(RoleOwner), u64(orgB), OrgScope{}, true},
		{"owner without tree", withoutTree(RoleOwner), u64(orgB), OrgScope{}, true},
		{"parent without tree denies", withoutTree(RoleAdmin), u64(orgParent), OrgScope{AllowParentOrg: true}, false},
		{"child without tree denies", withoutTree(RoleAdmin), u64(orgChild), OrgScope{AllowChildOrg: true}, false},
		{"same org without tree", withoutTree(RoleViewer), u64(orgA), OrgScope{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InScope(tt.actor, tt.target, tt.policy))
		})
	}
}

func TestInScope_ActorWithoutOrganization(t *testing.T) {
	actor := Actor{ID: 1, Role: RoleAdmin, Status: StatusActive}
	assert.False(t, InScope(actor, u64(1), OrgScope{AllowParentOrg: true, AllowChildOrg: true}))
	assert.True(t, InScope(actor, nil, OrgScope{}))
}

func TestTargetOrgFrom(t *testing.T) {
	params := map[string]string{}
	body := map[string]string{"orgId": "7"}
	query := map[string]string{"organizationId": "5", "orgId": "9"}
	lookup := func(m map[string]string) func(string) string {
		return func(k string) string { return m[k] }
	}

	id, err := TargetOrgFrom(OrgScope{}, lookup(params), lookup(body), lookup(query))
	require.NoError(t, err)
	require.NotNil(t, id)
	assert.Equal(t, uint64(5), *id)

	id, err = TargetOrgFrom(OrgScope{Field: "orgId"}, lookup(params), lookup(body), lookup(query))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), *id, "body wins over query")

	id, err = TargetOrgFrom(OrgScope{Field: "missing"}, lookup(params), nil, lookup(query))
	require.NoError(t, err)
	assert.Nil(t, id)

	_, err = TargetOrgFrom(OrgScope{}, lookup(map[string]string{"organizationId": "abc"}))
	assert.Error(t, err)
}
