package authz

import (
	"fmt"
	"strconv"
	"strings"
)

// DefaultOrgField is where the target organization id is read from when
// a scope does not name a field.
const DefaultOrgField = "organizationId"

// OrgScope is the organization relationship an operation accepts.
type OrgScope struct {
	AllowParentOrg bool
	AllowChildOrg  bool
	// Field names the request value holding the target organization id.
	// It only affects extraction, never the decision.
	Field string
}

// FieldName returns the extraction field, defaulting to DefaultOrgField.
func (s OrgScope) FieldName() string {
	if s.Field == "" {
		return DefaultOrgField
	}
	return s.Field
}

// InScope reports whether actor may act on resources owned by target.
func InScope(actor Actor, target *uint64, policy OrgScope) bool {
	if target == nil {
		return true
	}
	if actor.Role == RoleOwner {
		return true
	}
	if actor.InOrganization(*target) {
		return true
	}
	node := actor.Organization
	if node == nil {
		return false
	}
	if policy.AllowParentOrg && node.ParentID != nil && *node.ParentID == *target {
		return true
	}
	if policy.AllowChildOrg {
		for _, id := range node.ChildIDs {
			if id == *target {
				return true
			}
		}
	}
	return false
}

// TargetOrgFrom reads the scope field from the given lookups in order
// (path params, body, query) and parses the first non-empty value.
// It returns nil when no lookup yields a value.
func TargetOrgFrom(policy OrgScope, lookups ...func(string) string) (*uint64, error) {
	field := policy.FieldName()
	for _, lookup := range lookups {
		if lookup == nil {
			continue
		}
		raw := strings.TrimSpace(lookup(field))
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("authz: invalid %s %q: %w", field, raw, err)
		}
		return &id, nil
	}
	return nil, nil
}
