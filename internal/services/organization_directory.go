package services

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/yukikurage/org-task-api/internal/authz"
	"github.com/yukikurage/org-task-api/internal/metrics"
	"github.com/yukikurage/org-task-api/internal/repository"
	"gorm.io/gorm"
)

const defaultDirectorySize = 1024

// ErrOrganizationNotFound is returned when an organization id does not exist.
var ErrOrganizationNotFound = errors.New("organization not found")

// OrganizationDirectory caches the hierarchy snapshots used by scope checks.
// Entries expire after the configured TTL and are dropped when the shape of
// the hierarchy around them changes.
type OrganizationDirectory struct {
	orgRepo repository.OrganizationRepository
	cache   *expirable.LRU[uint64, authz.OrgNode]
}

// NewOrganizationDirectory creates a directory holding up to size snapshots.
func NewOrganizationDirectory(orgRepo repository.OrganizationRepository, size int, ttl time.Duration) *OrganizationDirectory {
	if size <= 0 {
		size = defaultDirectorySize
	}
	return &OrganizationDirectory{
		orgRepo: orgRepo,
		cache:   expirable.NewLRU[uint64, authz.OrgNode](size, nil, ttl),
	}
}

// Node returns the snapshot of orgID with its parent and direct children.
func (d *OrganizationDirectory) Node(orgID uint64) (*authz.OrgNode, error) {
	if node, ok := d.cache.Get(orgID); ok {
		metrics.ObserveOrgCache(true)
		node.ChildIDs = slices.Clone(node.ChildIDs)
		return &node, nil
	}
	metrics.ObserveOrgCache(false)

	org, err := d.orgRepo.FindByIDWithChildren(orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrganizationNotFound
		}
		return nil, fmt.Errorf("failed to load organization: %w", err)
	}

	node := org.Node()
	d.cache.Add(orgID, node)
	node.ChildIDs = slices.Clone(node.ChildIDs)
	return &node, nil
}

// Invalidate drops the cached snapshot of each organization.
func (d *OrganizationDirectory) Invalidate(orgIDs ...uint64) {
	for _, id := range orgIDs {
		d.cache.Remove(id)
	}
}
