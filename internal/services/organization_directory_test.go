package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrganizationDirectory_CachesUntilInvalidated(t *testing.T) {
	env := newTestEnv(t)
	parent := env.createOrg(t, "Parent", nil)

	node, err := env.directory.Node(parent.ID)
	require.NoError(t, err)
	assert.Empty(t, node.ChildIDs)

	// A child added behind the directory's back is not seen until invalidation.
	child := env.createOrg(t, "Child", &parent.ID)
	node, err = env.directory.Node(parent.ID)
	require.NoError(t, err)
	assert.Empty(t, node.ChildIDs)

	env.directory.Invalidate(parent.ID)
	node, err = env.directory.Node(parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{child.ID}, node.ChildIDs)

	_, err = env.directory.Node(9999)
	assert.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestOrganizationDirectory_Expires(t *testing.T) {
	env := newTestEnv(t)
	directory := NewOrganizationDirectory(env.orgRepo, 4, 10*time.Millisecond)
	parent := env.createOrg(t, "Parent", nil)

	_, err := directory.Node(parent.ID)
	require.NoError(t, err)
	child := env.createOrg(t, "Child", &parent.ID)

	assert.Eventually(t, func() bool {
		node, err := directory.Node(parent.ID)
		return err == nil && len(node.ChildIDs) == 1 && node.ChildIDs[0] == child.ID
	}, time.Second, 5*time.Millisecond)
}

func TestOrganizationDirectory_NodeDoesNotShareChildren(t *testing.T) {
	env := newTestEnv(t)
	parent := env.createOrg(t, "Parent", nil)
	child := env.createOrg(t, "Child", &parent.ID)

	// The first call fills the cache; the second is served from it.
	for range 2 {
		node, err := env.directory.Node(parent.ID)
		require.NoError(t, err)
		require.Equal(t, []uint64{child.ID}, node.ChildIDs)
		node.ChildIDs[0] = 9999
		node.ChildIDs = append(node.ChildIDs, 10000)
	}

	node, err := env.directory.Node(parent.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint64{child.ID}, node.ChildIDs)
}
