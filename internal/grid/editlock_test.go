package grid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type stubController struct {
	commit, cancel bool
	commits        int
}

func (c *stubController) CommitCurrentEdit() bool {
	c.commits++
	return c.commit
}

func (c *stubController) CancelCurrentEdit() bool { return c.cancel }

func TestEditLock(t *testing.T) {
	t.Parallel()

	lock := NewEditLock()
	require.False(t, lock.IsActive(nil))
	require.True(t, lock.CommitCurrentEdit(), "a free lock commits")
	require.True(t, lock.CancelCurrentEdit(), "a free lock cancels")

	a := &stubController{commit: false, cancel: true}
	b := &stubController{commit: true}
	require.NoError(t, lock.Activate(a))
	require.NoError(t, lock.Activate(a), "activating twice is a no-op")
	require.True(t, lock.IsActive(a))
	require.True(t, lock.IsActive(nil))
	require.False(t, lock.IsActive(b))

	require.ErrorIs(t, lock.Activate(b), ErrEditLockHeld)
	require.Error(t, lock.Deactivate(b))

	require.False(t, lock.CommitCurrentEdit())
	require.Equal(t, 1, a.commits)
	require.True(t, lock.CancelCurrentEdit())

	require.NoError(t, lock.Deactivate(a))
	require.False(t, lock.IsActive(nil))
	require.NoError(t, lock.Activate(b))
	require.True(t, lock.CommitCurrentEdit())
}

func TestEditLock_NilHolder(t *testing.T) {
	t.Parallel()

	require.Error(t, NewEditLock().Activate(nil))
}
