package session

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStoreLifecycle(t *testing.T) {
	store := NewStore()

	id := store.Create()
	require.NotEmpty(t, id)

	status, err := store.Status(id)
	require.NoError(t, err)
	require.False(t, status.LoggedIn)
	require.Empty(t, status.UUID)

	require.NoError(t, store.Login(id, "uuid-alice"))

	status, err = store.Status(id)
	require.NoError(t, err)
	require.True(t, status.LoggedIn)
	require.Equal(t, "uuid-alice", status.UUID)
}

func TestStoreUnknownSession(t *testing.T) {
	store := NewStore()

	_, err := store.Status("unknown")
	require.ErrorIs(t, err, ErrNotFound)

	require.ErrorIs(t, store.Login("unknown", "uuid"), ErrNotFound)
}

func TestStoreSessionsAreIndependent(t *testing.T) {
	store := NewStore()

	a := store.Create()
	b := store.Create()
	require.NotEqual(t, a, b)

	require.NoError(t, store.Login(a, "uuid-a"))

	status, err := store.Status(b)
	require.NoError(t, err)
	require.False(t, status.LoggedIn)
}
