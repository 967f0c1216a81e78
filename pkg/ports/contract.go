package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/toyrobot/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := &domain.State{Location: domain.Position{X: 1, Y: 3}, Direction: "SOUTH"}

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, *state, *loaded)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, &domain.State{Location: domain.Position{X: 0, Y: 0}, Direction: "NORTH"}))
		require.NoError(t, store.Save(ctx, sessionID, &domain.State{Location: domain.Position{X: 4, Y: 2}, Direction: "WEST"}))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, domain.Position{X: 4, Y: 2}, loaded.Location)
		assert.Equal(t, "WEST", loaded.Direction)
	})

	t.Run("Isolation", func(t *testing.T) {
		state := &domain.State{Location: domain.Position{X: 2, Y: 2}, Direction: "EAST"}
		require.NoError(t, store.Save(ctx, sessionID, state))

		// Mutating the caller's copy must not leak into the store.
		state.Location.X = 3
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.Location.X)

		loaded.Direction = "NORTH"
		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "EAST", again.Direction)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, &domain.State{Direction: "NORTH"})
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, &domain.State{Direction: "NORTH"})
		_ = store.Save(ctx, id2, &domain.State{Direction: "SOUTH"})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})

	t.Run("IDs Named Like Store Keys", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, &domain.State{Direction: "EAST"}))
		require.NoError(t, store.Save(ctx, "index", &domain.State{Direction: "WEST"}))
		defer func() {
			_ = store.Delete(ctx, sessionID)
			_ = store.Delete(ctx, "index")
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, sessionID)
		assert.Contains(t, sessions, "index")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "EAST", loaded.Direction)
	})
}
