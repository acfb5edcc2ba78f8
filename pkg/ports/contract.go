package ports

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/unifecaf/triagebot/pkg/domain"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	userID := "contract-user-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewSession(userID, time.Now().UTC().Truncate(time.Second))
		sess.Step = domain.StepStudentMenu
		sess.Attributes.Set(domain.KeyRole, domain.RoleStudent)
		sess.Attributes.Set(domain.KeyStudentID, "12345")
		sess.Attributes.Set(domain.KeyCourse, "ADS")

		err := store.Save(ctx, userID, sess)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sess.UserID, loaded.UserID)
		assert.Equal(t, sess.AuditID, loaded.AuditID)
		assert.Equal(t, domain.StepStudentMenu, loaded.Step)
		assert.True(t, sess.CreatedAt.Equal(loaded.CreatedAt), "CreatedAt should survive persistence")
		assert.Equal(t, sess.Attributes.Entries(), loaded.Attributes.Entries(), "attribute order should survive persistence")
	})

	t.Run("Load Returns Copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		loaded.Attributes.Set("scratch", "x")
		loaded.Step = domain.StepVisitorMenu

		again, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.StepStudentMenu, again.Step)
		_, ok := again.Attributes.Get("scratch")
		assert.False(t, ok, "mutating a loaded session must not affect the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, userID, domain.NewSession(userID, time.Now()))
		require.NoError(t, err)

		err = store.Delete(ctx, userID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("Delete Non-Existent", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, "never-saved-"+userID))
	})

	t.Run("List", func(t *testing.T) {
		id1 := userID + "-1"
		id2 := userID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1, time.Now()))
		_ = store.Save(ctx, id2, domain.NewSession(id2, time.Now()))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		users, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, users, id1)
		assert.Contains(t, users, id2)
	})
}
