package ports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/unitpass/passbot/pkg/domain"
)

// RunSessionStoreContract runs a suite of tests verifying that a
// SessionStore implementation adheres to the port contract. Adapter
// packages call it from their own tests.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	const userID int64 = 424242

	t.Run("Save and Load", func(t *testing.T) {
		sess := domain.NewSession("en")
		sess.SerialNumber = "1234AB5678"
		sess.Step = domain.StepAwaitingDateChoice

		require.NoError(t, store.Save(ctx, userID, sess))

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.StepAwaitingDateChoice, loaded.Step)
		assert.Equal(t, "en", loaded.LanguageCode)
		assert.Equal(t, "1234AB5678", loaded.SerialNumber)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, userID+1)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, userID, domain.NewSession("en")))
		require.NoError(t, store.Save(ctx, userID, domain.NewSession("ru")))

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "ru", loaded.LanguageCode)
	})

	t.Run("Caller Cannot Mutate Stored Session", func(t *testing.T) {
		sess := domain.NewSession("en")
		require.NoError(t, store.Save(ctx, userID, sess))

		sess.SerialNumber = "9999ZZ9999"

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Empty(t, loaded.SerialNumber)

		loaded.Step = domain.StepCompleted
		again, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.StepAwaitingSerial, again.Step)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, userID, domain.NewSession("en")))
		require.NoError(t, store.Delete(ctx, userID))

		_, err := store.Load(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete Missing Is Not An Error", func(t *testing.T) {
		assert.NoError(t, store.Delete(ctx, userID+7))
	})
}
