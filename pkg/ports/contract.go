package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewState(sessionID)
		state.Answers[domain.QuestionHasTIN] = domain.AnswerYes
		state.Answers[domain.QuestionApplicantType] = domain.ApplicantOrganization
		state.History = []int{0, 1, 2}

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, domain.StatusInProgress, loaded.Status)
		assert.Equal(t, state.Answers, loaded.Answers)
		assert.Equal(t, []int{0, 1, 2}, loaded.History)
	})

	t.Run("Routing result survives persistence", func(t *testing.T) {
		id := sessionID + "-done"
		state := domain.NewState(id)
		state.Status = domain.StatusCompleted
		state.Result = domain.PartnershipCorporation{
			RequiredForms: []string{domain.FormRF01, domain.FormOS01},
			Summary:       "organization",
			HasOwners:     true,
		}
		require.NoError(t, store.Save(ctx, id, state))
		defer func() { _ = store.Delete(ctx, id) }()

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, state.Result, loaded.Result)
	})

	t.Run("Blocker survives persistence", func(t *testing.T) {
		id := sessionID + "-blocked"
		state := domain.NewState(id)
		state.Status = domain.StatusBlocked
		state.Blocker = &domain.Blocker{QuestionID: domain.QuestionHasTIN, Reason: "no tin"}
		require.NoError(t, store.Save(ctx, id, state))
		defer func() { _ = store.Delete(ctx, id) }()

		loaded, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusBlocked, loaded.Status)
		assert.Equal(t, state.Blocker, loaded.Blocker)
		assert.Nil(t, loaded.Result)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Delete of a missing session should succeed")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewState(id1))
		_ = store.Save(ctx, id2, domain.NewState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
