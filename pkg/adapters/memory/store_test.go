package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/taxwizard/pkg/adapters/memory"
	"github.com/aretw0/taxwizard/pkg/domain"
	"github.com/aretw0/taxwizard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	state := domain.NewState("s1")
	state.Answers["has-tin"] = "yes"
	require.NoError(t, store.Save(ctx, "s1", state))

	state.Answers["has-tin"] = "no"
	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "yes", loaded.Answers.Get("has-tin"))

	loaded.History = append(loaded.History, 1)
	again, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []int{0}, again.History)
}
