package memory_test

import (
	"context"
	"testing"

	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunStateStoreContract(t, store)
}

func TestMemoryStore_Isolation(t *testing.T) {
	store := memory.NewStore()
	ctx := context.Background()

	state := domain.NewState("s", "i", domain.StepFirstName)
	require.NoError(t, store.Save(ctx, "s", state))

	state.Answers.Set(domain.FieldFirstName, domain.Text("mutated"))
	loaded, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, loaded.Answers.Text(domain.FieldFirstName))

	loaded.Answers.Set(domain.FieldFirstName, domain.Text("mutated"))
	again, err := store.Load(ctx, "s")
	require.NoError(t, err)
	assert.Empty(t, again.Answers.Text(domain.FieldFirstName))
}
