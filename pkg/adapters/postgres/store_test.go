package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/aretw0/onboard/pkg/adapters/postgres"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/stretchr/testify/require"
)

// newStore connects to the database named by ONBOARD_TEST_POSTGRES_DSN and
// starts from an empty table.
func newStore(t *testing.T) *postgres.Store {
	t.Helper()
	dsn := os.Getenv("ONBOARD_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("ONBOARD_TEST_POSTGRES_DSN not set")
	}

	ctx := context.Background()
	store, err := postgres.Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, store.DropSchema(ctx))
	require.NoError(t, store.CreateSchema(ctx))
	t.Cleanup(func() {
		_ = store.DropSchema(context.Background())
		store.Close()
	})
	return store
}

func TestStore_Contract(t *testing.T) {
	ports.RunStateStoreContract(t, newStore(t))
}
