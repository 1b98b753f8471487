package middleware_test

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"io"
	"testing"

	"github.com/aretw0/onboard/pkg/adapters/memory"
	"github.com/aretw0/onboard/pkg/domain"
	"github.com/aretw0/onboard/pkg/persistence/middleware"
	"github.com/aretw0/onboard/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secure(t *testing.T, next ports.StateStore, cfg middleware.EncryptionConfig) ports.StateStore {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(cfg)
	require.NoError(t, err)
	return mw(next)
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	store := secure(t, memory.NewStore(), middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunStateStoreContract(t, store)
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := NewMockStore()
	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ctx := context.Background()

	state := domain.NewState("s1", "i1", domain.StepSocialInsurance)
	state.Answers.Set(domain.FieldSocialInsurance, domain.Text("046454286"))
	require.NoError(t, store.Save(ctx, "s1", state))

	envelope, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, envelope.Sealed)
	assert.Empty(t, envelope.Answers, "answers must not reach the underlying store")
	assert.Equal(t, domain.StepSocialInsurance, envelope.CurrentStep, "routing metadata stays readable")
	assert.False(t, bytes.Contains(envelope.Sealed, []byte("046454286")))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "046454286", loaded.Answers.Text(domain.FieldSocialInsurance))
	assert.Empty(t, loaded.Sealed)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := NewMockStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: oldKey})
	state := domain.NewState("s1", "i1", domain.StepFirstName)
	state.Answers.Set(domain.FieldFirstName, domain.Text("old"))
	require.NoError(t, oldStore.Save(ctx, "s1", state))

	newStore := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: newKey, FallbackKeys: [][]byte{oldKey}})
	loaded, err := newStore.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "old", loaded.Answers.Text(domain.FieldFirstName))

	loaded.Answers.Set(domain.FieldFirstName, domain.Text("new"))
	require.NoError(t, newStore.Save(ctx, "s1", loaded))

	_, err = oldStore.Load(ctx, "s1")
	assert.ErrorIs(t, err, middleware.ErrDecrypt)
}

func TestEncryptionMiddleware_RefusesPlainState(t *testing.T) {
	underlying := NewMockStore()
	require.NoError(t, underlying.Save(context.Background(), "s1", domain.NewState("s1", "i", domain.StepFirstName)))

	store := secure(t, underlying, middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	_, err := store.Load(context.Background(), "s1")
	assert.ErrorIs(t, err, middleware.ErrNotSealed)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestParseKey(t *testing.T) {
	key := generateKey(t)

	got, err := middleware.ParseKey(hex.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	got, err = middleware.ParseKey(base64.StdEncoding.EncodeToString(key))
	require.NoError(t, err)
	assert.Equal(t, key, got)

	_, err = middleware.ParseKey("nope")
	assert.ErrorIs(t, err, middleware.ErrInvalidKey)
}

func TestChain(t *testing.T) {
	var order []string
	tag := func(name string) middleware.Middleware {
		return func(next ports.StateStore) ports.StateStore {
			order = append(order, name)
			return next
		}
	}
	middleware.Chain(NewMockStore(), tag("outer"), tag("inner"))
	assert.Equal(t, []string{"inner", "outer"}, order, "inner wraps the store first")
}
