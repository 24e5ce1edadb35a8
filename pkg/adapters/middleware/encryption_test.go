package middleware_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/plumedoc/plume/pkg/adapters/memory"
	"github.com/plumedoc/plume/pkg/adapters/middleware"
	"github.com/plumedoc/plume/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) []byte { return bytes.Repeat([]byte{b}, 32) }

func sampleContext() *domain.ConversationContext {
	conv := domain.NewContext()
	conv.State = domain.StateFillingMissing
	conv.Version = 2
	conv.Category = "Contrats"
	conv.Client = &domain.ClientRecord{Name: "Ada Lovelace", Email: "ada@example.org"}
	conv.BoundVariables["nom"] = "Ada Lovelace"
	return conv
}

func TestEncryption_RoundTrip(t *testing.T) {
	backend := memory.NewStore()
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})(backend)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleContext()))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateFillingMissing, loaded.State)
	assert.Equal(t, "Ada Lovelace", loaded.BoundVariables["nom"])
	require.NotNil(t, loaded.Client)
	assert.Equal(t, "ada@example.org", loaded.Client.Email)
}

func TestEncryption_BackendSeesOnlyEnvelope(t *testing.T) {
	backend := memory.NewStore()
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})(backend)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "s1", sampleContext()))

	raw, err := backend.Load(ctx, "s1")
	require.NoError(t, err)
	// State and version stay readable for monitoring; everything else is opaque.
	assert.Equal(t, domain.StateFillingMissing, raw.State)
	assert.Equal(t, 2, raw.Version)
	assert.Nil(t, raw.Client)
	assert.Empty(t, raw.Category)
	assert.NotEmpty(t, raw.BoundVariables["__encrypted__"])
}

func TestEncryption_KeyRotation(t *testing.T) {
	backend := memory.NewStore()
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})(backend)
	require.NoError(t, oldStore.Save(ctx, "s1", sampleContext()))

	// A rotated config still reads data written under the previous key.
	rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    key(2),
		FallbackKeys: [][]byte{key(1)},
	})(backend)

	loaded, err := rotated.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", loaded.BoundVariables["nom"])
}

func TestEncryption_WrongKeyFails(t *testing.T) {
	backend := memory.NewStore()
	ctx := context.Background()

	writer := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})(backend)
	require.NoError(t, writer.Save(ctx, "s1", sampleContext()))

	reader := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(9)})(backend)
	_, err := reader.Load(ctx, "s1")
	assert.ErrorContains(t, err, "decrypt")
}

func TestEncryption_PlainContextFailsSecure(t *testing.T) {
	backend := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, backend.Save(ctx, "s1", sampleContext()))

	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)})(backend)
	_, err := store.Load(ctx, "s1")
	assert.ErrorContains(t, err, "envelope")
}

func TestEncryption_RejectsShortKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}
