package middleware_test

import (
	"context"
	"testing"

	"github.com/plumedoc/plume/pkg/adapters/memory"
	"github.com/plumedoc/plume/pkg/adapters/middleware"
	"github.com/plumedoc/plume/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPII_MasksBeforePersisting(t *testing.T) {
	backend := memory.NewStore()
	store := middleware.NewPIIMiddleware([]string{"email", "telephone"})(backend)
	ctx := context.Background()

	conv := domain.NewContext()
	conv.BoundVariables["nom"] = "Ada Lovelace"
	conv.BoundVariables["email"] = "ada@example.org"
	conv.BoundVariables["telephone_portable"] = "0600000000"
	conv.Client = &domain.ClientRecord{
		Name:    "Ada Lovelace",
		Email:   "ada@example.org",
		Phone:   "0600000000",
		Address: "1 rue X",
	}
	require.NoError(t, store.Save(ctx, "s1", conv))

	raw, err := backend.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", raw.BoundVariables["nom"])
	assert.Equal(t, "***", raw.BoundVariables["email"])
	assert.Equal(t, "***", raw.BoundVariables["telephone_portable"])
	require.NotNil(t, raw.Client)
	assert.Equal(t, "Ada Lovelace", raw.Client.Name)
	assert.Equal(t, "***", raw.Client.Email)
	assert.Equal(t, "***", raw.Client.Phone)
	assert.Equal(t, "***", raw.Client.Address)

	// The caller's in-memory context is untouched.
	assert.Equal(t, "ada@example.org", conv.BoundVariables["email"])
	assert.Equal(t, "0600000000", conv.Client.Phone)
}

func TestPII_MasksCandidates(t *testing.T) {
	backend := memory.NewStore()
	store := middleware.NewPIIMiddleware(nil)(backend)
	ctx := context.Background()

	conv := domain.NewContext()
	conv.Candidates = []domain.ClientRecord{
		{Name: "Ada", Email: "ada@example.org"},
		{Name: "Grace"},
	}
	require.NoError(t, store.Save(ctx, "s1", conv))

	raw, err := backend.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "***", raw.Candidates[0].Email)
	assert.Equal(t, "Grace", raw.Candidates[1].Name)
	assert.Empty(t, raw.Candidates[1].Email)
}

func TestChain_OrdersOutermostFirst(t *testing.T) {
	backend := memory.NewStore()
	// PII masking runs before encryption, so the ciphertext already holds
	// masked values.
	store := middleware.Chain(backend,
		middleware.NewPIIMiddleware([]string{"email"}),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key(1)}),
	)
	ctx := context.Background()

	conv := domain.NewContext()
	conv.BoundVariables["email"] = "ada@example.org"
	require.NoError(t, store.Save(ctx, "s1", conv))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "***", loaded.BoundVariables["email"])

	raw, err := backend.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.BoundVariables["__encrypted__"])
}
