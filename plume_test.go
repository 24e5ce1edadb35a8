package plume_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plumedoc/plume"
	"github.com/plumedoc/plume/internal/normalizer"
	"github.com/plumedoc/plume/pkg/adapters/memory"
	"github.com/plumedoc/plume/pkg/adapters/middleware"
	"github.com/plumedoc/plume/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedTemplates(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "Contrats"), 0o755))
	require.NoError(t, os.WriteFile(
		filepath.Join(root, "Contrats", "bail.txt"), []byte("Bail de <<nom>>"), 0o644))
	return root
}

func TestNew_DefaultsRunInMemory(t *testing.T) {
	assembly := plume.New(seedTemplates(t))
	ctx := context.Background()

	reply, err := assembly.Engine.Handle(ctx, "s1", "je veux un document")
	require.NoError(t, err)
	assert.Equal(t, domain.StateAskingDocumentType, reply.State)

	reply, err = assembly.Engine.Handle(ctx, "s1", "1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateChoosingCategory, reply.State)
	assert.Contains(t, reply.Text, "Contrats")
}

func TestNew_WithClientRepository(t *testing.T) {
	book := memory.NewClientBook(normalizer.New(),
		domain.ClientRecord{Name: "Ada Lovelace", Email: "ada@example.org"})
	assembly := plume.New(seedTemplates(t), plume.WithClientRepository(book))
	ctx := context.Background()

	for _, turn := range []string{"je veux un document", "1", "Contrats", "bail", "1"} {
		_, err := assembly.Engine.Handle(ctx, "s1", turn)
		require.NoError(t, err)
	}

	reply, err := assembly.Engine.Handle(ctx, "s1", "Ada")
	require.NoError(t, err)
	// "nom" binds from the record, nothing is missing: done in one step.
	assert.True(t, reply.Done)
	assert.Equal(t, "Bail de Ada Lovelace", reply.Document)
}

func TestNew_WithStoreMiddleware(t *testing.T) {
	backend := memory.NewStore()
	key := bytes.Repeat([]byte{7}, 32)

	assembly := plume.New(seedTemplates(t),
		plume.WithContextStore(backend),
		plume.WithStoreMiddleware(
			middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
		),
	)
	ctx := context.Background()

	_, err := assembly.Engine.Handle(ctx, "s1", "je veux un document")
	require.NoError(t, err)

	// The raw backend holds only the encrypted envelope.
	raw, err := backend.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotEmpty(t, raw.BoundVariables["__encrypted__"])

	// While the engine keeps reading through the middleware transparently.
	reply, err := assembly.Engine.Handle(ctx, "s1", "1")
	require.NoError(t, err)
	assert.Equal(t, domain.StateChoosingCategory, reply.State)
}

func TestAssembly_ExposesBreaker(t *testing.T) {
	assembly := plume.New(seedTemplates(t))

	require.NotNil(t, assembly.Breaker)
	assert.False(t, assembly.Breaker.IsOpen())
	assembly.Breaker.Open()
	assert.True(t, assembly.Breaker.IsOpen())
}
