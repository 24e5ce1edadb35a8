package fsstore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plumedoc/plume/pkg/adapters/fsstore"
	"github.com/plumedoc/plume/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, root, category, name, text string) {
	t.Helper()
	dir := filepath.Join(root, category)
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(text), 0o644))
}

func TestStore_ListCategories(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "Lettres", "motivation.txt", "x")
	writeTemplate(t, root, "Contrats", "bail.txt", "x")
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hidden"), 0o755))

	store := fsstore.New(root)
	categories, err := store.ListCategories(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"Contrats", "Lettres"}, categories)
}

func TestStore_MissingRootIsEmptyCatalog(t *testing.T) {
	store := fsstore.New(filepath.Join(t.TempDir(), "does-not-exist"))

	categories, err := store.ListCategories(context.Background())
	require.NoError(t, err)
	assert.Empty(t, categories)

	models, err := store.ListModels(context.Background(), "Contrats")
	require.NoError(t, err)
	assert.Empty(t, models)
}

func TestStore_ListModels(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "Contrats", "prestation.txt", "Contrat de <<nom>>")
	writeTemplate(t, root, "Contrats", "bail.txt", "Bail")

	store := fsstore.New(root)
	models, err := store.ListModels(context.Background(), "Contrats")

	require.NoError(t, err)
	require.Len(t, models, 2)
	// Sorted by name, extension stripped, size recorded.
	assert.Equal(t, "bail", models[0].Name)
	assert.Equal(t, "prestation", models[1].Name)
	assert.Equal(t, "Contrats", models[0].Category)
	assert.Equal(t, int64(len("Bail")), models[0].SizeBytes)
}

func TestStore_ReadText(t *testing.T) {
	root := t.TempDir()
	writeTemplate(t, root, "Contrats", "bail.txt", "Bail de <<nom>>")

	store := fsstore.New(root)
	models, err := store.ListModels(context.Background(), "Contrats")
	require.NoError(t, err)
	require.Len(t, models, 1)

	text, err := store.ReadText(context.Background(), models[0])
	require.NoError(t, err)
	assert.Equal(t, "Bail de <<nom>>", text)

	_, err = store.ReadText(context.Background(), domain.TemplateDescriptor{
		Name: "gone", Path: filepath.Join(root, "Contrats", "gone.txt"),
	})
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestStore_WriteTextRoundTrip(t *testing.T) {
	store := fsstore.New(t.TempDir())
	ctx := context.Background()

	desc := domain.TemplateDescriptor{Name: "attestation", Category: "Attestations"}
	require.NoError(t, store.WriteText(ctx, desc, "Je soussigné <<nom>>..."))

	models, err := store.ListModels(ctx, "Attestations")
	require.NoError(t, err)
	require.Len(t, models, 1)

	text, err := store.ReadText(ctx, models[0])
	require.NoError(t, err)
	assert.Equal(t, "Je soussigné <<nom>>...", text)
}
