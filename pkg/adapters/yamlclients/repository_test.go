package yamlclients_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/plumedoc/plume/internal/normalizer"
	"github.com/plumedoc/plume/pkg/adapters/yamlclients"
	"github.com/plumedoc/plume/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBook = `clients:
  - name: Ada Lovelace
    company: Analytical Engines
    email: ada@example.org
  - name: Adèle Martin
    company: Boulangerie Martin
    phone: "0600000000"
`

func TestOpen_MissingFileIsEmptyBook(t *testing.T) {
	repo, err := yamlclients.Open(filepath.Join(t.TempDir(), "clients.yaml"), normalizer.New())
	require.NoError(t, err)

	matches, err := repo.Search(context.Background(), "ada")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestOpen_ParsesBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleBook), 0o644))

	repo, err := yamlclients.Open(path, normalizer.New())
	require.NoError(t, err)

	matches, err := repo.Search(context.Background(), "Adèle")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Boulangerie Martin", matches[0].Company)
	assert.Equal(t, "0600000000", matches[0].Phone)
}

func TestCreate_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.yaml")
	repo, err := yamlclients.Open(path, normalizer.New())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, domain.ClientRecord{
		Name:  "Jean Dupont",
		Email: "jean@example.org",
	}))

	// Visible immediately.
	matches, err := repo.Search(ctx, "dupont")
	require.NoError(t, err)
	require.Len(t, matches, 1)

	// And after reopening the file.
	reopened, err := yamlclients.Open(path, normalizer.New())
	require.NoError(t, err)
	matches, err = reopened.Search(ctx, "dupont")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "jean@example.org", matches[0].Email)
}

func TestCreate_RejectsEmptyRecord(t *testing.T) {
	repo, err := yamlclients.Open(filepath.Join(t.TempDir(), "clients.yaml"), normalizer.New())
	require.NoError(t, err)

	assert.Error(t, repo.Create(context.Background(), domain.ClientRecord{}))
}

func TestOpen_RejectsMalformedBook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clients.yaml")
	require.NoError(t, os.WriteFile(path, []byte("clients: {not a list}"), 0o644))

	_, err := yamlclients.Open(path, normalizer.New())
	assert.Error(t, err)
}
