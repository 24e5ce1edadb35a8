package memory_test

import (
	"context"
	"testing"

	"github.com/plumedoc/plume/internal/normalizer"
	"github.com/plumedoc/plume/pkg/adapters/memory"
	"github.com/plumedoc/plume/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededBook() *memory.ClientBook {
	return memory.NewClientBook(normalizer.New(),
		domain.ClientRecord{Name: "Ada Lovelace", Company: "Analytical Engines", Email: "ada@example.org"},
		domain.ClientRecord{Name: "Grace Hopper", Company: "Navy"},
		domain.ClientRecord{Name: "Adèle Martin", Company: "Boulangerie Martin"},
	)
}

func TestClientBook_Search(t *testing.T) {
	book := seededBook()
	ctx := context.Background()

	// Substring match over names, case-insensitive.
	matches, err := book.Search(ctx, "grace")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Grace Hopper", matches[0].Name)

	// Accents fold on both sides.
	matches, err = book.Search(ctx, "adele")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Adèle Martin", matches[0].Name)

	// Company names are searched too.
	matches, err = book.Search(ctx, "boulangerie")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Adèle Martin", matches[0].Name)

	// No match yields an empty result, not an error.
	matches, err = book.Search(ctx, "inconnu")
	require.NoError(t, err)
	assert.Empty(t, matches)

	// A query that normalizes away entirely matches nothing.
	matches, err = book.Search(ctx, "???")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestClientBook_Create(t *testing.T) {
	book := memory.NewClientBook(normalizer.New())
	ctx := context.Background()

	require.NoError(t, book.Create(ctx, domain.ClientRecord{Name: "Jean Dupont", Email: "jean@example.org"}))

	matches, err := book.Search(ctx, "dupont")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "jean@example.org", matches[0].Email)
}
