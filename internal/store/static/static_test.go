package static

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/internal/store"
)

func TestNew_BundledCatalog(t *testing.T) {
	src, err := New()
	require.NoError(t, err)

	snap, err := store.FetchSnapshot(context.Background(), src, store.SourceStatic)
	require.NoError(t, err)

	assert.NotEmpty(t, snap.Products)
	assert.NotEmpty(t, snap.Collections)
	assert.NotEmpty(t, snap.Catalogues)

	slugs := map[string]bool{}
	ids := map[int64]bool{}
	for _, p := range snap.Products {
		assert.NotEmpty(t, p.Slug)
		assert.False(t, slugs[p.Slug], "duplicate slug %s", p.Slug)
		assert.False(t, ids[p.ID], "duplicate id for %s", p.Slug)
		slugs[p.Slug] = true
		ids[p.ID] = true
	}

	for _, c := range snap.Collections {
		assert.True(t, domain.IsValidCollectionType(c.Type), c.Slug)
	}
	assert.Equal(t, domain.MainCategorySlabs, snap.Collections[0].Slug)
}

func TestSource_ReturnsCopies(t *testing.T) {
	src, err := New()
	require.NoError(t, err)

	first, err := src.Products(context.Background())
	require.NoError(t, err)
	first[0].Name = "changed"

	second, err := src.Products(context.Background())
	require.NoError(t, err)
	assert.NotEqual(t, "changed", second[0].Name)
}

func TestParse(t *testing.T) {
	src, err := Parse([]byte(`{
		"products": [{"name": "Oak Natural"}, {"name": "Oak Natural"}],
		"collections": [{"name": "Tiles", "type": "mainCategory"}],
		"catalogues": [{"title": "Tiles 2025"}]
	}`))
	require.NoError(t, err)

	products, _ := src.Products(context.Background())
	require.Len(t, products, 2)
	assert.Equal(t, "oak-natural", products[0].Slug)
	assert.Equal(t, "oak-natural-2", products[1].Slug)
	assert.Equal(t, store.StableID("static:oak-natural"), products[0].ID)

	catalogues, _ := src.Catalogues(context.Background())
	assert.Equal(t, "tiles-2025", catalogues[0].Slug)
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte(`{"products": [{"nmae": "typo"}]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode static catalog")
}
