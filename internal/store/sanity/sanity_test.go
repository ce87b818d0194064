package sanity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tilestudio/site/internal/store"
	apperrors "github.com/tilestudio/site/pkg/errors"
	"github.com/tilestudio/site/pkg/httpclient"
)

func newTestClient(t *testing.T, token string, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := httpclient.DefaultConfig()
	cfg.MaxRetries = 0
	return New(Config{ProjectID: "abc123", Dataset: "production", Token: token, BaseURL: srv.URL}, httpclient.New(cfg))
}

func writeResult(w http.ResponseWriter, result string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"ms": 3, "result": ` + result + `}`))
}

func TestClient_Products(t *testing.T) {
	c := newTestClient(t, "secret", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2024-01-01/data/query/production", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.True(t, strings.HasPrefix(r.URL.Query().Get("query"), `*[_type == "product"]`))

		writeResult(w, `[
			{
				"_id": "p1", "name": "Oak Natural", "slug": "oak-natural",
				"mainCategory": "tiles", "designStyle": "wood-look", "finish": "matt",
				"price": 52, "sizes": ["200x1200"], "images": ["https://cdn.sanity.io/a.jpg", null],
				"description": [
					{"_type": "block", "children": [{"_type": "span", "text": "Plank "}, {"_type": "span", "text": "format."}]},
					{"_type": "image"},
					{"_type": "block", "children": [{"_type": "span", "text": "Rectified edges."}]}
				],
				"catalogues": ["tiles-2025", null]
			},
			{"_id": "p2", "name": "Oak Natural", "slug": null, "price": null, "description": "Plain text."}
		]`)
	})

	products, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)

	assert.Equal(t, store.StableID("p1"), products[0].ID)
	assert.Equal(t, "oak-natural", products[0].Slug)
	assert.Equal(t, []string{"https://cdn.sanity.io/a.jpg"}, products[0].Images)
	assert.Equal(t, "Plank format.\n\nRectified edges.", products[0].Description)
	assert.Equal(t, []string{"tiles-2025"}, products[0].Catalogues)

	assert.Equal(t, "oak-natural-2", products[1].Slug)
	assert.Zero(t, products[1].Price)
	assert.Equal(t, "Plain text.", products[1].Description)
}

func TestClient_CollectionsAndCatalogues(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))

		q := r.URL.Query().Get("query")
		switch {
		case strings.Contains(q, `"collection"`):
			writeResult(w, `[
				{"name": "Stone Look", "slug": "stone-look", "type": "designStyle"},
				{"name": "Tiles", "slug": "tiles", "type": "mainCategory", "image": "https://cdn/t.jpg"},
				{"name": "Unknown", "slug": "x", "type": "other"}
			]`)
		case strings.Contains(q, `"catalogue"`):
			writeResult(w, `[{"title": "Tiles 2025", "slug": "tiles-2025", "fileUrl": "https://cdn/t.pdf", "fileSize": 524288}]`)
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	})

	collections, err := c.Collections(context.Background())
	require.NoError(t, err)
	require.Len(t, collections, 2)
	assert.Equal(t, "tiles", collections[0].Slug)
	assert.Equal(t, "stone-look", collections[1].Slug)

	catalogues, err := c.Catalogues(context.Background())
	require.NoError(t, err)
	require.Len(t, catalogues, 1)
	assert.Equal(t, "512.0 KB", catalogues[0].FileSize)
	assert.Equal(t, "https://cdn/t.pdf", catalogues[0].FileURL)
}

func TestClient_QueryError(t *testing.T) {
	c := newTestClient(t, "", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"description": "expected '}' following object body"},
		})
	})

	_, err := c.Collections(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	assert.Contains(t, err.Error(), "expected '}'")
}

func TestNew_Defaults(t *testing.T) {
	c := New(Config{ProjectID: "abc123"}, httpclient.New(httpclient.DefaultConfig()))

	assert.Equal(t, "https://abc123.apicdn.sanity.io", c.cfg.BaseURL)
	assert.Equal(t, "production", c.cfg.Dataset)
	assert.Contains(t, c.queryURL(`*[_type == "x"]`), "/v2024-01-01/data/query/production?query=")
}

func TestDescription_Null(t *testing.T) {
	var d struct {
		Description Description `json:"description"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"description": null}`), &d))
	assert.Empty(t, d.Description)
}
