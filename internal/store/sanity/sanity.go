// Package sanity reads the catalog from a Sanity dataset through the GROQ
// query API.
package sanity

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/internal/store"
	"github.com/tilestudio/site/pkg/httpclient"
	"github.com/tilestudio/site/pkg/tracing"
)

// DefaultAPIVersion is the dated API version queries are pinned to.
const DefaultAPIVersion = "2024-01-01"

const (
	productsQuery = `*[_type == "product"] | order(_createdAt asc) {
  _id, name, "slug": slug.current, code, mainCategory, designStyle, finish,
  price, unit, sizes, thickness, applications, bookmatch, sixFace, fullBody,
  "images": images[].asset->url, description,
  "catalogues": catalogues[]->slug.current
}`
	collectionsQuery = `*[_type == "collection"] | order(_createdAt asc) {
  _id, name, "slug": slug.current, type, "image": image.asset->url, description
}`
	cataloguesQuery = `*[_type == "catalogue"] | order(_createdAt asc) {
  _id, title, "slug": slug.current, "thumbnail": thumbnail.asset->url,
  "fileUrl": file.asset->url, "fileSize": file.asset->size, description
}`
)

// Config identifies the dataset to read.
type Config struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	// Token is only needed for private datasets.
	Token   string
	BaseURL string
}

// Client queries one Sanity dataset.
type Client struct {
	cfg    Config
	http   httpclient.Doer
	tracer trace.Tracer
}

// New creates a client issuing requests through d. Without a BaseURL the
// project's CDN endpoint is used.
func New(cfg Config, d httpclient.Doer) *Client {
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = fmt.Sprintf("https://%s.apicdn.sanity.io", cfg.ProjectID)
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: d, tracer: tracing.Tracer("github.com/tilestudio/site/internal/store/sanity")}
}

type queryResponse[T any] struct {
	Result []T `json:"result"`
	Ms     int `json:"ms"`
}

func query[T any](ctx context.Context, c *Client, kind, groq string) (result []T, err error) {
	ctx, span := c.tracer.Start(ctx, "sanity.query",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("cms.kind", kind),
			attribute.String("cms.dataset", c.cfg.Dataset),
		),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	var header http.Header
	if c.cfg.Token != "" {
		header = http.Header{"Authorization": []string{"Bearer " + c.cfg.Token}}
	}

	var resp queryResponse[T]
	if err := httpclient.GetJSON(ctx, c.http, c.queryURL(groq), header, store.SourceSanity, &resp); err != nil {
		return nil, fmt.Errorf("query %s: %w", kind, err)
	}

	span.SetAttributes(attribute.Int("cms.documents", len(resp.Result)), attribute.Int("cms.query_ms", resp.Ms))
	return resp.Result, nil
}

func (c *Client) queryURL(groq string) string {
	q := url.Values{}
	q.Set("query", groq)
	return fmt.Sprintf("%s/v%s/data/query/%s?%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.APIVersion), url.PathEscape(c.cfg.Dataset), q.Encode())
}

type productDoc struct {
	ID           string      `json:"_id"`
	Name         string      `json:"name"`
	Slug         string      `json:"slug"`
	Code         string      `json:"code"`
	MainCategory string      `json:"mainCategory"`
	DesignStyle  string      `json:"designStyle"`
	Finish       string      `json:"finish"`
	Price        float64     `json:"price"`
	Unit         string      `json:"unit"`
	Sizes        []string    `json:"sizes"`
	Thickness    string      `json:"thickness"`
	Applications []string    `json:"applications"`
	Bookmatch    bool        `json:"bookmatch"`
	SixFace      bool        `json:"sixFace"`
	FullBody     bool        `json:"fullBody"`
	Images       []string    `json:"images"`
	Description  Description `json:"description"`
	Catalogues   []string    `json:"catalogues"`
}

// Products implements store.Store.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	docs, err := query[productDoc](ctx, c, "products", productsQuery)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(docs))
	for _, d := range docs {
		products = append(products, domain.Product{
			ID:           store.StableID(d.ID),
			Slug:         d.Slug,
			Name:         d.Name,
			Code:         d.Code,
			MainCategory: d.MainCategory,
			DesignStyle:  d.DesignStyle,
			Finish:       d.Finish,
			Price:        d.Price,
			Unit:         d.Unit,
			Sizes:        d.Sizes,
			Thickness:    d.Thickness,
			Applications: d.Applications,
			Bookmatch:    d.Bookmatch,
			SixFace:      d.SixFace,
			FullBody:     d.FullBody,
			Images:       compact(d.Images),
			Description:  string(d.Description),
			Catalogues:   compact(d.Catalogues),
		})
	}
	return store.NormalizeProducts(products), nil
}

type collectionDoc struct {
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Type        string      `json:"type"`
	Image       string      `json:"image"`
	Description Description `json:"description"`
}

// Collections implements store.Store.
func (c *Client) Collections(ctx context.Context) ([]domain.Collection, error) {
	docs, err := query[collectionDoc](ctx, c, "collections", collectionsQuery)
	if err != nil {
		return nil, err
	}

	collections := make([]domain.Collection, 0, len(docs))
	for _, d := range docs {
		if !domain.IsValidCollectionType(d.Type) {
			continue
		}
		collections = append(collections, domain.Collection{
			Name:        d.Name,
			Slug:        d.Slug,
			Type:        d.Type,
			Image:       d.Image,
			Description: string(d.Description),
		})
	}
	return store.NormalizeCollections(collections), nil
}

type catalogueDoc struct {
	Title       string      `json:"title"`
	Slug        string      `json:"slug"`
	Thumbnail   string      `json:"thumbnail"`
	FileURL     string      `json:"fileUrl"`
	FileSize    int64       `json:"fileSize"`
	Description Description `json:"description"`
}

// Catalogues implements store.Store.
func (c *Client) Catalogues(ctx context.Context) ([]domain.Catalogue, error) {
	docs, err := query[catalogueDoc](ctx, c, "catalogues", cataloguesQuery)
	if err != nil {
		return nil, err
	}

	catalogues := make([]domain.Catalogue, 0, len(docs))
	for _, d := range docs {
		catalogues = append(catalogues, domain.Catalogue{
			Title:       d.Title,
			Slug:        d.Slug,
			Thumbnail:   d.Thumbnail,
			FileURL:     d.FileURL,
			FileSize:    store.SizeLabel(d.FileSize),
			Description: string(d.Description),
		})
	}
	return store.NormalizeCatalogues(catalogues), nil
}

// compact drops the nulls GROQ projections yield for dangling references.
func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}
