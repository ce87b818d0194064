// Package contentful reads the catalog from the Contentful Content Delivery
// API.
package contentful

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/internal/store"
	"github.com/tilestudio/site/pkg/httpclient"
	"github.com/tilestudio/site/pkg/tracing"
)

// DefaultBaseURL is the Content Delivery API endpoint.
const DefaultBaseURL = "https://cdn.contentful.com"

// pageLimit is the largest page the Delivery API serves.
const pageLimit = 1000

// Content type ids.
const (
	typeProduct    = "product"
	typeCollection = "collection"
	typeCatalogue  = "catalogue"
)

// Config identifies the space to read.
type Config struct {
	SpaceID     string
	AccessToken string
	Environment string
	BaseURL     string
}

// Client fetches catalog entries from one Contentful space.
type Client struct {
	cfg    Config
	http   httpclient.Doer
	tracer trace.Tracer
}

// New creates a client issuing requests through d.
func New(cfg Config, d httpclient.Doer) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Environment == "" {
		cfg.Environment = "master"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: d, tracer: tracing.Tracer("github.com/tilestudio/site/internal/store/contentful")}
}

type sys struct {
	ID string `json:"id"`
}

type link struct {
	Sys sys `json:"sys"`
}

type asset struct {
	Sys    sys `json:"sys"`
	Fields struct {
		Title string `json:"title"`
		File  struct {
			URL     string `json:"url"`
			Details struct {
				Size int64 `json:"size"`
			} `json:"details"`
		} `json:"file"`
	} `json:"fields"`
}

type linkedEntry struct {
	Sys    sys `json:"sys"`
	Fields struct {
		Slug string `json:"slug"`
	} `json:"fields"`
}

type includes struct {
	Asset []asset       `json:"Asset"`
	Entry []linkedEntry `json:"Entry"`
}

type entry[F any] struct {
	Sys    sys `json:"sys"`
	Fields F   `json:"fields"`
}

type entriesPage[F any] struct {
	Total    int        `json:"total"`
	Skip     int        `json:"skip"`
	Limit    int        `json:"limit"`
	Items    []entry[F] `json:"items"`
	Includes includes   `json:"includes"`
}

// linked resolves links against the includes of every fetched page.
type linked struct {
	assets  map[string]asset
	entries map[string]linkedEntry
}

func (l *linked) add(inc includes) {
	for _, a := range inc.Asset {
		l.assets[a.Sys.ID] = a
	}
	for _, e := range inc.Entry {
		l.entries[e.Sys.ID] = e
	}
}

func (l *linked) assetURL(ref *link) string {
	if ref == nil {
		return ""
	}
	return store.AbsoluteURL(l.assets[ref.Sys.ID].Fields.File.URL)
}

func (l *linked) assetURLs(refs []link) []string {
	urls := make([]string, 0, len(refs))
	for i := range refs {
		if u := l.assetURL(&refs[i]); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func (l *linked) entrySlugs(refs []link) []string {
	slugs := make([]string, 0, len(refs))
	for _, r := range refs {
		if e, ok := l.entries[r.Sys.ID]; ok && e.Fields.Slug != "" {
			slugs = append(slugs, e.Fields.Slug)
		}
	}
	return slugs
}

// fetchEntries pages through every entry of contentType.
func fetchEntries[F any](ctx context.Context, c *Client, contentType string) (items []entry[F], refs *linked, err error) {
	ctx, span := c.tracer.Start(ctx, "contentful.entries",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("cms.content_type", contentType)),
	)
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	refs = &linked{assets: map[string]asset{}, entries: map[string]linkedEntry{}}
	header := http.Header{"Authorization": []string{"Bearer " + c.cfg.AccessToken}}

	for skip := 0; ; {
		var page entriesPage[F]
		if err := httpclient.GetJSON(ctx, c.http, c.entriesURL(contentType, skip), header, store.SourceContentful, &page); err != nil {
			return nil, nil, fmt.Errorf("fetch %s entries: %w", contentType, err)
		}
		items = append(items, page.Items...)
		refs.add(page.Includes)

		skip += len(page.Items)
		if len(page.Items) == 0 || skip >= page.Total {
			break
		}
	}

	span.SetAttributes(attribute.Int("cms.entries", len(items)))
	return items, refs, nil
}

func (c *Client) entriesURL(contentType string, skip int) string {
	q := url.Values{}
	q.Set("content_type", contentType)
	q.Set("include", "2")
	q.Set("limit", strconv.Itoa(pageLimit))
	q.Set("skip", strconv.Itoa(skip))
	q.Set("order", "sys.createdAt")
	return fmt.Sprintf("%s/spaces/%s/environments/%s/entries?%s",
		c.cfg.BaseURL, url.PathEscape(c.cfg.SpaceID), url.PathEscape(c.cfg.Environment), q.Encode())
}

type productFields struct {
	Name         string   `json:"name"`
	Slug         string   `json:"slug"`
	Code         string   `json:"code"`
	MainCategory string   `json:"mainCategory"`
	DesignStyle  string   `json:"designStyle"`
	Finish       string   `json:"finish"`
	Price        float64  `json:"price"`
	Unit         string   `json:"unit"`
	Sizes        []string `json:"sizes"`
	Thickness    string   `json:"thickness"`
	Applications []string `json:"applications"`
	Bookmatch    bool     `json:"bookmatch"`
	SixFace      bool     `json:"sixFace"`
	FullBody     bool     `json:"fullBody"`
	Images       []link   `json:"images"`
	Description  *Node    `json:"description"`
	Catalogues   []link   `json:"catalogues"`
}

// Products implements store.Store.
func (c *Client) Products(ctx context.Context) ([]domain.Product, error) {
	items, refs, err := fetchEntries[productFields](ctx, c, typeProduct)
	if err != nil {
		return nil, err
	}

	products := make([]domain.Product, 0, len(items))
	for _, it := range items {
		f := it.Fields
		products = append(products, domain.Product{
			ID:           store.StableID(it.Sys.ID),
			Slug:         f.Slug,
			Name:         f.Name,
			Code:         f.Code,
			MainCategory: f.MainCategory,
			DesignStyle:  f.DesignStyle,
			Finish:       f.Finish,
			Price:        f.Price,
			Unit:         f.Unit,
			Sizes:        f.Sizes,
			Thickness:    f.Thickness,
			Applications: f.Applications,
			Bookmatch:    f.Bookmatch,
			SixFace:      f.SixFace,
			FullBody:     f.FullBody,
			Images:       refs.assetURLs(f.Images),
			Description:  PlainText(f.Description),
			Catalogues:   refs.entrySlugs(f.Catalogues),
		})
	}
	return store.NormalizeProducts(products), nil
}

type collectionFields struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Type        string `json:"type"`
	Image       *link  `json:"image"`
	Description string `json:"description"`
}

// Collections implements store.Store.
func (c *Client) Collections(ctx context.Context) ([]domain.Collection, error) {
	items, refs, err := fetchEntries[collectionFields](ctx, c, typeCollection)
	if err != nil {
		return nil, err
	}

	collections := make([]domain.Collection, 0, len(items))
	for _, it := range items {
		f := it.Fields
		if !domain.IsValidCollectionType(f.Type) {
			continue
		}
		collections = append(collections, domain.Collection{
			Name:        f.Name,
			Slug:        f.Slug,
			Type:        f.Type,
			Image:       refs.assetURL(f.Image),
			Description: f.Description,
		})
	}
	return store.NormalizeCollections(collections), nil
}

type catalogueFields struct {
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Thumbnail   *link  `json:"thumbnail"`
	File        *link  `json:"file"`
	Description string `json:"description"`
}

// Catalogues implements store.Store.
func (c *Client) Catalogues(ctx context.Context) ([]domain.Catalogue, error) {
	items, refs, err := fetchEntries[catalogueFields](ctx, c, typeCatalogue)
	if err != nil {
		return nil, err
	}

	catalogues := make([]domain.Catalogue, 0, len(items))
	for _, it := range items {
		f := it.Fields
		var size int64
		if f.File != nil {
			size = refs.assets[f.File.Sys.ID].Fields.File.Details.Size
		}
		catalogues = append(catalogues, domain.Catalogue{
			Title:       f.Title,
			Slug:        f.Slug,
			Thumbnail:   refs.assetURL(f.Thumbnail),
			FileURL:     refs.assetURL(f.File),
			FileSize:    store.SizeLabel(size),
			Description: f.Description,
		})
	}
	return store.NormalizeCatalogues(catalogues), nil
}
