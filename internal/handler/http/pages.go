package http

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tilestudio/site/internal/catalog"
	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/internal/service"
	apperrors "github.com/tilestudio/site/pkg/errors"
	"github.com/tilestudio/site/pkg/logger"
	"github.com/tilestudio/site/pkg/validator"
)

// paramPrev carries the query string the listing form was rendered with.
const paramPrev = "prev"

// featuredCount is the number of newest products shown on the home page.
const featuredCount = 6

// PageHandler renders the HTML pages of the site.
type PageHandler struct {
	catalog   *service.CatalogService
	enquiries *service.EnquiryService
	renderer  *renderer
	logger    *slog.Logger
}

// NewPageHandler creates the HTML page handler.
func NewPageHandler(catalogService *service.CatalogService, enquiryService *service.EnquiryService, logger *slog.Logger) *PageHandler {
	return &PageHandler{
		catalog:   catalogService,
		enquiries: enquiryService,
		renderer:  newRenderer(),
		logger:    logger,
	}
}

// --- View models ---

type homeContent struct {
	Categories []domain.Collection
	Styles     []domain.Collection
	Featured   []domain.Product
}

type listingContent struct {
	List    *service.ProductList
	Groups  []facetGroupView
	Sorts   []sortOption
	Pager   []pageLink
	PrevURL string
	NextURL string
	Query   string
	Filters bool
}

type facetGroupView struct {
	Dimension domain.Dimension
	Param     string
	Feature   bool
	Options   []catalog.FacetOption
}

type sortOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageLink struct {
	Number  int
	URL     string
	Current bool
	Gap     bool
}

type productContent struct {
	Product domain.Product
	Similar []domain.Product
}

type contactContent struct {
	Form   ContactRequest
	Errors map[string]string
	Sent   bool
}

type errorContent struct {
	Status  int
	Message string
}

var sortLabels = map[string]string{
	domain.SortName:      "Name (A-Z)",
	domain.SortNameDesc:  "Name (Z-A)",
	domain.SortNewest:    "Newest",
	domain.SortPriceAsc:  "Price (low to high)",
	domain.SortPriceDesc: "Price (high to low)",
}

// --- Handlers ---

// Home handles GET /.
func (h *PageHandler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	categories, err := h.catalog.Collections(ctx, domain.CollectionTypeMainCategory)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	styles, err := h.catalog.Collections(ctx, domain.CollectionTypeDesignStyle)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	sel := domain.NewSelection()
	sel.SortBy = domain.SortNewest
	list, err := h.catalog.ListProducts(ctx, sel)
	if err != nil {
		h.renderError(w, r, err)
		return
	}
	featured := list.Data
	if len(featured) > featuredCount {
		featured = featured[:featuredCount]
	}

	h.render(w, r, http.StatusOK, "home.html", view{
		Title:  "Porcelain slabs and tiles",
		Active: "home",
		Content: homeContent{
			Categories: categories,
			Styles:     styles,
			Featured:   featured,
		},
	})
}

// Products handles GET /products. The selection in the URL is reconciled
// with the one the listing was rendered from (the prev parameter) so that a
// filter or sort change starts again from page 1. When the request query is
// not the canonical encoding of the resulting selection the client is
// redirected to it.
func (h *PageHandler) Products(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	sync := catalog.NewSynchronizer()
	if prev, ok := values[paramPrev]; ok {
		values.Del(paramPrev)
		prevValues, err := url.ParseQuery(prev[0])
		if err != nil {
			prevValues = values
		}
		sync.Init(prevValues)
	} else {
		sync.Init(values)
	}
	sync.Apply(catalog.DecodeSelection(values))

	list, err := h.catalog.ListProducts(r.Context(), sync.Selection())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if list.Query != r.URL.RawQuery {
		http.Redirect(w, r, pageURL("/products", list.Query), http.StatusFound)
		return
	}

	h.render(w, r, http.StatusOK, "products.html", view{
		Title:       "Products",
		Description: "Browse porcelain slabs, tiles and pool tiles by category, style and finish.",
		Active:      "products",
		Content:     newListingContent(list),
	})
}

func newListingContent(list *service.ProductList) listingContent {
	groups := make([]facetGroupView, 0, len(list.Facets))
	for _, g := range list.Facets {
		if len(g.Options) == 0 {
			continue
		}
		groups = append(groups, facetGroupView{
			Dimension: g.Dimension,
			Param:     catalog.ParamFor(g.Dimension),
			Feature:   g.Dimension.IsFeature(),
			Options:   g.Options,
		})
	}

	sorts := make([]sortOption, 0, len(domain.ValidSortOptions()))
	for _, s := range domain.ValidSortOptions() {
		sorts = append(sorts, sortOption{Value: s, Label: sortLabels[s], Selected: s == list.Selection.SortBy})
	}

	at := func(page int) string {
		sel := list.Selection
		sel.Page = page
		return pageURL("/products", catalog.EncodeSelection(sel).Encode())
	}

	pager := make([]pageLink, 0, len(list.Pages))
	for _, p := range list.Pages {
		if p == 0 {
			pager = append(pager, pageLink{Gap: true})
			continue
		}
		pager = append(pager, pageLink{Number: p, URL: at(p), Current: p == list.Page})
	}

	content := listingContent{
		List:    list,
		Groups:  groups,
		Sorts:   sorts,
		Pager:   pager,
		Query:   list.Query,
		Filters: list.Selection.HasFilters(),
	}
	if list.HasPrev {
		content.PrevURL = at(list.Page - 1)
	}
	if list.HasNext {
		content.NextURL = at(list.Page + 1)
	}
	return content
}

// Product handles GET /products/{slug}.
func (h *PageHandler) Product(w http.ResponseWriter, r *http.Request) {
	detail, err := h.catalog.GetProduct(r.Context(), chi.URLParam(r, "slug"), 0)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "product.html", view{
		Title:       detail.Product.Name,
		Description: detail.Product.Description,
		Active:      "products",
		Content:     productContent{Product: detail.Product, Similar: detail.Similar},
	})
}

// Catalogues handles GET /catalogues.
func (h *PageHandler) Catalogues(w http.ResponseWriter, r *http.Request) {
	catalogues, err := h.catalog.Catalogues(r.Context())
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "catalogues.html", view{
		Title:   "Catalogues",
		Active:  "catalogues",
		Content: catalogues,
	})
}

// About handles GET /about.
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "about.html", view{Title: "About us", Active: "about"})
}

// Services handles GET /services.
func (h *PageHandler) Services(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusOK, "services.html", view{Title: "Services", Active: "services"})
}

// Contact handles GET /contact. A product query parameter preselects the
// product the enquiry is about.
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	content := contactContent{
		Form: ContactRequest{ProductSlug: q.Get("product")},
		Sent: q.Get("sent") == "1",
	}
	if content.Form.ProductSlug != "" {
		content.Form.Subject = "Enquiry about " + content.Form.ProductSlug
	}

	h.render(w, r, http.StatusOK, "contact.html", view{Title: "Contact", Active: "contact", Content: content})
}

// SubmitContact handles POST /contact. Invalid input re-renders the form
// with field messages; success redirects so a reload does not resubmit.
func (h *PageHandler) SubmitContact(w http.ResponseWriter, r *http.Request) {
	var form ContactRequest
	if err := validator.DecodeFormAndValidate(r, &form); err != nil {
		content := contactContent{Form: form, Errors: map[string]string{"form": "Please check the form and try again."}}
		var valErr *validator.ValidationError
		if errors.As(err, &valErr) {
			content.Errors = valErr.Fields()
		}
		h.render(w, r, http.StatusBadRequest, "contact.html", view{Title: "Contact", Active: "contact", Content: content})
		return
	}

	if _, err := h.enquiries.Submit(r.Context(), form.input()); err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/contact?sent=1", http.StatusSeeOther)
}

// NotFound renders the 404 page for unknown routes.
func (h *PageHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, apperrors.NotFound("page", r.URL.Path))
}

func (h *PageHandler) render(w http.ResponseWriter, r *http.Request, status int, page string, v view) {
	if err := h.renderer.render(w, status, page, v); err != nil {
		logger.WithContext(r.Context(), h.logger).ErrorContext(r.Context(), "failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()),
		)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (h *PageHandler) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.WithContext(r.Context(), h.logger).ErrorContext(r.Context(), "page request failed",
			slog.String("path", r.URL.Path),
			slog.Int("status", status),
			slog.String("error", err.Error()),
		)
	}

	message := "Something went wrong. Please try again in a moment."
	switch status {
	case http.StatusNotFound:
		message = "We could not find the page you were looking for."
	case http.StatusServiceUnavailable:
		message = "Our catalog is temporarily unavailable. Please try again in a moment."
	case http.StatusTooManyRequests:
		message = "Too many requests. Please wait a moment and try again."
	}

	h.render(w, r, status, "error.html", view{
		Title:   strconv.Itoa(status),
		Content: errorContent{Status: status, Message: message},
	})
}
