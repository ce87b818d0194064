package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tilestudio/site/internal/catalog"
	"github.com/tilestudio/site/internal/service"
	"github.com/tilestudio/site/pkg/httputil"
	"github.com/tilestudio/site/pkg/validator"
)

// CatalogHandler serves the JSON catalog endpoints.
type CatalogHandler struct {
	service *service.CatalogService
	logger  *slog.Logger
}

// NewCatalogHandler creates a new catalog HTTP handler.
func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{service: svc, logger: logger}
}

// RevalidateRequest is the optional JSON body of a revalidation webhook.
type RevalidateRequest struct {
	Reason  string   `json:"reason" validate:"max=200"`
	Entries []string `json:"entries" validate:"max=500,dive,max=200"`
}

// ListProducts handles GET /api/v1/products. The selection is read from the
// same query parameters the listing page uses; the response carries the
// canonical query string for the clamped selection.
func (h *CatalogHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	sel := catalog.DecodeSelection(r.URL.Query())

	list, err := h.service.ListProducts(r.Context(), sel)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: list})
}

// GetProduct handles GET /api/v1/products/{slug}.
func (h *CatalogHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	limit := httputil.QueryInt(r, "limit", 0)

	detail, err := h.service.GetProduct(r.Context(), slug, limit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// ListCollections handles GET /api/v1/collections.
func (h *CatalogHandler) ListCollections(w http.ResponseWriter, r *http.Request) {
	collections, err := h.service.Collections(r.Context(), r.URL.Query().Get("type"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: collections})
}

// ListCatalogues handles GET /api/v1/catalogues.
func (h *CatalogHandler) ListCatalogues(w http.ResponseWriter, r *http.Request) {
	catalogues, err := h.service.Catalogues(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: catalogues})
}

// GetFacets handles GET /api/v1/facets.
func (h *CatalogHandler) GetFacets(w http.ResponseWriter, r *http.Request) {
	facets, err := h.service.Facets(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: facets})
}

// Revalidate handles POST /api/v1/revalidate. An empty body is accepted.
func (h *CatalogHandler) Revalidate(w http.ResponseWriter, r *http.Request) {
	var req RevalidateRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteValidationError(w, err)
		return
	}

	if err := h.service.Revalidate(r.Context(), req.Reason, req.Entries); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusAccepted, httputil.Response{
		Data: map[string]any{"revalidated": true},
	})
}
