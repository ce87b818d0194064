package catalog

import (
	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/pkg/pagination"
)

// Apply filters, sorts and paginates products for sel. An empty SortBy sorts
// by domain.DefaultSort and a page below 1 reads as page 1, matching how the
// selection is encoded. The page is not clamped to the last page: a page past
// the end yields no items. A non-positive pageSize falls back to
// domain.DefaultPageSize.
func Apply(products []domain.Product, sel domain.Selection, pageSize int) domain.Result {
	if pageSize <= 0 {
		pageSize = domain.DefaultPageSize
	}
	if sel.SortBy == "" {
		sel.SortBy = domain.DefaultSort
	}
	if sel.Page < 1 {
		sel.Page = 1
	}

	matched := Sort(Filter(products, sel), sel.SortBy)
	total := len(matched)

	return domain.Result{
		Items:      pagination.Window(matched, sel.Page, pageSize),
		Total:      total,
		TotalPages: pagination.TotalPages(total, pageSize),
	}
}
