package catalog

import (
	"sort"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/tilestudio/site/internal/domain"
)

// Sort returns a sorted copy of products. The sort is stable, so equal keys
// keep their catalog order, and an unknown sortBy returns the copy unchanged.
func Sort(products []domain.Product, sortBy string) []domain.Product {
	sorted := make([]domain.Product, len(products))
	copy(sorted, products)

	switch sortBy {
	case domain.SortName:
		// Collators keep an internal buffer and are not safe to share.
		c := collate.New(language.English)
		sort.SliceStable(sorted, func(i, j int) bool {
			return c.CompareString(sorted[i].Name, sorted[j].Name) < 0
		})
	case domain.SortNameDesc:
		c := collate.New(language.English)
		sort.SliceStable(sorted, func(i, j int) bool {
			return c.CompareString(sorted[i].Name, sorted[j].Name) > 0
		})
	case domain.SortNewest:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].ID > sorted[j].ID
		})
	case domain.SortPriceAsc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price < sorted[j].Price
		})
	case domain.SortPriceDesc:
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Price > sorted[j].Price
		})
	default:
		// Unknown sort: keep catalog order.
	}

	return sorted
}
