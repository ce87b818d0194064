package catalog

import (
	"sort"

	"github.com/tilestudio/site/internal/domain"
)

// FacetOption is one candidate value of a facet with the number of products
// that would match if it were selected.
type FacetOption struct {
	Value    string `json:"value"`
	Count    int    `json:"count"`
	Selected bool   `json:"selected"`
	Disabled bool   `json:"disabled"`
}

// FacetGroup lists the options of one dimension.
type FacetGroup struct {
	Dimension domain.Dimension `json:"dimension"`
	Options   []FacetOption    `json:"options"`
}

// CountIfSelected returns how many products would match if value were the
// selection for dim. The current selection inside dim is ignored and every
// other dimension is held as is. For boolean dimensions value is ignored and
// the toggle is turned on.
func CountIfSelected(products []domain.Product, dim domain.Dimension, value string, sel domain.Selection) int {
	return Count(products, sel.With(dim, []string{value}))
}

// FacetCounts computes the options of every dimension for sel, with
// candidates derived from products. Selected values missing from products
// are appended so they can still be cleared. An unselected option with a
// zero count is disabled.
func FacetCounts(products []domain.Product, sel domain.Selection) []FacetGroup {
	groups := make([]FacetGroup, 0, len(domain.ValueDimensions())+len(domain.FeatureDimensions()))

	for _, dim := range domain.ValueDimensions() {
		candidates := Enumerate(products, dim)
		selected := sel.Values(dim)
		var stale []string
		for _, v := range selected {
			if v != "" && !contains(candidates, v) && !contains(stale, v) {
				stale = append(stale, v)
			}
		}
		sort.Strings(stale)
		candidates = append(candidates, stale...)
		options := make([]FacetOption, 0, len(candidates))
		for _, v := range candidates {
			count := CountIfSelected(products, dim, v, sel)
			isSelected := contains(selected, v)
			options = append(options, FacetOption{
				Value:    v,
				Count:    count,
				Selected: isSelected,
				Disabled: count == 0 && !isSelected,
			})
		}
		groups = append(groups, FacetGroup{Dimension: dim, Options: options})
	}

	for _, dim := range domain.FeatureDimensions() {
		count := CountIfSelected(products, dim, "true", sel)
		isSelected := sel.Feature(dim)
		groups = append(groups, FacetGroup{
			Dimension: dim,
			Options: []FacetOption{{
				Value:    "true",
				Count:    count,
				Selected: isSelected,
				Disabled: count == 0 && !isSelected,
			}},
		})
	}

	return groups
}

// Enumerate returns the sorted distinct non-empty values of dim observed
// across products. Boolean dimensions have no enumeration.
func Enumerate(products []domain.Product, dim domain.Dimension) []string {
	seen := make(map[string]struct{})
	add := func(v string) {
		if v != "" {
			seen[v] = struct{}{}
		}
	}

	for _, p := range products {
		switch dim {
		case domain.DimMainCategory:
			add(p.MainCategory)
		case domain.DimDesignStyle:
			add(p.DesignStyle)
		case domain.DimFinish:
			add(p.Finish)
		case domain.DimThicknesses:
			add(p.Thickness)
		case domain.DimApplications:
			for _, a := range p.Applications {
				add(a)
			}
		case domain.DimSizes:
			for _, s := range p.Sizes {
				add(s)
			}
		}
	}

	values := make([]string, 0, len(seen))
	for v := range seen {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// MainCategories returns the distinct main categories of products.
func MainCategories(products []domain.Product) []string {
	return Enumerate(products, domain.DimMainCategory)
}

// DesignStyles returns the distinct design styles of products.
func DesignStyles(products []domain.Product) []string {
	return Enumerate(products, domain.DimDesignStyle)
}

// Finishes returns the distinct finishes of products.
func Finishes(products []domain.Product) []string {
	return Enumerate(products, domain.DimFinish)
}

// Applications returns the distinct applications of products.
func Applications(products []domain.Product) []string {
	return Enumerate(products, domain.DimApplications)
}

// Sizes returns the distinct sizes of products.
func Sizes(products []domain.Product) []string {
	return Enumerate(products, domain.DimSizes)
}

// Thicknesses returns the distinct thicknesses of products.
func Thicknesses(products []domain.Product) []string {
	return Enumerate(products, domain.DimThicknesses)
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}
