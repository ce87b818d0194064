// Package catalog holds the product listing pipeline: filtering, sorting,
// pagination, facet counts, similarity ranking and the mapping between a
// selection and its query string. Everything here is pure and operates on an
// already materialized product slice.
package catalog

import (
	"github.com/tilestudio/site/internal/domain"
)

// Matches reports whether p satisfies every constrained dimension of sel.
// Values within a dimension are OR-ed, dimensions are AND-ed, and an empty
// dimension matches everything.
func Matches(p domain.Product, sel domain.Selection) bool {
	if !oneOf(p.MainCategory, sel.MainCategories) {
		return false
	}
	if !oneOf(p.DesignStyle, sel.DesignStyles) {
		return false
	}
	if !oneOf(p.Finish, sel.Finishes) {
		return false
	}
	if !oneOf(p.Thickness, sel.Thicknesses) {
		return false
	}
	if !intersects(p.Applications, sel.Applications) {
		return false
	}
	if !intersects(p.Sizes, sel.Sizes) {
		return false
	}
	if sel.Bookmatch && !p.Bookmatch {
		return false
	}
	if sel.SixFace && !p.SixFace {
		return false
	}
	if sel.FullBody && !p.FullBody {
		return false
	}
	return true
}

// Filter returns the products matching sel in their original order.
func Filter(products []domain.Product, sel domain.Selection) []domain.Product {
	matched := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if Matches(p, sel) {
			matched = append(matched, p)
		}
	}
	return matched
}

// Count returns how many products match sel without allocating a result.
func Count(products []domain.Product, sel domain.Selection) int {
	n := 0
	for _, p := range products {
		if Matches(p, sel) {
			n++
		}
	}
	return n
}

func oneOf(value string, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, s := range selected {
		if s == value {
			return true
		}
	}
	return false
}

func intersects(values, selected []string) bool {
	if len(selected) == 0 {
		return true
	}
	for _, v := range values {
		for _, s := range selected {
			if v == s {
				return true
			}
		}
	}
	return false
}
