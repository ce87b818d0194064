package store

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/tilestudio/site/internal/domain"
	"github.com/tilestudio/site/pkg/slug"
)

// CuratedOrder is the display sequence of collection slugs. Collections not
// listed follow in fetch order.
var CuratedOrder = []string{
	domain.MainCategorySlabs,
	domain.MainCategoryTiles,
	domain.MainCategoryPoolTiles,
	"marble-look",
	"stone-look",
	"concrete-look",
	"wood-look",
	"terrazzo",
	"solid-colour",
}

// StableID maps a CMS document id to a positive product id that stays the
// same across fetches.
func StableID(nativeID string) int64 {
	return int64(xxhash.Sum64String(nativeID) & math.MaxInt64)
}

// NormalizeProducts fills missing slugs from product names and makes all
// slugs unique by suffixing duplicates. The input order is kept.
func NormalizeProducts(products []domain.Product) []domain.Product {
	taken := make(map[string]bool, len(products))
	out := make([]domain.Product, len(products))
	for i, p := range products {
		base := slug.Generate(p.Slug)
		if base == "" {
			base = slug.Generate(p.Name)
		}
		p.Slug = slug.Unique(base, func(s string) bool { return taken[s] })
		taken[p.Slug] = true
		out[i] = p
	}
	return out
}

// NormalizeCollections fills missing slugs, makes slugs unique within each
// collection type and applies the curated display order.
func NormalizeCollections(collections []domain.Collection) []domain.Collection {
	taken := make(map[string]bool, len(collections))
	out := make([]domain.Collection, len(collections))
	for i, c := range collections {
		base := slug.Generate(c.Slug)
		if base == "" {
			base = slug.Generate(c.Name)
		}
		c.Slug = slug.Unique(base, func(s string) bool { return taken[c.Type+"/"+s] })
		taken[c.Type+"/"+c.Slug] = true
		out[i] = c
	}
	return OrderCollections(out)
}

// OrderCollections sorts collections by CuratedOrder, keeping fetch order
// for the rest.
func OrderCollections(collections []domain.Collection) []domain.Collection {
	rank := make(map[string]int, len(CuratedOrder))
	for i, s := range CuratedOrder {
		rank[s] = i
	}
	position := func(c domain.Collection) int {
		if r, ok := rank[c.Slug]; ok {
			return r
		}
		return len(CuratedOrder)
	}

	out := make([]domain.Collection, len(collections))
	copy(out, collections)
	sort.SliceStable(out, func(i, j int) bool {
		return position(out[i]) < position(out[j])
	})
	return out
}

// FilterCollections returns the collections of type typ, or all of them
// when typ is empty.
func FilterCollections(collections []domain.Collection, typ string) []domain.Collection {
	if typ == "" {
		return collections
	}
	out := make([]domain.Collection, 0, len(collections))
	for _, c := range collections {
		if c.Type == typ {
			out = append(out, c)
		}
	}
	return out
}

// NormalizeCatalogues fills missing catalogue slugs from titles.
func NormalizeCatalogues(catalogues []domain.Catalogue) []domain.Catalogue {
	taken := make(map[string]bool, len(catalogues))
	out := make([]domain.Catalogue, len(catalogues))
	for i, c := range catalogues {
		base := slug.Generate(c.Slug)
		if base == "" {
			base = slug.Generate(c.Title)
		}
		c.Slug = slug.Unique(base, func(s string) bool { return taken[s] })
		taken[c.Slug] = true
		out[i] = c
	}
	return out
}

// SizeLabel formats a byte count as a short label such as "2.4 MB". Zero
// yields an empty label.
func SizeLabel(bytes int64) string {
	if bytes <= 0 {
		return ""
	}
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit && exp < 3; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGT"[exp])
}

// AbsoluteURL turns protocol-relative asset URLs into https URLs.
func AbsoluteURL(u string) string {
	if strings.HasPrefix(u, "//") {
		return "https:" + u
	}
	return u
}
