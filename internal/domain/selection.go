package domain

// Sort options for product listings.
const (
	SortName      = "name"
	SortNameDesc  = "name-desc"
	SortNewest    = "newest"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

// DefaultSort is the sort applied when none is requested.
const DefaultSort = SortName

// DefaultPageSize is the number of products per listing page.
const DefaultPageSize = 9

// ValidSortOptions returns the list of valid sort options.
func ValidSortOptions() []string {
	return []string{SortName, SortNameDesc, SortNewest, SortPriceAsc, SortPriceDesc}
}

// IsValidSort checks whether the given sort string is a valid sort option.
func IsValidSort(sort string) bool {
	for _, s := range ValidSortOptions() {
		if s == sort {
			return true
		}
	}
	return false
}

// Dimension names an independent filterable facet of a product.
type Dimension string

// Facet dimensions.
const (
	DimMainCategory Dimension = "mainCategory"
	DimDesignStyle  Dimension = "designStyle"
	DimFinish       Dimension = "finish"
	DimApplications Dimension = "applications"
	DimSizes        Dimension = "sizes"
	DimThicknesses  Dimension = "thicknesses"
	DimBookmatch    Dimension = "bookmatch"
	DimSixFace      Dimension = "sixFace"
	DimFullBody     Dimension = "fullBody"
)

// ValueDimensions returns the string-valued dimensions in display order.
func ValueDimensions() []Dimension {
	return []Dimension{DimMainCategory, DimDesignStyle, DimFinish, DimApplications, DimSizes, DimThicknesses}
}

// FeatureDimensions returns the boolean special-feature dimensions.
func FeatureDimensions() []Dimension {
	return []Dimension{DimBookmatch, DimSixFace, DimFullBody}
}

// IsFeature reports whether d is a boolean special-feature dimension.
func (d Dimension) IsFeature() bool {
	return d == DimBookmatch || d == DimSixFace || d == DimFullBody
}

// Selection is the filter, sort and page state of a product listing.
// Nil slices mean no constraint on that dimension.
type Selection struct {
	MainCategories []string `json:"main_categories,omitempty"`
	DesignStyles   []string `json:"design_styles,omitempty"`
	Finishes       []string `json:"finishes,omitempty"`
	Applications   []string `json:"applications,omitempty"`
	Sizes          []string `json:"sizes,omitempty"`
	Thicknesses    []string `json:"thicknesses,omitempty"`
	Bookmatch      bool     `json:"bookmatch,omitempty"`
	SixFace        bool     `json:"six_face,omitempty"`
	FullBody       bool     `json:"full_body,omitempty"`
	SortBy         string   `json:"sort_by"`
	Page           int      `json:"page"`
}

// NewSelection returns an empty selection with the default sort on page 1.
func NewSelection() Selection {
	return Selection{SortBy: DefaultSort, Page: 1}
}

// Values returns the selected values for a string-valued dimension.
func (s Selection) Values(d Dimension) []string {
	switch d {
	case DimMainCategory:
		return s.MainCategories
	case DimDesignStyle:
		return s.DesignStyles
	case DimFinish:
		return s.Finishes
	case DimApplications:
		return s.Applications
	case DimSizes:
		return s.Sizes
	case DimThicknesses:
		return s.Thicknesses
	}
	return nil
}

// Feature returns the toggle state of a boolean dimension.
func (s Selection) Feature(d Dimension) bool {
	switch d {
	case DimBookmatch:
		return s.Bookmatch
	case DimSixFace:
		return s.SixFace
	case DimFullBody:
		return s.FullBody
	}
	return false
}

// With returns a copy of s with dimension d set to values. For boolean
// dimensions any non-empty values turn the toggle on.
func (s Selection) With(d Dimension, values []string) Selection {
	switch d {
	case DimMainCategory:
		s.MainCategories = values
	case DimDesignStyle:
		s.DesignStyles = values
	case DimFinish:
		s.Finishes = values
	case DimApplications:
		s.Applications = values
	case DimSizes:
		s.Sizes = values
	case DimThicknesses:
		s.Thicknesses = values
	case DimBookmatch:
		s.Bookmatch = len(values) > 0
	case DimSixFace:
		s.SixFace = len(values) > 0
	case DimFullBody:
		s.FullBody = len(values) > 0
	}
	return s
}

// HasFilters reports whether any dimension constrains the result.
func (s Selection) HasFilters() bool {
	for _, d := range ValueDimensions() {
		if len(s.Values(d)) > 0 {
			return true
		}
	}
	return s.Bookmatch || s.SixFace || s.FullBody
}

// Result is one page of a filtered and sorted product listing.
type Result struct {
	Items      []Product `json:"items"`
	Total      int       `json:"total"`
	TotalPages int       `json:"total_pages"`
}
