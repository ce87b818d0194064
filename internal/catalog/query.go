package catalog

import (
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/tilestudio/site/internal/domain"
)

// Query parameter names of a listing URL.
const (
	ParamCategory    = "category"
	ParamStyle       = "style"
	ParamFinish      = "finish"
	ParamApplication = "application"
	ParamSize        = "size"
	ParamThickness   = "thickness"
	ParamBookmatch   = "bookmatch"
	ParamSixFace     = "sixFace"
	ParamFullBody    = "fullBody"
	ParamSort        = "sort"
	ParamPage        = "page"
)

var dimensionParams = []struct {
	dim   domain.Dimension
	param string
}{
	{domain.DimMainCategory, ParamCategory},
	{domain.DimDesignStyle, ParamStyle},
	{domain.DimFinish, ParamFinish},
	{domain.DimApplications, ParamApplication},
	{domain.DimSizes, ParamSize},
	{domain.DimThicknesses, ParamThickness},
	{domain.DimBookmatch, ParamBookmatch},
	{domain.DimSixFace, ParamSixFace},
	{domain.DimFullBody, ParamFullBody},
}

// ParamFor returns the query parameter name of dim.
func ParamFor(dim domain.Dimension) string {
	for _, dp := range dimensionParams {
		if dp.dim == dim {
			return dp.param
		}
	}
	return string(dim)
}

// EncodeSelection maps sel to query parameters. Each dimension becomes one
// comma-joined parameter and is omitted when empty; sort is omitted when it
// is the default and page when it is 1.
func EncodeSelection(sel domain.Selection) url.Values {
	values := url.Values{}

	for _, dp := range dimensionParams {
		if dp.dim.IsFeature() {
			if sel.Feature(dp.dim) {
				values.Set(dp.param, "true")
			}
			continue
		}
		if v := sel.Values(dp.dim); len(v) > 0 {
			values.Set(dp.param, strings.Join(v, ","))
		}
	}

	if sel.SortBy != "" && sel.SortBy != domain.DefaultSort {
		values.Set(ParamSort, sel.SortBy)
	}
	if sel.Page > 1 {
		values.Set(ParamPage, strconv.Itoa(sel.Page))
	}

	return values
}

// DecodeSelection is the inverse of EncodeSelection. Absent parameters
// default to no constraint, the default sort and page 1. Repeated
// parameters are merged so plain HTML checkbox forms decode too.
func DecodeSelection(values url.Values) domain.Selection {
	sel := domain.NewSelection()

	for _, dp := range dimensionParams {
		if dp.dim.IsFeature() {
			if isTrue(values.Get(dp.param)) {
				sel = sel.With(dp.dim, []string{"true"})
			}
			continue
		}
		if list := splitList(values[dp.param]); len(list) > 0 {
			sel = sel.With(dp.dim, list)
		}
	}

	if s := strings.TrimSpace(values.Get(ParamSort)); s != "" {
		sel.SortBy = s
	}
	if p, err := strconv.Atoi(values.Get(ParamPage)); err == nil && p > 1 {
		sel.Page = p
	}

	return sel
}

func splitList(raw []string) []string {
	var out []string
	for _, r := range raw {
		for _, part := range strings.Split(r, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func isTrue(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "on", "yes":
		return true
	}
	return false
}

// SameFilters reports whether a and b select the same filters and sort,
// ignoring the page.
func SameFilters(a, b domain.Selection) bool {
	for _, d := range domain.ValueDimensions() {
		if !slices.Equal(a.Values(d), b.Values(d)) {
			return false
		}
	}
	for _, d := range domain.FeatureDimensions() {
		if a.Feature(d) != b.Feature(d) {
			return false
		}
	}
	return sortKey(a) == sortKey(b)
}

func sortKey(s domain.Selection) string {
	if s.SortBy == "" {
		return domain.DefaultSort
	}
	return s.SortBy
}

// Synchronizer keeps a listing's selection and its query string in step.
// It remembers the selection last reflected in the URL so that a filter or
// sort change made afterwards sends the listing back to page 1, while the
// state read from the URL on load keeps its page.
type Synchronizer struct {
	reflected   domain.Selection
	query       string
	initialized bool
}

// NewSynchronizer creates a synchronizer with nothing reflected yet.
func NewSynchronizer() *Synchronizer {
	return &Synchronizer{reflected: domain.NewSelection()}
}

// Init loads the state from URL values and marks it as reflected. It
// returns the decoded selection.
func (s *Synchronizer) Init(values url.Values) domain.Selection {
	sel := DecodeSelection(values)
	s.reflected = sel
	s.query = EncodeSelection(sel).Encode()
	s.initialized = true
	return sel
}

// Apply reflects sel. If filters or sort differ from the reflected state the
// page is reset to 1 first. It returns the resulting query string and
// whether it differs from the one previously reflected; when it does not,
// the URL needs no update.
func (s *Synchronizer) Apply(sel domain.Selection) (string, bool) {
	if s.initialized && !SameFilters(s.reflected, sel) {
		sel.Page = 1
	}

	query := EncodeSelection(sel).Encode()
	changed := !s.initialized || query != s.query

	s.reflected = sel
	s.query = query
	s.initialized = true
	return query, changed
}

// Selection returns the selection last reflected.
func (s *Synchronizer) Selection() domain.Selection {
	return s.reflected
}

// Query returns the query string last reflected.
func (s *Synchronizer) Query() string {
	return s.query
}
