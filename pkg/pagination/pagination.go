package pagination

// Result wraps one page of a listing.
type Result[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// TotalPages returns ceil(totalCount/perPage), never less than 1 so that an
// empty listing still renders as page 1. A non-positive perPage yields 1.
func TotalPages(totalCount, perPage int) int {
	if perPage <= 0 || totalCount <= 0 {
		return 1
	}
	pages := totalCount / perPage
	if totalCount%perPage > 0 {
		pages++
	}
	return pages
}

// Clamp bounds page to [1, totalPages].
func Clamp(page, totalPages int) int {
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		return 1
	}
	if page > totalPages {
		return totalPages
	}
	return page
}

// Window returns the items on the given 1-based page. Out-of-range pages
// yield an empty, non-nil slice.
func Window[T any](items []T, page, perPage int) []T {
	if page < 1 || perPage <= 0 {
		return []T{}
	}
	offset := (page - 1) * perPage
	if offset >= len(items) {
		return []T{}
	}
	end := offset + perPage
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}

// NewResult creates a paginated result from an already windowed page.
func NewResult[T any](data []T, totalCount, page, perPage int) Result[T] {
	totalPages := TotalPages(totalCount, perPage)
	if data == nil {
		data = []T{}
	}
	return Result[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// Pages returns the page numbers to show in a pager around current, with 0
// marking a gap. At most 2*radius+1 numbers surround current; the first and
// last page are always present.
func Pages(current, totalPages, radius int) []int {
	if totalPages <= 1 {
		return []int{1}
	}
	current = Clamp(current, totalPages)

	var out []int
	last := 0
	for p := 1; p <= totalPages; p++ {
		if p != 1 && p != totalPages && (p < current-radius || p > current+radius) {
			continue
		}
		if last != 0 && p-last > 1 {
			out = append(out, 0)
		}
		out = append(out, p)
		last = p
	}
	return out
}
