package catalog

import "slices"

// PageSizeOptions are the page sizes offered on the product list.
var PageSizeOptions = []int{10, 20, 30, 50}

const DefaultPageSize = 10

// Pager is the product list's pagination state. Page is zero-based.
type Pager struct {
	Page          int
	Size          int
	TotalPages    int
	TotalElements int64
}

// NewPager normalises a requested page and size: unknown sizes fall back to DefaultPageSize and
// negative pages to 0.
func NewPager(page, size int) Pager {
	if !slices.Contains(PageSizeOptions, size) {
		size = DefaultPageSize
	}
	return Pager{Page: max(page, 0), Size: size}
}

// WithSize changes the page size and returns to the first page.
func (p Pager) WithSize(size int) Pager {
	next := NewPager(0, size)
	next.TotalPages, next.TotalElements = p.TotalPages, p.TotalElements
	return next
}

// WithPage moves to page, clamped into the known range.
func (p Pager) WithPage(page int) Pager {
	if p.TotalPages > 0 && page > p.TotalPages-1 {
		page = p.TotalPages - 1
	}
	p.Page = max(page, 0)
	return p
}

// WithTotals records the totals reported with a fetched page.
func (p Pager) WithTotals(totalPages int, totalElements int64) Pager {
	p.TotalPages, p.TotalElements = totalPages, totalElements
	return p
}

func (p Pager) HasPrev() bool {
	return p.Page > 0
}

func (p Pager) HasNext() bool {
	return p.Page < p.TotalPages-1
}

func (p Pager) Last() int {
	return max(p.TotalPages-1, 0)
}

// Window returns the page numbers within radius of the current page.
func (p Pager) Window(radius int) []int {
	start := max(0, p.Page-radius)
	end := min(p.TotalPages-1, p.Page+radius)
	if end < start {
		return nil
	}
	pages := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		pages = append(pages, i)
	}
	return pages
}
