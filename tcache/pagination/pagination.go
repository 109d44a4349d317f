// Package pagination computes page navigation state for a result set.
// It is pure computation; rendering is left to the caller.
package pagination

// Pager describes one page of a larger result set.
type Pager struct {
	Current    int
	PerPage    int
	TotalItems int
	TotalPages int
}

// New creates a Pager for totalItems split into perPage-sized pages,
// with current clamped into the valid page range. Page numbers are
// 1-based; an empty result set still has one (empty) page.
func New(totalItems, perPage, current int) Pager {
	if perPage < 1 {
		perPage = 1
	}
	if totalItems < 0 {
		totalItems = 0
	}

	totalPages := (totalItems + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}

	if current < 1 {
		current = 1
	}
	if current > totalPages {
		current = totalPages
	}

	return Pager{
		Current:    current,
		PerPage:    perPage,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}
}

// HasPrev reports whether a previous page exists.
func (p Pager) HasPrev() bool { return p.Current > 1 }

// HasNext reports whether a next page exists.
func (p Pager) HasNext() bool { return p.Current < p.TotalPages }

// Prev returns the previous page number, clamped to the first page.
func (p Pager) Prev() int {
	if !p.HasPrev() {
		return 1
	}
	return p.Current - 1
}

// Next returns the next page number, clamped to the last page.
func (p Pager) Next() int {
	if !p.HasNext() {
		return p.TotalPages
	}
	return p.Current + 1
}

// Offset returns the number of items preceding the current page.
func (p Pager) Offset() int { return (p.Current - 1) * p.PerPage }

// Limit returns the page size for queries.
func (p Pager) Limit() int { return p.PerPage }

// Window returns up to width consecutive page numbers centered on the
// current page, shifted inward at the edges so the run stays full while
// enough pages exist.
func (p Pager) Window(width int) []int {
	if width < 1 {
		return nil
	}
	if width > p.TotalPages {
		width = p.TotalPages
	}

	start := p.Current - width/2
	if start < 1 {
		start = 1
	}
	if start > p.TotalPages-width+1 {
		start = p.TotalPages - width + 1
	}

	pages := make([]int, width)
	for i := range pages {
		pages[i] = start + i
	}
	return pages
}
