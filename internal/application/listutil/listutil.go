// Package listutil parses list query parameters and paginates in-memory lists.
package listutil

import (
	"net/url"
	"slices"
	"strconv"
)

// MaxPerPage caps the page size a client may request.
const MaxPerPage = 200

// PageParams carries pagination parameters parsed from a request.
// PerPage 0 means a single page holding every row.
type PageParams struct {
	Page    int // 1-indexed
	PerPage int
}

// SortParams carries sorting parameters parsed from a request.
// An empty Sort keeps the source order.
type SortParams struct {
	Sort string
	Dir  string // "asc" or "desc"
}

// FilterParams carries search and exact-match filters.
type FilterParams struct {
	Search  string            // free text from ?q=
	Filters map[string]string // e.g. sphere=Federal
}

// ListParams combines all list parameters.
type ListParams struct {
	PageParams
	SortParams
	FilterParams
}

// PageInfo is pagination metadata for a response.
type PageInfo struct {
	Page       int `json:"page"`
	PerPage    int `json:"perPage"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ParsePageParams extracts page and per_page from query values.
// POST: Page >= 1; 0 <= PerPage <= MaxPerPage
func ParsePageParams(q url.Values) PageParams {
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	perPage = min(max(perPage, 0), MaxPerPage)
	return PageParams{Page: page, PerPage: perPage}
}

// ParseSortParams extracts sort and dir, ignoring columns not in allowed.
// POST: Dir is always "asc" or "desc"
func ParseSortParams(q url.Values, allowed []string) SortParams {
	sort, dir := q.Get("sort"), q.Get("dir")
	if !slices.Contains(allowed, sort) {
		sort = ""
	}
	if dir != "desc" {
		dir = "asc"
	}
	return SortParams{Sort: sort, Dir: dir}
}

// ParseFilterParams extracts ?q= and the named filters that are present.
func ParseFilterParams(q url.Values, filterKeys []string) FilterParams {
	fp := FilterParams{Search: q.Get("q"), Filters: make(map[string]string)}
	for _, key := range filterKeys {
		if v := q.Get(key); v != "" {
			fp.Filters[key] = v
		}
	}
	return fp
}

// ParseListParams parses all list parameters.
func ParseListParams(q url.Values, sortCols, filterKeys []string) ListParams {
	return ListParams{
		PageParams:   ParsePageParams(q),
		SortParams:   ParseSortParams(q, sortCols),
		FilterParams: ParseFilterParams(q, filterKeys),
	}
}

// NewPageInfo computes pagination metadata, clamping page into range.
// perPage 0 puts every row on one page.
func NewPageInfo(page, perPage, total int) PageInfo {
	if perPage <= 0 {
		return PageInfo{Page: 1, PerPage: total, Total: total, TotalPages: 1}
	}
	totalPages := max((total+perPage-1)/perPage, 1)
	return PageInfo{
		Page:       min(max(page, 1), totalPages),
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}
}

// Offset returns the index of the first row on the page.
func (p PageInfo) Offset() int {
	return (p.Page - 1) * p.PerPage
}

// Paginate returns the rows of items on page p.
// PRE: p was computed by NewPageInfo for len(items)
func Paginate[T any](items []T, p PageInfo) []T {
	start := min(p.Offset(), len(items))
	end := min(start+p.PerPage, len(items))
	return items[start:end]
}
