package common

import (
	"net/http"
	"strconv"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// PageParams are the 1-based page and page size of a list request
type PageParams struct {
	Page     int
	PageSize int
}

// PaginationInfo describes one page of a list response
type PaginationInfo struct {
	Page       int  `json:"page"`
	PageSize   int  `json:"page_size"`
	Total      int  `json:"total"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// ExtractPageParams reads ?page= and ?page_size=. Invalid values fall back
// to the defaults and the page size is capped.
func ExtractPageParams(r *http.Request) PageParams {
	params := PageParams{Page: 1, PageSize: defaultPageSize}
	q := r.URL.Query()

	if p, err := strconv.Atoi(q.Get("page")); err == nil && p > 0 {
		params.Page = p
	}
	if ps, err := strconv.Atoi(q.Get("page_size")); err == nil && ps > 0 {
		params.PageSize = min(ps, maxPageSize)
	}
	return params
}

// Paginate returns the requested page of items. A page past the end is empty.
func Paginate[T any](items []T, params PageParams) ([]T, *PaginationInfo) {
	if params.Page < 1 {
		params.Page = 1
	}
	if params.PageSize < 1 {
		params.PageSize = defaultPageSize
	}
	total := len(items)
	start := min((params.Page-1)*params.PageSize, total)
	end := min(start+params.PageSize, total)

	totalPages := (total + params.PageSize - 1) / params.PageSize
	return items[start:end], &PaginationInfo{
		Page:       params.Page,
		PageSize:   params.PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    params.Page < totalPages,
		HasPrev:    params.Page > 1,
	}
}
