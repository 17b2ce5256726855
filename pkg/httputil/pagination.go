package httputil

import (
	"net/http"
	"strconv"
)

// PageParams holds pagination parameters extracted from the query string.
type PageParams struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	Offset  int `json:"-"`
}

const (
	defaultPerPage = 20
	maxPerPage     = 100
)

// PageFromRequest reads page/per_page with defaults (1, 20) and a 100 cap.
func PageFromRequest(r *http.Request) PageParams {
	p := PageParams{Page: 1, PerPage: defaultPerPage}

	if raw := r.URL.Query().Get("page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p.Page = v
		}
	}
	if raw := r.URL.Query().Get("per_page"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 && v <= maxPerPage {
			p.PerPage = v
		}
	}

	p.Offset = (p.Page - 1) * p.PerPage
	return p
}

// Paginated wraps a list response with paging metadata.
type Paginated[T any] struct {
	Data       []T  `json:"data"`
	TotalCount int  `json:"total_count"`
	Page       int  `json:"page"`
	PerPage    int  `json:"per_page"`
	TotalPages int  `json:"total_pages"`
	HasNext    bool `json:"has_next"`
	HasPrev    bool `json:"has_prev"`
}

// NewPaginated builds a Paginated result from data and a total row count.
func NewPaginated[T any](data []T, totalCount int, p PageParams) Paginated[T] {
	totalPages := totalCount / p.PerPage
	if totalCount%p.PerPage > 0 {
		totalPages++
	}
	if data == nil {
		data = []T{}
	}
	return Paginated[T]{
		Data:       data,
		TotalCount: totalCount,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: totalPages,
		HasNext:    p.Page < totalPages,
		HasPrev:    p.Page > 1,
	}
}
