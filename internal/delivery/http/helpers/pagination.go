package helpers

import (
	"fmt"
	"net/http"
	"strconv"

	"eventsphere/internal/domain"
)

// Pagination query parameter defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// ParsePagination reads page and size from the request query string.
// Missing values fall back to defaults; malformed or out-of-range values are errors
// wrapping domain.ErrInvalidInput.
func ParsePagination(r *http.Request) (domain.PaginationParams, error) {
	q := r.URL.Query()
	page, err := queryInt(q.Get("page"), "page", DefaultPage)
	if err != nil {
		return domain.PaginationParams{}, err
	}
	size, err := queryInt(q.Get("size"), "size", DefaultPageSize)
	if err != nil {
		return domain.PaginationParams{}, err
	}
	params := domain.PaginationParams{Page: page, PageSize: size}
	if err := params.Validate(); err != nil {
		return domain.PaginationParams{}, err
	}
	return params, nil
}

func queryInt(raw, name string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", domain.ErrInvalidInput, name)
	}
	return v, nil
}

// PaginatedList is the body of a paginated list response.
type PaginatedList[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
	Page  int `json:"page"`
	Size  int `json:"size"`
}

// NewPaginatedList wraps one page of items with the request's paging and the total count.
// A nil slice is rendered as an empty JSON array.
func NewPaginatedList[T any](items []T, params domain.PaginationParams, total int) PaginatedList[T] {
	if items == nil {
		items = []T{}
	}
	return PaginatedList[T]{
		Items: items,
		Total: total,
		Page:  params.Page,
		Size:  params.PageSize,
	}
}
