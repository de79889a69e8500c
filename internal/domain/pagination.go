package domain

import "fmt"

// MaxPageSize is the upper bound for any paginated listing.
const MaxPageSize = 50

// PaginationParams holds offset-based pagination parameters for list queries.
type PaginationParams struct {
	Page     int
	PageSize int
}

// Offset returns the row offset for the current page (0-based).
// Formula: (Page - 1) * PageSize.
func (p PaginationParams) Offset() int {
	if p.Page < 1 {
		return 0
	}
	return (p.Page - 1) * p.PageSize
}

// Validate checks the 1-based page and the [1, MaxPageSize] page size.
func (p PaginationParams) Validate() error {
	if p.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", ErrInvalidInput)
	}
	if p.PageSize < 1 || p.PageSize > MaxPageSize {
		return fmt.Errorf("%w: size must be between 1 and %d", ErrInvalidInput, MaxPageSize)
	}
	return nil
}
