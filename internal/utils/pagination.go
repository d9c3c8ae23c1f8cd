// Package utils holds small helpers shared across the HTTP layer.
package utils

import "strconv"

// Pagination bounds for list endpoints. Answer listings are capped at one
// hundred rows per page; a full questionnaire fits in a single default page.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ClampPage parses page and page_size query values and bounds them to the
// pagination limits. Missing or malformed values fall back to the defaults;
// out-of-range values are clamped rather than rejected.
func ClampPage(pageStr, sizeStr string) (page, pageSize int) {
	page = AtoiDefault(pageStr, DefaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = AtoiDefault(sizeStr, DefaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return
}

// AtoiDefault parses s as an int, returning def when s is empty or not a
// valid integer.
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}
