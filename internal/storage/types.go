package storage

import "errors"

var (
	// ErrNotFound indicates that the requested person or relationship does
	// not exist. Distinct from a traversal that succeeds with an empty result.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation indicates that input parameters are invalid. Detected
	// before any mutation; rejection has zero side effects.
	ErrValidation = errors.New("invalid input")

	// ErrDuplicateEdge indicates an attempt to create a relationship whose
	// (person1, person2, type) triple already exists.
	ErrDuplicateEdge = errors.New("duplicate relationship")

	// ErrBoundsExceeded indicates that a graph traversal hit its node or
	// edge ceiling before completing.
	ErrBoundsExceeded = errors.New("graph bounds exceeded")

	// ErrPersistence indicates that the in-memory mutation committed but the
	// durable write failed. Callers decide retry policy.
	ErrPersistence = errors.New("persistence failed")
)

// Bounds caps graph traversal work to keep adversarial inputs from causing
// combinatorial explosion. The zero value normalizes to safe defaults.
type Bounds struct {
	// MaxDepth is the hard ceiling applied to the caller-supplied depth.
	MaxDepth int

	// MaxNodes is the maximum number of people visited in one traversal.
	MaxNodes int

	// MaxEdges is the maximum number of edges examined in one traversal.
	MaxEdges int
}

// Normalize applies defaults and hard ceilings.
func (b *Bounds) Normalize() {
	if b.MaxDepth < 1 {
		b.MaxDepth = 10
	}
	if b.MaxDepth > 25 {
		b.MaxDepth = 25
	}

	if b.MaxNodes < 1 {
		b.MaxNodes = 10000
	}
	if b.MaxNodes > 50000 {
		b.MaxNodes = 50000
	}

	if b.MaxEdges < 1 {
		b.MaxEdges = 50000
	}
	if b.MaxEdges > 250000 {
		b.MaxEdges = 250000
	}
}

// ClampDepth caps a caller-supplied depth to MaxDepth. Negative depths are a
// validation error and must be rejected before this is called.
func (b *Bounds) ClampDepth(depth int) int {
	if depth > b.MaxDepth {
		return b.MaxDepth
	}
	return depth
}

// ListOptions provides pagination and sorting for flat list endpoints.
type ListOptions struct {
	// Page is the page number to retrieve (1-indexed, default: 1).
	Page int

	// Limit is the number of items per page (default: 20, max: 100).
	Limit int

	// SortBy is the field to sort by ("created_at", "updated_at", "last_name").
	SortBy string

	// SortOrder is "asc" or "desc" (default: "asc").
	SortOrder string
}

// Normalize applies defaults and whitelists the sort field.
func (o *ListOptions) Normalize() {
	allowedSortFields := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"last_name":  true,
	}
	if !allowedSortFields[o.SortBy] {
		o.SortBy = "created_at"
	}

	if o.SortOrder != "asc" && o.SortOrder != "desc" {
		o.SortOrder = "asc"
	}

	if o.Page < 1 {
		o.Page = 1
	}
	if o.Limit < 1 {
		o.Limit = 20
	}
	if o.Limit > 100 {
		o.Limit = 100
	}
}

// Offset calculates the slice offset for the current page.
func (o *ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

// PaginatedResult is a page of results plus paging metadata.
type PaginatedResult[T any] struct {
	Items    []T  `json:"items"`
	Total    int  `json:"total"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}
