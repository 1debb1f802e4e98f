// Package pagination holds the envelope shape shared by every list
// endpoint and the arithmetic that fills in its metadata.
package pagination

// Meta describes the position of a page within the full result set.
type Meta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

// Page is the {data, meta} wrapper returned by list operations.
type Page[T any] struct {
	Data []T  `json:"data"`
	Meta Meta `json:"meta"`
}

// Compute derives pagination metadata for a page. Callers guarantee
// page >= 1 and limit >= 1; total may be zero.
func Compute(total int64, page, limit int) Meta {
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	return Meta{
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		HasNext:    int64(page)*int64(limit) < total,
		HasPrev:    page > 1,
	}
}

// NewPage wraps rows and metadata into an envelope. An empty result set
// serializes as an empty array rather than null.
func NewPage[T any](data []T, total int64, page, limit int) Page[T] {
	if data == nil {
		data = []T{}
	}
	return Page[T]{
		Data: data,
		Meta: Compute(total, page, limit),
	}
}
