package shared

const (
	defaultPageSize = 20
	maxPageSize     = 200
)

// Filter is the paging, sorting and free-text part of every list query.
// Domain filters embed it and add their own criteria.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter is the first page, newest first.
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: defaultPageSize, OrderBy: "created_at", OrderDir: "desc"}
}

// Normalize fills unset paging and sort values and caps PageSize at 200.
func (f Filter) Normalize(pageSize int) Filter {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PageSize < 1 {
		f.PageSize = pageSize
	}
	f.PageSize = min(f.PageSize, maxPageSize)
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
	}
	if f.OrderDir == "" {
		f.OrderDir = "desc"
	}
	return f
}

func (f Filter) Offset() int {
	if f.Page < 2 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Paginated is one page of a list plus the figures of the "meta" envelope.
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalPages int   `json:"totalPages"`
}

func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: int((total + int64(pageSize) - 1) / int64(pageSize)),
	}
}
