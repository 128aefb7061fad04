package models

const (
	DefaultPageSize = 20
	MaxPageSize     = 200
)

// BackendPagination is the paging block returned next to list results.
type BackendPagination struct {
	Size      int    `json:"size"`
	Page      int    `json:"page"`
	Count     int    `json:"count"`
	Sort      string `json:"sort"`
	Direction int    `json:"direction"`
}

// NormalizePage clamps page to >= 1 and size to [1, MaxPageSize].
func NormalizePage(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Offset for a 1-based page.
func Offset(page, size int) int {
	page, size = NormalizePage(page, size)
	return (page - 1) * size
}

// NewPagination fills sort and direction from an ordering token like "-created_at".
func NewPagination(page, size, count int, ordering string) BackendPagination {
	page, size = NormalizePage(page, size)
	p := BackendPagination{Size: size, Page: page, Count: count, Sort: ordering, Direction: 1}
	if len(ordering) > 0 && ordering[0] == '-' {
		p.Sort = ordering[1:]
		p.Direction = -1
	}
	return p
}
