package models

// Pagination contains paging metadata returned in list responses. All
// derived fields are computed from (page, pageSize, totalCount) and are
// never stored independently of their inputs.
type Pagination struct {
	Page        int  `json:"page"`
	PageSize    int  `json:"page_size"`
	TotalCount  int  `json:"total_count"`
	TotalPages  int  `json:"total_pages"`
	HasPrevious bool `json:"has_previous"`
	HasNext     bool `json:"has_next"`
}

// NewPagination derives the full paging metadata for a result set.
// A non-positive page size is clamped to one before dividing.
func NewPagination(page, pageSize, totalCount int) *Pagination {
	if pageSize < 1 {
		pageSize = 1
	}
	if totalCount < 0 {
		totalCount = 0
	}

	totalPages := (totalCount + pageSize - 1) / pageSize

	return &Pagination{
		Page:        page,
		PageSize:    pageSize,
		TotalCount:  totalCount,
		TotalPages:  totalPages,
		HasPrevious: page > 1,
		HasNext:     page < totalPages,
	}
}
