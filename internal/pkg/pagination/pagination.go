package pagination

import (
	"fmt"
	"math"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// Page is embedded in list responses.
type Page struct {
	TotalCount int64  `json:"total_count"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	TotalPages int    `json:"total_pages"`
	Showing    string `json:"showing"`
}

func New(total int64, page, limit int) Page {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if page <= 0 {
		page = 1
	}

	showing := fmt.Sprintf("%d-%d of %d", (page-1)*limit+1, min(page*limit, int(total)), total)
	if total == 0 {
		showing = "0 of 0"
	}

	return Page{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int(math.Ceil(float64(total) / float64(limit))),
		Showing:    showing,
	}
}

// Offset returns the SQL OFFSET for page and limit.
func Offset(page, limit int) int {
	if page <= 0 {
		page = 1
	}
	return (page - 1) * limit
}
