package utils

import (
	"strconv"

	"github.com/chandankhang/CompTrack/internal/constants"
	"github.com/gin-gonic/gin"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse represents the pagination metadata in API responses
type PaginationResponse struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
}

// GetPaginationParams extracts and validates pagination parameters from the
// request. When the request carries no page parameter the zero value is
// returned and callers skip pagination entirely; clients that never send
// page/limit get the full listing.
func GetPaginationParams(c *gin.Context) PaginationParams {
	if c.Query("page") == "" && c.Query("limit") == "" {
		return PaginationParams{}
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", strconv.Itoa(constants.MinPageSize)))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	offset := (page - 1) * limit

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: offset,
	}
}

// Enabled reports whether the params actually request pagination.
func (p PaginationParams) Enabled() bool {
	return p.Page > 0 && p.Limit > 0
}
