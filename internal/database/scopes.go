package database

import (
	"gorm.io/gorm"

	"github.com/chandankhang/CompTrack/internal/utils"
)

// Paginate is a GORM scope that narrows a listing query to the requested
// page. Callers check params.Enabled() first; an unpaginated listing never
// passes through here.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}
