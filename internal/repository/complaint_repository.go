package repository

import (
	"github.com/chandankhang/CompTrack/internal/database"
	"github.com/chandankhang/CompTrack/internal/models"
	"github.com/chandankhang/CompTrack/internal/utils"
	"gorm.io/gorm"
)

// GormComplaintRepository is a GORM implementation of ComplaintRepository
type GormComplaintRepository struct {
	db *gorm.DB
}

// NewComplaintRepository creates a new ComplaintRepository
func NewComplaintRepository(db *gorm.DB) ComplaintRepository {
	return &GormComplaintRepository{db: db}
}

// Create inserts a new complaint. The unique index on complaint_number makes
// the insert fail closed on a tracking number collision.
func (r *GormComplaintRepository) Create(complaint *models.Complaint) error {
	return r.db.Create(complaint).Error
}

// FindByID finds a complaint by ID with optional preloading
func (r *GormComplaintRepository) FindByID(id uint64, preload ...string) (*models.Complaint, error) {
	var complaint models.Complaint
	query := r.db

	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&complaint, id).Error; err != nil {
		return nil, err
	}

	return &complaint, nil
}

// FindByNumber finds a complaint by its public tracking number
func (r *GormComplaintRepository) FindByNumber(number string) (*models.Complaint, error) {
	var complaint models.Complaint
	if err := r.db.Where("complaint_number = ?", number).First(&complaint).Error; err != nil {
		return nil, err
	}
	return &complaint, nil
}

// ListByOwner lists a user's complaints, newest first
func (r *GormComplaintRepository) ListByOwner(ownerID uint64) ([]models.Complaint, error) {
	var complaints []models.Complaint
	err := r.db.
		Where("user_id = ?", ownerID).
		Order("created_at DESC").
		Preload("Comments").
		Find(&complaints).Error
	if err != nil {
		return nil, err
	}
	return complaints, nil
}

// ListAll lists every complaint newest first with the owner joined in.
// Pagination applies only when the params request it.
func (r *GormComplaintRepository) ListAll(params utils.PaginationParams) ([]models.Complaint, int64, error) {
	var complaints []models.Complaint

	query := r.db.Model(&models.Complaint{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC")
	if params.Enabled() {
		listQuery = listQuery.Scopes(database.Paginate(params))
	}

	err := listQuery.
		Preload("User").
		Preload("Comments").
		Find(&complaints).Error
	if err != nil {
		return nil, 0, err
	}

	return complaints, total, nil
}

// Update updates a complaint
func (r *GormComplaintRepository) Update(complaint *models.Complaint) error {
	return r.db.Save(complaint).Error
}

// Delete removes a complaint and its comments
func (r *GormComplaintRepository) Delete(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("complaint_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Complaint{}, id).Error
	})
}

// AddComment appends a comment to a complaint
func (r *GormComplaintRepository) AddComment(comment *models.Comment) error {
	return r.db.Create(comment).Error
}
