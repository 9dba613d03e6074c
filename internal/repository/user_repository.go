package repository

import (
	"github.com/chandankhang/CompTrack/internal/models"
	"gorm.io/gorm"
)

// GormUserRepository is a GORM implementation of UserRepository
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *gorm.DB) UserRepository {
	return &GormUserRepository{db: db}
}

// Create creates a new user
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// FindByID finds a user by ID
func (r *GormUserRepository) FindByID(id uint64) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByEmail finds a user by email
func (r *GormUserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByUsername finds a user by username
func (r *GormUserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// FindByRole lists all users holding a role
func (r *GormUserRepository) FindByRole(role models.UserRole) ([]models.User, error) {
	var users []models.User
	if err := r.db.Where("role = ?", role).Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

// Update updates a user
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// DeleteWithComplaints deletes the user and every complaint the user owns
// atomically. Comments hanging off those complaints are removed first so no
// orphaned rows survive.
func (r *GormUserRepository) DeleteWithComplaints(id uint64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		complaintIDs := tx.Model(&models.Complaint{}).
			Select("id").
			Where("user_id = ?", id)

		if err := tx.Where("complaint_id IN (?)", complaintIDs).
			Delete(&models.Comment{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", id).
			Delete(&models.Complaint{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, id).Error
	})
}
