package repository

import (
	"github.com/chandankhang/CompTrack/internal/models"
	"github.com/chandankhang/CompTrack/internal/utils"
)

// UserRepository defines the interface for user data access
type UserRepository interface {
	// Create creates a new user
	Create(user *models.User) error

	// FindByID finds a user by ID
	FindByID(id uint64) (*models.User, error)

	// FindByEmail finds a user by email
	FindByEmail(email string) (*models.User, error)

	// FindByUsername finds a user by username
	FindByUsername(username string) (*models.User, error)

	// FindByRole lists all users holding a role
	FindByRole(role models.UserRole) ([]models.User, error)

	// Update updates a user
	Update(user *models.User) error

	// DeleteWithComplaints deletes a user together with every complaint the
	// user owns, within a single transaction.
	DeleteWithComplaints(id uint64) error
}

// ComplaintRepository defines the interface for complaint data access
type ComplaintRepository interface {
	// Create inserts a new complaint. Insertion fails on a tracking number
	// collision instead of overwriting.
	Create(complaint *models.Complaint) error

	// FindByID finds a complaint by ID with optional preloading
	FindByID(id uint64, preload ...string) (*models.Complaint, error)

	// FindByNumber finds a complaint by its public tracking number
	FindByNumber(number string) (*models.Complaint, error)

	// ListByOwner lists a user's complaints, newest first
	ListByOwner(ownerID uint64) ([]models.Complaint, error)

	// ListAll lists every complaint, newest first, with the owner joined.
	// Pagination applies only when params request it.
	ListAll(params utils.PaginationParams) ([]models.Complaint, int64, error)

	// Update updates a complaint
	Update(complaint *models.Complaint) error

	// Delete removes a complaint and its comments
	Delete(id uint64) error

	// AddComment appends a comment to a complaint
	AddComment(comment *models.Comment) error
}
