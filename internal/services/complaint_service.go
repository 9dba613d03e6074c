package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chandankhang/CompTrack/internal/mail"
	"github.com/chandankhang/CompTrack/internal/models"
	"github.com/chandankhang/CompTrack/internal/repository"
	"github.com/chandankhang/CompTrack/internal/utils"
	"gorm.io/gorm"
)

var (
	ErrFieldsRequired    = errors.New("all fields are required")
	ErrInvalidUrgency    = errors.New("urgency must be Low, Medium, or High")
	ErrComplaintNotFound = errors.New("complaint not found")
	ErrNotOwner          = errors.New("cannot access another user's complaints")
	ErrAdminOnly         = errors.New("admins only")
	ErrSupportOnly       = errors.New("support only")
	ErrStaffOnly         = errors.New("staff only")
	ErrCommentRequired   = errors.New("comment is required")
	ErrInvalidAssignee   = errors.New("assignee must be an admin account")
	ErrNoAdminAvailable  = errors.New("no admin account available for assignment")
	ErrTrackingCollision = errors.New("tracking number collision, please retry")
)

// ComplaintService enforces the complaint lifecycle: create by a user, assign
// and comment by support, resolve and delete by admin. Status only ever moves
// Pending to Resolved.
type ComplaintService struct {
	complaintRepo repository.ComplaintRepository
	userRepo      repository.UserRepository
	mailer        mail.Mailer
}

// NewComplaintService creates a new ComplaintService.
func NewComplaintService(
	complaintRepo repository.ComplaintRepository,
	userRepo repository.UserRepository,
	mailer mail.Mailer,
) *ComplaintService {
	return &ComplaintService{
		complaintRepo: complaintRepo,
		userRepo:      userRepo,
		mailer:        mailer,
	}
}

// FileComplaintInput represents input for filing a complaint.
type FileComplaintInput struct {
	OwnerID     uint64
	Title       string
	Description string
	Category    string
	Urgency     models.ComplaintUrgency
	Location    string
	ImageURL    string
}

// File registers a new complaint for the owner. Notification dispatch is
// best-effort: a mail failure never rolls back the created complaint.
func (s *ComplaintService) File(input FileComplaintInput) (*models.Complaint, error) {
	if strings.TrimSpace(input.Title) == "" ||
		strings.TrimSpace(input.Description) == "" ||
		strings.TrimSpace(input.Category) == "" ||
		string(input.Urgency) == "" ||
		strings.TrimSpace(input.Location) == "" {
		return nil, ErrFieldsRequired
	}

	switch input.Urgency {
	case models.UrgencyLow, models.UrgencyMedium, models.UrgencyHigh:
	default:
		return nil, ErrInvalidUrgency
	}

	number, err := utils.GenerateTrackingNumber()
	if err != nil {
		return nil, fmt.Errorf("failed to generate tracking number: %w", err)
	}

	complaint := &models.Complaint{
		UserID:          input.OwnerID,
		Title:           input.Title,
		Description:     input.Description,
		Category:        input.Category,
		Urgency:         input.Urgency,
		Location:        input.Location,
		ComplaintNumber: number,
		ImageURL:        input.ImageURL,
		Status:          models.StatusPending,
	}

	if err := s.complaintRepo.Create(complaint); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrTrackingCollision
		}
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}

	s.notifyFiled(complaint)

	return complaint, nil
}

// ListForOwner returns the owner's complaints, newest first. The caller must
// be the owner.
func (s *ComplaintService) ListForOwner(ownerID, callerID uint64) ([]models.Complaint, error) {
	if callerID != ownerID {
		return nil, ErrNotOwner
	}

	complaints, err := s.complaintRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}

	return complaints, nil
}

// ListAll returns every complaint newest first with the owner joined in.
// Admin and support only.
func (s *ComplaintService) ListAll(callerRole models.UserRole, params utils.PaginationParams) ([]models.Complaint, int64, error) {
	if callerRole != models.RoleAdmin && callerRole != models.RoleSupport {
		return nil, 0, ErrStaffOnly
	}

	complaints, total, err := s.complaintRepo.ListAll(params)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list complaints: %w", err)
	}

	return complaints, total, nil
}

// Resolve marks a complaint Resolved and stamps the resolution time. Admin
// only. Resolving an already resolved complaint leaves it untouched.
func (s *ComplaintService) Resolve(complaintID uint64, callerRole models.UserRole) (*models.Complaint, error) {
	if callerRole != models.RoleAdmin {
		return nil, ErrAdminOnly
	}

	complaint, err := s.findComplaint(complaintID)
	if err != nil {
		return nil, err
	}

	if complaint.Status != models.StatusResolved {
		now := time.Now()
		complaint.Status = models.StatusResolved
		complaint.ResolvedAt = &now

		if err := s.complaintRepo.Update(complaint); err != nil {
			return nil, fmt.Errorf("failed to resolve complaint: %w", err)
		}

		s.notifyResolved(complaint)
	}

	return complaint, nil
}

// Delete removes a complaint. Admin only.
func (s *ComplaintService) Delete(complaintID uint64, callerRole models.UserRole) error {
	if callerRole != models.RoleAdmin {
		return ErrAdminOnly
	}

	if _, err := s.findComplaint(complaintID); err != nil {
		return err
	}

	if err := s.complaintRepo.Delete(complaintID); err != nil {
		return fmt.Errorf("failed to delete complaint: %w", err)
	}

	return nil
}

// Assign routes a complaint to a staff account. Support only. When no
// assignee is named the first admin account is used. Idempotent.
func (s *ComplaintService) Assign(complaintID uint64, callerRole models.UserRole, assigneeID *uint64) (*models.Complaint, error) {
	if callerRole != models.RoleSupport {
		return nil, ErrSupportOnly
	}

	complaint, err := s.findComplaint(complaintID)
	if err != nil {
		return nil, err
	}

	var target uint64
	if assigneeID != nil {
		assignee, err := s.userRepo.FindByID(*assigneeID)
		if err != nil || assignee.Role != models.RoleAdmin {
			return nil, ErrInvalidAssignee
		}
		target = assignee.ID
	} else {
		admins, err := s.userRepo.FindByRole(models.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("failed to look up admins: %w", err)
		}
		if len(admins) == 0 {
			return nil, ErrNoAdminAvailable
		}
		target = admins[0].ID
	}

	complaint.AssignedToID = &target
	if err := s.complaintRepo.Update(complaint); err != nil {
		return nil, fmt.Errorf("failed to assign complaint: %w", err)
	}

	return complaint, nil
}

// Comment appends a staff note to a complaint. Support only.
func (s *ComplaintService) Comment(complaintID, callerID uint64, callerRole models.UserRole, text string) (*models.Complaint, error) {
	if callerRole != models.RoleSupport {
		return nil, ErrSupportOnly
	}

	if strings.TrimSpace(text) == "" {
		return nil, ErrCommentRequired
	}

	if _, err := s.findComplaint(complaintID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		ComplaintID: complaintID,
		AuthorID:    callerID,
		Text:        text,
	}

	if err := s.complaintRepo.AddComment(comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	return s.complaintRepo.FindByID(complaintID, "Comments")
}

// TrackByNumber looks up a complaint by its public tracking number. Callers
// must project the result down to the public fields before returning it.
func (s *ComplaintService) TrackByNumber(number string) (*models.Complaint, error) {
	complaint, err := s.complaintRepo.FindByNumber(number)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, fmt.Errorf("failed to track complaint: %w", err)
	}

	return complaint, nil
}

func (s *ComplaintService) findComplaint(id uint64) (*models.Complaint, error) {
	complaint, err := s.complaintRepo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, fmt.Errorf("failed to find complaint: %w", err)
	}
	return complaint, nil
}

func (s *ComplaintService) notifyFiled(complaint *models.Complaint) {
	owner, err := s.userRepo.FindByID(complaint.UserID)
	if err != nil {
		log.Printf("notification skipped, owner lookup failed: %v", err)
		return
	}

	if err := s.mailer.Send(owner.Email, "Complaint Registered",
		fmt.Sprintf("Your complaint (%s) has been registered successfully.", complaint.ComplaintNumber)); err != nil {
		log.Printf("owner notification failed: %v", err)
	}

	if complaint.Urgency != models.UrgencyHigh {
		return
	}

	admins, err := s.userRepo.FindByRole(models.RoleAdmin)
	if err != nil {
		log.Printf("admin notification skipped: %v", err)
		return
	}
	for _, admin := range admins {
		if err := s.mailer.Send(admin.Email, "Urgent Complaint Alert",
			fmt.Sprintf("High urgency complaint (%s) registered by %s.", complaint.ComplaintNumber, owner.Username)); err != nil {
			log.Printf("admin notification failed: %v", err)
		}
	}
}

func (s *ComplaintService) notifyResolved(complaint *models.Complaint) {
	owner, err := s.userRepo.FindByID(complaint.UserID)
	if err != nil {
		log.Printf("notification skipped, owner lookup failed: %v", err)
		return
	}

	if err := s.mailer.Send(owner.Email, "Complaint Resolved",
		fmt.Sprintf("Your complaint (%s) has been resolved.", complaint.ComplaintNumber)); err != nil {
		log.Printf("owner notification failed: %v", err)
	}
}
