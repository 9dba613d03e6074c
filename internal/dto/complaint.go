package dto

import (
	"time"

	"github.com/chandankhang/CompTrack/internal/models"
)

// CommentDTO represents a staff comment in API responses
type CommentDTO struct {
	Text string    `json:"text"`
	By   uint64    `json:"by"`
	Date time.Time `json:"date"`
}

// ComplaintDTO represents a complaint in API responses
type ComplaintDTO struct {
	ID              uint64                  `json:"id"`
	ComplaintNumber string                  `json:"complaint_number"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	Category        string                  `json:"category"`
	Urgency         models.ComplaintUrgency `json:"urgency"`
	Location        string                  `json:"location"`
	ImageURL        string                  `json:"image_url,omitempty"`
	Status          models.ComplaintStatus  `json:"status"`
	AssignedToID    *uint64                 `json:"assigned_to_id,omitempty"`
	CreatedAt       time.Time               `json:"created_at"`
	ResolvedAt      *time.Time              `json:"resolved_at,omitempty"`
	Comments        []CommentDTO            `json:"comments,omitempty"`

	// Owner is included in staff listings only
	Owner *UserDTO `json:"owner,omitempty"`
}

// TrackingDTO is the narrow public projection returned by the tracking
// endpoint. It must never carry owner identity, description, location, or
// comments.
type TrackingDTO struct {
	ComplaintNumber string                 `json:"complaint_number"`
	Title           string                 `json:"title"`
	Status          models.ComplaintStatus `json:"status"`
	CreatedAt       time.Time              `json:"created_at"`
	ResolvedAt      *time.Time             `json:"resolved_at"`
}

// ToComplaintDTO converts a Complaint model to ComplaintDTO. The owner is
// included only when preloaded and requested.
func ToComplaintDTO(complaint models.Complaint, includeOwner bool) ComplaintDTO {
	d := ComplaintDTO{
		ID:              complaint.ID,
		ComplaintNumber: complaint.ComplaintNumber,
		Title:           complaint.Title,
		Description:     complaint.Description,
		Category:        complaint.Category,
		Urgency:         complaint.Urgency,
		Location:        complaint.Location,
		ImageURL:        complaint.ImageURL,
		Status:          complaint.Status,
		AssignedToID:    complaint.AssignedToID,
		CreatedAt:       complaint.CreatedAt,
		ResolvedAt:      complaint.ResolvedAt,
	}

	if len(complaint.Comments) > 0 {
		d.Comments = make([]CommentDTO, len(complaint.Comments))
		for i, comment := range complaint.Comments {
			d.Comments[i] = CommentDTO{
				Text: comment.Text,
				By:   comment.AuthorID,
				Date: comment.CreatedAt,
			}
		}
	}

	if includeOwner && complaint.User.ID != 0 {
		owner := ToUserDTO(complaint.User)
		d.Owner = &owner
	}

	return d
}

// ToComplaintDTOs converts a slice of complaints
func ToComplaintDTOs(complaints []models.Complaint, includeOwner bool) []ComplaintDTO {
	dtos := make([]ComplaintDTO, len(complaints))
	for i, complaint := range complaints {
		dtos[i] = ToComplaintDTO(complaint, includeOwner)
	}
	return dtos
}

// ToTrackingDTO converts a Complaint to its public tracking projection
func ToTrackingDTO(complaint models.Complaint) TrackingDTO {
	return TrackingDTO{
		ComplaintNumber: complaint.ComplaintNumber,
		Title:           complaint.Title,
		Status:          complaint.Status,
		CreatedAt:       complaint.CreatedAt,
		ResolvedAt:      complaint.ResolvedAt,
	}
}
