package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/chandankhang/CompTrack/internal/dto"
	apierrors "github.com/chandankhang/CompTrack/internal/errors"
	"github.com/chandankhang/CompTrack/internal/middleware"
	"github.com/chandankhang/CompTrack/internal/models"
	"github.com/chandankhang/CompTrack/internal/services"
	"github.com/chandankhang/CompTrack/internal/upload"
	"github.com/chandankhang/CompTrack/internal/utils"
	"github.com/gin-gonic/gin"
)

// ComplaintHandler coordinates complaint lifecycle HTTP handlers.
type ComplaintHandler struct {
	complaintService *services.ComplaintService
	uploads          *upload.Saver
}

// NewComplaintHandler creates a new ComplaintHandler.
func NewComplaintHandler(complaintService *services.ComplaintService, uploads *upload.Saver) *ComplaintHandler {
	return &ComplaintHandler{
		complaintService: complaintService,
		uploads:          uploads,
	}
}

// Create files a new complaint from a multipart form, with an optional
// image/PDF attachment.
func (h *ComplaintHandler) Create(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	input := services.FileComplaintInput{
		OwnerID:     userID,
		Title:       c.PostForm("title"),
		Description: c.PostForm("description"),
		Category:    c.PostForm("category"),
		Urgency:     models.ComplaintUrgency(c.PostForm("urgency")),
		Location:    c.PostForm("location"),
	}

	if file, err := c.FormFile("image"); err == nil {
		url, err := h.uploads.Save(file)
		if err != nil {
			switch {
			case errors.Is(err, upload.ErrFileTooLarge),
				errors.Is(err, upload.ErrUnsupportedType):
				apierrors.BadRequest(c, err.Error())
			default:
				apierrors.InternalError(c, "Failed to store attachment")
			}
			return
		}
		input.ImageURL = url
	}

	complaint, err := h.complaintService.File(input)
	if err != nil {
		respondComplaintError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":         "Complaint submitted successfully.",
		"complaintNumber": complaint.ComplaintNumber,
		"complaint":       dto.ToComplaintDTO(*complaint, false),
	})
}

// ListAll returns every complaint with the owner joined in. Staff only; the
// role gate runs in the middleware chain and is re-checked by the service.
func (h *ComplaintHandler) ListAll(c *gin.Context) {
	role, _ := middleware.GetUserRole(c)
	params := utils.GetPaginationParams(c)

	complaints, total, err := h.complaintService.ListAll(role, params)
	if err != nil {
		respondComplaintError(c, err)
		return
	}

	if params.Enabled() {
		c.JSON(http.StatusOK, gin.H{
			"complaints": dto.ToComplaintDTOs(complaints, true),
			"pagination": utils.PaginationResponse{
				Page:  params.Page,
				Limit: params.Limit,
				Total: total,
			},
		})
		return
	}

	c.JSON(http.StatusOK, dto.ToComplaintDTOs(complaints, true))
}

// ListByUser returns the complaints owned by the user in the path, newest
// first. The caller must be that user.
func (h *ComplaintHandler) ListByUser(c *gin.Context) {
	ownerID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid user ID")
		return
	}

	callerID, _ := middleware.GetUserID(c)

	complaints, err := h.complaintService.ListForOwner(ownerID, callerID)
	if err != nil {
		respondComplaintError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToComplaintDTOs(complaints, false))
}

// Resolve marks a complaint resolved. Admin only.
func (h *ComplaintHandler) Resolve(c *gin.Context) {
	complaintID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid complaint ID")
		return
	}

	role, _ := middleware.GetUserRole(c)

	complaint, err := h.complaintService.Resolve(complaintID, role)
	if err != nil {
		respondComplaintError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Complaint resolved successfully.",
		"complaint": dto.ToComplaintDTO(*complaint, false),
	})
}

// Delete removes a complaint. Admin only.
func (h *ComplaintHandler) Delete(c *gin.Context) {
	complaintID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid complaint ID")
		return
	}

	role, _ := middleware.GetUserRole(c)

	if err := h.complaintService.Delete(complaintID, role); err != nil {
		respondComplaintError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Complaint deleted successfully.",
	})
}

// Assign routes a complaint to a staff account. Support only. The body may
// name a specific admin; otherwise the first admin account is used.
func (h *ComplaintHandler) Assign(c *gin.Context) {
	complaintID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid complaint ID")
		return
	}

	type AssignRequest struct {
		AssigneeID *uint64 `json:"assignee_id"`
	}
	var req AssignRequest
	// The body is optional; a missing or empty body means default assignment.
	_ = c.ShouldBindJSON(&req)

	role, _ := middleware.GetUserRole(c)

	complaint, err := h.complaintService.Assign(complaintID, role, req.AssigneeID)
	if err != nil {
		respondComplaintError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Complaint assigned to admin.",
		"complaint": dto.ToComplaintDTO(*complaint, false),
	})
}

// Comment appends a staff note to a complaint. Support only.
func (h *ComplaintHandler) Comment(c *gin.Context) {
	complaintID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid complaint ID")
		return
	}

	type CommentRequest struct {
		Comment string `json:"comment"`
	}
	var req CommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Comment is required")
		return
	}

	userID, _ := middleware.GetUserID(c)
	role, _ := middleware.GetUserRole(c)

	complaint, err := h.complaintService.Comment(complaintID, userID, role, req.Comment)
	if err != nil {
		respondComplaintError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Comment added successfully.",
		"complaint": dto.ToComplaintDTO(*complaint, false),
	})
}

// Track is the public status lookup by tracking number. It returns only the
// narrow projection and never the owner, description, location, or comments.
func (h *ComplaintHandler) Track(c *gin.Context) {
	complaint, err := h.complaintService.TrackByNumber(c.Param("complaintId"))
	if err != nil {
		respondComplaintError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToTrackingDTO(*complaint))
}

func respondComplaintError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFieldsRequired):
		apierrors.BadRequest(c, "All fields are required")
	case errors.Is(err, services.ErrInvalidUrgency):
		apierrors.BadRequest(c, "Urgency must be Low, Medium, or High")
	case errors.Is(err, services.ErrCommentRequired):
		apierrors.BadRequest(c, "Comment is required")
	case errors.Is(err, services.ErrInvalidAssignee):
		apierrors.BadRequest(c, "Assignee must be an admin account")
	case errors.Is(err, services.ErrNotOwner):
		apierrors.Forbidden(c, "Unauthorized access")
	case errors.Is(err, services.ErrAdminOnly):
		apierrors.Forbidden(c, "Admins only")
	case errors.Is(err, services.ErrSupportOnly):
		apierrors.Forbidden(c, "Support only")
	case errors.Is(err, services.ErrStaffOnly):
		apierrors.Forbidden(c, "Unauthorized access")
	case errors.Is(err, services.ErrComplaintNotFound):
		apierrors.NotFound(c, "Complaint not found")
	case errors.Is(err, services.ErrTrackingCollision):
		apierrors.Conflict(c, "Tracking number collision, please retry")
	default:
		apierrors.InternalError(c, "")
	}
}
