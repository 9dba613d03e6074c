package services

import (
	"testing"

	"github.com/chandankhang/CompTrack/internal/models"
	"github.com/chandankhang/CompTrack/internal/repository"
	"github.com/chandankhang/CompTrack/internal/utils"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type complaintTestEnv struct {
	db      *gorm.DB
	service *ComplaintService
	mailer  *recordingMailer

	owner   models.User
	admin   models.User
	support models.User
}

func setupComplaintTestEnv(t *testing.T) complaintTestEnv {
	t.Helper()

	db := newTestDB(t)
	mailer := &recordingMailer{}

	service := NewComplaintService(
		repository.NewComplaintRepository(db),
		repository.NewUserRepository(db),
		mailer,
	)

	env := complaintTestEnv{
		db:      db,
		service: service,
		mailer:  mailer,
		owner: models.User{
			Username:     "owner",
			Email:        "owner@example.com",
			PasswordHash: "x",
			Role:         models.RoleUser,
		},
		admin: models.User{
			Username:     "the-admin",
			Email:        "admin@comptrack.io",
			PasswordHash: "x",
			Role:         models.RoleAdmin,
		},
		support: models.User{
			Username:     "the-support",
			Email:        "support@comptrack.io",
			PasswordHash: "x",
			Role:         models.RoleSupport,
		},
	}

	require.NoError(t, db.Create(&env.owner).Error)
	require.NoError(t, db.Create(&env.admin).Error)
	require.NoError(t, db.Create(&env.support).Error)

	return env
}

func (env *complaintTestEnv) fileComplaint(t *testing.T, urgency models.ComplaintUrgency) *models.Complaint {
	t.Helper()

	complaint, err := env.service.File(FileComplaintInput{
		OwnerID:     env.owner.ID,
		Title:       "Broken street light",
		Description: "The light on 5th has been out for a week",
		Category:    "Infrastructure",
		Urgency:     urgency,
		Location:    "5th Avenue",
	})
	require.NoError(t, err)
	return complaint
}

func TestComplaintService_File(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyMedium)

	require.Equal(t, models.StatusPending, complaint.Status)
	require.Regexp(t, `^COMP-[0-9]+-[0-9a-z]{7}$`, complaint.ComplaintNumber)
	require.Nil(t, complaint.ResolvedAt)
	require.Nil(t, complaint.AssignedToID)

	// Owner gets a confirmation mail; no admin alert below High urgency.
	sent := env.mailer.Sent()
	require.Len(t, sent, 1)
	require.Equal(t, env.owner.Email, sent[0].To)
}

func TestComplaintService_FileMissingFields(t *testing.T) {
	env := setupComplaintTestEnv(t)

	inputs := []FileComplaintInput{
		{OwnerID: env.owner.ID, Description: "d", Category: "c", Urgency: models.UrgencyLow, Location: "l"},
		{OwnerID: env.owner.ID, Title: "t", Category: "c", Urgency: models.UrgencyLow, Location: "l"},
		{OwnerID: env.owner.ID, Title: "t", Description: "d", Urgency: models.UrgencyLow, Location: "l"},
		{OwnerID: env.owner.ID, Title: "t", Description: "d", Category: "c", Location: "l"},
		{OwnerID: env.owner.ID, Title: "t", Description: "d", Category: "c", Urgency: models.UrgencyLow},
		{OwnerID: env.owner.ID, Title: "   ", Description: "d", Category: "c", Urgency: models.UrgencyLow, Location: "l"},
	}

	for i, input := range inputs {
		_, err := env.service.File(input)
		require.ErrorIs(t, err, ErrFieldsRequired, "input %d", i)
	}
}

// collidingComplaintRepo reports a unique-violation on every insert.
type collidingComplaintRepo struct {
	repository.ComplaintRepository
}

func (collidingComplaintRepo) Create(*models.Complaint) error {
	return gorm.ErrDuplicatedKey
}

func TestComplaintService_FileTrackingCollision(t *testing.T) {
	env := setupComplaintTestEnv(t)

	service := NewComplaintService(
		collidingComplaintRepo{},
		repository.NewUserRepository(env.db),
		env.mailer,
	)

	_, err := service.File(FileComplaintInput{
		OwnerID:     env.owner.ID,
		Title:       "Broken street light",
		Description: "The light on 5th has been out for a week",
		Category:    "Infrastructure",
		Urgency:     models.UrgencyLow,
		Location:    "5th Avenue",
	})
	require.ErrorIs(t, err, ErrTrackingCollision)
	require.Empty(t, env.mailer.Sent())
}

func TestComplaintService_FileInvalidUrgency(t *testing.T) {
	env := setupComplaintTestEnv(t)

	_, err := env.service.File(FileComplaintInput{
		OwnerID:     env.owner.ID,
		Title:       "t",
		Description: "d",
		Category:    "c",
		Urgency:     "Critical",
		Location:    "l",
	})
	require.ErrorIs(t, err, ErrInvalidUrgency)
}

func TestComplaintService_FileHighUrgencyAlertsAdmins(t *testing.T) {
	env := setupComplaintTestEnv(t)

	secondAdmin := models.User{
		Username:     "other-admin",
		Email:        "admin2@comptrack.io",
		PasswordHash: "x",
		Role:         models.RoleAdmin,
	}
	require.NoError(t, env.db.Create(&secondAdmin).Error)

	env.fileComplaint(t, models.UrgencyHigh)

	sent := env.mailer.Sent()
	require.Len(t, sent, 3)

	recipients := make(map[string]bool)
	for _, m := range sent {
		recipients[m.To] = true
	}
	require.True(t, recipients[env.owner.Email])
	require.True(t, recipients[env.admin.Email])
	require.True(t, recipients[secondAdmin.Email])
}

func TestComplaintService_FileSurvivesMailFailure(t *testing.T) {
	env := setupComplaintTestEnv(t)

	service := NewComplaintService(
		repository.NewComplaintRepository(env.db),
		repository.NewUserRepository(env.db),
		failingMailer{},
	)

	complaint, err := service.File(FileComplaintInput{
		OwnerID:     env.owner.ID,
		Title:       "Broken street light",
		Description: "The light on 5th has been out for a week",
		Category:    "Infrastructure",
		Urgency:     models.UrgencyHigh,
		Location:    "5th Avenue",
	})
	require.NoError(t, err)
	require.NotZero(t, complaint.ID)

	fetched, err := service.TrackByNumber(complaint.ComplaintNumber)
	require.NoError(t, err)
	require.Equal(t, complaint.ID, fetched.ID)
}

func TestComplaintService_ListForOwner(t *testing.T) {
	env := setupComplaintTestEnv(t)

	env.fileComplaint(t, models.UrgencyLow)
	env.fileComplaint(t, models.UrgencyMedium)

	complaints, err := env.service.ListForOwner(env.owner.ID, env.owner.ID)
	require.NoError(t, err)
	require.Len(t, complaints, 2)
}

func TestComplaintService_ListForOwnerRejectsOtherCaller(t *testing.T) {
	env := setupComplaintTestEnv(t)

	env.fileComplaint(t, models.UrgencyLow)

	_, err := env.service.ListForOwner(env.owner.ID, env.admin.ID)
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestComplaintService_ListAll(t *testing.T) {
	env := setupComplaintTestEnv(t)

	env.fileComplaint(t, models.UrgencyLow)
	env.fileComplaint(t, models.UrgencyMedium)

	for _, role := range []models.UserRole{models.RoleAdmin, models.RoleSupport} {
		complaints, total, err := env.service.ListAll(role, utils.PaginationParams{})
		require.NoError(t, err)
		require.Len(t, complaints, 2)
		require.EqualValues(t, 2, total)
	}

	_, _, err := env.service.ListAll(models.RoleUser, utils.PaginationParams{})
	require.ErrorIs(t, err, ErrStaffOnly)
}

func TestComplaintService_ListAllPaginated(t *testing.T) {
	env := setupComplaintTestEnv(t)

	for i := 0; i < 5; i++ {
		env.fileComplaint(t, models.UrgencyLow)
	}

	complaints, total, err := env.service.ListAll(models.RoleAdmin, utils.PaginationParams{
		Page:   1,
		Limit:  2,
		Offset: 0,
	})
	require.NoError(t, err)
	require.Len(t, complaints, 2)
	require.EqualValues(t, 5, total)
}

func TestComplaintService_Resolve(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	resolved, err := env.service.Resolve(complaint.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, models.StatusResolved, resolved.Status)
	require.NotNil(t, resolved.ResolvedAt)

	// The owner is notified on top of the filing confirmation.
	sent := env.mailer.Sent()
	require.Len(t, sent, 2)
	require.Equal(t, "Complaint Resolved", sent[1].Subject)
}

func TestComplaintService_ResolveIdempotent(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	first, err := env.service.Resolve(complaint.ID, models.RoleAdmin)
	require.NoError(t, err)

	second, err := env.service.Resolve(complaint.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.Equal(t, first.ResolvedAt.Unix(), second.ResolvedAt.Unix())

	// One resolution mail, not two.
	resolvedMails := 0
	for _, m := range env.mailer.Sent() {
		if m.Subject == "Complaint Resolved" {
			resolvedMails++
		}
	}
	require.Equal(t, 1, resolvedMails)
}

func TestComplaintService_ResolveAdminOnly(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	for _, role := range []models.UserRole{models.RoleUser, models.RoleSupport} {
		_, err := env.service.Resolve(complaint.ID, role)
		require.ErrorIs(t, err, ErrAdminOnly)
	}
}

func TestComplaintService_ResolveUnknown(t *testing.T) {
	env := setupComplaintTestEnv(t)

	_, err := env.service.Resolve(999, models.RoleAdmin)
	require.ErrorIs(t, err, ErrComplaintNotFound)
}

func TestComplaintService_Delete(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	require.NoError(t, env.service.Delete(complaint.ID, models.RoleAdmin))

	_, err := env.service.TrackByNumber(complaint.ComplaintNumber)
	require.ErrorIs(t, err, ErrComplaintNotFound)
}

func TestComplaintService_DeleteAdminOnly(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	for _, role := range []models.UserRole{models.RoleUser, models.RoleSupport} {
		err := env.service.Delete(complaint.ID, role)
		require.ErrorIs(t, err, ErrAdminOnly)
	}
}

func TestComplaintService_DeleteRemovesComments(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	_, err := env.service.Comment(complaint.ID, env.support.ID, models.RoleSupport, "On it")
	require.NoError(t, err)

	require.NoError(t, env.service.Delete(complaint.ID, models.RoleAdmin))

	var comments int64
	require.NoError(t, env.db.Model(&models.Comment{}).Count(&comments).Error)
	require.Zero(t, comments)
}

func TestComplaintService_AssignDefaultsToFirstAdmin(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	assigned, err := env.service.Assign(complaint.ID, models.RoleSupport, nil)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssignedToID)
	require.Equal(t, env.admin.ID, *assigned.AssignedToID)
}

func TestComplaintService_AssignExplicitAdmin(t *testing.T) {
	env := setupComplaintTestEnv(t)

	secondAdmin := models.User{
		Username:     "other-admin",
		Email:        "admin2@comptrack.io",
		PasswordHash: "x",
		Role:         models.RoleAdmin,
	}
	require.NoError(t, env.db.Create(&secondAdmin).Error)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	assigned, err := env.service.Assign(complaint.ID, models.RoleSupport, &secondAdmin.ID)
	require.NoError(t, err)
	require.Equal(t, secondAdmin.ID, *assigned.AssignedToID)
}

func TestComplaintService_AssignRejectsNonAdminAssignee(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	_, err := env.service.Assign(complaint.ID, models.RoleSupport, &env.owner.ID)
	require.ErrorIs(t, err, ErrInvalidAssignee)

	unknown := uint64(999)
	_, err = env.service.Assign(complaint.ID, models.RoleSupport, &unknown)
	require.ErrorIs(t, err, ErrInvalidAssignee)
}

func TestComplaintService_AssignSupportOnly(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	for _, role := range []models.UserRole{models.RoleUser, models.RoleAdmin} {
		_, err := env.service.Assign(complaint.ID, role, nil)
		require.ErrorIs(t, err, ErrSupportOnly)
	}
}

func TestComplaintService_AssignIdempotent(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	first, err := env.service.Assign(complaint.ID, models.RoleSupport, nil)
	require.NoError(t, err)

	second, err := env.service.Assign(complaint.ID, models.RoleSupport, nil)
	require.NoError(t, err)
	require.Equal(t, *first.AssignedToID, *second.AssignedToID)
}

func TestComplaintService_Comment(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	withComment, err := env.service.Comment(complaint.ID, env.support.ID, models.RoleSupport, "Dispatched a crew")
	require.NoError(t, err)
	require.Len(t, withComment.Comments, 1)
	require.Equal(t, "Dispatched a crew", withComment.Comments[0].Text)
	require.Equal(t, env.support.ID, withComment.Comments[0].AuthorID)

	// Comments accumulate, nothing is overwritten.
	withComment, err = env.service.Comment(complaint.ID, env.support.ID, models.RoleSupport, "Crew on site")
	require.NoError(t, err)
	require.Len(t, withComment.Comments, 2)
}

func TestComplaintService_CommentValidation(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	_, err := env.service.Comment(complaint.ID, env.support.ID, models.RoleSupport, "   ")
	require.ErrorIs(t, err, ErrCommentRequired)

	for _, role := range []models.UserRole{models.RoleUser, models.RoleAdmin} {
		_, err := env.service.Comment(complaint.ID, env.admin.ID, role, "note")
		require.ErrorIs(t, err, ErrSupportOnly)
	}

	_, err = env.service.Comment(999, env.support.ID, models.RoleSupport, "note")
	require.ErrorIs(t, err, ErrComplaintNotFound)
}

func TestComplaintService_TrackByNumber(t *testing.T) {
	env := setupComplaintTestEnv(t)

	complaint := env.fileComplaint(t, models.UrgencyLow)

	fetched, err := env.service.TrackByNumber(complaint.ComplaintNumber)
	require.NoError(t, err)
	require.Equal(t, complaint.ID, fetched.ID)

	_, err = env.service.TrackByNumber("COMP-0-zzzzzzz")
	require.ErrorIs(t, err, ErrComplaintNotFound)
}
