package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gymflow/internal/apperrors"
	"gymflow/internal/models"
)

type MemberHandler struct {
	db *gorm.DB
}

func NewMemberHandler(db *gorm.DB) *MemberHandler {
	return &MemberHandler{db: db}
}

type memberRequest struct {
	Name                string  `json:"name"`
	Email               string  `json:"email"`
	Phone               string  `json:"phone"`
	Password            string  `json:"password"`
	PlanID              *uint   `json:"planId"`
	AssignedTrainerID   *uint   `json:"assignedTrainerId"`
	MembershipType      string  `json:"membershipType"`
	MembershipDuration  string  `json:"membershipDuration"`
	MembershipStartDate *string `json:"membershipStartDate"`
	AgreementTerms      string  `json:"agreementTerms"`
}

// memberView is the listing/detail shape. MembershipStatus is derived at
// read time; an expired window always reads Expired no matter what the
// stored status says, and the stored row is never written back here.
type memberView struct {
	ID                  uint       `json:"id"`
	Name                string     `json:"name"`
	Email               string     `json:"email"`
	Phone               string     `json:"phone"`
	PlanID              *uint      `json:"plan_id,omitempty"`
	PlanType            string     `json:"plan_type,omitempty"`
	MembershipType      string     `json:"membership_type,omitempty"`
	MembershipStartDate *time.Time `json:"membership_start_date,omitempty"`
	MembershipEndDate   *time.Time `json:"membership_end_date,omitempty"`
	MembershipStatus    string     `json:"membership_status"`
	DaysRemaining       int        `json:"days_remaining"`
	PaidAmount          float64    `json:"paid_amount"`
	TrainerName         string     `json:"trainer_name,omitempty"`
}

func toMemberView(m models.User, now time.Time) memberView {
	view := memberView{
		ID:                  m.ID,
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		PlanID:              m.PlanID,
		PlanType:            m.PlanType,
		MembershipType:      m.MembershipType,
		MembershipStartDate: m.MembershipStartDate,
		MembershipEndDate:   m.MembershipEndDate,
		MembershipStatus:    m.DeriveMembershipStatus(now),
		DaysRemaining:       m.MembershipDaysRemaining(now),
		PaidAmount:          m.PaidAmount,
	}
	if m.AssignedTrainer != nil {
		view.TrainerName = m.AssignedTrainer.Name
	}
	return view
}

// CreateMember registers a member under the calling gym owner, optionally
// signing a membership agreement in the same request.
func (h *MemberHandler) CreateMember(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")

	var req memberRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.Name == "" || req.Email == "" {
		return badRequest("name and email are required")
	}

	var owner models.User
	if err := h.db.First(&owner, ownerID).Error; err != nil {
		return apperrors.NewNotFound("gym owner %d not found", ownerID)
	}

	member := models.User{
		Name:               req.Name,
		Email:              req.Email,
		Phone:              req.Phone,
		Role:               models.RoleMember,
		CreatedBy:          &ownerID,
		PlanID:             req.PlanID,
		AssignedTrainerID:  req.AssignedTrainerID,
		MembershipType:     req.MembershipType,
		MembershipDuration: req.MembershipDuration,
		MembershipStatus:   models.MembershipPending,
	}

	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			return err
		}
		member.Password = hash
	}

	if req.MembershipStartDate != nil {
		start, err := time.Parse("2006-01-02", *req.MembershipStartDate)
		if err != nil {
			return badRequest("membershipStartDate must be YYYY-MM-DD")
		}
		member.MembershipStartDate = &start
		if months, err := strconv.Atoi(req.MembershipDuration); err == nil && months > 0 {
			end := start.AddDate(0, months, 0)
			member.MembershipEndDate = &end
		}
	}

	if req.PlanID != nil {
		var plan models.GymOwnerPlan
		if err := h.db.Where("id = ? AND gym_owner_id = ?", *req.PlanID, ownerID).First(&plan).Error; err != nil {
			return apperrors.NewNotFound("plan %d not found", *req.PlanID)
		}
		member.PlanType = plan.Name
	}

	if err := h.db.Create(&member).Error; err != nil {
		return apperrors.NewPersistence("create member", err)
	}

	if req.AgreementTerms != "" {
		agreement := models.MemberAgreement{
			MemberID:   member.ID,
			GymOwnerID: ownerID,
			MemberSnapshot: models.MemberSnapshot{
				ID:    member.ID,
				Name:  member.Name,
				Email: member.Email,
				Phone: member.Phone,
			},
			GymSnapshot: models.GymSnapshot{
				ID:    owner.ID,
				Name:  owner.GymName,
				Email: owner.Email,
			},
			Terms:    req.AgreementTerms,
			SignedAt: time.Now().UTC(),
		}
		if err := h.db.Create(&agreement).Error; err != nil {
			return apperrors.NewPersistence("create member agreement", err)
		}
	}

	return respondOK(c, http.StatusCreated, toMemberView(member, time.Now()))
}

// ListMembers returns the owner's members with their effective status.
func (h *MemberHandler) ListMembers(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")

	var members []models.User
	err := h.db.
		Where("role = ?", models.RoleMember).
		Where("created_by = ? OR gym_id = ?", ownerID, ownerID).
		Preload("AssignedTrainer").
		Order("created_at DESC").
		Find(&members).Error
	if err != nil {
		return apperrors.NewPersistence("list members", err)
	}

	now := time.Now()
	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, toMemberView(m, now))
	}
	return respondOK(c, http.StatusOK, views)
}

// GetMember returns one member's detail view.
func (h *MemberHandler) GetMember(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")
	memberID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest("invalid member id")
	}

	member, err := h.loadMember(ownerID, uint(memberID))
	if err != nil {
		return err
	}
	return respondOK(c, http.StatusOK, toMemberView(*member, time.Now()))
}

// UpdateMember edits a member's profile and membership fields.
func (h *MemberHandler) UpdateMember(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")
	memberID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest("invalid member id")
	}

	member, err := h.loadMember(ownerID, uint(memberID))
	if err != nil {
		return err
	}

	var req memberRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	if req.Name != "" {
		member.Name = req.Name
	}
	if req.Email != "" {
		member.Email = req.Email
	}
	if req.Phone != "" {
		member.Phone = req.Phone
	}
	if req.MembershipType != "" {
		member.MembershipType = req.MembershipType
	}
	if req.MembershipDuration != "" {
		member.MembershipDuration = req.MembershipDuration
	}
	member.AssignedTrainerID = req.AssignedTrainerID
	if req.PlanID != nil {
		var plan models.GymOwnerPlan
		if err := h.db.Where("id = ? AND gym_owner_id = ?", *req.PlanID, ownerID).First(&plan).Error; err != nil {
			return apperrors.NewNotFound("plan %d not found", *req.PlanID)
		}
		member.PlanID = req.PlanID
		member.PlanType = plan.Name
	}

	if err := h.db.Save(member).Error; err != nil {
		return apperrors.NewPersistence("update member", err)
	}
	return respondOK(c, http.StatusOK, toMemberView(*member, time.Now()))
}

// DeleteMember soft-deletes a member.
func (h *MemberHandler) DeleteMember(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")
	memberID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest("invalid member id")
	}

	member, err := h.loadMember(ownerID, uint(memberID))
	if err != nil {
		return err
	}
	if err := h.db.Delete(member).Error; err != nil {
		return apperrors.NewPersistence("delete member", err)
	}
	return respondMessage(c, http.StatusOK, "member deleted")
}

func (h *MemberHandler) loadMember(ownerID, memberID uint) (*models.User, error) {
	var member models.User
	err := h.db.
		Where("id = ? AND role = ?", memberID, models.RoleMember).
		Where("created_by = ? OR gym_id = ?", ownerID, ownerID).
		Preload("AssignedTrainer").
		First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("member %d not found", memberID)
		}
		return nil, apperrors.NewPersistence("load member", err)
	}
	return &member, nil
}
