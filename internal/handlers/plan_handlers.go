package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gymflow/internal/apperrors"
	"gymflow/internal/models"
)

type PlanHandler struct {
	db *gorm.DB
}

func NewPlanHandler(db *gorm.DB) *PlanHandler {
	return &PlanHandler{db: db}
}

type planRequest struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Duration    string  `json:"duration"`
	MaxMembers  int     `json:"maxMembers"`
	MaxTrainers int     `json:"maxTrainers"`
}

func (r planRequest) billingPeriod() (models.BillingPeriod, error) {
	switch models.BillingPeriod(r.Duration) {
	case models.BillingMonthly, models.BillingQuarterly, models.BillingYearly:
		return models.BillingPeriod(r.Duration), nil
	case "":
		return models.BillingMonthly, nil
	}
	return "", badRequest("duration must be monthly, quarterly or yearly")
}

// ListPlans returns the owner's plans.
func (h *PlanHandler) ListPlans(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")

	var plans []models.GymOwnerPlan
	if err := h.db.Where("gym_owner_id = ?", ownerID).Order("price ASC").Find(&plans).Error; err != nil {
		return apperrors.NewPersistence("list plans", err)
	}
	return respondOK(c, http.StatusOK, plans)
}

// CreatePlan adds a plan for the calling owner.
func (h *PlanHandler) CreatePlan(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")

	var req planRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.Name == "" {
		return badRequest("name is required")
	}
	if req.Price <= 0 {
		return badRequest("price must be greater than zero")
	}
	period, err := req.billingPeriod()
	if err != nil {
		return err
	}

	plan := models.GymOwnerPlan{
		GymOwnerID:  ownerID,
		Name:        req.Name,
		Price:       req.Price,
		Duration:    period,
		MaxMembers:  req.MaxMembers,
		MaxTrainers: req.MaxTrainers,
	}
	if err := h.db.Create(&plan).Error; err != nil {
		return apperrors.NewPersistence("create plan", err)
	}
	return respondOK(c, http.StatusCreated, plan)
}

// UpdatePlan edits an owner's plan in place. Existing members keep their
// plan reference; new costs apply from the next recorded payment.
func (h *PlanHandler) UpdatePlan(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")
	plan, err := h.loadPlan(c, ownerID)
	if err != nil {
		return err
	}

	var req planRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.Name != "" {
		plan.Name = req.Name
	}
	if req.Price > 0 {
		plan.Price = req.Price
	}
	if req.Duration != "" {
		period, err := req.billingPeriod()
		if err != nil {
			return err
		}
		plan.Duration = period
	}
	if req.MaxMembers > 0 {
		plan.MaxMembers = req.MaxMembers
	}
	if req.MaxTrainers > 0 {
		plan.MaxTrainers = req.MaxTrainers
	}

	if err := h.db.Save(plan).Error; err != nil {
		return apperrors.NewPersistence("update plan", err)
	}
	return respondOK(c, http.StatusOK, plan)
}

// DeletePlan soft-deletes a plan. Members referencing it fall back to the
// default plan at payment time.
func (h *PlanHandler) DeletePlan(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")
	plan, err := h.loadPlan(c, ownerID)
	if err != nil {
		return err
	}
	if err := h.db.Delete(plan).Error; err != nil {
		return apperrors.NewPersistence("delete plan", err)
	}
	return respondMessage(c, http.StatusOK, "plan deleted")
}

func (h *PlanHandler) loadPlan(c echo.Context, ownerID uint) (*models.GymOwnerPlan, error) {
	planID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return nil, badRequest("invalid plan id")
	}
	var plan models.GymOwnerPlan
	err = h.db.Where("id = ? AND gym_owner_id = ?", planID, ownerID).First(&plan).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("plan %d not found", planID)
		}
		return nil, apperrors.NewPersistence("load plan", err)
	}
	return &plan, nil
}
