package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gymflow/internal/apperrors"
	"gymflow/internal/models"
	"gymflow/internal/services"
)

type UserHandler struct {
	db      *gorm.DB
	cascade *services.CascadeService
}

func NewUserHandler(db *gorm.DB, cascade *services.CascadeService) *UserHandler {
	return &UserHandler{db: db, cascade: cascade}
}

type trainerRequest struct {
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Phone      string  `json:"phone"`
	Password   string  `json:"password"`
	MonthlyFee float64 `json:"monthlyFee"`
}

// CreateTrainer registers a trainer under the calling gym owner. The
// monthly fee must be set here; payment recording rejects trainers without
// one.
func (h *UserHandler) CreateTrainer(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")

	var req trainerRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.Name == "" || req.Email == "" {
		return badRequest("name and email are required")
	}
	if req.MonthlyFee <= 0 {
		return badRequest("monthlyFee must be greater than zero")
	}

	trainer := models.User{
		Name:       req.Name,
		Email:      req.Email,
		Phone:      req.Phone,
		Role:       models.RoleTrainer,
		CreatedBy:  &ownerID,
		MonthlyFee: req.MonthlyFee,
	}
	if req.Password != "" {
		hash, err := HashPassword(req.Password)
		if err != nil {
			return err
		}
		trainer.Password = hash
	}

	if err := h.db.Create(&trainer).Error; err != nil {
		return apperrors.NewPersistence("create trainer", err)
	}
	return respondOK(c, http.StatusCreated, trainer)
}

// ListTrainers returns the owner's trainers.
func (h *UserHandler) ListTrainers(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")

	var trainers []models.User
	err := h.db.
		Where("role = ?", models.RoleTrainer).
		Where("created_by = ? OR gym_id = ?", ownerID, ownerID).
		Order("name ASC").
		Find(&trainers).Error
	if err != nil {
		return apperrors.NewPersistence("list trainers", err)
	}
	return respondOK(c, http.StatusOK, trainers)
}

// DeleteUser removes a user. Gym owners cascade: all their trainers,
// members, plans, agreements, sessions and payments go with them, via a
// resumable job when a single transaction cannot do it.
func (h *UserHandler) DeleteUser(c echo.Context) error {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return badRequest("invalid user id")
	}

	var user models.User
	if err := h.db.First(&user, uint(userID)).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("user %d not found", userID)
		}
		return apperrors.NewPersistence("load user", err)
	}

	if user.Role == models.RoleGymOwner {
		result, err := h.cascade.DeleteGymOwner(c.Request().Context(), user.ID)
		if err != nil {
			return err
		}
		return respondOK(c, http.StatusOK, result)
	}

	if err := h.db.Delete(&user).Error; err != nil {
		return apperrors.NewPersistence("delete user", err)
	}
	return respondMessage(c, http.StatusOK, "user deleted")
}
