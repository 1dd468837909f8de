package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"gymflow/internal/apperrors"
	"gymflow/internal/models"
	"gymflow/internal/services"
)

type PaymentHandler struct {
	db       *gorm.DB
	payments *services.PaymentService
	reports  *services.ReportService
	backfill *services.BackfillService
	razorpay *services.RazorpayService
	cache    *services.RedisCache
}

func NewPaymentHandler(
	db *gorm.DB,
	payments *services.PaymentService,
	reports *services.ReportService,
	backfill *services.BackfillService,
	razorpay *services.RazorpayService,
	cache *services.RedisCache,
) *PaymentHandler {
	return &PaymentHandler{
		db:       db,
		payments: payments,
		reports:  reports,
		backfill: backfill,
		razorpay: razorpay,
		cache:    cache,
	}
}

// RecordMemberPayment records a payment for one of the owner's members.
// The receipt email is queued, never awaited; its status in the response
// only says whether the queue accepted it.
func (h *PaymentHandler) RecordMemberPayment(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")

	var input services.RecordPaymentInput
	if err := c.Bind(&input); err != nil {
		return badRequest("invalid request body")
	}

	result, err := h.payments.RecordPayment(ownerID, input)
	if err != nil {
		return err
	}

	receiptStatus := "queued"
	if !result.ReceiptQueued {
		receiptStatus = "skipped"
	}
	return respondOK(c, http.StatusCreated, map[string]interface{}{
		"payment":      result.Payment,
		"emailReceipt": map[string]string{"status": receiptStatus},
	})
}

func paymentFilterFromQuery(c echo.Context) services.PaymentFilter {
	filter := services.PaymentFilter{
		Method:     c.QueryParam("paymentMethod"),
		PlanType:   c.QueryParam("planType"),
		MemberName: c.QueryParam("memberName"),
	}
	if month, err := strconv.Atoi(c.QueryParam("month")); err == nil {
		filter.Month = month
	}
	if year, err := strconv.Atoi(c.QueryParam("year")); err == nil {
		filter.Year = year
	}
	if start, ok := parseQueryDate(c.QueryParam("startDate")); ok {
		filter.StartDate = &start
	}
	if end, ok := parseQueryDate(c.QueryParam("endDate")); ok {
		filter.EndDate = &end
	}
	return filter
}

func parseQueryDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts, true
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return ts, true
	}
	return time.Time{}, false
}

// ListPayments returns the owner's payments, optionally filtered by month,
// year, an explicit date range, method group, plan type and member name.
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")

	rows, err := h.reports.ListPayments(ownerID, paymentFilterFromQuery(c))
	if err != nil {
		return err
	}
	return respondOK(c, http.StatusOK, rows)
}

// GetStats returns the owner's revenue summary for the filtered period.
func (h *PaymentHandler) GetStats(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")

	stats, err := h.reports.GetStats(c.Request().Context(), ownerID, paymentFilterFromQuery(c))
	if err != nil {
		return err
	}
	return respondOK(c, http.StatusOK, stats)
}

// RefreshPayments runs the backfill reconciliation on demand.
func (h *PaymentHandler) RefreshPayments(c echo.Context) error {
	result, err := h.backfill.Run(c.Request().Context())
	if err != nil {
		return err
	}
	return respondOK(c, http.StatusOK, result)
}

// SendManualReceipt emails an ad-hoc receipt for a payment taken outside
// the system.
func (h *PaymentHandler) SendManualReceipt(c echo.Context) error {
	ownerID := getUintFromContext(c, "userID")

	var input services.ManualReceiptInput
	if err := c.Bind(&input); err != nil {
		return badRequest("invalid request body")
	}

	result, err := h.payments.SendManualReceipt(ownerID, input)
	if err != nil {
		return err
	}
	return respondOK(c, http.StatusOK, result)
}

// GetKey exposes the gateway public key for checkout clients.
func (h *PaymentHandler) GetKey(c echo.Context) error {
	if h.razorpay == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "payment gateway not configured")
	}
	return respondOK(c, http.StatusOK, map[string]string{"key": h.razorpay.PublicKey()})
}

// pendingRegistration is a gym-owner signup held until its gateway payment
// verifies.
type pendingRegistration struct {
	Name     string  `json:"name"`
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Phone    string  `json:"phone"`
	GymName  string  `json:"gymName"`
	Address  string  `json:"address"`
	Plan     string  `json:"plan"`
	Amount   float64 `json:"amount"`
}

// CreateOrder opens a gateway order for a gym-owner subscription signup.
// The registration payload is stashed until the payment verifies; no user
// row exists before then.
func (h *PaymentHandler) CreateOrder(c echo.Context) error {
	if h.razorpay == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "payment gateway not configured")
	}

	var reg pendingRegistration
	if err := c.Bind(&reg); err != nil {
		return badRequest("invalid request body")
	}
	if reg.Email == "" || reg.Password == "" || reg.GymName == "" {
		return badRequest("email, password and gymName are required")
	}
	if reg.Amount <= 0 {
		return badRequest("amount must be greater than zero")
	}

	var existing int64
	if err := h.db.Model(&models.User{}).Where("email = ?", reg.Email).Count(&existing).Error; err != nil {
		return apperrors.NewPersistence("check existing email", err)
	}
	if existing > 0 {
		return badRequest("an account with this email already exists")
	}

	receipt := "sub_" + uuid.NewString()[:8]
	order, err := h.razorpay.CreateOrder(reg.Amount, receipt, map[string]interface{}{
		"email":    reg.Email,
		"gym_name": reg.GymName,
	})
	if err != nil {
		return err
	}
	orderID, _ := order["id"].(string)
	if orderID == "" {
		return echo.NewHTTPError(http.StatusBadGateway, "gateway returned no order id")
	}

	hash, err := HashPassword(reg.Password)
	if err != nil {
		return err
	}
	reg.Password = hash

	regJSON, err := json.Marshal(reg)
	if err != nil {
		return err
	}
	respJSON, _ := json.Marshal(order)

	session := models.PaymentSession{
		PaymentGateway:   models.PaymentGatewayRazorpay,
		OrderID:          orderID,
		Email:            reg.Email,
		Amount:           reg.Amount,
		IsActive:         true,
		RequestMetadata:  regJSON,
		ResponseMetadata: respJSON,
	}
	if err := h.db.Create(&session).Error; err != nil {
		return apperrors.NewPersistence("create payment session", err)
	}

	// Redis holds the hot copy; the session row is the durable fallback.
	if h.cache != nil {
		_ = h.cache.Set(c.Request().Context(), "pending_reg:"+orderID, reg, 30*time.Minute)
	}

	return respondOK(c, http.StatusCreated, map[string]interface{}{
		"orderId":  orderID,
		"amount":   reg.Amount,
		"currency": "INR",
		"key":      h.razorpay.PublicKey(),
	})
}

type verifyRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
}

// VerifyPayment validates the checkout signature and activates the pending
// gym-owner account with a one-period subscription.
func (h *PaymentHandler) VerifyPayment(c echo.Context) error {
	if h.razorpay == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "payment gateway not configured")
	}

	var req verifyRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}
	if req.OrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return badRequest("order id, payment id and signature are required")
	}

	if err := h.razorpay.VerifySignature(req.OrderID, req.PaymentID, req.Signature); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "payment signature verification failed")
	}

	var session models.PaymentSession
	err := h.db.Where("order_id = ? AND is_active = ?", req.OrderID, true).First(&session).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return apperrors.NewNotFound("no open session for order %s", req.OrderID)
		}
		return apperrors.NewPersistence("load payment session", err)
	}

	var reg pendingRegistration
	loaded := false
	if h.cache != nil {
		if err := h.cache.Get(c.Request().Context(), "pending_reg:"+req.OrderID, &reg); err == nil {
			loaded = true
		}
	}
	if !loaded {
		if err := json.Unmarshal(session.RequestMetadata, &reg); err != nil {
			return apperrors.NewPersistence("decode pending registration", err)
		}
	}

	callbackJSON, _ := json.Marshal(map[string]interface{}{
		"order_id":   req.OrderID,
		"payment_id": req.PaymentID,
		"email":      reg.Email,
	})

	var owner models.User
	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		owner = models.User{
			Name:     reg.Name,
			Email:    reg.Email,
			Phone:    reg.Phone,
			Password: reg.Password,
			Role:     models.RoleGymOwner,
			GymName:  reg.GymName,
			Address:  reg.Address,
		}
		if err := tx.Create(&owner).Error; err != nil {
			return err
		}

		now := time.Now().UTC()
		sub := models.Subscription{
			GymOwnerID:    owner.ID,
			Plan:          string(models.NormalizePlanType(reg.Plan)),
			Price:         reg.Amount,
			StartDate:     now,
			EndDate:       now.AddDate(0, 1, 0),
			IsActive:      true,
			PaymentStatus: models.PaymentStatusCompleted,
			TransactionID: req.PaymentID,
		}
		if err := tx.Create(&sub).Error; err != nil {
			return err
		}

		history := models.PaymentCallbackHistory{
			PaymentGateway: models.PaymentGatewayRazorpay,
			Metadata:       callbackJSON,
		}
		if err := tx.Create(&history).Error; err != nil {
			return err
		}

		ownerID := owner.ID
		return tx.Model(&session).Updates(map[string]interface{}{
			"is_active":    false,
			"gym_owner_id": ownerID,
		}).Error
	})
	if txErr != nil {
		return apperrors.NewPersistence("activate subscription", txErr)
	}

	if h.cache != nil {
		_ = h.cache.Delete(c.Request().Context(), "pending_reg:"+req.OrderID)
	}

	return respondOK(c, http.StatusOK, map[string]interface{}{
		"ownerId": owner.ID,
		"email":   owner.Email,
	})
}
