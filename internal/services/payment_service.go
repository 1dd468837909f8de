package services

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gymflow/internal/apperrors"
	"gymflow/internal/models"
)

// PaymentService records member payments and owns the receipt pipeline.
type PaymentService struct {
	db     *gorm.DB
	mailer ReceiptSender
}

func NewPaymentService(db *gorm.DB, mailer ReceiptSender) *PaymentService {
	return &PaymentService{db: db, mailer: mailer}
}

// RecordPaymentInput is the request to record a member's payment. The
// membership window is operator-supplied, so backdated or hand-picked
// periods record exactly as entered.
type RecordPaymentInput struct {
	MemberID            uint       `json:"memberId"`
	Amount              float64    `json:"amount"`
	PaymentMethod       string     `json:"paymentMethod"`
	Duration            int        `json:"duration"`
	MembershipStartDate *time.Time `json:"membershipStartDate"`
	MembershipEndDate   *time.Time `json:"membershipEndDate"`
	TransactionID       *string    `json:"transactionId,omitempty"`
	Notes               string     `json:"notes,omitempty"`
}

// RecordPaymentResult carries the created payment and whether a receipt
// email was queued for it.
type RecordPaymentResult struct {
	Payment       *models.Payment
	ReceiptQueued bool
}

// RecordPayment validates and persists a member payment, then best-effort
// syncs the member's membership window and queues a receipt email. The
// payment row is the source of truth; the member sync and the receipt never
// fail the recording.
func (s *PaymentService) RecordPayment(ownerID uint, input RecordPaymentInput) (*RecordPaymentResult, error) {
	if input.MemberID == 0 {
		return nil, apperrors.NewValidation("memberId is required")
	}
	if input.Amount <= 0 {
		return nil, apperrors.NewValidation("amount must be greater than zero")
	}
	if input.MembershipStartDate == nil || input.MembershipEndDate == nil {
		return nil, apperrors.NewValidation("membershipStartDate and membershipEndDate are required")
	}
	if !input.MembershipEndDate.After(*input.MembershipStartDate) {
		return nil, apperrors.NewValidation("membershipEndDate must be after membershipStartDate")
	}
	if input.Duration < 1 {
		input.Duration = 1
	}

	var member models.User
	err := s.db.
		Where("id = ? AND role = ?", input.MemberID, models.RoleMember).
		Where("created_by = ? OR gym_id = ?", ownerID, ownerID).
		First(&member).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("member %d not found", input.MemberID)
		}
		return nil, apperrors.NewPersistence("load member", err)
	}

	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("gym owner %d not found", ownerID)
		}
		return nil, apperrors.NewPersistence("load gym owner", err)
	}

	plan, err := s.resolvePlan(&member)
	if err != nil {
		return nil, err
	}

	trainer, err := s.resolveTrainer(&member)
	if err != nil {
		return nil, err
	}

	cost, err := ComputeCost(plan, input.Duration, trainer)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	period := models.MembershipPeriod{
		StartDate: *input.MembershipStartDate,
		EndDate:   *input.MembershipEndDate,
	}
	method := models.NormalizePaymentMethod(input.PaymentMethod)

	payment := models.Payment{
		MemberID:   &member.ID,
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
		Amount:           input.Amount,
		PlanCost:         cost.PlanCost,
		TrainerCost:      cost.TrainerCost,
		Adjustment:       input.Amount - cost.PlanCost - cost.TrainerCost,
		PlanType:         models.NormalizePlanType(plan.Name),
		Duration:         input.Duration,
		PaymentMethod:    method,
		PaymentStatus:    models.PaymentStatusCompleted,
		TransactionID:    input.TransactionID,
		Notes:            input.Notes,
		PaymentDate:      now,
		MembershipPeriod: period,
	}

	if err := s.db.Create(&payment).Error; err != nil {
		return nil, apperrors.NewPersistence("create payment", err)
	}

	s.syncMemberAfterPayment(&member, &payment, period)

	queued := s.queueReceipt(&payment)

	return &RecordPaymentResult{Payment: &payment, ReceiptQueued: queued}, nil
}

// resolvePlan loads the member's plan by id, falling back to the default
// plan when the member has none assigned.
func (s *PaymentService) resolvePlan(member *models.User) (models.GymOwnerPlan, error) {
	if member.PlanID == nil {
		return models.DefaultPlan(), nil
	}
	var plan models.GymOwnerPlan
	if err := s.db.First(&plan, *member.PlanID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return models.DefaultPlan(), nil
		}
		return models.GymOwnerPlan{}, apperrors.NewPersistence("load plan", err)
	}
	return plan, nil
}

func (s *PaymentService) resolveTrainer(member *models.User) (*models.User, error) {
	if member.AssignedTrainerID == nil {
		return nil, nil
	}
	var trainer models.User
	if err := s.db.First(&trainer, *member.AssignedTrainerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			// Stale assignment; charge plan cost only.
			return nil, nil
		}
		return nil, apperrors.NewPersistence("load trainer", err)
	}
	return &trainer, nil
}

// syncMemberAfterPayment updates the member's membership window, paid total
// and status. Failures are logged, never propagated; the recorded payment
// stands on its own.
func (s *PaymentService) syncMemberAfterPayment(member *models.User, payment *models.Payment, period models.MembershipPeriod) {
	updates := map[string]interface{}{
		"plan_type":             string(payment.PlanType),
		"membership_start_date": period.StartDate,
		"membership_end_date":   period.EndDate,
		"membership_duration":   strconv.Itoa(payment.Duration),
		"membership_status":     models.MembershipActive,
		"payment_mode":          string(payment.PaymentMethod),
		"paid_amount":           gorm.Expr("paid_amount + ?", payment.Amount),
	}
	if err := s.db.Model(&models.User{}).Where("id = ?", member.ID).Updates(updates).Error; err != nil {
		log.Printf("payment %d recorded but member %d sync failed: %v", payment.ID, member.ID, err)
	}
}

// queueReceipt enqueues a send_receipt task for the worker. Returns false
// when the receipt could not be queued; the payment is unaffected.
func (s *PaymentService) queueReceipt(payment *models.Payment) bool {
	args := ReceiptTaskArgs{ReceiptData: ReceiptDataFromPayment(payment)}

	task, err := models.NewScheduledTask(
		models.TaskSendReceipt, args, time.Now(), nil, models.ScheduledTaskTypeOneTime, 3)
	if err != nil {
		log.Printf("failed to build receipt task for payment %d: %v", payment.ID, err)
		return false
	}
	if err := s.db.Create(task).Error; err != nil {
		log.Printf("failed to queue receipt for payment %d: %v", payment.ID, err)
		return false
	}
	return true
}

// ReceiptDataFromPayment renders receipt fields from the payment's
// snapshots only.
func ReceiptDataFromPayment(payment *models.Payment) ReceiptData {
	return ReceiptData{
		PaymentID:     fmt.Sprintf("%d", payment.ID),
		MemberName:    payment.MemberSnapshot.Name,
		MemberEmail:   payment.MemberSnapshot.Email,
		GymName:       payment.GymSnapshot.Name,
		GymEmail:      payment.GymSnapshot.Email,
		Amount:        payment.Amount,
		PlanType:      string(payment.PlanType),
		Duration:      payment.Duration,
		PaymentMethod: string(payment.PaymentMethod),
		PaymentDate:   payment.PaymentDate,
		PeriodStart:   payment.MembershipPeriod.StartDate,
		PeriodEnd:     payment.MembershipPeriod.EndDate,
		Notes:         payment.Notes,
	}
}

// ManualReceiptInput describes a receipt sent outside the recorded payment
// flow, for payments collected on paper or through another system.
type ManualReceiptInput struct {
	MemberName    string  `json:"memberName"`
	MemberEmail   string  `json:"memberEmail"`
	Amount        float64 `json:"amount"`
	PlanType      string  `json:"planType"`
	Duration      int     `json:"duration"`
	PaymentMethod string  `json:"paymentMethod"`
	Notes         string  `json:"notes,omitempty"`
}

// SendManualReceipt sends an ad-hoc receipt synchronously and reports the
// delivery outcome.
func (s *PaymentService) SendManualReceipt(ownerID uint, input ManualReceiptInput) (ReceiptResult, error) {
	if input.MemberEmail == "" {
		return ReceiptResult{}, apperrors.NewValidation("memberEmail is required")
	}
	if input.Amount <= 0 {
		return ReceiptResult{}, apperrors.NewValidation("amount must be greater than zero")
	}
	if input.Duration < 1 {
		input.Duration = 1
	}

	var owner models.User
	if err := s.db.First(&owner, ownerID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return ReceiptResult{}, apperrors.NewNotFound("gym owner %d not found", ownerID)
		}
		return ReceiptResult{}, apperrors.NewPersistence("load gym owner", err)
	}

	now := time.Now().UTC()
	data := ReceiptData{
		PaymentID:     "MANUAL_" + uuid.NewString(),
		MemberName:    input.MemberName,
		MemberEmail:   input.MemberEmail,
		GymName:       owner.GymName,
		GymEmail:      owner.Email,
		Amount:        input.Amount,
		PlanType:      string(models.NormalizePlanType(input.PlanType)),
		Duration:      input.Duration,
		PaymentMethod: string(models.NormalizePaymentMethod(input.PaymentMethod)),
		PaymentDate:   now,
		PeriodStart:   now,
		PeriodEnd:     now.AddDate(0, input.Duration, 0),
		Notes:         input.Notes,
	}

	result := s.mailer.SendReceipt(data)
	s.recordManualPayment(ownerID, &owner, input, data, now)
	return result, nil
}

// recordManualPayment writes a ledger row for a manual receipt so the
// payment shows up in listings and stats. Best effort; the receipt already
// went out, so a failed write is logged, not returned.
func (s *PaymentService) recordManualPayment(ownerID uint, owner *models.User, input ManualReceiptInput, data ReceiptData, now time.Time) {
	transactionID := data.PaymentID
	payment := models.Payment{
		GymOwnerID: ownerID,
		MemberSnapshot: models.MemberSnapshot{
			Name:  input.MemberName,
			Email: input.MemberEmail,
		},
		GymSnapshot: models.GymSnapshot{
			ID:    owner.ID,
			Name:  owner.GymName,
			Email: owner.Email,
		},
		Amount:        input.Amount,
		PlanCost:      input.Amount,
		TrainerCost:   0,
		Adjustment:    0,
		PlanType:      models.NormalizePlanType(input.PlanType),
		Duration:      input.Duration,
		PaymentMethod: models.NormalizePaymentMethod(input.PaymentMethod),
		PaymentStatus: models.PaymentStatusCompleted,
		TransactionID: &transactionID,
		Notes:         input.Notes,
		PaymentDate:   now,
		MembershipPeriod: models.MembershipPeriod{
			StartDate: data.PeriodStart,
			EndDate:   data.PeriodEnd,
		},
	}
	if err := s.db.Create(&payment).Error; err != nil {
		log.Printf("manual receipt %s sent but payment record failed: %v", data.PaymentID, err)
	}
}
