package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// PlanType is the enumerated plan classification recorded on payments.
type PlanType string

const (
	PlanBasic    PlanType = "Basic"
	PlanStandard PlanType = "Standard"
	PlanPremium  PlanType = "Premium"
)

// NormalizePlanType maps an arbitrary stored value onto the enum,
// defaulting to Basic for anything unrecognized.
func NormalizePlanType(raw string) PlanType {
	switch PlanType(strings.TrimSpace(raw)) {
	case PlanBasic, PlanStandard, PlanPremium:
		return PlanType(strings.TrimSpace(raw))
	}
	return PlanBasic
}

// PaymentMethod partitions payments into the two method groups reports use.
type PaymentMethod string

const (
	PaymentMethodCash   PaymentMethod = "Cash"
	PaymentMethodOnline PaymentMethod = "Online"
)

// NormalizePaymentMethod treats an explicit "Cash" as cash and everything
// else as online.
func NormalizePaymentMethod(raw string) PaymentMethod {
	if raw == string(PaymentMethodCash) {
		return PaymentMethodCash
	}
	return PaymentMethodOnline
}

// PaymentMethodFromMode resolves legacy free-text payment modes
// ("cash payment", "CASH", "upi", ...) by substring match.
func PaymentMethodFromMode(mode string) PaymentMethod {
	if strings.Contains(strings.ToLower(mode), "cash") {
		return PaymentMethodCash
	}
	return PaymentMethodOnline
}

// PaymentStatusCompleted is the only status the member-payment core records;
// cash/manual flows carry no gateway confirmation states.
const PaymentStatusCompleted = "Completed"

// MemberSnapshot is a point-in-time copy of member identity captured when a
// payment is written. It is never updated to reflect later member edits; the
// snapshot backfill may only fill sub-fields that were left empty.
type MemberSnapshot struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// GymSnapshot is the gym-owner counterpart of MemberSnapshot.
type GymSnapshot struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// MembershipPeriod is the window a specific payment covers. It is independent
// of the member's current window, which later payments may have extended.
type MembershipPeriod struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// Payment is the durable revenue ledger. Financial and snapshot fields are
// immutable once created; the member projection (User) is only a convenience
// view derived from these rows.
type Payment struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	MemberID   *uint `gorm:"index" json:"member_id"`
	GymOwnerID uint  `gorm:"index" json:"gym_owner_id"`

	MemberSnapshot MemberSnapshot `gorm:"serializer:json" json:"member_snapshot"`
	GymSnapshot    GymSnapshot    `gorm:"serializer:json" json:"gym_snapshot"`

	// Amount is what was actually charged and stays authoritative.
	// PlanCost/TrainerCost are the computed decomposition for reporting and
	// Adjustment carries the operator-entered delta (discounts, rounding).
	Amount      float64 `gorm:"type:decimal(15,2)" json:"amount"`
	PlanCost    float64 `gorm:"type:decimal(15,2)" json:"plan_cost"`
	TrainerCost float64 `gorm:"type:decimal(15,2)" json:"trainer_cost"`
	Adjustment  float64 `gorm:"type:decimal(15,2)" json:"adjustment"`

	PlanType      PlanType      `gorm:"type:varchar(50)" json:"plan_type"`
	Duration      int           `json:"duration"`
	PaymentMethod PaymentMethod `gorm:"type:varchar(20)" json:"payment_method"`
	PaymentStatus string        `gorm:"type:varchar(20);default:'Completed'" json:"payment_status"`

	TransactionID *string   `gorm:"type:varchar(100)" json:"transaction_id"`
	Notes         string    `gorm:"type:varchar(1000)" json:"notes,omitempty"`
	PaymentDate   time.Time `gorm:"index" json:"payment_date"`

	MembershipPeriod MembershipPeriod `gorm:"serializer:json" json:"membership_period"`

	// Relationships
	Member *User `gorm:"foreignKey:MemberID" json:"member,omitempty"`
}
