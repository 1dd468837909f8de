package models

import (
	"time"

	"gorm.io/gorm"
)

// Role represents the role of a user
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleGymOwner   Role = "gym-owner"
	RoleTrainer    Role = "trainer"
	RoleMember     Role = "member"
)

// User represents every actor in the system: super-admins, gym owners,
// trainers and members share one table, discriminated by Role.
// CreatedBy is the tenancy boundary: members and trainers belong to the
// gym owner that created them, and every owner-facing query filters on it.
type User struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	Name     string `gorm:"type:varchar(255)" json:"name"`
	Email    string `gorm:"type:varchar(255);uniqueIndex" json:"email"`
	Phone    string `gorm:"type:varchar(50)" json:"phone"`
	Password string `gorm:"type:varchar(255)" json:"-"`
	Role     Role   `gorm:"type:varchar(20);default:'member';index" json:"role"`

	// Gym owner fields
	GymName string `gorm:"type:varchar(255)" json:"gym_name,omitempty"`
	Address string `gorm:"type:varchar(500)" json:"address,omitempty"`
	UpiID   string `gorm:"type:varchar(100)" json:"upi_id,omitempty"`

	// Trainer fields
	MonthlyFee float64 `gorm:"type:decimal(15,2)" json:"monthly_fee,omitempty"`

	// Tenancy: the gym owner that created this member/trainer.
	// GymID is a legacy alias still present on old rows; reads fall back to it.
	CreatedBy *uint `gorm:"index" json:"created_by,omitempty"`
	GymID     *uint `json:"gym_id,omitempty"`

	// Member fields. PlanID is the plan reference; PlanType carries the
	// plan name denormalized for display only and is refreshed on payment.
	AssignedTrainerID   *uint      `gorm:"index" json:"assigned_trainer_id,omitempty"`
	PlanID              *uint      `gorm:"index" json:"plan_id,omitempty"`
	PlanType            string     `gorm:"type:varchar(50)" json:"plan_type,omitempty"`
	MembershipType      string     `gorm:"type:varchar(50)" json:"membership_type,omitempty"`
	MembershipStartDate *time.Time `json:"membership_start_date,omitempty"`
	MembershipEndDate   *time.Time `json:"membership_end_date,omitempty"`
	MembershipDuration  string     `gorm:"type:varchar(10)" json:"membership_duration,omitempty"`
	MembershipStatus    string     `gorm:"type:varchar(20)" json:"membership_status,omitempty"`
	PaidAmount          float64    `gorm:"type:decimal(15,2)" json:"paid_amount"`
	PaymentMode         string     `gorm:"type:varchar(50)" json:"payment_mode,omitempty"`

	// Relationships
	AssignedTrainer *User `gorm:"foreignKey:AssignedTrainerID" json:"assigned_trainer,omitempty"`
}

// OwnerID resolves the owning gym owner of a member/trainer row,
// preferring CreatedBy over the legacy GymID field.
func (u User) OwnerID() (uint, bool) {
	if u.CreatedBy != nil {
		return *u.CreatedBy, true
	}
	if u.GymID != nil {
		return *u.GymID, true
	}
	return 0, false
}
