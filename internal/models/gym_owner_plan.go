package models

import (
	"time"

	"gorm.io/gorm"
)

// BillingPeriod is the unit a plan's price covers.
type BillingPeriod string

const (
	BillingMonthly   BillingPeriod = "monthly"
	BillingQuarterly BillingPeriod = "quarterly"
	BillingYearly    BillingPeriod = "yearly"
)

// GymOwnerPlan is a membership plan offered by a gym owner. Members reference
// plans by id; the plan name is denormalized onto the member for display only.
type GymOwnerPlan struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	GymOwnerID  uint          `gorm:"index" json:"gym_owner_id"`
	Name        string        `gorm:"type:varchar(100)" json:"name"`
	Price       float64       `gorm:"type:decimal(15,2)" json:"price"`
	Duration    BillingPeriod `gorm:"type:varchar(20);default:'monthly'" json:"duration"`
	MaxMembers  int           `json:"max_members"`
	MaxTrainers int           `json:"max_trainers"`
}

// DefaultPlan is the sentinel used when a member carries no plan reference,
// so cost resolution never depends on matching plan names.
func DefaultPlan() GymOwnerPlan {
	return GymOwnerPlan{Name: string(PlanBasic), Price: 500, Duration: BillingMonthly}
}
