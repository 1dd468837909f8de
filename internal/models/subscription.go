package models

import (
	"time"

	"gorm.io/gorm"
)

// Subscription is a gym owner's platform subscription, activated through the
// payment gateway when the owner account is created or renewed.
type Subscription struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	GymOwnerID    uint      `gorm:"index" json:"gym_owner_id"`
	Plan          string    `gorm:"type:varchar(100)" json:"plan"`
	Price         float64   `gorm:"type:decimal(15,2)" json:"price"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	PaymentStatus string    `gorm:"type:varchar(20)" json:"payment_status"`
	TransactionID string    `gorm:"type:varchar(100)" json:"transaction_id"`
}
