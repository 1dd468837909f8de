package models

import (
	"encoding/json"
	"time"

	"gorm.io/gorm"
)

// PaymentSession tracks an open gateway order for the subscription-activation
// flow, so a pending order can be audited or resumed after a callback.
type PaymentSession struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	PaymentGateway   PaymentGateway  `gorm:"type:varchar(50);not null" json:"payment_gateway"`
	OrderID          string          `gorm:"type:varchar(100);index" json:"order_id"`
	Email            string          `gorm:"type:varchar(255)" json:"email"`
	Amount           float64         `gorm:"type:decimal(15,2)" json:"amount"`
	GymOwnerID       *uint           `gorm:"index" json:"gym_owner_id,omitempty"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`
	RequestMetadata  json.RawMessage `gorm:"type:jsonb" json:"request_metadata"`
	ResponseMetadata json.RawMessage `gorm:"type:jsonb" json:"response_metadata"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"deleted_at,omitempty"`
}
