package models

import (
	"time"

	"gorm.io/gorm"
)

// MemberAgreement is the onboarding audit row, created once when a member
// signs up. It carries the same point-in-time snapshot pattern as Payment
// and is never edited afterwards.
type MemberAgreement struct {
	ID        uint           `gorm:"primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	MemberID   uint `gorm:"index" json:"member_id"`
	GymOwnerID uint `gorm:"index" json:"gym_owner_id"`

	MemberSnapshot MemberSnapshot `gorm:"serializer:json" json:"member_snapshot"`
	GymSnapshot    GymSnapshot    `gorm:"serializer:json" json:"gym_snapshot"`

	Terms    string    `gorm:"type:text" json:"terms"`
	SignedAt time.Time `json:"signed_at"`
}
