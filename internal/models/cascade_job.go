package models

import (
	"time"
)

// CascadeJobStatus represents the state of a cascade-delete job.
type CascadeJobStatus string

const (
	CascadeJobStatusActive  CascadeJobStatus = "active"
	CascadeJobStatusDone    CascadeJobStatus = "done"
	CascadeJobStatusFailure CascadeJobStatus = "failure"
)

// CascadeJob records the progress of a non-transactional gym-owner cascade
// delete. Steps run children-first in a fixed order; NextStep marks where a
// partially-failed job resumes, so a crash never leaves the cascade silently
// half-done.
type CascadeJob struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	GymOwnerID uint             `gorm:"index" json:"gym_owner_id"`
	Steps      []string         `gorm:"serializer:json" json:"steps"`
	NextStep   int              `json:"next_step"`
	Deleted    map[string]int64 `gorm:"serializer:json" json:"deleted"`
	Status     CascadeJobStatus `gorm:"type:varchar(20);index" json:"status"`
	LastError  string           `gorm:"type:varchar(500)" json:"last_error,omitempty"`
}
