package tasks

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"gymflow/internal/models"
)

// ReconcileMembershipStatusTaskDef walks all members and persists the
// derived membership status wherever the stored one has drifted. Reads
// never write status back; this task is the only writer.
type ReconcileMembershipStatusTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *ReconcileMembershipStatusTaskDef) TaskID() string {
	return models.TaskReconcileStatuses
}

// CreateRecurringTask builds the daily reconciliation task.
func (t *ReconcileMembershipStatusTaskDef) CreateRecurringTask() (*models.ScheduledTask, error) {
	interval := "FREQ=DAILY"
	return models.NewScheduledTask(t.TaskID(), map[string]string{}, time.Now(), &interval, models.ScheduledTaskTypeRecurring, 1)
}

// HandleExecution reconciles stored statuses with derived ones in batches.
func (t *ReconcileMembershipStatusTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	now := time.Now()
	processed := 0
	updated := 0

	var members []models.User
	err := db.WithContext(ctx).
		Where("role = ?", models.RoleMember).
		FindInBatches(&members, 200, func(tx *gorm.DB, batch int) error {
			for _, member := range members {
				processed++
				derived := member.DeriveMembershipStatus(now)
				if derived == member.MembershipStatus {
					continue
				}
				err := db.Model(&models.User{}).
					Where("id = ?", member.ID).
					Update("membership_status", derived).Error
				if err != nil {
					log.Printf("Failed to update status for member %d: %v", member.ID, err)
					continue
				}
				updated++
			}
			return nil
		}).Error
	if err != nil {
		return nil, err
	}

	return map[string]interface{}{
		"status":    "success",
		"processed": processed,
		"updated":   updated,
	}, nil
}

// ReconcileMembershipStatusTask is the singleton instance
var ReconcileMembershipStatusTask = &ReconcileMembershipStatusTaskDef{}
