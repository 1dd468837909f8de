package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"

	"gymflow/internal/models"
	"gymflow/internal/services"
)

// SendReceiptTaskDef delivers a queued payment receipt email.
type SendReceiptTaskDef struct{}

// TaskID returns the unique identifier for this task
func (t *SendReceiptTaskDef) TaskID() string {
	return models.TaskSendReceipt
}

// CreateTask builds a ScheduledTask record for this task
func (t *SendReceiptTaskDef) CreateTask(args services.ReceiptTaskArgs) (*models.ScheduledTask, error) {
	return models.NewScheduledTask(t.TaskID(), args, time.Now(), nil, models.ScheduledTaskTypeOneTime, 3)
}

// HandleExecution sends the receipt. Transient send failures reschedule the
// task up to MaxAttempt; a missing recipient or missing SMTP config skips
// without retrying because no retry can fix either.
func (t *SendReceiptTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	argsBytes, err := json.Marshal(task.Arguments)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal args: %w", err)
	}

	var parsedArgs services.ReceiptTaskArgs
	if err := json.Unmarshal(argsBytes, &parsedArgs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal args: %w", err)
	}

	emailService := services.NewEmailService()
	result := emailService.SendReceipt(parsedArgs.ReceiptData)

	out := map[string]interface{}{
		"sent":   result.Sent,
		"reason": result.Reason,
	}
	if result.Sent {
		return out, nil
	}

	if !strings.HasPrefix(result.Reason, "send-failed") {
		log.Printf("Receipt for payment %s skipped: %s", parsedArgs.PaymentID, result.Reason)
		return out, nil
	}

	attempt := parsedArgs.AttemptCount
	if attempt < task.MaxAttempt {
		log.Printf("Receipt for payment %s failed, rescheduling for attempt %d", parsedArgs.PaymentID, attempt+1)

		newArgs := parsedArgs
		newArgs.AttemptCount = attempt + 1
		nextRun := time.Now().Add(5 * time.Minute)

		newTask, err := models.NewScheduledTask(t.TaskID(), newArgs, nextRun, nil, models.ScheduledTaskTypeOneTime, task.MaxAttempt)
		if err == nil {
			db.Create(newTask)
		} else {
			log.Printf("Failed to create retry task: %v", err)
		}
		return out, nil
	}

	log.Printf("Max attempts (%d) reached for receipt of payment %s", task.MaxAttempt, parsedArgs.PaymentID)
	return out, fmt.Errorf("max attempts reached: %s", result.Reason)
}

// SendReceiptTask is the singleton instance of SendReceiptTaskDef
var SendReceiptTask = &SendReceiptTaskDef{}
