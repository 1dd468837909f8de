package tasks

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"gymflow/internal/models"
	"gymflow/internal/services"
)

// BackfillPaymentsTaskDef runs the payment-synthesis pass in the worker.
type BackfillPaymentsTaskDef struct{}

func (t *BackfillPaymentsTaskDef) TaskID() string {
	return models.TaskBackfillPayments
}

// CreateTask builds a ScheduledTask record for this task
func (t *BackfillPaymentsTaskDef) CreateTask() (*models.ScheduledTask, error) {
	return models.NewScheduledTask(t.TaskID(), map[string]string{}, time.Now(), nil, models.ScheduledTaskTypeOneTime, 1)
}

func (t *BackfillPaymentsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	result, err := services.NewBackfillService(db, nil).BackfillPayments(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"processed": result.Processed,
		"created":   result.Created,
		"skipped":   result.Skipped,
	}, nil
}

// BackfillPaymentsTask is the singleton instance
var BackfillPaymentsTask = &BackfillPaymentsTaskDef{}

// BackfillSnapshotsTaskDef runs the snapshot-repair pass in the worker.
type BackfillSnapshotsTaskDef struct{}

func (t *BackfillSnapshotsTaskDef) TaskID() string {
	return models.TaskBackfillSnapshots
}

// CreateTask builds a ScheduledTask record for this task
func (t *BackfillSnapshotsTaskDef) CreateTask() (*models.ScheduledTask, error) {
	return models.NewScheduledTask(t.TaskID(), map[string]string{}, time.Now(), nil, models.ScheduledTaskTypeOneTime, 1)
}

func (t *BackfillSnapshotsTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	result, err := services.NewBackfillService(db, nil).BackfillSnapshots(ctx)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"processed": result.Processed,
		"updated":   result.Updated,
	}, nil
}

// BackfillSnapshotsTask is the singleton instance
var BackfillSnapshotsTask = &BackfillSnapshotsTaskDef{}

// ResumeCascadeTaskDef resumes a partially-failed owner cascade delete.
type ResumeCascadeTaskDef struct{}

func (t *ResumeCascadeTaskDef) TaskID() string {
	return models.TaskResumeCascade
}

func (t *ResumeCascadeTaskDef) HandleExecution(ctx context.Context, db *gorm.DB, task models.ScheduledTask) (map[string]interface{}, error) {
	jobID, ok := task.Arguments["job_id"].(string)
	if !ok || jobID == "" {
		return nil, fmt.Errorf("job_id argument is missing")
	}

	job, err := services.NewCascadeService(db).Resume(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"job_id":  job.ID,
		"status":  string(job.Status),
		"deleted": job.Deleted,
	}, nil
}

// ResumeCascadeTask is the singleton instance
var ResumeCascadeTask = &ResumeCascadeTaskDef{}
