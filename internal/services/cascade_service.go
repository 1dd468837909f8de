package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"gymflow/internal/apperrors"
	"gymflow/internal/models"
)

// cascadeSteps is the fixed children-first deletion order. The owner row
// goes last so a partial failure never strands orphaned child rows behind a
// deleted tenant.
var cascadeSteps = []string{
	"trainers",
	"members",
	"agreements",
	"plans",
	"subscriptions",
	"sessions",
	"payments",
	"owner",
}

// CascadeService removes a gym owner and everything scoped to them. It
// first tries a single transaction; if that fails it falls back to a
// persisted step-by-step job that the worker can resume.
type CascadeService struct {
	db *gorm.DB
}

func NewCascadeService(db *gorm.DB) *CascadeService {
	return &CascadeService{db: db}
}

// CascadeResult reports how the cascade ran and what it removed.
type CascadeResult struct {
	Transactional bool               `json:"transactional"`
	Deleted       map[string]int64   `json:"deleted"`
	Job           *models.CascadeJob `json:"job,omitempty"`
}

// DeleteGymOwner deletes the owner and all dependent rows.
func (s *CascadeService) DeleteGymOwner(ctx context.Context, ownerID uint) (*CascadeResult, error) {
	var owner models.User
	err := s.db.WithContext(ctx).
		Where("id = ? AND role = ?", ownerID, models.RoleGymOwner).
		First(&owner).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("gym owner %d not found", ownerID)
		}
		return nil, apperrors.NewPersistence("load gym owner", err)
	}

	// Tier 1: everything in one transaction.
	deleted := map[string]int64{}
	txErr := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, step := range cascadeSteps {
			n, err := runCascadeStep(tx, ownerID, step)
			if err != nil {
				return err
			}
			deleted[step] = n
		}
		return nil
	})
	if txErr == nil {
		return &CascadeResult{Transactional: true, Deleted: deleted}, nil
	}
	log.Printf("cascade: transactional delete of owner %d failed, falling back to job: %v", ownerID, txErr)

	// Tier 2: persisted job, one step at a time.
	job := &models.CascadeJob{
		ID:         uuid.NewString(),
		GymOwnerID: ownerID,
		Steps:      cascadeSteps,
		NextStep:   0,
		Deleted:    map[string]int64{},
		Status:     models.CascadeJobStatusActive,
	}
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return nil, apperrors.NewPersistence("create cascade job", err)
	}

	if err := s.runJob(ctx, job); err != nil {
		// The job row carries the failure; a resume task picks it up.
		s.queueResume(job.ID)
		return &CascadeResult{Deleted: job.Deleted, Job: job}, nil
	}
	return &CascadeResult{Deleted: job.Deleted, Job: job}, nil
}

// Resume continues a previously failed cascade job from its next step.
func (s *CascadeService) Resume(ctx context.Context, jobID string) (*models.CascadeJob, error) {
	var job models.CascadeJob
	if err := s.db.WithContext(ctx).First(&job, "id = ?", jobID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, apperrors.NewNotFound("cascade job %s not found", jobID)
		}
		return nil, apperrors.NewPersistence("load cascade job", err)
	}
	if job.Status == models.CascadeJobStatusDone {
		return &job, nil
	}

	job.Status = models.CascadeJobStatusActive
	if err := s.runJob(ctx, &job); err != nil {
		return &job, err
	}
	return &job, nil
}

func (s *CascadeService) runJob(ctx context.Context, job *models.CascadeJob) error {
	for job.NextStep < len(job.Steps) {
		step := job.Steps[job.NextStep]
		n, err := runCascadeStep(s.db.WithContext(ctx), job.GymOwnerID, step)
		if err != nil {
			job.Status = models.CascadeJobStatusFailure
			job.LastError = err.Error()
			if saveErr := s.db.WithContext(ctx).Save(job).Error; saveErr != nil {
				log.Printf("cascade: failed to persist job %s failure: %v", job.ID, saveErr)
			}
			return apperrors.NewPersistence("cascade step "+step, err)
		}
		if job.Deleted == nil {
			job.Deleted = map[string]int64{}
		}
		job.Deleted[step] += n
		job.NextStep++
		job.LastError = ""
		if err := s.db.WithContext(ctx).Save(job).Error; err != nil {
			return apperrors.NewPersistence("persist cascade progress", err)
		}
	}

	job.Status = models.CascadeJobStatusDone
	if err := s.db.WithContext(ctx).Save(job).Error; err != nil {
		return apperrors.NewPersistence("finish cascade job", err)
	}
	return nil
}

func (s *CascadeService) queueResume(jobID string) {
	task, err := models.NewScheduledTask(
		models.TaskResumeCascade,
		map[string]string{"job_id": jobID},
		time.Now().Add(5*time.Minute), nil, models.ScheduledTaskTypeOneTime, 5)
	if err != nil {
		log.Printf("cascade: failed to build resume task for job %s: %v", jobID, err)
		return
	}
	if err := s.db.Create(task).Error; err != nil {
		log.Printf("cascade: failed to queue resume for job %s: %v", jobID, err)
	}
}

func runCascadeStep(db *gorm.DB, ownerID uint, step string) (int64, error) {
	ownedUsers := func(role models.Role) *gorm.DB {
		return db.Where("role = ?", role).
			Where("created_by = ? OR gym_id = ?", ownerID, ownerID)
	}

	var res *gorm.DB
	switch step {
	case "trainers":
		res = ownedUsers(models.RoleTrainer).Delete(&models.User{})
	case "members":
		res = ownedUsers(models.RoleMember).Delete(&models.User{})
	case "agreements":
		res = db.Where("gym_owner_id = ?", ownerID).Delete(&models.MemberAgreement{})
	case "plans":
		res = db.Where("gym_owner_id = ?", ownerID).Delete(&models.GymOwnerPlan{})
	case "subscriptions":
		res = db.Where("gym_owner_id = ?", ownerID).Delete(&models.Subscription{})
	case "sessions":
		res = db.Where("gym_owner_id = ?", ownerID).Delete(&models.PaymentSession{})
	case "payments":
		res = db.Where("gym_owner_id = ?", ownerID).Delete(&models.Payment{})
	case "owner":
		res = db.Where("id = ?", ownerID).Delete(&models.User{})
	default:
		return 0, apperrors.NewValidation("unknown cascade step %q", step)
	}
	return res.RowsAffected, res.Error
}
