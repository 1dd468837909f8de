package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"gymflow/internal/apperrors"
	"gymflow/internal/models"
)

func TestDeleteGymOwnerCascades(t *testing.T) {
	db := newTestDB(t)
	svc := NewCascadeService(db)
	owner := createTestOwner(t, db)

	trainer := &models.User{Name: "T", Email: "t@example.com", Role: models.RoleTrainer, CreatedBy: &owner.ID, MonthlyFee: 200}
	if err := db.Create(trainer).Error; err != nil {
		t.Fatal(err)
	}
	member := createTestMember(t, db, owner.ID, nil)
	memberID := member.ID

	seed := []interface{}{
		&models.GymOwnerPlan{GymOwnerID: owner.ID, Name: "Basic", Price: 500},
		&models.MemberAgreement{MemberID: member.ID, GymOwnerID: owner.ID, Terms: "standard"},
		&models.Subscription{GymOwnerID: owner.ID, Plan: "Basic", Price: 500},
		&models.Payment{MemberID: &memberID, GymOwnerID: owner.ID, Amount: 500},
	}
	for _, row := range seed {
		if err := db.Create(row).Error; err != nil {
			t.Fatal(err)
		}
	}

	// A second tenant must survive untouched.
	other := &models.User{Name: "Other", Email: "other@example.com", Role: models.RoleGymOwner}
	if err := db.Create(other).Error; err != nil {
		t.Fatal(err)
	}
	otherMember := createTestMember(t, db, other.ID, func(m *models.User) {
		m.Email = "othermember@example.com"
	})

	result, err := svc.DeleteGymOwner(context.Background(), owner.ID)
	if err != nil {
		t.Fatalf("DeleteGymOwner() error = %v", err)
	}
	if !result.Transactional {
		t.Error("expected the transactional tier to succeed")
	}
	if result.Deleted["members"] != 1 || result.Deleted["trainers"] != 1 || result.Deleted["payments"] != 1 {
		t.Errorf("deleted counts = %+v", result.Deleted)
	}

	var count int64
	db.Model(&models.User{}).Where("id = ?", owner.ID).Count(&count)
	if count != 0 {
		t.Error("owner row still present")
	}
	db.Model(&models.Payment{}).Where("gym_owner_id = ?", owner.ID).Count(&count)
	if count != 0 {
		t.Error("payments still present")
	}
	db.Model(&models.User{}).Where("id = ?", otherMember.ID).Count(&count)
	if count != 1 {
		t.Error("other tenant's member was deleted")
	}
}

func TestDeleteGymOwnerNotFound(t *testing.T) {
	db := newTestDB(t)
	svc := NewCascadeService(db)

	_, err := svc.DeleteGymOwner(context.Background(), 123)
	var nfErr *apperrors.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Errorf("error = %v, want NotFoundError", err)
	}

	// A member id is not a gym owner.
	owner := createTestOwner(t, db)
	member := createTestMember(t, db, owner.ID, nil)
	_, err = svc.DeleteGymOwner(context.Background(), member.ID)
	if !errors.As(err, &nfErr) {
		t.Errorf("member id: error = %v, want NotFoundError", err)
	}
}

func TestResumeCascadeJob(t *testing.T) {
	db := newTestDB(t)
	svc := NewCascadeService(db)
	owner := createTestOwner(t, db)
	createTestMember(t, db, owner.ID, nil)

	// Simulate a job that already cleared trainers and then stopped.
	job := &models.CascadeJob{
		ID:         uuid.NewString(),
		GymOwnerID: owner.ID,
		Steps:      []string{"trainers", "members", "agreements", "plans", "subscriptions", "sessions", "payments", "owner"},
		NextStep:   1,
		Deleted:    map[string]int64{"trainers": 0},
		Status:     models.CascadeJobStatusFailure,
		LastError:  "connection reset",
	}
	if err := db.Create(job).Error; err != nil {
		t.Fatal(err)
	}

	resumed, err := svc.Resume(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("Resume() error = %v", err)
	}
	if resumed.Status != models.CascadeJobStatusDone {
		t.Errorf("status = %q, want done", resumed.Status)
	}
	if resumed.Deleted["members"] != 1 {
		t.Errorf("deleted members = %d, want 1", resumed.Deleted["members"])
	}
	if resumed.LastError != "" {
		t.Errorf("LastError = %q, want cleared", resumed.LastError)
	}

	var count int64
	db.Model(&models.User{}).Where("id = ?", owner.ID).Count(&count)
	if count != 0 {
		t.Error("owner row still present after resume")
	}

	// Resuming a finished job is a no-op.
	again, err := svc.Resume(context.Background(), job.ID)
	if err != nil {
		t.Fatalf("second Resume() error = %v", err)
	}
	if again.Status != models.CascadeJobStatusDone {
		t.Errorf("second resume status = %q, want done", again.Status)
	}
}

func TestResumeUnknownJob(t *testing.T) {
	db := newTestDB(t)
	svc := NewCascadeService(db)

	_, err := svc.Resume(context.Background(), "no-such-job")
	var nfErr *apperrors.NotFoundError
	if !errors.As(err, &nfErr) {
		t.Errorf("error = %v, want NotFoundError", err)
	}
}
