package tasks

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gymflow/internal/models"
)

func newTaskTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Payment{},
		&models.ScheduledTask{},
		&models.ScheduledTaskHistory{},
		&models.CascadeJob{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func TestReconcileMembershipStatus(t *testing.T) {
	db := newTaskTestDB(t)

	ownerID := uint(1)
	past := time.Now().AddDate(0, -1, 0)
	future := time.Now().AddDate(0, 1, 0)

	drifted := models.User{
		Name: "Drifted", Email: "drifted@example.com", Role: models.RoleMember,
		CreatedBy: &ownerID, MembershipEndDate: &past, MembershipStatus: "Active",
	}
	current := models.User{
		Name: "Current", Email: "current@example.com", Role: models.RoleMember,
		CreatedBy: &ownerID, MembershipEndDate: &future, MembershipStatus: "Active",
	}
	for _, u := range []*models.User{&drifted, &current} {
		if err := db.Create(u).Error; err != nil {
			t.Fatal(err)
		}
	}

	task := models.ScheduledTask{TaskName: models.TaskReconcileStatuses}
	result, err := ReconcileMembershipStatusTask.HandleExecution(context.Background(), db, task)
	if err != nil {
		t.Fatalf("HandleExecution() error = %v", err)
	}
	if result["updated"] != 1 {
		t.Errorf("updated = %v, want 1", result["updated"])
	}

	var stored models.User
	if err := db.First(&stored, drifted.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.MembershipStatus != models.MembershipExpired {
		t.Errorf("drifted status = %q, want Expired", stored.MembershipStatus)
	}

	stored = models.User{}
	if err := db.First(&stored, current.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.MembershipStatus != "Active" {
		t.Errorf("current status = %q, want untouched Active", stored.MembershipStatus)
	}
}

func TestReconcileTaskRecurring(t *testing.T) {
	task, err := ReconcileMembershipStatusTask.CreateRecurringTask()
	if err != nil {
		t.Fatalf("CreateRecurringTask() error = %v", err)
	}
	if task.TaskType != models.ScheduledTaskTypeRecurring {
		t.Errorf("TaskType = %q, want recurring", task.TaskType)
	}
	if task.RecurringInterval == nil || *task.RecurringInterval != "FREQ=DAILY" {
		t.Errorf("RecurringInterval = %v, want FREQ=DAILY", task.RecurringInterval)
	}

	next := task.NextDue()
	if !next.After(task.Due) {
		t.Errorf("NextDue() = %v, want after %v", next, task.Due)
	}
}
