package services

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"gymflow/internal/models"
)

// newTestDB opens an isolated in-memory database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	// A single connection keeps every session on the same in-memory db.
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get database instance: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&models.User{},
		&models.Payment{},
		&models.GymOwnerPlan{},
		&models.MemberAgreement{},
		&models.Subscription{},
		&models.PaymentSession{},
		&models.PaymentCallbackHistory{},
		&models.ScheduledTask{},
		&models.ScheduledTaskHistory{},
		&models.CascadeJob{},
	)
	if err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return db
}

func createTestOwner(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	owner := &models.User{
		Name:    "Asha Verma",
		Email:   "asha@ironworks.example",
		Role:    models.RoleGymOwner,
		GymName: "Ironworks Fitness",
	}
	if err := db.Create(owner).Error; err != nil {
		t.Fatalf("failed to create owner: %v", err)
	}
	return owner
}

func createTestMember(t *testing.T, db *gorm.DB, ownerID uint, mutate func(*models.User)) *models.User {
	t.Helper()
	member := &models.User{
		Name:      "Ravi Kumar",
		Email:     "ravi@example.com",
		Phone:     "9876543210",
		Role:      models.RoleMember,
		CreatedBy: &ownerID,
	}
	if mutate != nil {
		mutate(member)
	}
	if err := db.Create(member).Error; err != nil {
		t.Fatalf("failed to create member: %v", err)
	}
	return member
}

// recordingMailer captures receipts instead of sending them.
type recordingMailer struct {
	sent []ReceiptData
}

func (m *recordingMailer) SendReceipt(data ReceiptData) ReceiptResult {
	m.sent = append(m.sent, data)
	return ReceiptResult{Sent: true}
}
