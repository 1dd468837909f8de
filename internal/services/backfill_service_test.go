package services

import (
	"context"
	"testing"
	"time"

	"gymflow/internal/models"
)

func TestBackfillPaymentsSynthesizes(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackfillService(db, nil)
	owner := createTestOwner(t, db)

	start := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	member := createTestMember(t, db, owner.ID, func(m *models.User) {
		m.PaidAmount = 1500
		m.PlanType = "Standard"
		m.MembershipDuration = "3"
		m.PaymentMode = "cash payment"
		m.MembershipStartDate = &start
	})

	result, err := svc.BackfillPayments(context.Background())
	if err != nil {
		t.Fatalf("BackfillPayments() error = %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("Created = %d, want 1", result.Created)
	}

	var p models.Payment
	if err := db.Where("member_id = ?", member.ID).First(&p).Error; err != nil {
		t.Fatalf("expected synthesized payment: %v", err)
	}
	if p.Amount != 1500 || p.PlanCost != 1500 || p.TrainerCost != 0 || p.Adjustment != 0 {
		t.Errorf("amounts = %v/%v/%v/%v, want 1500/1500/0/0", p.Amount, p.PlanCost, p.TrainerCost, p.Adjustment)
	}
	if p.GymOwnerID != owner.ID {
		t.Errorf("GymOwnerID = %d, want %d", p.GymOwnerID, owner.ID)
	}
	if p.PlanType != models.PlanStandard {
		t.Errorf("PlanType = %q, want Standard", p.PlanType)
	}
	if p.Duration != 3 {
		t.Errorf("Duration = %d, want 3", p.Duration)
	}
	if p.PaymentMethod != models.PaymentMethodCash {
		t.Errorf("PaymentMethod = %q, want Cash for mode with cash substring", p.PaymentMethod)
	}
	if p.Notes != BackfillNotes {
		t.Errorf("Notes = %q, want %q", p.Notes, BackfillNotes)
	}
	if !p.PaymentDate.Equal(start) {
		t.Errorf("PaymentDate = %v, want membership start %v", p.PaymentDate, start)
	}
	if p.GymSnapshot.Name != owner.GymName {
		t.Errorf("gym snapshot = %q, want %q", p.GymSnapshot.Name, owner.GymName)
	}
}

func TestBackfillPaymentsLegacyFallbacks(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackfillService(db, nil)
	owner := createTestOwner(t, db)

	// Plan known only through the older membershipType column, and no
	// membership start date on record.
	legacy := createTestMember(t, db, owner.ID, func(m *models.User) {
		m.PaidAmount = 1200
		m.MembershipType = "Premium"
	})
	// Nothing on record at all resolves to the Basic plan.
	blank := createTestMember(t, db, owner.ID, func(m *models.User) {
		m.Email = "blank@example.com"
		m.PaidAmount = 300
	})

	before := time.Now().UTC().Add(-time.Minute)
	if _, err := svc.BackfillPayments(context.Background()); err != nil {
		t.Fatalf("BackfillPayments() error = %v", err)
	}
	after := time.Now().UTC().Add(time.Minute)

	var p models.Payment
	if err := db.Where("member_id = ?", legacy.ID).First(&p).Error; err != nil {
		t.Fatal(err)
	}
	if p.PlanType != models.PlanPremium {
		t.Errorf("PlanType = %q, want Premium from membershipType", p.PlanType)
	}
	if p.PaymentDate.Before(before) || p.PaymentDate.After(after) {
		t.Errorf("PaymentDate = %v, want roughly now without a start date", p.PaymentDate)
	}

	p = models.Payment{}
	if err := db.Where("member_id = ?", blank.ID).First(&p).Error; err != nil {
		t.Fatal(err)
	}
	if p.PlanType != models.PlanBasic {
		t.Errorf("PlanType = %q, want Basic when nothing is on record", p.PlanType)
	}
}

func TestBackfillPaymentsIdempotent(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackfillService(db, nil)
	owner := createTestOwner(t, db)
	createTestMember(t, db, owner.ID, func(m *models.User) {
		m.PaidAmount = 900
	})

	for run := 0; run < 2; run++ {
		if _, err := svc.BackfillPayments(context.Background()); err != nil {
			t.Fatalf("run %d: %v", run, err)
		}
	}

	var count int64
	db.Model(&models.Payment{}).Count(&count)
	if count != 1 {
		t.Errorf("payments after two runs = %d, want 1", count)
	}
}

func TestBackfillPaymentsSkips(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackfillService(db, nil)
	owner := createTestOwner(t, db)

	// Member with an existing payment keeps it untouched.
	paid := createTestMember(t, db, owner.ID, func(m *models.User) {
		m.Email = "paid@example.com"
		m.PaidAmount = 400
	})
	paidID := paid.ID
	existing := models.Payment{MemberID: &paidID, GymOwnerID: owner.ID, Amount: 400, PaymentStatus: models.PaymentStatusCompleted}
	if err := db.Create(&existing).Error; err != nil {
		t.Fatal(err)
	}

	// Member with no owning gym cannot be attributed.
	orphan := createTestMember(t, db, owner.ID, func(m *models.User) {
		m.Email = "orphan@example.com"
		m.PaidAmount = 800
		m.CreatedBy = nil
		m.GymID = nil
	})

	// Zero paid amount is out of scope entirely.
	createTestMember(t, db, owner.ID, func(m *models.User) {
		m.Email = "zero@example.com"
	})

	result, err := svc.BackfillPayments(context.Background())
	if err != nil {
		t.Fatalf("BackfillPayments() error = %v", err)
	}
	if result.Created != 0 {
		t.Errorf("Created = %d, want 0", result.Created)
	}

	var count int64
	db.Model(&models.Payment{}).Where("member_id = ?", orphan.ID).Count(&count)
	if count != 0 {
		t.Errorf("orphan member gained a payment, want none")
	}
	db.Model(&models.Payment{}).Count(&count)
	if count != 1 {
		t.Errorf("total payments = %d, want only the pre-existing one", count)
	}
}

func TestBackfillSnapshotsFillOnlyAbsent(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackfillService(db, nil)
	owner := createTestOwner(t, db)
	member := createTestMember(t, db, owner.ID, nil)

	memberID := member.ID
	// Snapshot with a name already set but no email; gym snapshot empty.
	p := models.Payment{
		MemberID:       &memberID,
		GymOwnerID:     owner.ID,
		Amount:         500,
		MemberSnapshot: models.MemberSnapshot{ID: member.ID, Name: "Historic Name"},
	}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}

	result, err := svc.BackfillSnapshots(context.Background())
	if err != nil {
		t.Fatalf("BackfillSnapshots() error = %v", err)
	}
	if result.Updated != 1 {
		t.Fatalf("Updated = %d, want 1", result.Updated)
	}

	var stored models.Payment
	if err := db.First(&stored, p.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.MemberSnapshot.Name != "Historic Name" {
		t.Errorf("existing snapshot name overwritten: %q", stored.MemberSnapshot.Name)
	}
	if stored.MemberSnapshot.Email != member.Email {
		t.Errorf("snapshot email = %q, want filled %q", stored.MemberSnapshot.Email, member.Email)
	}
	if stored.GymSnapshot.Name != owner.GymName {
		t.Errorf("gym snapshot = %q, want %q", stored.GymSnapshot.Name, owner.GymName)
	}
}

func TestBackfillSnapshotsUnknownFallback(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackfillService(db, nil)

	// Payment pointing at rows that no longer exist.
	missingID := uint(9999)
	p := models.Payment{MemberID: &missingID, GymOwnerID: 8888, Amount: 100}
	if err := db.Create(&p).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := svc.BackfillSnapshots(context.Background()); err != nil {
		t.Fatalf("BackfillSnapshots() error = %v", err)
	}

	var stored models.Payment
	if err := db.First(&stored, p.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.MemberSnapshot.Name != "Unknown" {
		t.Errorf("member snapshot name = %q, want Unknown", stored.MemberSnapshot.Name)
	}
	if stored.GymSnapshot.Name != "Unknown Gym" {
		t.Errorf("gym snapshot name = %q, want Unknown Gym", stored.GymSnapshot.Name)
	}
}

func TestBackfillRunCombinesPasses(t *testing.T) {
	db := newTestDB(t)
	svc := NewBackfillService(db, nil)
	owner := createTestOwner(t, db)
	createTestMember(t, db, owner.ID, func(m *models.User) {
		m.PaidAmount = 600
	})

	result, err := svc.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if result.Created != 1 {
		t.Errorf("Created = %d, want 1", result.Created)
	}
}
