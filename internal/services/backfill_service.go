package services

import (
	"context"
	"log"
	"strconv"
	"time"

	"gorm.io/gorm"

	"gymflow/internal/apperrors"
	"gymflow/internal/models"
)

// BackfillNotes marks payments synthesized from legacy member rows, so they
// can be told apart from operator-recorded ones.
const BackfillNotes = "Backfilled from users.paidAmount"

// BackfillService reconciles legacy member data into the payment ledger.
// Both passes are idempotent: pass A skips members that already have any
// payment, pass B only fills snapshot fields that are absent.
type BackfillService struct {
	db    *gorm.DB
	cache *RedisCache // optional; nil disables the cross-process run lock
}

func NewBackfillService(db *gorm.DB, cache *RedisCache) *BackfillService {
	return &BackfillService{db: db, cache: cache}
}

// BackfillResult summarizes one reconciliation run.
type BackfillResult struct {
	Processed int `json:"processed"`
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Skipped   int `json:"skipped"`
}

// Run executes both passes in order: synthesize missing payments, then
// repair absent snapshot fields. When a cache is attached a short lock
// keeps concurrent runs from interleaving.
func (s *BackfillService) Run(ctx context.Context) (BackfillResult, error) {
	if s.cache != nil {
		acquired, err := s.cache.SetNX(ctx, "backfill:run-lock", time.Now().Unix(), 10*time.Minute)
		if err == nil && !acquired {
			return BackfillResult{}, apperrors.NewValidation("a backfill run is already in progress")
		}
		if err == nil {
			defer func() { _ = s.cache.Delete(ctx, "backfill:run-lock") }()
		}
	}

	result, err := s.BackfillPayments(ctx)
	if err != nil {
		return result, err
	}

	snap, err := s.BackfillSnapshots(ctx)
	result.Updated += snap.Updated
	return result, err
}

// BackfillPayments synthesizes one payment per legacy member whose paid
// total never made it into the ledger. Members with any existing payment
// are left alone, so re-runs never duplicate.
func (s *BackfillService) BackfillPayments(ctx context.Context) (BackfillResult, error) {
	var result BackfillResult

	var members []models.User
	err := s.db.WithContext(ctx).
		Where("role = ? AND paid_amount > 0", models.RoleMember).
		FindInBatches(&members, 100, func(tx *gorm.DB, batch int) error {
			for _, member := range members {
				result.Processed++
				created, err := s.backfillMember(ctx, member)
				if err != nil {
					log.Printf("backfill: member %d: %v", member.ID, err)
					result.Skipped++
					continue
				}
				if created {
					result.Created++
				} else {
					result.Skipped++
				}
			}
			return nil
		}).Error
	if err != nil {
		return result, apperrors.NewPersistence("backfill payments", err)
	}
	return result, nil
}

func (s *BackfillService) backfillMember(ctx context.Context, member models.User) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("member_id = ?", member.ID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	ownerID, ok := member.OwnerID()
	if !ok {
		log.Printf("backfill: member %d has no owning gym, skipping", member.ID)
		return false, nil
	}

	gymSnapshot := models.GymSnapshot{ID: ownerID}
	var owner models.User
	if err := s.db.WithContext(ctx).First(&owner, ownerID).Error; err == nil {
		gymSnapshot.Name = owner.GymName
		gymSnapshot.Email = owner.Email
	}

	duration := 1
	if n, err := strconv.Atoi(member.MembershipDuration); err == nil && n > 1 {
		duration = n
	}

	paymentDate := time.Now().UTC()
	if member.MembershipStartDate != nil {
		paymentDate = *member.MembershipStartDate
	}

	period := models.MembershipPeriod{StartDate: paymentDate}
	if member.MembershipEndDate != nil {
		period.EndDate = *member.MembershipEndDate
	} else {
		period.EndDate = paymentDate.AddDate(0, duration, 0)
	}

	memberID := member.ID
	payment := models.Payment{
		MemberID:   &memberID,
		GymOwnerID: ownerID,
		MemberSnapshot: models.MemberSnapshot{
			ID:    member.ID,
			Name:  member.Name,
			Email: member.Email,
			Phone: member.Phone,
		},
		GymSnapshot: gymSnapshot,
		// The legacy total is all we know; treat it as pure plan cost.
		Amount:           member.PaidAmount,
		PlanCost:         member.PaidAmount,
		TrainerCost:      0,
		Adjustment:       0,
		PlanType:         legacyPlanType(member),
		Duration:         duration,
		PaymentMethod:    models.PaymentMethodFromMode(member.PaymentMode),
		PaymentStatus:    models.PaymentStatusCompleted,
		Notes:            BackfillNotes,
		PaymentDate:      paymentDate,
		MembershipPeriod: period,
	}

	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return false, err
	}
	return true, nil
}

// legacyPlanType resolves the plan for a legacy member row, where the plan
// sometimes lives in the older membershipType column instead.
func legacyPlanType(member models.User) models.PlanType {
	raw := member.PlanType
	if raw == "" {
		raw = member.MembershipType
	}
	return models.NormalizePlanType(raw)
}

// BackfillSnapshots repairs payments whose snapshots were stored empty.
// Existing snapshot values are never overwritten; live member rows feed the
// member snapshot and "Unknown"/"Unknown Gym" fill what nothing else can.
func (s *BackfillService) BackfillSnapshots(ctx context.Context) (BackfillResult, error) {
	var result BackfillResult

	var payments []models.Payment
	err := s.db.WithContext(ctx).
		FindInBatches(&payments, 100, func(tx *gorm.DB, batch int) error {
			for i := range payments {
				p := &payments[i]
				result.Processed++
				changed, err := s.fillSnapshots(ctx, p)
				if err != nil {
					log.Printf("backfill: payment %d snapshots: %v", p.ID, err)
					continue
				}
				if changed {
					result.Updated++
				}
			}
			return nil
		}).Error
	if err != nil {
		return result, apperrors.NewPersistence("backfill snapshots", err)
	}
	return result, nil
}

func (s *BackfillService) fillSnapshots(ctx context.Context, p *models.Payment) (bool, error) {
	changed := false

	if p.MemberSnapshot.Name == "" || p.MemberSnapshot.Email == "" || p.MemberSnapshot.Phone == "" {
		var member models.User
		found := false
		if p.MemberID != nil {
			if err := s.db.WithContext(ctx).First(&member, *p.MemberID).Error; err == nil {
				found = true
			}
		}
		if p.MemberSnapshot.ID == 0 && p.MemberID != nil {
			p.MemberSnapshot.ID = *p.MemberID
			changed = true
		}
		if p.MemberSnapshot.Name == "" {
			if found && member.Name != "" {
				p.MemberSnapshot.Name = member.Name
			} else {
				p.MemberSnapshot.Name = "Unknown"
			}
			changed = true
		}
		if p.MemberSnapshot.Email == "" && found && member.Email != "" {
			p.MemberSnapshot.Email = member.Email
			changed = true
		}
		if p.MemberSnapshot.Phone == "" && found && member.Phone != "" {
			p.MemberSnapshot.Phone = member.Phone
			changed = true
		}
	}

	if p.GymSnapshot.Name == "" || p.GymSnapshot.Email == "" {
		var owner models.User
		found := false
		if err := s.db.WithContext(ctx).First(&owner, p.GymOwnerID).Error; err == nil {
			found = true
		}
		if p.GymSnapshot.ID == 0 {
			p.GymSnapshot.ID = p.GymOwnerID
			changed = true
		}
		if p.GymSnapshot.Name == "" {
			if found && owner.GymName != "" {
				p.GymSnapshot.Name = owner.GymName
			} else {
				p.GymSnapshot.Name = "Unknown Gym"
			}
			changed = true
		}
		if p.GymSnapshot.Email == "" && found && owner.Email != "" {
			p.GymSnapshot.Email = owner.Email
			changed = true
		}
	}

	if !changed {
		return false, nil
	}

	// Struct-based update so the json serializer applies to both columns.
	err := s.db.WithContext(ctx).Model(p).
		Select("member_snapshot", "gym_snapshot").
		Updates(models.Payment{MemberSnapshot: p.MemberSnapshot, GymSnapshot: p.GymSnapshot}).Error
	if err != nil {
		return false, err
	}
	return true, nil
}
