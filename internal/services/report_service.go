package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"gymflow/internal/apperrors"
	"gymflow/internal/models"
)

// ReportService answers owner-scoped payment listing and revenue stats.
type ReportService struct {
	db    *gorm.DB
	cache *RedisCache // optional; nil disables stats caching
}

func NewReportService(db *gorm.DB, cache *RedisCache) *ReportService {
	return &ReportService{db: db, cache: cache}
}

// PaymentFilter narrows listings and stats. An explicit StartDate/EndDate
// pair bounds PaymentDate inclusively; otherwise Month/Year bound it in UTC,
// and a Month without a Year means the current year. Method is the
// case-insensitive group "cash"/"online"; "all" or empty means no method
// predicate. PlanType matches exactly.
type PaymentFilter struct {
	Month      int
	Year       int
	StartDate  *time.Time
	EndDate    *time.Time
	Method     string
	PlanType   string
	MemberName string
}

// dateBounds resolves the filter's [from, to) window, if any.
func (f PaymentFilter) dateBounds(now time.Time) (from, to time.Time, ok bool) {
	year := f.Year
	if f.Month >= 1 && f.Month <= 12 {
		if year == 0 {
			year = now.UTC().Year()
		}
		from = time.Date(year, time.Month(f.Month), 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(0, 1, 0), true
	}
	if year != 0 {
		from = time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		return from, from.AddDate(1, 0, 0), true
	}
	return time.Time{}, time.Time{}, false
}

func (f PaymentFilter) apply(q *gorm.DB, now time.Time) *gorm.DB {
	if f.StartDate != nil && f.EndDate != nil {
		q = q.Where("payment_date >= ? AND payment_date <= ?", *f.StartDate, *f.EndDate)
	} else if from, to, ok := f.dateBounds(now); ok {
		q = q.Where("payment_date >= ? AND payment_date < ?", from, to)
	}
	switch strings.ToLower(strings.TrimSpace(f.Method)) {
	case "cash":
		q = q.Where("payment_method = ?", models.PaymentMethodCash)
	case "online":
		q = q.Where("payment_method = ?", models.PaymentMethodOnline)
	}
	if f.PlanType != "" {
		q = q.Where("plan_type = ?", f.PlanType)
	}
	return q
}

// PaymentRow is one listing entry. MemberName prefers the live member row
// and falls back to the snapshot for members deleted since.
type PaymentRow struct {
	ID               uint                    `json:"id"`
	MemberID         *uint                   `json:"member_id"`
	MemberName       string                  `json:"member_name"`
	Amount           float64                 `json:"amount"`
	PlanCost         float64                 `json:"plan_cost"`
	TrainerCost      float64                 `json:"trainer_cost"`
	Adjustment       float64                 `json:"adjustment"`
	PlanType         models.PlanType         `json:"plan_type"`
	Duration         int                     `json:"duration"`
	PaymentMethod    models.PaymentMethod    `json:"payment_method"`
	PaymentStatus    string                  `json:"payment_status"`
	PaymentDate      time.Time               `json:"payment_date"`
	Notes            string                  `json:"notes,omitempty"`
	MembershipPeriod models.MembershipPeriod `json:"membership_period"`
}

// ListPayments returns the owner's payments newest first. The member-name
// filter matches after the rows load because the name may live only in the
// snapshot.
func (s *ReportService) ListPayments(ownerID uint, filter PaymentFilter) ([]PaymentRow, error) {
	var payments []models.Payment
	q := filter.apply(s.db.Where("gym_owner_id = ?", ownerID), time.Now())
	if err := q.Preload("Member").Order("payment_date DESC").Find(&payments).Error; err != nil {
		return nil, apperrors.NewPersistence("list payments", err)
	}

	needle := strings.ToLower(strings.TrimSpace(filter.MemberName))
	rows := make([]PaymentRow, 0, len(payments))
	for _, p := range payments {
		name := p.MemberSnapshot.Name
		if p.Member != nil && p.Member.Name != "" {
			name = p.Member.Name
		}
		if needle != "" && !strings.Contains(strings.ToLower(name), needle) {
			continue
		}
		rows = append(rows, PaymentRow{
			ID:               p.ID,
			MemberID:         p.MemberID,
			MemberName:       name,
			Amount:           p.Amount,
			PlanCost:         p.PlanCost,
			TrainerCost:      p.TrainerCost,
			Adjustment:       p.Adjustment,
			PlanType:         p.PlanType,
			Duration:         p.Duration,
			PaymentMethod:    p.PaymentMethod,
			PaymentStatus:    p.PaymentStatus,
			PaymentDate:      p.PaymentDate,
			Notes:            p.Notes,
			MembershipPeriod: p.MembershipPeriod,
		})
	}
	return rows, nil
}

// PaymentStats is the owner revenue summary for a period.
type PaymentStats struct {
	TotalRevenue   float64 `json:"total_revenue"`
	TotalPayments  int64   `json:"total_payments"`
	CashRevenue    float64 `json:"cash_revenue"`
	CashPayments   int64   `json:"cash_payments"`
	OnlineRevenue  float64 `json:"online_revenue"`
	OnlinePayments int64   `json:"online_payments"`
	UniqueMembers  int64   `json:"unique_members"`
}

// GetStats aggregates revenue by method group in a single query. Results
// are cached briefly when a cache is attached.
func (s *ReportService) GetStats(ctx context.Context, ownerID uint, filter PaymentFilter) (PaymentStats, error) {
	if s.cache == nil {
		return s.computeStats(ownerID, filter)
	}
	var from, to string
	if filter.StartDate != nil {
		from = filter.StartDate.Format(time.RFC3339)
	}
	if filter.EndDate != nil {
		to = filter.EndDate.Format(time.RFC3339)
	}
	key := fmt.Sprintf("payment_stats:%d:%d:%d:%s:%s:%s:%s",
		ownerID, filter.Year, filter.Month, from, to,
		strings.ToLower(filter.Method), filter.PlanType)
	return GetOrSet(s.cache, ctx, key, 2*time.Minute, func() (PaymentStats, error) {
		return s.computeStats(ownerID, filter)
	})
}

func (s *ReportService) computeStats(ownerID uint, filter PaymentFilter) (PaymentStats, error) {
	var stats PaymentStats
	q := filter.apply(s.db.Model(&models.Payment{}).Where("gym_owner_id = ?", ownerID), time.Now())

	err := q.Select(
		"COALESCE(SUM(amount), 0) AS total_revenue, " +
			"COUNT(*) AS total_payments, " +
			"COALESCE(SUM(CASE WHEN payment_method = 'Cash' THEN amount ELSE 0 END), 0) AS cash_revenue, " +
			"COALESCE(SUM(CASE WHEN payment_method = 'Cash' THEN 1 ELSE 0 END), 0) AS cash_payments, " +
			"COALESCE(SUM(CASE WHEN payment_method <> 'Cash' THEN amount ELSE 0 END), 0) AS online_revenue, " +
			"COALESCE(SUM(CASE WHEN payment_method <> 'Cash' THEN 1 ELSE 0 END), 0) AS online_payments, " +
			"COUNT(DISTINCT member_id) AS unique_members").
		Scan(&stats).Error
	if err != nil {
		return PaymentStats{}, apperrors.NewPersistence("aggregate payment stats", err)
	}
	return stats, nil
}
