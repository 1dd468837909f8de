package models

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Effective membership status labels. Storage keeps MembershipStatus only as
// a hint; the displayed value is always derived via DeriveMembershipStatus.
const (
	MembershipActive   = "Active"
	MembershipExpired  = "Expired"
	MembershipPending  = "Pending"
	MembershipInactive = "Inactive"
)

// EffectiveMembershipEnd resolves the end of the membership window.
// An explicit end date is authoritative; otherwise the end is derived from
// the start date (falling back to account creation) plus the duration in
// months. Returns false when neither is available.
func (u User) EffectiveMembershipEnd() (time.Time, bool) {
	if u.MembershipEndDate != nil {
		return *u.MembershipEndDate, true
	}

	start := u.MembershipStartDate
	if start == nil && !u.CreatedAt.IsZero() {
		start = &u.CreatedAt
	}
	if start == nil {
		return time.Time{}, false
	}

	months, err := strconv.Atoi(strings.TrimSpace(u.MembershipDuration))
	if err != nil || months <= 0 {
		return time.Time{}, false
	}
	return start.AddDate(0, months, 0), true
}

// DeriveMembershipStatus computes the effective status at the given instant.
// A window that ended in the past yields Expired regardless of the stored
// status, including a stored "Active". Otherwise a recognized explicit status
// (Inactive/Expired/Pending, any casing) is returned title-cased, and
// everything else defaults to Active.
func (u User) DeriveMembershipStatus(now time.Time) string {
	if end, ok := u.EffectiveMembershipEnd(); ok && end.Before(now) {
		return MembershipExpired
	}

	switch strings.ToLower(strings.TrimSpace(u.MembershipStatus)) {
	case "inactive":
		return MembershipInactive
	case "expired":
		return MembershipExpired
	case "pending":
		return MembershipPending
	}
	return MembershipActive
}

// MembershipDaysRemaining returns the whole days left in the membership
// window, never negative. Zero when no window can be resolved.
func (u User) MembershipDaysRemaining(now time.Time) int {
	end, ok := u.EffectiveMembershipEnd()
	if !ok || end.Before(now) {
		return 0
	}
	return int(math.Ceil(end.Sub(now).Hours() / 24))
}
