package models

import (
	"testing"
	"time"
)

func datePtr(t time.Time) *time.Time {
	return &t
}

func TestDeriveMembershipStatus(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		user User
		want string
	}{
		{
			name: "past end date overrides stored active",
			user: User{
				MembershipEndDate: datePtr(now.AddDate(0, 0, -1)),
				MembershipStatus:  "Active",
			},
			want: MembershipExpired,
		},
		{
			name: "future end date keeps stored active",
			user: User{
				MembershipEndDate: datePtr(now.AddDate(0, 1, 0)),
				MembershipStatus:  "Active",
			},
			want: MembershipActive,
		},
		{
			name: "derived end from start plus duration, expired",
			user: User{
				MembershipStartDate: datePtr(now.AddDate(0, -3, 0)),
				MembershipDuration:  "1",
				MembershipStatus:    "Active",
			},
			want: MembershipExpired,
		},
		{
			name: "derived end from start plus duration, still running",
			user: User{
				MembershipStartDate: datePtr(now.AddDate(0, 0, -10)),
				MembershipDuration:  "2",
			},
			want: MembershipActive,
		},
		{
			name: "stored inactive is title-cased",
			user: User{
				MembershipEndDate: datePtr(now.AddDate(0, 1, 0)),
				MembershipStatus:  "inactive",
			},
			want: MembershipInactive,
		},
		{
			name: "stored pending any casing",
			user: User{
				MembershipEndDate: datePtr(now.AddDate(0, 1, 0)),
				MembershipStatus:  "PENDING",
			},
			want: MembershipPending,
		},
		{
			name: "unrecognized stored status defaults to active",
			user: User{
				MembershipEndDate: datePtr(now.AddDate(0, 1, 0)),
				MembershipStatus:  "frozen",
			},
			want: MembershipActive,
		},
		{
			name: "no window at all defaults to active",
			user: User{},
			want: MembershipActive,
		},
		{
			name: "stored expired without window",
			user: User{MembershipStatus: "expired"},
			want: MembershipExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.user.DeriveMembershipStatus(now)
			if got != tt.want {
				t.Errorf("DeriveMembershipStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEffectiveMembershipEnd(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	t.Run("explicit end date wins over derived", func(t *testing.T) {
		explicit := now.AddDate(0, 2, 0)
		user := User{
			MembershipStartDate: datePtr(now),
			MembershipDuration:  "12",
			MembershipEndDate:   datePtr(explicit),
		}
		end, ok := user.EffectiveMembershipEnd()
		if !ok || !end.Equal(explicit) {
			t.Errorf("EffectiveMembershipEnd() = %v, %v, want %v, true", end, ok, explicit)
		}
	})

	t.Run("falls back to created_at as start", func(t *testing.T) {
		user := User{MembershipDuration: "3"}
		user.CreatedAt = now
		end, ok := user.EffectiveMembershipEnd()
		want := now.AddDate(0, 3, 0)
		if !ok || !end.Equal(want) {
			t.Errorf("EffectiveMembershipEnd() = %v, %v, want %v, true", end, ok, want)
		}
	})

	t.Run("unparseable duration yields no window", func(t *testing.T) {
		user := User{
			MembershipStartDate: datePtr(now),
			MembershipDuration:  "forever",
		}
		if _, ok := user.EffectiveMembershipEnd(); ok {
			t.Error("expected no effective end for unparseable duration")
		}
	})
}

func TestMembershipDaysRemaining(t *testing.T) {
	now := time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		user User
		want int
	}{
		{
			name: "ten days left",
			user: User{MembershipEndDate: datePtr(now.AddDate(0, 0, 10))},
			want: 10,
		},
		{
			name: "partial day rounds up",
			user: User{MembershipEndDate: datePtr(now.Add(36 * time.Hour))},
			want: 2,
		},
		{
			name: "expired clamps to zero",
			user: User{MembershipEndDate: datePtr(now.AddDate(0, 0, -5))},
			want: 0,
		},
		{
			name: "no window is zero",
			user: User{},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.user.MembershipDaysRemaining(now); got != tt.want {
				t.Errorf("MembershipDaysRemaining() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNormalizePlanType(t *testing.T) {
	tests := []struct {
		raw  string
		want PlanType
	}{
		{"Basic", PlanBasic},
		{"Standard", PlanStandard},
		{"Premium", PlanPremium},
		{"  Premium  ", PlanPremium},
		{"gold", PlanBasic},
		{"", PlanBasic},
	}
	for _, tt := range tests {
		if got := NormalizePlanType(tt.raw); got != tt.want {
			t.Errorf("NormalizePlanType(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestPaymentMethodFromMode(t *testing.T) {
	tests := []struct {
		mode string
		want PaymentMethod
	}{
		{"cash", PaymentMethodCash},
		{"CASH", PaymentMethodCash},
		{"cash payment", PaymentMethodCash},
		{"upi", PaymentMethodOnline},
		{"card", PaymentMethodOnline},
		{"", PaymentMethodOnline},
	}
	for _, tt := range tests {
		if got := PaymentMethodFromMode(tt.mode); got != tt.want {
			t.Errorf("PaymentMethodFromMode(%q) = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
