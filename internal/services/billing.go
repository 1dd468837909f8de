package services

import (
	"gymflow/internal/apperrors"
	"gymflow/internal/models"
)

// CostBreakdown is the expected charge for a membership period.
type CostBreakdown struct {
	PlanCost    float64 `json:"plan_cost"`
	TrainerCost float64 `json:"trainer_cost"`
	Total       float64 `json:"total"`
}

// billingPeriods converts a duration in months into the number of billing
// periods to charge, rounding partial periods up.
func billingPeriods(period models.BillingPeriod, months int) int {
	switch period {
	case models.BillingQuarterly:
		return (months + 2) / 3
	case models.BillingYearly:
		return (months + 11) / 12
	default:
		// Unknown periods bill monthly.
		return months
	}
}

// ComputeCost calculates the expected cost of a membership of the given
// duration on the given plan, plus personal-trainer fees when a trainer is
// assigned. Trainer fees are always charged per month regardless of the
// plan's billing period.
func ComputeCost(plan models.GymOwnerPlan, months int, trainer *models.User) (CostBreakdown, error) {
	if months < 1 {
		months = 1
	}

	planCost := plan.Price * float64(billingPeriods(plan.Duration, months))

	var trainerCost float64
	if trainer != nil {
		if trainer.MonthlyFee <= 0 {
			return CostBreakdown{}, apperrors.NewConfiguration(
				"trainer %s has no valid monthly fee configured", trainer.Name)
		}
		trainerCost = trainer.MonthlyFee * float64(months)
	}

	return CostBreakdown{
		PlanCost:    planCost,
		TrainerCost: trainerCost,
		Total:       planCost + trainerCost,
	}, nil
}
