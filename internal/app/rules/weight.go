package rules

import (
	"github.com/unisphere/academics/internal/app/models"
	"github.com/unisphere/academics/internal/pkg/apperrors"
)

// MaxTotalWeight is the ceiling for the sum of a section's active criteria weights.
const MaxTotalWeight = 100

// ValidateWeight checks that adding proposed to the active weights of criteria,
// leaving out excludingID (zero for none), stays within limit.
func ValidateWeight(criteria []models.EvaluationCriterion, proposed int, excludingID int64, limit int) error {
	if proposed < 0 || proposed > limit {
		return apperrors.New(apperrors.ErrValidationFailed, "weight must be within [0, %d], got %d", limit, proposed)
	}
	sum := ActiveWeight(criteria, excludingID)
	if sum+proposed > limit {
		return apperrors.New(apperrors.ErrWeightExceeded, "%d + %d = %d > %d", sum, proposed, sum+proposed, limit)
	}
	return nil
}

// ActiveWeight sums the weights of active criteria, leaving out excludingID.
func ActiveWeight(criteria []models.EvaluationCriterion, excludingID int64) int {
	sum := 0
	for _, c := range criteria {
		if !c.IsActive() || (excludingID != 0 && c.ID == excludingID) {
			continue
		}
		sum += c.Weight
	}
	return sum
}
