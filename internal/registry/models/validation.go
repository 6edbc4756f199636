package models

import (
	"fmt"

	dErrors "daviz/pkg/domain-errors"
)

// Field ceilings, in bytes. These are part of the persisted layout contract.
const (
	MaxFrameworkNameLen        = 50
	MaxFrameworkDescriptionLen = 200
	MaxCriteriaCount           = 10
	MaxCriterionLen            = 100

	MaxAssetNameLen        = 50
	MaxAssetDescriptionLen = 200
	MaxMetadataURILen      = 200

	MaxEvidenceLen = 500
	MaxTrustScore  = 100
)

func checkLen(field, value string, limit int) error {
	if len(value) > limit {
		return dErrors.NewValidation(field, dErrors.ReasonFieldTooLong,
			fmt.Sprintf("%s must be at most %d bytes", field, limit))
	}
	return nil
}

func validateCriteria(criteria []string) error {
	if len(criteria) > MaxCriteriaCount {
		return dErrors.NewValidation("criteria", dErrors.ReasonTooManyCriteria,
			fmt.Sprintf("criteria must have at most %d entries", MaxCriteriaCount))
	}
	for i, c := range criteria {
		if err := checkLen(fmt.Sprintf("criteria[%d]", i), c, MaxCriterionLen); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTrustScore accepts 0 through 100 inclusive. Scores arrive as int so
// out-of-range input (negative or > 255) is still reported as a range error.
func ValidateTrustScore(score int) error {
	if score < 0 || score > MaxTrustScore {
		return dErrors.NewValidation("trustScore", dErrors.ReasonScoreOutOfRange,
			fmt.Sprintf("trust score must be between 0 and %d", MaxTrustScore))
	}
	return nil
}
