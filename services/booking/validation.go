package booking

import (
	"fmt"
	"time"

	"academix/models"
	"academix/utils"
)

// validateParticipants enforces ownership and batch eligibility for every
// requested participant.
func validateParticipants(userID string, batch *models.Batch, requestedIDs []string, participants []models.Participant) error {
	if len(participants) != len(requestedIDs) {
		return utils.NewNotFoundError("PARTICIPANT_NOT_FOUND", "one or more participants do not exist")
	}

	for _, p := range participants {
		if p.UserID != userID {
			return utils.NewValidationError("PARTICIPANT_NOT_OWNED",
				fmt.Sprintf("participant %s does not belong to this user", p.ID))
		}
		if err := checkAge(batch, p); err != nil {
			return err
		}
		if batch.GenderPolicy != "" && batch.GenderPolicy != models.GenderPolicyAny && p.Gender != batch.GenderPolicy {
			return utils.NewValidationError("GENDER_POLICY",
				fmt.Sprintf("participant %s does not meet the batch gender policy", p.ID))
		}
		if p.Disability && !batch.AllowDisability {
			return utils.NewValidationError("DISABILITY_POLICY",
				fmt.Sprintf("batch cannot accommodate participant %s", p.ID))
		}
	}
	return nil
}

func checkAge(batch *models.Batch, p models.Participant) error {
	if batch.MinAge == 0 && batch.MaxAge == 0 {
		return nil
	}
	age := ageInYears(p.DateOfBirth, time.Now())
	if batch.MinAge > 0 && age < batch.MinAge {
		return utils.NewValidationError("AGE_BELOW_MINIMUM",
			fmt.Sprintf("participant %s is below the batch age range", p.ID))
	}
	if batch.MaxAge > 0 && age > batch.MaxAge {
		return utils.NewValidationError("AGE_ABOVE_MAXIMUM",
			fmt.Sprintf("participant %s is above the batch age range", p.ID))
	}
	return nil
}

func ageInYears(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.YearDay() < dob.YearDay() {
		years--
	}
	return years
}
