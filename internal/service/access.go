package service

import (
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/study-mission-api/internal/models"
	appErrors "github.com/noah-isme/study-mission-api/pkg/errors"
)

// resolveMember picks whose data a request targets. Members act on themselves;
// teachers, parents and admins may name another member.
func resolveMember(requested, actorID string, role models.UserRole) (string, error) {
	requested = strings.TrimSpace(requested)
	if actorID == "" {
		return "", appErrors.ErrUnauthorized
	}
	if requested == "" || requested == actorID {
		return actorID, nil
	}
	if !role.CanActForOthers() {
		return "", appErrors.Clone(appErrors.ErrForbidden, "not allowed to act for another member")
	}
	return requested, nil
}

func validateStruct(v *validator.Validate, payload interface{}, message string) error {
	if err := v.Struct(payload); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	return nil
}

func parseDay(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, field+" must use YYYY-MM-DD")
	}
	return t, nil
}

func parseWindow(from, to string) (time.Time, time.Time, error) {
	start, err := parseDay("start date", from)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDay("end date", to)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if start.After(end) {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "start date must not be after end date")
	}
	return start, end, nil
}
