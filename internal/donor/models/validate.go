package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	id "bloodbank/pkg/domain"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/validation"
)

// Registration bounds. They are deliberately looser than the donation
// eligibility bounds in eligibility.go.
const (
	MinRegistrationAge    = 16
	MaxRegistrationAge    = 70
	MinRegistrationWeight = 45.0
	MaxRegistrationWeight = 200.0
	MinNameLength         = 2
	MinPhoneDigits        = 10
)

// Validate checks a partial donor and returns every violated rule in a fixed
// order. An empty result means the fields are acceptable. On creation the
// core fields are required; on update only supplied fields are checked.
// today is the calendar date used for age and future-date checks.
func Validate(f DonorFields, isUpdate bool, today time.Time) []string {
	var errs []string
	today = id.Today(today)

	errs = append(errs, checkRequired(f, isUpdate)...)

	if present(f.Email) && !validation.IsEmail(strings.TrimSpace(*f.Email)) {
		errs = append(errs, "invalid email format")
	}

	errs = append(errs, checkName("first_name", f.FirstName)...)
	errs = append(errs, checkName("last_name", f.LastName)...)

	if present(f.Phone) && countDigits(*f.Phone) < MinPhoneDigits {
		errs = append(errs, "phone must contain at least 10 digits")
	}

	if present(f.BirthDate) {
		birth, err := id.ParseDate(strings.TrimSpace(*f.BirthDate))
		if err != nil {
			errs = append(errs, "invalid birth_date format, use YYYY-MM-DD")
		} else {
			age := id.ApproxYearsByDays(birth, today)
			if age < MinRegistrationAge {
				errs = append(errs, "donor must be at least 16 years old")
			}
			if age > MaxRegistrationAge {
				errs = append(errs, "donor must be at most 70 years old")
			}
		}
	}

	if present(f.BloodType) {
		if _, ok := ParseBloodType(strings.TrimSpace(*f.BloodType)); !ok {
			errs = append(errs, "invalid blood_type, must be one of: "+bloodTypeList())
		}
	}

	if !f.Weight.IsBlank() {
		weight, ok := f.Weight.Float()
		switch {
		case !ok:
			errs = append(errs, "weight must be a number")
		default:
			if weight < MinRegistrationWeight {
				errs = append(errs, "weight must be at least 45 kg")
			}
			if weight > MaxRegistrationWeight {
				errs = append(errs, "weight must be at most 200 kg")
			}
		}
	}

	if present(f.LastDonationDate) {
		last, err := id.ParseDate(strings.TrimSpace(*f.LastDonationDate))
		if err != nil {
			errs = append(errs, "invalid last_donation_date format, use YYYY-MM-DD")
		} else if last.After(today) {
			errs = append(errs, "last_donation_date cannot be in the future")
		}
	}

	return errs
}

// NewValidationError wraps validator output as a domain error. The messages
// are rendered in the response body under "errors".
func NewValidationError(messages []string) error {
	return dErrors.NewWithDetails(dErrors.CodeValidation, "validation failed", map[string]any{
		"errors": messages,
	})
}

func checkRequired(f DonorFields, isUpdate bool) []string {
	fields := []struct {
		name     string
		supplied bool
		blank    bool
	}{
		{"first_name", f.FirstName != nil, !present(f.FirstName)},
		{"last_name", f.LastName != nil, !present(f.LastName)},
		{"email", f.Email != nil, !present(f.Email)},
		{"birth_date", f.BirthDate != nil, !present(f.BirthDate)},
		{"blood_type", f.BloodType != nil, !present(f.BloodType)},
		{"weight", f.Weight != nil, f.Weight.IsBlank()},
	}

	var errs []string
	for _, field := range fields {
		if isUpdate && !field.supplied {
			continue
		}
		if field.blank {
			errs = append(errs, fmt.Sprintf("%s is required", field.name))
		}
	}
	return errs
}

func checkName(field string, value *string) []string {
	if !present(value) {
		return nil
	}
	name := strings.TrimSpace(*value)
	var errs []string
	if len([]rune(name)) < MinNameLength {
		errs = append(errs, fmt.Sprintf("%s must be at least 2 characters", field))
	}
	for _, r := range name {
		if !isNameRune(r) {
			errs = append(errs, fmt.Sprintf("%s may only contain letters and spaces", field))
			break
		}
	}
	return errs
}

// isNameRune accepts Latin-script letters, accented ones included, and spaces.
func isNameRune(r rune) bool {
	return unicode.IsSpace(r) || (unicode.IsLetter(r) && unicode.Is(unicode.Latin, r))
}

// present reports whether a string field was supplied with non-blank content.
func present(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
