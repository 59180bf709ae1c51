package validation

import (
	"fmt"
	"unicode/utf8"

	dErrors "bloodbank/pkg/domain-errors"
)

// String element length limits
const (
	// MaxEmailLength is the maximum length of an email address.
	MaxEmailLength = 254

	// MaxNameLength bounds donor first and last names.
	MaxNameLength = 100

	// MaxPhoneLength bounds the raw phone string before digit normalization.
	MaxPhoneLength = 32

	// MaxMedicalNotesLength bounds free-text medical notes.
	MaxMedicalNotesLength = 4000

	// MaxPasswordLength is bcrypt's input limit in bytes.
	MaxPasswordLength = 72
)

// Pagination limits
const (
	DefaultPerPage = 10
	MaxPerPage     = 100
	MaxPage        = 1_000_000
)

// CheckStringLength validates that a string does not exceed the maximum length in characters.
func CheckStringLength(fieldName, value string, max int) error {
	if utf8.RuneCountInString(value) > max {
		return dErrors.New(dErrors.CodeValidation, fmt.Sprintf("%s exceeds max length of %d", fieldName, max))
	}
	return nil
}

// ClampPage normalizes page/per_page query values. page is kept within
// [1, MaxPage]. per_page falls back to the default when non-positive and is
// capped at MaxPerPage.
func ClampPage(page, perPage int) (int, int) {
	page = min(max(page, 1), MaxPage)
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return page, perPage
}
