package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	dErrors "bloodbank/pkg/domain-errors"
)

// ValidateSuite covers the registration validator. Unlike eligibility, every
// rule is reported; nothing short-circuits.
type ValidateSuite struct {
	suite.Suite
	today time.Time
}

func TestValidateSuite(t *testing.T) {
	suite.Run(t, new(ValidateSuite))
}

func (s *ValidateSuite) SetupTest() {
	s.today = time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T { return &v }

func (s *ValidateSuite) validCreate() DonorFields {
	return DonorFields{
		FirstName: ptr("María José"),
		LastName:  ptr("Núñez"),
		Email:     ptr("maria@example.com"),
		Phone:     ptr("+1 (555) 010-2030"),
		BirthDate: ptr("1990-04-01"),
		BloodType: ptr("AB-"),
		Weight:    NewWeightInput(62.5),
	}
}

func (s *ValidateSuite) TestValidCreate() {
	s.Empty(Validate(s.validCreate(), false, s.today))
}

func (s *ValidateSuite) TestCollectsEveryViolation() {
	f := DonorFields{
		FirstName: ptr("A"),
		Email:     ptr("bad"),
		BirthDate: ptr("2010-01-01"),
		Weight:    NewWeightInput(30),
	}

	errs := Validate(f, false, s.today)

	s.Equal([]string{
		"last_name is required",
		"blood_type is required",
		"invalid email format",
		"first_name must be at least 2 characters",
		"donor must be at least 16 years old",
		"weight must be at least 45 kg",
	}, errs)
}

func (s *ValidateSuite) TestRequiredOnlyOnCreate() {
	s.Run("empty create lists all required fields", func() {
		errs := Validate(DonorFields{}, false, s.today)
		s.Equal([]string{
			"first_name is required",
			"last_name is required",
			"email is required",
			"birth_date is required",
			"blood_type is required",
			"weight is required",
		}, errs)
	})

	s.Run("empty update is valid", func() {
		s.Empty(Validate(DonorFields{}, true, s.today))
	})

	s.Run("blank supplied value on update is required", func() {
		errs := Validate(DonorFields{LastName: ptr("  "), Weight: RawWeightInput(`""`)}, true, s.today)
		s.Equal([]string{"last_name is required", "weight is required"}, errs)
	})

	s.Run("optional fields may be blank", func() {
		errs := Validate(DonorFields{Phone: ptr(""), LastDonationDate: ptr(""), MedicalNotes: ptr("")}, true, s.today)
		s.Empty(errs)
	})
}

func (s *ValidateSuite) TestNames() {
	cases := []struct {
		name string
		in   string
		want []string
	}{
		{"accented letters", "Ñandú Éric", nil},
		{"digits", "R2D2", []string{"first_name may only contain letters and spaces"}},
		{"hyphen", "Jean-Luc", []string{"first_name may only contain letters and spaces"}},
		{"single char with symbol", "!", []string{
			"first_name must be at least 2 characters",
			"first_name may only contain letters and spaces",
		}},
		{"padded short", "  J  ", []string{"first_name must be at least 2 characters"}},
		{"whitespace only", "   ", []string{"first_name is required"}},
		{"other accents", "Zoë Çelik", nil},
		{"cyrillic", "Иван", []string{"first_name may only contain letters and spaces"}},
		{"han", "李雷", []string{"first_name may only contain letters and spaces"}},
		{"greek", "Ωμέγα", []string{"first_name may only contain letters and spaces"}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, Validate(DonorFields{FirstName: ptr(tc.in)}, true, s.today))
		})
	}
}

func (s *ValidateSuite) TestPhone() {
	s.Empty(Validate(DonorFields{Phone: ptr("555-010-2030")}, true, s.today))
	s.Equal([]string{"phone must contain at least 10 digits"},
		Validate(DonorFields{Phone: ptr("555-0102")}, true, s.today))
}

func (s *ValidateSuite) TestBirthDate() {
	s.Run("bad format", func() {
		s.Equal([]string{"invalid birth_date format, use YYYY-MM-DD"},
			Validate(DonorFields{BirthDate: ptr("15/06/1990")}, true, s.today))
	})

	s.Run("impossible date", func() {
		s.Equal([]string{"invalid birth_date format, use YYYY-MM-DD"},
			Validate(DonorFields{BirthDate: ptr("1990-02-30")}, true, s.today))
	})

	s.Run("too old", func() {
		s.Equal([]string{"donor must be at most 70 years old"},
			Validate(DonorFields{BirthDate: ptr("1950-01-01")}, true, s.today))
	})

	s.Run("uses day-count approximation", func() {
		// Whole years would be 15 until 2025-06-19, but 5840 days / 365 is 16.
		s.Empty(Validate(DonorFields{BirthDate: ptr("2009-06-19")}, true, s.today))
		s.Equal([]string{"donor must be at least 16 years old"},
			Validate(DonorFields{BirthDate: ptr("2009-06-24")}, true, s.today))
	})

	s.Run("future birth date is too young", func() {
		s.Equal([]string{"donor must be at least 16 years old"},
			Validate(DonorFields{BirthDate: ptr("2030-01-01")}, true, s.today))
	})
}

func (s *ValidateSuite) TestBloodType() {
	s.Equal([]string{"invalid blood_type, must be one of: A+, A-, B+, B-, AB+, AB-, O+, O-"},
		Validate(DonorFields{BloodType: ptr("C+")}, true, s.today))
	s.Equal([]string{"invalid blood_type, must be one of: A+, A-, B+, B-, AB+, AB-, O+, O-"},
		Validate(DonorFields{BloodType: ptr("a+")}, true, s.today))
}

func (s *ValidateSuite) TestWeight() {
	cases := []struct {
		name string
		raw  string
		want []string
	}{
		{"number", `72.4`, nil},
		{"numeric string", `"72.4"`, nil},
		{"lower bound", `45`, nil},
		{"upper bound", `200`, nil},
		{"below", `44.99`, []string{"weight must be at least 45 kg"}},
		{"above", `200.01`, []string{"weight must be at most 200 kg"}},
		{"word", `"heavy"`, []string{"weight must be a number"}},
		{"bool", `true`, []string{"weight must be a number"}},
		{"nan string", `"NaN"`, []string{"weight must be a number"}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			s.Equal(tc.want, Validate(DonorFields{Weight: RawWeightInput(tc.raw)}, true, s.today))
		})
	}
}

func (s *ValidateSuite) TestLastDonationDate() {
	s.Empty(Validate(DonorFields{LastDonationDate: ptr("2025-06-15")}, true, s.today))
	s.Equal([]string{"last_donation_date cannot be in the future"},
		Validate(DonorFields{LastDonationDate: ptr("2025-06-16")}, true, s.today))
	s.Equal([]string{"invalid last_donation_date format, use YYYY-MM-DD"},
		Validate(DonorFields{LastDonationDate: ptr("yesterday")}, true, s.today))
}

func (s *ValidateSuite) TestNewValidationError() {
	err := NewValidationError([]string{"a", "b"})
	var de *dErrors.Error
	s.Require().ErrorAs(err, &de)
	s.Equal(dErrors.CodeValidation, de.Code)
	s.Equal([]string{"a", "b"}, de.Details["errors"])
}
