package models

import (
	"strconv"
	"strings"
	"time"

	id "bloodbank/pkg/domain"
	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/validation"
)

// NormalizeEmail trims and lower-cases an email for storage and lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NewDonor builds a donor from creation fields that already passed Validate.
func NewDonor(f DonorFields, createdBy id.UserID, now time.Time) (*Donor, error) {
	d := &Donor{
		ID:         id.NewDonorID(),
		IsEligible: true,
		CreatedBy:  createdBy,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := d.Apply(f, now); err != nil {
		return nil, err
	}
	return d, nil
}

// Apply copies supplied fields onto the donor. Fields must already have
// passed Validate. An empty string clears the optional phone,
// last_donation_date and medical_notes fields.
func (d *Donor) Apply(f DonorFields, now time.Time) error {
	if f.FirstName != nil {
		d.FirstName = strings.TrimSpace(*f.FirstName)
	}
	if f.LastName != nil {
		d.LastName = strings.TrimSpace(*f.LastName)
	}
	if f.Email != nil {
		d.Email = NormalizeEmail(*f.Email)
	}
	if f.Phone != nil {
		d.Phone = optionalString(*f.Phone)
	}
	if f.BirthDate != nil {
		birth, err := id.ParseDate(strings.TrimSpace(*f.BirthDate))
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "birth_date not validated")
		}
		d.BirthDate = birth
	}
	if f.BloodType != nil {
		bt, ok := ParseBloodType(strings.TrimSpace(*f.BloodType))
		if !ok {
			return dErrors.New(dErrors.CodeInvariantViolation, "blood_type not validated")
		}
		d.BloodType = bt
	}
	if f.Weight != nil {
		weight, ok := f.Weight.Float()
		if !ok {
			return dErrors.New(dErrors.CodeInvariantViolation, "weight not validated")
		}
		d.Weight = weight
	}
	if f.LastDonationDate != nil {
		raw := strings.TrimSpace(*f.LastDonationDate)
		if raw == "" {
			d.LastDonationDate = nil
		} else {
			last, err := id.ParseDate(raw)
			if err != nil {
				return dErrors.Wrap(err, dErrors.CodeInvariantViolation, "last_donation_date not validated")
			}
			d.LastDonationDate = &last
		}
	}
	if f.IsEligible != nil {
		d.IsEligible = *f.IsEligible
	}
	if f.MedicalNotes != nil {
		d.MedicalNotes = optionalString(*f.MedicalNotes)
	}
	d.UpdatedAt = now
	return nil
}

// CheckLengths enforces storage limits that sit outside the business rules.
func (f *DonorFields) CheckLengths() error {
	checks := []struct {
		name  string
		value *string
		max   int
	}{
		{"first_name", f.FirstName, validation.MaxNameLength},
		{"last_name", f.LastName, validation.MaxNameLength},
		{"email", f.Email, validation.MaxEmailLength},
		{"phone", f.Phone, validation.MaxPhoneLength},
		{"medical_notes", f.MedicalNotes, validation.MaxMedicalNotesLength},
	}
	for _, c := range checks {
		if c.value == nil {
			continue
		}
		if err := validation.CheckStringLength(c.name, strings.TrimSpace(*c.value), c.max); err != nil {
			return err
		}
	}
	return nil
}

func optionalString(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

// ListDonorsRequest carries raw listing query parameters.
type ListDonorsRequest struct {
	BloodType  string
	IsEligible string
	Page       string
	PerPage    string
}

// ListQuery is a validated listing request.
type ListQuery struct {
	BloodType  *BloodType
	IsEligible *bool
	Page       Page
}

// Parse validates filters and normalizes pagination. Unparseable page values
// fall back to their defaults; an unknown blood type is rejected.
func (r *ListDonorsRequest) Parse() (ListQuery, error) {
	var q ListQuery
	if bt := strings.TrimSpace(r.BloodType); bt != "" {
		parsed, ok := ParseBloodType(bt)
		if !ok {
			return ListQuery{}, dErrors.New(dErrors.CodeBadRequest, "invalid blood_type filter")
		}
		q.BloodType = &parsed
	}
	if r.IsEligible != "" {
		eligible := strings.EqualFold(strings.TrimSpace(r.IsEligible), "true")
		q.IsEligible = &eligible
	}
	page, perPage := validation.ClampPage(atoiOr(r.Page, 1), atoiOr(r.PerPage, validation.DefaultPerPage))
	q.Page = Page{Number: page, PerPage: perPage}
	return q, nil
}

func atoiOr(s string, fallback int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return fallback
	}
	return n
}
