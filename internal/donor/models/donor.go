package models

import (
	"math"
	"time"

	id "bloodbank/pkg/domain"
)

// Donor is a registered blood donor. Dates are calendar dates at UTC midnight.
type Donor struct {
	ID               id.DonorID
	FirstName        string
	LastName         string
	Email            string
	Phone            *string
	BirthDate        time.Time
	BloodType        BloodType
	Weight           float64
	LastDonationDate *time.Time
	IsEligible       bool
	MedicalNotes     *string
	CreatedBy        id.UserID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// FullName joins first and last name the way listings display it.
func (d *Donor) FullName() string {
	return d.FirstName + " " + d.LastName
}

// Age returns the donor's age in whole years on the given day.
func (d *Donor) Age(today time.Time) int {
	return id.WholeYears(d.BirthDate, today)
}

// IsOwnedBy reports whether userID registered this donor.
func (d *Donor) IsOwnedBy(userID id.UserID) bool {
	return d.CreatedBy == userID
}

// ListFilter narrows a donor listing. Nil fields do not filter.
type ListFilter struct {
	CreatedBy  *id.UserID
	BloodType  *BloodType
	IsEligible *bool
}

// Page selects a 1-based page of results.
type Page struct {
	Number  int
	PerPage int
}

// Offset is the number of rows skipped before this page. It saturates at
// math.MaxInt instead of overflowing.
func (p Page) Offset() int {
	if p.Number <= 1 || p.PerPage <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Number - 1) * p.PerPage
}

// PageCount returns the number of pages needed for total rows.
func (p Page) PageCount(total int) int {
	if p.PerPage <= 0 || total <= 0 {
		return 0
	}
	return (total + p.PerPage - 1) / p.PerPage
}
