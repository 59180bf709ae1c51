package models

import (
	"time"

	id "bloodbank/pkg/domain"
)

type EligibilityStatus struct {
	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

// DonorResponse is the public view of a donor. Age and eligibility are
// computed at read time.
type DonorResponse struct {
	ID                id.DonorID        `json:"id"`
	FirstName         string            `json:"first_name"`
	LastName          string            `json:"last_name"`
	Email             string            `json:"email"`
	Phone             *string           `json:"phone"`
	BirthDate         string            `json:"birth_date"`
	Age               int               `json:"age"`
	BloodType         BloodType         `json:"blood_type"`
	Weight            float64           `json:"weight"`
	LastDonationDate  *string           `json:"last_donation_date"`
	IsEligible        bool              `json:"is_eligible"`
	MedicalNotes      *string           `json:"medical_notes"`
	EligibilityStatus EligibilityStatus `json:"eligibility_status"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`
	CreatedBy         id.UserID         `json:"created_by"`
}

func ToDonorResponse(d *Donor, today time.Time) DonorResponse {
	verdict := EvaluateEligibility(d, today)
	return DonorResponse{
		ID:               d.ID,
		FirstName:        d.FirstName,
		LastName:         d.LastName,
		Email:            d.Email,
		Phone:            d.Phone,
		BirthDate:        d.BirthDate.Format(id.DateLayout),
		Age:              verdict.Age,
		BloodType:        d.BloodType,
		Weight:           d.Weight,
		LastDonationDate: formatOptionalDate(d.LastDonationDate),
		IsEligible:       d.IsEligible,
		MedicalNotes:     d.MedicalNotes,
		EligibilityStatus: EligibilityStatus{
			Eligible: verdict.Eligible,
			Reason:   verdict.Reason,
		},
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		CreatedBy: d.CreatedBy,
	}
}

type DonorEnvelope struct {
	Message string        `json:"message"`
	Donor   DonorResponse `json:"donor"`
}

type Pagination struct {
	Page    int  `json:"page"`
	Pages   int  `json:"pages"`
	PerPage int  `json:"per_page"`
	Total   int  `json:"total"`
	HasNext bool `json:"has_next"`
	HasPrev bool `json:"has_prev"`
}

func NewPagination(page Page, total int) Pagination {
	pages := page.PageCount(total)
	return Pagination{
		Page:    page.Number,
		Pages:   pages,
		PerPage: page.PerPage,
		Total:   total,
		HasNext: page.Number < pages,
		HasPrev: page.Number > 1,
	}
}

type ListDonorsResponse struct {
	Message    string          `json:"message"`
	Donors     []DonorResponse `json:"donors"`
	Pagination Pagination      `json:"pagination"`
}

type EligibilityDetails struct {
	Age              int       `json:"age"`
	Weight           float64   `json:"weight"`
	BloodType        BloodType `json:"blood_type"`
	LastDonationDate *string   `json:"last_donation_date"`
	IsMarkedEligible bool      `json:"is_marked_eligible"`
}

type EligibilityResponse struct {
	Message   string             `json:"message"`
	DonorID   id.DonorID         `json:"donor_id"`
	DonorName string             `json:"donor_name"`
	Eligible  bool               `json:"eligible"`
	Reason    string             `json:"reason"`
	Details   EligibilityDetails `json:"details"`
}

// EligibilityResult pairs a donor with the verdict computed for it.
type EligibilityResult struct {
	Donor   *Donor
	Verdict Verdict
}

func ToEligibilityResponse(r *EligibilityResult) EligibilityResponse {
	return EligibilityResponse{
		Message:   "eligibility check completed",
		DonorID:   r.Donor.ID,
		DonorName: r.Donor.FullName(),
		Eligible:  r.Verdict.Eligible,
		Reason:    r.Verdict.Reason,
		Details: EligibilityDetails{
			Age:              r.Verdict.Age,
			Weight:           r.Donor.Weight,
			BloodType:        r.Donor.BloodType,
			LastDonationDate: formatOptionalDate(r.Donor.LastDonationDate),
			IsMarkedEligible: r.Donor.IsEligible,
		},
	}
}

type StatisticsResponse struct {
	Message    string     `json:"message"`
	Statistics Statistics `json:"statistics"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

func formatOptionalDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(id.DateLayout)
	return &s
}
