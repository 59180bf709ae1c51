package models

import (
	"fmt"
	"time"

	id "bloodbank/pkg/domain"
)

// Donation eligibility bounds.
const (
	MinDonationAge       = 18
	MaxDonationAge       = 65
	MinDonationWeight    = 50.0
	DonationIntervalDays = 56
)

// ReasonCode is a stable, low-cardinality label for an eligibility outcome.
type ReasonCode string

const (
	ReasonMarkedIneligible   ReasonCode = "marked_ineligible"
	ReasonAgeOutOfRange      ReasonCode = "age_out_of_range"
	ReasonInsufficientWeight ReasonCode = "insufficient_weight"
	ReasonDonationInterval   ReasonCode = "donation_interval"
	ReasonEligible           ReasonCode = "eligible"
)

// Verdict is the outcome of an eligibility evaluation.
type Verdict struct {
	Eligible bool
	Reason   string
	Code     ReasonCode
	// Age is the whole-year age the rules were evaluated with.
	Age int
	// WaitDays is the remaining wait when Code is ReasonDonationInterval.
	WaitDays int
}

// EvaluateEligibility applies the donation rule chain.
// Rule priority (fail-fast):
//  1. Manual override flag
//  2. Age within 18-65, by birthday comparison
//  3. Weight at least 50 kg
//  4. At least 56 days since the last donation
func EvaluateEligibility(d *Donor, today time.Time) Verdict {
	today = id.Today(today)
	age := id.WholeYears(d.BirthDate, today)

	// Rule 1: manual override
	if !d.IsEligible {
		return Verdict{Reason: "marked not eligible.", Code: ReasonMarkedIneligible, Age: age}
	}

	// Rule 2: age
	if age < MinDonationAge || age > MaxDonationAge {
		return Verdict{Reason: "age outside permitted range (18–65).", Code: ReasonAgeOutOfRange, Age: age}
	}

	// Rule 3: weight
	if d.Weight < MinDonationWeight {
		return Verdict{Reason: "insufficient weight (minimum 50kg).", Code: ReasonInsufficientWeight, Age: age}
	}

	// Rule 4: donation interval
	if d.LastDonationDate != nil {
		daysSince := id.DaysBetween(*d.LastDonationDate, today)
		if daysSince < DonationIntervalDays {
			wait := DonationIntervalDays - daysSince
			return Verdict{
				Reason:   fmt.Sprintf("must wait %d more days before donating again.", wait),
				Code:     ReasonDonationInterval,
				Age:      age,
				WaitDays: wait,
			}
		}
	}

	return Verdict{Eligible: true, Reason: "eligible for donation.", Code: ReasonEligible, Age: age}
}
