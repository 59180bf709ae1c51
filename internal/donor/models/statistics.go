package models

import (
	"math"
	"time"

	id "bloodbank/pkg/domain"
)

// AgeBuckets are the fixed statistics age ranges, in display order.
var AgeBuckets = []string{"16-25", "26-35", "36-45", "46-55", "56-65", "66+"}

// Statistics summarizes a donor population.
type Statistics struct {
	TotalDonors           int               `json:"total_donors"`
	EligibleDonors        int               `json:"eligible_donors"`
	IneligibleDonors      int               `json:"ineligible_donors"`
	EligibilityRate       float64           `json:"eligibility_rate"`
	BloodTypeDistribution map[BloodType]int `json:"blood_type_distribution"`
	AgeDistribution       map[string]int    `json:"age_distribution"`
}

// ComputeStatistics aggregates donors. Eligibility is counted by the manual
// flag only, not by the full rule chain.
func ComputeStatistics(donors []*Donor, today time.Time) Statistics {
	today = id.Today(today)
	stats := Statistics{
		TotalDonors:           len(donors),
		BloodTypeDistribution: make(map[BloodType]int, len(BloodTypes)),
		AgeDistribution:       make(map[string]int, len(AgeBuckets)),
	}
	for _, bt := range BloodTypes {
		stats.BloodTypeDistribution[bt] = 0
	}
	for _, b := range AgeBuckets {
		stats.AgeDistribution[b] = 0
	}

	for _, d := range donors {
		if d.IsEligible {
			stats.EligibleDonors++
		}
		if _, ok := stats.BloodTypeDistribution[d.BloodType]; ok {
			stats.BloodTypeDistribution[d.BloodType]++
		}
		stats.AgeDistribution[AgeBucket(id.WholeYears(d.BirthDate, today))]++
	}

	stats.IneligibleDonors = stats.TotalDonors - stats.EligibleDonors
	if stats.TotalDonors > 0 {
		rate := float64(stats.EligibleDonors) / float64(stats.TotalDonors) * 100
		stats.EligibilityRate = math.Round(rate*100) / 100
	}
	return stats
}

// AgeBucket maps an age to its statistics range. Ages outside 16-65,
// including those under 16, land in "66+".
func AgeBucket(age int) string {
	switch {
	case age >= 16 && age <= 25:
		return "16-25"
	case age >= 26 && age <= 35:
		return "26-35"
	case age >= 36 && age <= 45:
		return "36-45"
	case age >= 46 && age <= 55:
		return "46-55"
	case age >= 56 && age <= 65:
		return "56-65"
	default:
		return "66+"
	}
}
