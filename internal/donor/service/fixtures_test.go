package service

import (
	"fmt"
	"time"

	"bloodbank/internal/donor/models"
	ptestutil "bloodbank/pkg/testutil"
)

func (s *DonorServiceSuite) seed(b *ptestutil.DonorBuilder) *models.Donor {
	d := b.OwnedBy(s.owner).Build()
	s.Require().NoError(s.store.Create(s.adminCtx(), d))
	return d
}

func (s *DonorServiceSuite) TestEligibilityRulesOnStoredDonors() {
	s.Require().Equal(ptestutil.FixedNow, s.now)

	cases := []struct {
		name    string
		builder *ptestutil.DonorBuilder
		code    models.ReasonCode
		reason  string
	}{
		{"default donor", ptestutil.NewDonorBuilder(), models.ReasonEligible, "eligible for donation."},
		{"manual flag", ptestutil.NewDonorBuilder().Ineligible().WithWeight(40), models.ReasonMarkedIneligible, "marked not eligible."},
		{"turns 18 tomorrow", ptestutil.NewDonorBuilder().WithBirthDate(2007, time.June, 16), models.ReasonAgeOutOfRange, "age outside permitted range (18–65)."},
		{"just under weight", ptestutil.NewDonorBuilder().WithWeight(49.9), models.ReasonInsufficientWeight, "insufficient weight (minimum 50kg)."},
		{"donated 55 days ago", ptestutil.NewDonorBuilder().LastDonatedDaysAgo(55), models.ReasonDonationInterval, "must wait 1 more days before donating again."},
		{"donated 56 days ago", ptestutil.NewDonorBuilder().LastDonatedDaysAgo(56), models.ReasonEligible, "eligible for donation."},
	}

	for i, tc := range cases {
		s.Run(tc.name, func() {
			d := s.seed(tc.builder.WithEmail(fmt.Sprintf("rule%d@example.com", i)))

			result, err := s.svc.CheckEligibility(s.adminCtx(), d.ID)
			s.Require().NoError(err)
			s.Equal(tc.code, result.Verdict.Code)
			s.Equal(tc.reason, result.Verdict.Reason)
			s.Equal(tc.code == models.ReasonEligible, result.Verdict.Eligible)
		})
	}
}

func (s *DonorServiceSuite) TestStatisticsBucketsStoredDonors() {
	s.seed(ptestutil.NewDonorBuilder().
		WithEmail("young@example.com").
		WithName("Iris", "Moreau").
		WithBirthDate(2005, time.January, 1).
		WithBloodType(models.BloodTypeABNeg))
	s.seed(ptestutil.NewDonorBuilder().
		WithEmail("senior@example.com").
		WithBirthDate(1960, time.January, 1).
		Ineligible())

	stats, err := s.svc.Statistics(s.adminCtx())
	s.Require().NoError(err)

	s.Equal(2, stats.TotalDonors)
	s.Equal(1, stats.IneligibleDonors)
	s.Equal(1, stats.BloodTypeDistribution[models.BloodTypeABNeg])
	s.Equal(1, stats.BloodTypeDistribution[models.BloodTypeOPos])
	s.Equal(1, stats.AgeDistribution["16-25"])
	s.Equal(1, stats.AgeDistribution["56-65"])
}
