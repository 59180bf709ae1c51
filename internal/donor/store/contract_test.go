package store

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bloodbank/internal/donor/models"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/testutil"
)

type donorStore interface {
	Create(ctx context.Context, d *models.Donor) error
	FindByID(ctx context.Context, donorID id.DonorID) (*models.Donor, error)
	Update(ctx context.Context, d *models.Donor) error
	Delete(ctx context.Context, donorID id.DonorID) error
	List(ctx context.Context, filter models.ListFilter, page models.Page) ([]*models.Donor, error)
	Count(ctx context.Context, filter models.ListFilter) (int, error)
	ListAll(ctx context.Context) ([]*models.Donor, error)
}

// fixture supplies a fresh store plus two users that may own donors.
type fixture struct {
	store donorStore
	owner id.UserID
	other id.UserID
}

// StoreContractSuite is run against every donor store backend.
type StoreContractSuite struct {
	suite.Suite
	newFixture func(t *testing.T) fixture
	fx         fixture
	ctx        context.Context
	base       time.Time
}

func (s *StoreContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.fx = s.newFixture(s.T())
	s.base = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
}

func (s *StoreContractSuite) newDonor(email string, owner id.UserID, offset time.Duration) *models.Donor {
	phone := "+1 555 123 4567"
	last := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)
	return &models.Donor{
		ID:               id.NewDonorID(),
		FirstName:        "Ana",
		LastName:         "Silva",
		Email:            email,
		Phone:            &phone,
		BirthDate:        time.Date(1990, 3, 4, 0, 0, 0, 0, time.UTC),
		BloodType:        models.BloodTypeOPos,
		Weight:           72.5,
		LastDonationDate: &last,
		IsEligible:       true,
		CreatedBy:        owner,
		CreatedAt:        s.base.Add(offset),
		UpdatedAt:        s.base.Add(offset),
	}
}

func (s *StoreContractSuite) TestCreateAndFind() {
	d := s.newDonor("ana@example.com", s.fx.owner, 0)
	s.Require().NoError(s.fx.store.Create(s.ctx, d))

	found, err := s.fx.store.FindByID(s.ctx, d.ID)
	s.Require().NoError(err)
	s.Equal(d.ID, found.ID)
	s.Equal("ana@example.com", found.Email)
	s.Equal(d.BirthDate, found.BirthDate)
	s.Require().NotNil(found.LastDonationDate)
	s.Equal(*d.LastDonationDate, *found.LastDonationDate)
	s.Require().NotNil(found.Phone)
	s.Equal(*d.Phone, *found.Phone)
	s.Nil(found.MedicalNotes)
	s.Equal(d.CreatedBy, found.CreatedBy)
	s.InDelta(72.5, found.Weight, 0.0001)
	s.True(found.CreatedAt.Equal(d.CreatedAt))
}

func (s *StoreContractSuite) TestCreateDuplicateEmail() {
	s.Require().NoError(s.fx.store.Create(s.ctx, s.newDonor("dup@example.com", s.fx.owner, 0)))

	err := s.fx.store.Create(s.ctx, s.newDonor("dup@example.com", s.fx.other, time.Minute))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *StoreContractSuite) TestFindMissing() {
	_, err := s.fx.store.FindByID(s.ctx, id.NewDonorID())
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *StoreContractSuite) TestUpdate() {
	a := s.newDonor("a@example.com", s.fx.owner, 0)
	b := s.newDonor("b@example.com", s.fx.owner, time.Minute)
	s.Require().NoError(s.fx.store.Create(s.ctx, a))
	s.Require().NoError(s.fx.store.Create(s.ctx, b))

	s.Run("own email and cleared optionals", func() {
		notes := "iron supplements"
		a.Phone = nil
		a.LastDonationDate = nil
		a.MedicalNotes = &notes
		a.IsEligible = false
		s.Require().NoError(s.fx.store.Update(s.ctx, a))

		found, err := s.fx.store.FindByID(s.ctx, a.ID)
		s.Require().NoError(err)
		s.Nil(found.Phone)
		s.Nil(found.LastDonationDate)
		s.Require().NotNil(found.MedicalNotes)
		s.Equal(notes, *found.MedicalNotes)
		s.False(found.IsEligible)
	})

	s.Run("email taken by another donor", func() {
		a.Email = "b@example.com"
		err := s.fx.store.Update(s.ctx, a)
		s.ErrorIs(err, sentinel.ErrAlreadyUsed)
		a.Email = "a@example.com"
	})

	s.Run("email change frees the old address", func() {
		a.Email = "a2@example.com"
		s.Require().NoError(s.fx.store.Update(s.ctx, a))
		s.NoError(s.fx.store.Create(s.ctx, s.newDonor("a@example.com", s.fx.other, 2*time.Minute)))
	})

	s.Run("missing donor", func() {
		ghost := s.newDonor("ghost@example.com", s.fx.owner, 0)
		s.ErrorIs(s.fx.store.Update(s.ctx, ghost), sentinel.ErrNotFound)
	})
}

func (s *StoreContractSuite) TestDelete() {
	d := s.newDonor("gone@example.com", s.fx.owner, 0)
	s.Require().NoError(s.fx.store.Create(s.ctx, d))

	s.Require().NoError(s.fx.store.Delete(s.ctx, d.ID))
	_, err := s.fx.store.FindByID(s.ctx, d.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.fx.store.Delete(s.ctx, d.ID), sentinel.ErrNotFound)

	// The email can be reused once the donor is gone.
	s.NoError(s.fx.store.Create(s.ctx, s.newDonor("gone@example.com", s.fx.owner, time.Minute)))
}

func (s *StoreContractSuite) TestListAndCount() {
	emails := []string{"d0@example.com", "d1@example.com", "d2@example.com", "d3@example.com", "d4@example.com"}
	for i, email := range emails {
		owner := s.fx.owner
		if i%2 == 1 {
			owner = s.fx.other
		}
		d := s.newDonor(email, owner, time.Duration(i)*time.Minute)
		if i == 4 {
			d.BloodType = models.BloodTypeABNeg
			d.IsEligible = false
		}
		s.Require().NoError(s.fx.store.Create(s.ctx, d))
	}

	s.Run("pages are ordered oldest first", func() {
		page1, err := s.fx.store.List(s.ctx, models.ListFilter{}, models.Page{Number: 1, PerPage: 2})
		s.Require().NoError(err)
		s.Require().Len(page1, 2)
		s.Equal("d0@example.com", page1[0].Email)
		s.Equal("d1@example.com", page1[1].Email)

		page3, err := s.fx.store.List(s.ctx, models.ListFilter{}, models.Page{Number: 3, PerPage: 2})
		s.Require().NoError(err)
		s.Require().Len(page3, 1)
		s.Equal("d4@example.com", page3[0].Email)

		beyond, err := s.fx.store.List(s.ctx, models.ListFilter{}, models.Page{Number: 9, PerPage: 2})
		s.Require().NoError(err)
		s.Empty(beyond)

		overflowing, err := s.fx.store.List(s.ctx, models.ListFilter{}, models.Page{Number: math.MaxInt/2 + 2, PerPage: 2})
		s.Require().NoError(err)
		s.Empty(overflowing)
	})

	s.Run("owner filter", func() {
		owner := s.fx.owner
		filter := models.ListFilter{CreatedBy: &owner}
		n, err := s.fx.store.Count(s.ctx, filter)
		s.Require().NoError(err)
		s.Equal(3, n)

		donors, err := s.fx.store.List(s.ctx, filter, models.Page{Number: 1, PerPage: 10})
		s.Require().NoError(err)
		s.Len(donors, 3)
		for _, d := range donors {
			s.Equal(owner, d.CreatedBy)
		}
	})

	s.Run("blood type and eligibility filters", func() {
		bt := models.BloodTypeABNeg
		n, err := s.fx.store.Count(s.ctx, models.ListFilter{BloodType: &bt})
		s.Require().NoError(err)
		s.Equal(1, n)

		eligible := true
		n, err = s.fx.store.Count(s.ctx, models.ListFilter{IsEligible: &eligible})
		s.Require().NoError(err)
		s.Equal(4, n)

		owner := s.fx.owner
		ineligible := false
		n, err = s.fx.store.Count(s.ctx, models.ListFilter{CreatedBy: &owner, IsEligible: &ineligible, BloodType: &bt})
		s.Require().NoError(err)
		s.Equal(1, n)
	})

	s.Run("list all", func() {
		all, err := s.fx.store.ListAll(s.ctx)
		s.Require().NoError(err)
		s.Len(all, 5)
		s.Equal("d0@example.com", all[0].Email)
	})
}

func (s *StoreContractSuite) TestConcurrentCreateSameEmail() {
	const goroutines = 10
	res := testutil.Race(goroutines, func(int) error {
		d := testutil.NewDonorBuilder().
			WithEmail("race@example.com").
			OwnedBy(s.fx.owner).
			CreatedAt(s.base).
			Build()
		return s.fx.store.Create(s.ctx, d)
	})

	s.Equal(1, res.Successes)
	s.Equal(goroutines-1, res.Conflicts)
	s.Zero(res.Errors)

	n, err := s.fx.store.Count(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Equal(1, n)
}
