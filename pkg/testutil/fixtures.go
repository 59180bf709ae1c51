package testutil

import (
	"time"

	"github.com/google/uuid"

	authmodels "bloodbank/internal/auth/models"
	donormodels "bloodbank/internal/donor/models"
	id "bloodbank/pkg/domain"
)

// TestIDs provides convenient pre-generated IDs for tests.
// Use these for deterministic test data.
var TestIDs = struct {
	UserID1  id.UserID
	UserID2  id.UserID
	DonorID1 id.DonorID
	DonorID2 id.DonorID
}{
	UserID1:  id.UserID(uuid.MustParse("11111111-1111-1111-1111-111111111111")),
	UserID2:  id.UserID(uuid.MustParse("22222222-2222-2222-2222-222222222222")),
	DonorID1: id.DonorID(uuid.MustParse("dddd0000-0000-0000-0000-000000000001")),
	DonorID2: id.DonorID(uuid.MustParse("dddd0000-0000-0000-0000-000000000002")),
}

// FixedNow is the reference instant fixtures are built around.
var FixedNow = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

// UserBuilder provides a fluent interface for building test users.
type UserBuilder struct {
	user *authmodels.User
}

// NewUserBuilder creates a new UserBuilder with sensible defaults.
func NewUserBuilder() *UserBuilder {
	return &UserBuilder{
		user: &authmodels.User{
			ID:        id.NewUserID(),
			Email:     "test@example.com",
			Role:      authmodels.RoleUser,
			IsActive:  true,
			CreatedAt: FixedNow,
			UpdatedAt: FixedNow,
		},
	}
}

func (b *UserBuilder) WithID(userID id.UserID) *UserBuilder {
	b.user.ID = userID
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) WithPasswordHash(hash string) *UserBuilder {
	b.user.PasswordHash = hash
	return b
}

func (b *UserBuilder) Admin() *UserBuilder {
	b.user.Role = authmodels.RoleAdmin
	return b
}

func (b *UserBuilder) Inactive() *UserBuilder {
	b.user.IsActive = false
	return b
}

func (b *UserBuilder) CreatedAt(t time.Time) *UserBuilder {
	b.user.CreatedAt = t
	b.user.UpdatedAt = t
	return b
}

func (b *UserBuilder) Build() *authmodels.User {
	return b.user
}

// DonorBuilder provides a fluent interface for building test donors.
// The default donor is eligible on FixedNow.
type DonorBuilder struct {
	donor *donormodels.Donor
}

// NewDonorBuilder creates a new DonorBuilder with sensible defaults.
func NewDonorBuilder() *DonorBuilder {
	return &DonorBuilder{
		donor: &donormodels.Donor{
			ID:         id.NewDonorID(),
			FirstName:  "Ana",
			LastName:   "Lopez",
			Email:      "ana@example.com",
			BirthDate:  time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
			BloodType:  donormodels.BloodTypeOPos,
			Weight:     70,
			IsEligible: true,
			CreatedBy:  TestIDs.UserID1,
			CreatedAt:  FixedNow,
			UpdatedAt:  FixedNow,
		},
	}
}

func (b *DonorBuilder) WithID(donorID id.DonorID) *DonorBuilder {
	b.donor.ID = donorID
	return b
}

func (b *DonorBuilder) WithEmail(email string) *DonorBuilder {
	b.donor.Email = email
	return b
}

func (b *DonorBuilder) WithName(firstName, lastName string) *DonorBuilder {
	b.donor.FirstName = firstName
	b.donor.LastName = lastName
	return b
}

func (b *DonorBuilder) WithBirthDate(year int, month time.Month, day int) *DonorBuilder {
	b.donor.BirthDate = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return b
}

func (b *DonorBuilder) WithBloodType(bt donormodels.BloodType) *DonorBuilder {
	b.donor.BloodType = bt
	return b
}

func (b *DonorBuilder) WithWeight(kg float64) *DonorBuilder {
	b.donor.Weight = kg
	return b
}

func (b *DonorBuilder) LastDonatedDaysAgo(days int) *DonorBuilder {
	d := time.Date(FixedNow.Year(), FixedNow.Month(), FixedNow.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, -days)
	b.donor.LastDonationDate = &d
	return b
}

func (b *DonorBuilder) Ineligible() *DonorBuilder {
	b.donor.IsEligible = false
	return b
}

func (b *DonorBuilder) OwnedBy(userID id.UserID) *DonorBuilder {
	b.donor.CreatedBy = userID
	return b
}

func (b *DonorBuilder) CreatedAt(t time.Time) *DonorBuilder {
	b.donor.CreatedAt = t
	b.donor.UpdatedAt = t
	return b
}

func (b *DonorBuilder) Build() *donormodels.Donor {
	return b.donor
}
