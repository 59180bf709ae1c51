package seeder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	authmodels "bloodbank/internal/auth/models"
	donormodels "bloodbank/internal/donor/models"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/secrets"
)

// UserStore defines methods for seeding users
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*authmodels.User, error)
	Create(ctx context.Context, user *authmodels.User) error
}

// DonorStore defines methods for seeding donors
type DonorStore interface {
	Create(ctx context.Context, d *donormodels.Donor) error
	Count(ctx context.Context, filter donormodels.ListFilter) (int, error)
}

// Seeder creates the bootstrap admin and, optionally, demo donors.
type Seeder struct {
	users  UserStore
	donors DonorStore
	logger *slog.Logger
	now    func() time.Time
}

// New creates a new seeder. donors may be nil when demo data is disabled.
func New(users UserStore, donors DonorStore, logger *slog.Logger) *Seeder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Seeder{
		users:  users,
		donors: donors,
		logger: logger,
		now:    time.Now,
	}
}

// EnsureAdmin creates an admin account for email unless one already exists.
// An existing account is left untouched, whatever its role.
func (s *Seeder) EnsureAdmin(ctx context.Context, email, password string) (*authmodels.User, error) {
	email = authmodels.NormalizeEmail(email)
	existing, err := s.users.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return existing, nil
	case !errors.Is(err, sentinel.ErrNotFound):
		return nil, fmt.Errorf("look up admin: %w", err)
	}

	hash, err := secrets.Hash(password)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	admin := authmodels.NewUser(email, hash, authmodels.RoleAdmin, s.now().UTC())
	if err := s.users.Create(ctx, admin); err != nil {
		return nil, fmt.Errorf("create admin: %w", err)
	}
	s.logger.InfoContext(ctx, "admin user created", "email", email)
	return admin, nil
}

type demoDonor struct {
	first, last, email, phone, bloodType string
	age                                  int
	weight                               float64
	daysSinceDonation                    int // 0 = never donated
	eligible                             bool
}

var demoDonors = []demoDonor{
	{"Maria", "Garcia", "maria.garcia@example.com", "555-201-0001", "O+", 34, 62, 0, true},
	{"James", "Walker", "james.walker@example.com", "555-201-0002", "A-", 45, 81.5, 120, true},
	{"Aiko", "Tanaka", "aiko.tanaka@example.com", "555-201-0003", "B+", 27, 54, 30, true},
	{"Omar", "Haddad", "omar.haddad@example.com", "555-201-0004", "AB-", 58, 90, 200, true},
	{"Lena", "Schmidt", "lena.schmidt@example.com", "555-201-0005", "O-", 19, 49, 0, true},
	{"Carlos", "Mendez", "carlos.mendez@example.com", "555-201-0006", "A+", 67, 73, 400, false},
}

// SeedDemoDonors registers a fixed set of donors owned by owner. It does
// nothing when owner already has donors, so restarts are idempotent.
func (s *Seeder) SeedDemoDonors(ctx context.Context, owner id.UserID) (int, error) {
	if s.donors == nil {
		return 0, nil
	}
	existing, err := s.donors.Count(ctx, donormodels.ListFilter{CreatedBy: &owner})
	if err != nil {
		return 0, fmt.Errorf("count donors: %w", err)
	}
	if existing > 0 {
		return 0, nil
	}

	now := s.now().UTC()
	created := 0
	for _, d := range demoDonors {
		donor, err := donormodels.NewDonor(d.fields(now), owner, now)
		if err != nil {
			return created, fmt.Errorf("build demo donor %s: %w", d.email, err)
		}
		if err := s.donors.Create(ctx, donor); err != nil {
			if errors.Is(err, sentinel.ErrAlreadyUsed) {
				continue
			}
			return created, fmt.Errorf("create demo donor %s: %w", d.email, err)
		}
		created++
	}
	s.logger.InfoContext(ctx, "demo donors seeded", "count", created)
	return created, nil
}

func (d demoDonor) fields(now time.Time) donormodels.DonorFields {
	str := func(v string) *string { return &v }
	birth := now.AddDate(-d.age, 0, -10).Format(id.DateLayout)
	eligible := d.eligible
	f := donormodels.DonorFields{
		FirstName:  str(d.first),
		LastName:   str(d.last),
		Email:      str(d.email),
		Phone:      str(d.phone),
		BirthDate:  str(birth),
		BloodType:  str(d.bloodType),
		Weight:     donormodels.NewWeightInput(d.weight),
		IsEligible: &eligible,
	}
	if d.daysSinceDonation > 0 {
		f.LastDonationDate = str(now.AddDate(0, 0, -d.daysSinceDonation).Format(id.DateLayout))
	}
	return f
}
