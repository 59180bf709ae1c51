package user

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"bloodbank/internal/auth/models"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
	"bloodbank/pkg/testutil"
)

type userStore interface {
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, userID id.UserID) error
	ListAll(ctx context.Context) ([]*models.User, error)
}

// UserStoreContractSuite is run against every user store backend.
type UserStoreContractSuite struct {
	suite.Suite
	newStore func(t *testing.T) userStore
	store    userStore
	ctx      context.Context
	base     time.Time
}

func (s *UserStoreContractSuite) SetupTest() {
	s.ctx = context.Background()
	s.store = s.newStore(s.T())
	s.base = time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
}

func (s *UserStoreContractSuite) newUser(email string, offset time.Duration) *models.User {
	return testutil.NewUserBuilder().
		WithEmail(email).
		WithPasswordHash("$2a$10$hash").
		CreatedAt(s.base.Add(offset)).
		Build()
}

func (s *UserStoreContractSuite) assertSameUser(want, got *models.User) {
	s.Equal(want.ID, got.ID)
	s.Equal(want.Email, got.Email)
	s.Equal(want.PasswordHash, got.PasswordHash)
	s.Equal(want.Role, got.Role)
	s.Equal(want.IsActive, got.IsActive)
	s.WithinDuration(want.CreatedAt, got.CreatedAt, time.Second)
	s.WithinDuration(want.UpdatedAt, got.UpdatedAt, time.Second)
}

func (s *UserStoreContractSuite) TestCreateAndFind() {
	user := s.newUser("jane.doe@example.com", 0)
	s.Require().NoError(s.store.Create(s.ctx, user))

	byID, err := s.store.FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.assertSameUser(user, byID)

	byEmail, err := s.store.FindByEmail(s.ctx, user.Email)
	s.Require().NoError(err)
	s.assertSameUser(user, byEmail)
}

func (s *UserStoreContractSuite) TestCreateDuplicateEmail() {
	s.Require().NoError(s.store.Create(s.ctx, s.newUser("dup@example.com", 0)))

	err := s.store.Create(s.ctx, s.newUser("dup@example.com", time.Minute))
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)
}

func (s *UserStoreContractSuite) TestFindNotFound() {
	_, err := s.store.FindByID(s.ctx, id.NewUserID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	_, err = s.store.FindByEmail(s.ctx, "missing@example.com")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *UserStoreContractSuite) TestUpdate() {
	user := s.newUser("before@example.com", 0)
	other := s.newUser("taken@example.com", time.Minute)
	s.Require().NoError(s.store.Create(s.ctx, user))
	s.Require().NoError(s.store.Create(s.ctx, other))

	s.Run("changes email role and status", func() {
		updated := *user
		updated.Email = "after@example.com"
		updated.Role = models.RoleAdmin
		updated.IsActive = false
		updated.UpdatedAt = s.base.Add(time.Hour)
		s.Require().NoError(s.store.Update(s.ctx, &updated))

		got, err := s.store.FindByEmail(s.ctx, "after@example.com")
		s.Require().NoError(err)
		s.assertSameUser(&updated, got)

		_, err = s.store.FindByEmail(s.ctx, "before@example.com")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("email owned by another user", func() {
		clash := *user
		clash.Email = other.Email
		s.ErrorIs(s.store.Update(s.ctx, &clash), sentinel.ErrAlreadyUsed)
	})

	s.Run("missing user", func() {
		s.ErrorIs(s.store.Update(s.ctx, s.newUser("ghost@example.com", 0)), sentinel.ErrNotFound)
	})
}

func (s *UserStoreContractSuite) TestDelete() {
	user := s.newUser("delete.me@example.com", 0)
	s.Require().NoError(s.store.Create(s.ctx, user))

	s.Require().NoError(s.store.Delete(s.ctx, user.ID))
	_, err := s.store.FindByID(s.ctx, user.ID)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.ErrorIs(s.store.Delete(s.ctx, user.ID), sentinel.ErrNotFound)

	s.Require().NoError(s.store.Create(s.ctx, s.newUser("delete.me@example.com", time.Minute)),
		"email is free again after delete")
}

func (s *UserStoreContractSuite) TestListAllOldestFirst() {
	second := s.newUser("second@example.com", time.Minute)
	first := s.newUser("first@example.com", 0)
	s.Require().NoError(s.store.Create(s.ctx, second))
	s.Require().NoError(s.store.Create(s.ctx, first))

	users, err := s.store.ListAll(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(users, 2)
	s.Equal(first.ID, users[0].ID)
	s.Equal(second.ID, users[1].ID)
}
