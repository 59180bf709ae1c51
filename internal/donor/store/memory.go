package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"bloodbank/internal/donor/models"
	id "bloodbank/pkg/domain"
	"bloodbank/pkg/platform/sentinel"
)

// InMemory stores donors in memory for development and tests.
// Records are copied on the way in and out so callers never share state with the store.
type InMemory struct {
	mu       sync.RWMutex
	donors   map[id.DonorID]*models.Donor
	emailIdx map[string]id.DonorID
}

// NewInMemory creates an empty in-memory donor store.
func NewInMemory() *InMemory {
	return &InMemory{
		donors:   make(map[id.DonorID]*models.Donor),
		emailIdx: make(map[string]id.DonorID),
	}
}

// Create inserts a donor, rejecting a duplicate email.
func (s *InMemory) Create(_ context.Context, d *models.Donor) error {
	if d == nil {
		return fmt.Errorf("donor is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.emailIdx[d.Email]; exists {
		return fmt.Errorf("donor email must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	if _, exists := s.donors[d.ID]; exists {
		return fmt.Errorf("donor id must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	s.donors[d.ID] = clone(d)
	s.emailIdx[d.Email] = d.ID
	return nil
}

// FindByID returns the donor with the given ID.
func (s *InMemory) FindByID(_ context.Context, donorID id.DonorID) (*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.donors[donorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(d), nil
}

// Update replaces a stored donor. An email change is checked against other donors.
func (s *InMemory) Update(_ context.Context, d *models.Donor) error {
	if d == nil {
		return fmt.Errorf("donor is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.donors[d.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.emailIdx[d.Email]; taken && owner != d.ID {
		return fmt.Errorf("donor email must be unique: %w", sentinel.ErrAlreadyUsed)
	}
	delete(s.emailIdx, existing.Email)
	s.donors[d.ID] = clone(d)
	s.emailIdx[d.Email] = d.ID
	return nil
}

// Delete removes a donor.
func (s *InMemory) Delete(_ context.Context, donorID id.DonorID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.donors[donorID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.emailIdx, d.Email)
	delete(s.donors, donorID)
	return nil
}

// List returns one page of donors matching the filter, oldest first.
func (s *InMemory) List(_ context.Context, filter models.ListFilter, page models.Page) ([]*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.matching(filter)
	start := page.Offset()
	if start >= len(matched) || page.PerPage <= 0 {
		return []*models.Donor{}, nil
	}
	end := min(start+page.PerPage, len(matched))
	out := make([]*models.Donor, 0, end-start)
	for _, d := range matched[start:end] {
		out = append(out, clone(d))
	}
	return out, nil
}

// Count returns the number of donors matching the filter.
func (s *InMemory) Count(_ context.Context, filter models.ListFilter) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.matching(filter)), nil
}

// ListAll returns every donor, oldest first.
func (s *InMemory) ListAll(_ context.Context) ([]*models.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := s.matching(models.ListFilter{})
	out := make([]*models.Donor, 0, len(matched))
	for _, d := range matched {
		out = append(out, clone(d))
	}
	return out, nil
}

// matching must be called with the lock held.
func (s *InMemory) matching(filter models.ListFilter) []*models.Donor {
	out := make([]*models.Donor, 0, len(s.donors))
	for _, d := range s.donors {
		if filter.CreatedBy != nil && d.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.BloodType != nil && d.BloodType != *filter.BloodType {
			continue
		}
		if filter.IsEligible != nil && d.IsEligible != *filter.IsEligible {
			continue
		}
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func clone(d *models.Donor) *models.Donor {
	c := *d
	if d.Phone != nil {
		v := *d.Phone
		c.Phone = &v
	}
	if d.MedicalNotes != nil {
		v := *d.MedicalNotes
		c.MedicalNotes = &v
	}
	if d.LastDonationDate != nil {
		v := *d.LastDonationDate
		c.LastDonationDate = &v
	}
	return &c
}
