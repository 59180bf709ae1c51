// Package domain provides type-safe identifiers to prevent mixing up IDs at compile time.
package domain

import (
	"github.com/google/uuid"

	dErrors "bloodbank/pkg/domain-errors"
)

// Distinct ID types - compiler prevents passing UserID where DonorID is expected.
type (
	UserID  uuid.UUID
	DonorID uuid.UUID
)

// NewUserID returns a random user identifier.
func NewUserID() UserID { return UserID(uuid.New()) }

// NewDonorID returns a random donor identifier.
func NewDonorID() DonorID { return DonorID(uuid.New()) }

// Parse functions - use at trust boundaries (handlers, token claims).

func ParseUserID(s string) (UserID, error) {
	id, err := parseUUID(s, "user ID")
	return UserID(id), err
}

func ParseDonorID(s string) (DonorID, error) {
	id, err := parseUUID(s, "donor ID")
	return DonorID(id), err
}

func (id UserID) String() string  { return uuid.UUID(id).String() }
func (id DonorID) String() string { return uuid.UUID(id).String() }

func (id UserID) IsNil() bool  { return uuid.UUID(id) == uuid.Nil }
func (id DonorID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text encoding keeps IDs readable in JSON payloads and audit records.
// The nil ID encodes as an empty string and decodes back to nil.

func (id UserID) MarshalText() ([]byte, error)  { return marshalID(uuid.UUID(id)) }
func (id DonorID) MarshalText() ([]byte, error) { return marshalID(uuid.UUID(id)) }

func (id *UserID) UnmarshalText(b []byte) error  { return unmarshalID((*uuid.UUID)(id), b) }
func (id *DonorID) UnmarshalText(b []byte) error { return unmarshalID((*uuid.UUID)(id), b) }

func marshalID(u uuid.UUID) ([]byte, error) {
	if u == uuid.Nil {
		return []byte{}, nil
	}
	return []byte(u.String()), nil
}

func unmarshalID(dst *uuid.UUID, b []byte) error {
	if len(b) == 0 {
		*dst = uuid.Nil
		return nil
	}
	u, err := uuid.ParseBytes(b)
	if err != nil {
		return dErrors.New(dErrors.CodeInvalidInput, "invalid ID format")
	}
	*dst = u
	return nil
}

// parseUUID is the shared validation logic. The nil UUID is rejected so that
// an all-zero path parameter never reaches a store lookup.
func parseUUID(s, label string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be empty")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+label+" format")
	}
	if id == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, label+" cannot be nil")
	}
	return id, nil
}
