package models

import (
	"strings"

	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/validation"
	"bloodbank/pkg/secrets"
)

// RegisterRequest creates a regular account. A role in the body is ignored.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

func (r *RegisterRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	if err := validation.Validate(r); err != nil {
		return err
	}
	return secrets.CheckPasswordStrength(r.Password)
}

// LoginRequest exchanges credentials for an access token.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,max=254"`
	Password string `json:"password" validate:"required,max=72"`
}

func (r *LoginRequest) Normalize() {
	r.Email = NormalizeEmail(r.Email)
}

func (r *LoginRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request is required")
	}
	return validation.Validate(r)
}

// UpdateUserRequest is an admin's partial update of an account.
// Nil fields are left unchanged.
type UpdateUserRequest struct {
	Email    *string `json:"email"`
	Role     *string `json:"role"`
	IsActive *bool   `json:"is_active"`
}

func (r *UpdateUserRequest) IsEmpty() bool {
	return r == nil || (r.Email == nil && r.Role == nil && r.IsActive == nil)
}

func (r *UpdateUserRequest) Normalize() {
	if r.Email != nil {
		email := NormalizeEmail(*r.Email)
		r.Email = &email
	}
	if r.Role != nil {
		role := strings.ToLower(strings.TrimSpace(*r.Role))
		r.Role = &role
	}
}

func (r *UpdateUserRequest) Validate() error {
	if r.IsEmpty() {
		return dErrors.New(dErrors.CodeBadRequest, "no data provided")
	}
	if r.Email != nil {
		if err := validation.CheckStringLength("email", *r.Email, validation.MaxEmailLength); err != nil {
			return err
		}
		if !validation.IsEmail(*r.Email) {
			return dErrors.New(dErrors.CodeValidation, "invalid email format")
		}
	}
	if r.Role != nil {
		if _, ok := ParseRole(*r.Role); !ok {
			return dErrors.New(dErrors.CodeValidation, "role must be one of [admin user]")
		}
	}
	return nil
}
