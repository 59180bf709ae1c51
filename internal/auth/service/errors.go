package service

import (
	"errors"

	dErrors "bloodbank/pkg/domain-errors"
	"bloodbank/pkg/platform/sentinel"
)

var errInvalidCredentials = dErrors.New(dErrors.CodeUnauthorized, "invalid credentials")

// wrapUserErr translates store sentinels into domain errors. Existing domain
// errors pass through unchanged.
func wrapUserErr(err error, action string) error {
	var de *dErrors.Error
	switch {
	case errors.As(err, &de):
		return err
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.New(dErrors.CodeConflict, "a user with this email already exists")
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, action)
	}
}
