// Package sentinel holds the storage-level errors shared by every store.
// Services map them to domain errors; handlers never see them.
package sentinel

import "errors"

var (
	// ErrNotFound means no record matched the key.
	ErrNotFound = errors.New("record not found")
	// ErrAlreadyUsed means a unique key (email, id) is taken.
	ErrAlreadyUsed = errors.New("unique key already used")
	// ErrInvalidState means the caller passed arguments the store cannot act on.
	ErrInvalidState = errors.New("invalid store argument")
)
