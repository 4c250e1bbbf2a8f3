package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create a user with an existing email
	ErrDuplicateEmail = errors.New("user with this email already exists")

	// ErrDuplicateUserName is returned when trying to create a user with an existing username
	ErrDuplicateUserName = errors.New("user with this username already exists")

	// ErrDuplicateToken is returned when trying to create a verification token that already exists
	ErrDuplicateToken = errors.New("verification token already exists")

	// ErrDuplicateKeys is returned when a user already has an active token key pair
	ErrDuplicateKeys = errors.New("token key pair already exists for user")
)
