package login

import (
	"errors"
)

var (
	// ErrInvalidCredentials is returned when username or password do not match.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUserInactive is returned when the account exists but is deactivated.
	ErrUserInactive = errors.New("user is inactive")

	// ErrInvalidFormData is returned when the request body can not be parsed.
	ErrInvalidFormData = errors.New("invalid form data")
)
