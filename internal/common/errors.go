package common

import "errors"

var (
	// validation errors
	ErrValidation = errors.New("validation error")

	// auth errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotAuthenticated   = errors.New("not authenticated")
)
