package apperrors

import (
	"errors"
)

var (
	// Zoho credentials are checked lazily on the first token request.
	// Missing values mean a broken deployment, not a transient fault.
	ErrMissingCredentials = errors.New("zoho credentials are not configured")

	ErrTokenExchange = errors.New("token exchange with zoho accounts failed")

	ErrLeadAlreadyRecorded = errors.New("lead with this email already recorded")
	ErrLeadNotFound        = errors.New("lead not found")

	ErrFormTokenInvalid = errors.New("form token is invalid")
	ErrFormTokenExpired = errors.New("form token is expired")
)
