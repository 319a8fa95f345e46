package models

import "errors"

// Sentinel errors for common failure conditions
var (
	ErrNotFound       = errors.New("resource not found")
	ErrConflict       = errors.New("resource already exists")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrBadRequest     = errors.New("bad request")
	ErrInternalServer = errors.New("internal server error")

	// Authentication errors
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrMFACodeRequired    = errors.New("mfa code required")

	// OAuth errors
	ErrProviderLinkConflict = errors.New("provider account linked to a different user")
	ErrNoRefreshToken       = errors.New("no refresh token available")
	ErrRefreshFailed        = errors.New("provider token refresh failed")

	// Reorder errors
	ErrReorderFailed = errors.New("reorder persistence failed")
	ErrUnknownRecord = errors.New("unknown record in requested order")
)
