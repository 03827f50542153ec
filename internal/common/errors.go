package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// ErrorInternal is the catch-all for unexpected store, hash or sign failures.
	ErrorInternal = errors.New("internal error")

	// Input errors.
	ErrValidationFailed = errors.New("validation failed")

	// Lookup errors. Never returned from token or OTP redemption paths.
	ErrUserNotFound       = errors.New("user not found")
	ErrSuperAdminNotFound = errors.New("super admin not found")

	// Credential errors.
	ErrInvalidPassword       = errors.New("invalid password")
	ErrOTPInvalid            = errors.New("otp invalid")
	ErrOTPInvalidOrExpired   = errors.New("otp invalid or expired")
	ErrTokenInvalidOrExpired = errors.New("token invalid or expired")
	ErrMobileNotVerified     = errors.New("mobile not verified")

	// Authorization errors.
	ErrForbidden    = errors.New("forbidden")
	ErrTokenInvalid = errors.New("invalid token")

	// Provisioning conflicts (unique email, mobile or tenant name).
	ErrDuplicateEntry = errors.New("duplicate entry")
)
