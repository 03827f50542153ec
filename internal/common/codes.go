package common

import (
	"errors"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Code is the machine-readable error code sent to API callers.
type Code string

const (
	CodeValidationFailed      Code = "VALIDATION_FAILED"
	CodeUserNotFound          Code = "USER_NOT_FOUND"
	CodeSuperAdminNotFound    Code = "SUPER_ADMIN_NOT_FOUND"
	CodeInvalidPassword       Code = "INVALID_PASSWORD"
	CodeOTPInvalid            Code = "OTP_INVALID"
	CodeOTPInvalidOrExpired   Code = "OTP_INVALID_OR_EXPIRED"
	CodeTokenInvalidOrExpired Code = "TOKEN_INVALID_OR_EXPIRED"
	CodeMobileNotVerified     Code = "MOBILE_NOT_VERIFIED"
	CodeForbidden             Code = "FORBIDDEN"
	CodeUnauthorized          Code = "UNAUTHORIZED"
	CodeDuplicateEntry        Code = "DUPLICATE_ENTRY"
	CodeServerError           Code = "SERVER_ERROR"
)

var codeByError = []struct {
	err  error
	code Code
}{
	{ErrValidationFailed, CodeValidationFailed},
	{ErrUserNotFound, CodeUserNotFound},
	{ErrSuperAdminNotFound, CodeSuperAdminNotFound},
	{ErrInvalidPassword, CodeInvalidPassword},
	{ErrOTPInvalid, CodeOTPInvalid},
	{ErrOTPInvalidOrExpired, CodeOTPInvalidOrExpired},
	{ErrTokenInvalidOrExpired, CodeTokenInvalidOrExpired},
	{ErrMobileNotVerified, CodeMobileNotVerified},
	{ErrForbidden, CodeForbidden},
	{ErrTokenInvalid, CodeUnauthorized},
	{ErrDuplicateEntry, CodeDuplicateEntry},
}

// CodeOf maps an error returned by a service to its wire code.
// Anything that is not part of the taxonomy is reported as SERVER_ERROR.
func CodeOf(err error) Code {
	for _, c := range codeByError {
		if errors.Is(err, c.err) {
			return c.code
		}
	}
	return CodeServerError
}

// HTTPStatus maps a code to the HTTP status used by the REST API.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeValidationFailed,
		CodeOTPInvalid,
		CodeOTPInvalidOrExpired,
		CodeTokenInvalidOrExpired,
		CodeMobileNotVerified,
		CodeDuplicateEntry:
		return http.StatusBadRequest
	case CodeInvalidPassword, CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeForbidden:
		return http.StatusForbidden
	case CodeUserNotFound, CodeSuperAdminNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// GRPCCode maps a code to the gRPC status code used by the RPC API.
func (c Code) GRPCCode() codes.Code {
	switch c {
	case CodeValidationFailed,
		CodeOTPInvalid,
		CodeOTPInvalidOrExpired,
		CodeTokenInvalidOrExpired:
		return codes.InvalidArgument
	case CodeMobileNotVerified:
		return codes.FailedPrecondition
	case CodeDuplicateEntry:
		return codes.AlreadyExists
	case CodeInvalidPassword, CodeUnauthorized:
		return codes.Unauthenticated
	case CodeForbidden:
		return codes.PermissionDenied
	case CodeUserNotFound, CodeSuperAdminNotFound:
		return codes.NotFound
	default:
		return codes.Internal
	}
}
