package api

import (
	"github.com/dmitrijs2005/tenantauth/internal/common"
)

// Success messages.
const (
	MessageLoginSuccess         = "LOGIN_SUCCESS"
	MessageResetEmailSent       = "RESET_EMAIL_SENT"
	MessagePasswordResetSuccess = "PASSWORD_RESET_SUCCESS"
	MessagePasswordSetSuccess   = "PASSWORD_SET_SUCCESS"
	MessageOTPSent              = "OTP_SENT"
	MessageMobileVerified       = "MOBILE_VERIFIED"
	MessageTenantCreated        = "TENANT_CREATED"
)

// Response is the envelope every endpoint answers with. Successful
// responses carry Message and optionally Data; failures carry Code and a
// human-readable Message.
type Response struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// OK builds a success envelope.
func OK(message string, data any) *Response {
	return &Response{Success: true, Message: message, Data: data}
}

// Fail builds the error envelope for err.
func Fail(err error) *Response {
	code := common.CodeOf(err)
	return FailCode(code, ErrorMessage(code))
}

// FailCode builds an error envelope with an explicit message.
func FailCode(code common.Code, message string) *Response {
	return &Response{Code: string(code), Message: message}
}

var errorMessages = map[common.Code]string{
	common.CodeValidationFailed:      "Required fields are missing or invalid",
	common.CodeUserNotFound:          "User not found",
	common.CodeSuperAdminNotFound:    "Super admin not found",
	common.CodeInvalidPassword:       "Incorrect email or password",
	common.CodeOTPInvalid:            "Incorrect OTP",
	common.CodeOTPInvalidOrExpired:   "OTP expired or invalid",
	common.CodeTokenInvalidOrExpired: "Token expired or invalid",
	common.CodeMobileNotVerified:     "Mobile not verified",
	common.CodeForbidden:             "Only platform super admins may do this",
	common.CodeUnauthorized:          "Invalid token",
	common.CodeDuplicateEntry:        "Tenant or admin already exists",
}

// ErrorMessage returns the default message for code.
func ErrorMessage(code common.Code) string {
	if m, ok := errorMessages[code]; ok {
		return m
	}
	return "Unable to process the request right now"
}
