// Package api defines the request and response bodies shared by the HTTP
// and gRPC transports, and the service contracts they call.
package api

import (
	"context"

	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"github.com/dmitrijs2005/tenantauth/internal/server/services"
)

// Credentials is implemented by services.CredentialService.
type Credentials interface {
	Login(ctx context.Context, email, password string) (string, error)
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	SetPassword(ctx context.Context, token, newPassword string) error
}

// OTP is implemented by services.OTPService.
type OTP interface {
	MobileVerifyRequest(ctx context.Context, mobile string) error
	MobileVerifyConfirm(ctx context.Context, mobile, otp string) error
	PasswordOtpRequest(ctx context.Context, mobile string) error
	PasswordOtpVerify(ctx context.Context, mobile, otp, newPassword string) error
	SuperAdminOtpRequest(ctx context.Context, mobile string) error
	SuperAdminOtpVerify(ctx context.Context, mobile, otp string) (string, error)
}

// Tenants is implemented by services.TenantService.
type Tenants interface {
	CreateTenant(ctx context.Context, caller *auth.Claims, in services.CreateTenantInput) (string, error)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// PasswordTokenRequest is the body of reset-password and set-password.
type PasswordTokenRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type MobileRequest struct {
	Mobile string `json:"mobile"`
}

type MobileOTPRequest struct {
	Mobile string `json:"mobile"`
	OTP    string `json:"otp"`
}

type PasswordOTPVerifyRequest struct {
	Mobile      string `json:"mobile"`
	OTP         string `json:"otp"`
	NewPassword string `json:"newPassword"`
}

type CreateTenantRequest struct {
	TenantName    string `json:"tenantName"`
	AdminFullName string `json:"adminFullName"`
	AdminEmail    string `json:"adminEmail"`
	AdminMobile   string `json:"adminMobile"`
}

// Input converts the request to the service input.
func (r *CreateTenantRequest) Input() services.CreateTenantInput {
	return services.CreateTenantInput{
		TenantName:    r.TenantName,
		AdminFullName: r.AdminFullName,
		AdminEmail:    r.AdminEmail,
		AdminMobile:   r.AdminMobile,
	}
}

type TokenData struct {
	Token string `json:"token"`
}

type TenantData struct {
	TenantID string `json:"tenantId"`
}

// PingRequest is empty; PingResponse reports liveness.
type PingRequest struct{}

type PingResponse struct {
	Status string `json:"status"`
}
