package grpc

import (
	"context"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/server/api"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"google.golang.org/grpc/status"
)

// toStatus converts a service error to a gRPC status whose message is the
// wire code, so clients can tell failures apart without parsing text.
func toStatus(err error) error {
	code := common.CodeOf(err)
	return status.Error(code.GRPCCode(), string(code))
}

func (s *GRPCServer) Ping(ctx context.Context, req *api.PingRequest) (*api.PingResponse, error) {
	return &api.PingResponse{Status: "OK"}, nil
}

func (s *GRPCServer) Login(ctx context.Context, req *api.LoginRequest) (*api.Response, error) {
	token, err := s.creds.Login(ctx, req.Email, req.Password)
	if err != nil {
		return nil, toStatus(err)
	}
	return api.OK(api.MessageLoginSuccess, api.TokenData{Token: token}), nil
}

func (s *GRPCServer) ForgotPassword(ctx context.Context, req *api.ForgotPasswordRequest) (*api.Response, error) {
	if err := s.creds.ForgotPassword(ctx, req.Email); err != nil {
		return nil, toStatus(err)
	}
	return api.OK(api.MessageResetEmailSent, nil), nil
}

func (s *GRPCServer) ResetPassword(ctx context.Context, req *api.PasswordTokenRequest) (*api.Response, error) {
	if err := s.creds.ResetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, toStatus(err)
	}
	return api.OK(api.MessagePasswordResetSuccess, nil), nil
}

func (s *GRPCServer) SetPassword(ctx context.Context, req *api.PasswordTokenRequest) (*api.Response, error) {
	if err := s.creds.SetPassword(ctx, req.Token, req.NewPassword); err != nil {
		return nil, toStatus(err)
	}
	return api.OK(api.MessagePasswordSetSuccess, nil), nil
}

func (s *GRPCServer) MobileVerifyRequest(ctx context.Context, req *api.MobileRequest) (*api.Response, error) {
	if err := s.otp.MobileVerifyRequest(ctx, req.Mobile); err != nil {
		return nil, toStatus(err)
	}
	return api.OK(api.MessageOTPSent, nil), nil
}

func (s *GRPCServer) MobileVerifyConfirm(ctx context.Context, req *api.MobileOTPRequest) (*api.Response, error) {
	if err := s.otp.MobileVerifyConfirm(ctx, req.Mobile, req.OTP); err != nil {
		return nil, toStatus(err)
	}
	return api.OK(api.MessageMobileVerified, nil), nil
}

func (s *GRPCServer) PasswordOtpRequest(ctx context.Context, req *api.MobileRequest) (*api.Response, error) {
	if err := s.otp.PasswordOtpRequest(ctx, req.Mobile); err != nil {
		return nil, toStatus(err)
	}
	return api.OK(api.MessageOTPSent, nil), nil
}

func (s *GRPCServer) PasswordOtpVerify(ctx context.Context, req *api.PasswordOTPVerifyRequest) (*api.Response, error) {
	if err := s.otp.PasswordOtpVerify(ctx, req.Mobile, req.OTP, req.NewPassword); err != nil {
		return nil, toStatus(err)
	}
	return api.OK(api.MessagePasswordResetSuccess, nil), nil
}

func (s *GRPCServer) SuperAdminOtpRequest(ctx context.Context, req *api.MobileRequest) (*api.Response, error) {
	if err := s.otp.SuperAdminOtpRequest(ctx, req.Mobile); err != nil {
		return nil, toStatus(err)
	}
	return api.OK(api.MessageOTPSent, nil), nil
}

func (s *GRPCServer) SuperAdminOtpVerify(ctx context.Context, req *api.MobileOTPRequest) (*api.Response, error) {
	token, err := s.otp.SuperAdminOtpVerify(ctx, req.Mobile, req.OTP)
	if err != nil {
		return nil, toStatus(err)
	}
	return api.OK(api.MessageLoginSuccess, api.TokenData{Token: token}), nil
}

// CreateTenant expects the interceptor to have put the caller's claims in
// ctx; without them the service answers Forbidden.
func (s *GRPCServer) CreateTenant(ctx context.Context, req *api.CreateTenantRequest) (*api.Response, error) {
	caller, _ := auth.ClaimsFromContext(ctx)
	id, err := s.tenants.CreateTenant(ctx, caller, req.Input())
	if err != nil {
		return nil, toStatus(err)
	}
	return api.OK(api.MessageTenantCreated, api.TenantData{TenantID: id}), nil
}
