package grpc

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/logging"
	"github.com/dmitrijs2005/tenantauth/internal/server/api"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"github.com/dmitrijs2005/tenantauth/internal/server/services"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ---- fakes ----

type fakeCreds struct {
	token string
	err   error

	gotEmail, gotPassword, gotToken string
}

func (f *fakeCreds) Login(ctx context.Context, email, password string) (string, error) {
	f.gotEmail, f.gotPassword = email, password
	return f.token, f.err
}
func (f *fakeCreds) ForgotPassword(ctx context.Context, email string) error {
	f.gotEmail = email
	return f.err
}
func (f *fakeCreds) ResetPassword(ctx context.Context, token, newPassword string) error {
	f.gotToken, f.gotPassword = token, newPassword
	return f.err
}
func (f *fakeCreds) SetPassword(ctx context.Context, token, newPassword string) error {
	f.gotToken, f.gotPassword = token, newPassword
	return f.err
}

type fakeOTP struct {
	token string
	err   error

	gotMobile, gotOTP string
}

func (f *fakeOTP) MobileVerifyRequest(ctx context.Context, mobile string) error {
	f.gotMobile = mobile
	return f.err
}
func (f *fakeOTP) MobileVerifyConfirm(ctx context.Context, mobile, otp string) error {
	f.gotMobile, f.gotOTP = mobile, otp
	return f.err
}
func (f *fakeOTP) PasswordOtpRequest(ctx context.Context, mobile string) error {
	f.gotMobile = mobile
	return f.err
}
func (f *fakeOTP) PasswordOtpVerify(ctx context.Context, mobile, otp, newPassword string) error {
	f.gotMobile, f.gotOTP = mobile, otp
	return f.err
}
func (f *fakeOTP) SuperAdminOtpRequest(ctx context.Context, mobile string) error {
	f.gotMobile = mobile
	return f.err
}
func (f *fakeOTP) SuperAdminOtpVerify(ctx context.Context, mobile, otp string) (string, error) {
	f.gotMobile, f.gotOTP = mobile, otp
	return f.token, f.err
}

type fakeTenants struct {
	id  string
	err error

	gotCaller *auth.Claims
	gotInput  services.CreateTenantInput
}

func (f *fakeTenants) CreateTenant(ctx context.Context, caller *auth.Claims, in services.CreateTenantInput) (string, error) {
	f.gotCaller, f.gotInput = caller, in
	return f.id, f.err
}

// ---- helpers ----

func newServer(c api.Credentials, o api.OTP, tn api.Tenants) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop(), c, o, tn, nil)
}

func tokenData(t *testing.T, resp *api.Response) string {
	t.Helper()
	data, ok := resp.Data.(api.TokenData)
	if !ok {
		t.Fatalf("unexpected data: %#v", resp.Data)
	}
	return data.Token
}

// ---- tests ----

func TestPing_OK(t *testing.T) {
	s := newServer(&fakeCreds{}, &fakeOTP{}, &fakeTenants{})
	resp, err := s.Ping(context.Background(), &api.PingRequest{})
	if err != nil {
		t.Fatalf("Ping error: %v", err)
	}
	if resp.Status != "OK" {
		t.Fatalf("unexpected status: %q", resp.Status)
	}
}

func TestLogin_OK(t *testing.T) {
	c := &fakeCreds{token: "jwt"}
	s := newServer(c, &fakeOTP{}, &fakeTenants{})
	resp, err := s.Login(context.Background(), &api.LoginRequest{Email: "a@acme.io", Password: "pw"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if !resp.Success || resp.Message != api.MessageLoginSuccess {
		t.Fatalf("unexpected envelope: %+v", resp)
	}
	if got := tokenData(t, resp); got != "jwt" {
		t.Fatalf("unexpected token: %q", got)
	}
	if c.gotEmail != "a@acme.io" || c.gotPassword != "pw" {
		t.Fatalf("request not forwarded: %+v", c)
	}
}

func TestLogin_ErrorCodes(t *testing.T) {
	tests := []struct {
		err      error
		wantCode codes.Code
		wantMsg  string
	}{
		{common.ErrValidationFailed, codes.InvalidArgument, "VALIDATION_FAILED"},
		{common.ErrUserNotFound, codes.NotFound, "USER_NOT_FOUND"},
		{common.ErrInvalidPassword, codes.Unauthenticated, "INVALID_PASSWORD"},
		{errors.New("db down"), codes.Internal, "SERVER_ERROR"},
	}
	for _, tt := range tests {
		s := newServer(&fakeCreds{err: tt.err}, &fakeOTP{}, &fakeTenants{})
		_, err := s.Login(context.Background(), &api.LoginRequest{Email: "a", Password: "b"})
		if status.Code(err) != tt.wantCode {
			t.Fatalf("%v: want %v, got %v", tt.err, tt.wantCode, status.Code(err))
		}
		if status.Convert(err).Message() != tt.wantMsg {
			t.Fatalf("%v: want message %q, got %q", tt.err, tt.wantMsg, status.Convert(err).Message())
		}
	}
}

func TestPasswordTokenMethods(t *testing.T) {
	c := &fakeCreds{}
	s := newServer(c, &fakeOTP{}, &fakeTenants{})
	ctx := context.Background()

	resp, err := s.ResetPassword(ctx, &api.PasswordTokenRequest{Token: "t1", NewPassword: "p1"})
	if err != nil || resp.Message != api.MessagePasswordResetSuccess {
		t.Fatalf("ResetPassword: %+v, %v", resp, err)
	}
	if c.gotToken != "t1" || c.gotPassword != "p1" {
		t.Fatalf("reset request not forwarded: %+v", c)
	}

	resp, err = s.SetPassword(ctx, &api.PasswordTokenRequest{Token: "t2", NewPassword: "p2"})
	if err != nil || resp.Message != api.MessagePasswordSetSuccess {
		t.Fatalf("SetPassword: %+v, %v", resp, err)
	}

	resp, err = s.ForgotPassword(ctx, &api.ForgotPasswordRequest{Email: "a@acme.io"})
	if err != nil || resp.Message != api.MessageResetEmailSent || resp.Data != nil {
		t.Fatalf("ForgotPassword: %+v, %v", resp, err)
	}

	c.err = common.ErrTokenInvalidOrExpired
	_, err = s.SetPassword(ctx, &api.PasswordTokenRequest{Token: "t2", NewPassword: "p2"})
	if status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", status.Code(err))
	}
}

func TestOTPMethods(t *testing.T) {
	o := &fakeOTP{token: "root-jwt"}
	s := newServer(&fakeCreds{}, o, &fakeTenants{})
	ctx := context.Background()

	checks := []struct {
		name string
		call func() (*api.Response, error)
		want string
	}{
		{"mobile request", func() (*api.Response, error) {
			return s.MobileVerifyRequest(ctx, &api.MobileRequest{Mobile: "+1"})
		}, api.MessageOTPSent},
		{"mobile confirm", func() (*api.Response, error) {
			return s.MobileVerifyConfirm(ctx, &api.MobileOTPRequest{Mobile: "+1", OTP: "123456"})
		}, api.MessageMobileVerified},
		{"password request", func() (*api.Response, error) {
			return s.PasswordOtpRequest(ctx, &api.MobileRequest{Mobile: "+1"})
		}, api.MessageOTPSent},
		{"password verify", func() (*api.Response, error) {
			return s.PasswordOtpVerify(ctx, &api.PasswordOTPVerifyRequest{Mobile: "+1", OTP: "123456", NewPassword: "x"})
		}, api.MessagePasswordResetSuccess},
		{"super admin request", func() (*api.Response, error) {
			return s.SuperAdminOtpRequest(ctx, &api.MobileRequest{Mobile: "+1"})
		}, api.MessageOTPSent},
	}
	for _, c := range checks {
		resp, err := c.call()
		if err != nil {
			t.Fatalf("%s: unexpected err: %v", c.name, err)
		}
		if resp.Message != c.want {
			t.Fatalf("%s: want %q, got %q", c.name, c.want, resp.Message)
		}
	}

	resp, err := s.SuperAdminOtpVerify(ctx, &api.MobileOTPRequest{Mobile: "+1", OTP: "654321"})
	if err != nil {
		t.Fatalf("SuperAdminOtpVerify error: %v", err)
	}
	if got := tokenData(t, resp); got != "root-jwt" {
		t.Fatalf("unexpected token: %q", got)
	}
	if o.gotOTP != "654321" {
		t.Fatalf("otp not forwarded: %q", o.gotOTP)
	}
}

func TestOTPMethods_ErrorCodes(t *testing.T) {
	ctx := context.Background()

	s := newServer(&fakeCreds{}, &fakeOTP{err: common.ErrOTPInvalid}, &fakeTenants{})
	if _, err := s.MobileVerifyConfirm(ctx, &api.MobileOTPRequest{}); status.Code(err) != codes.InvalidArgument {
		t.Fatalf("want InvalidArgument, got %v", status.Code(err))
	}

	s = newServer(&fakeCreds{}, &fakeOTP{err: common.ErrMobileNotVerified}, &fakeTenants{})
	if _, err := s.PasswordOtpRequest(ctx, &api.MobileRequest{}); status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("want FailedPrecondition, got %v", status.Code(err))
	}

	s = newServer(&fakeCreds{}, &fakeOTP{err: common.ErrSuperAdminNotFound}, &fakeTenants{})
	if _, err := s.SuperAdminOtpRequest(ctx, &api.MobileRequest{}); status.Code(err) != codes.NotFound {
		t.Fatalf("want NotFound, got %v", status.Code(err))
	}
}

func TestCreateTenant_PassesClaimsFromContext(t *testing.T) {
	tn := &fakeTenants{id: "tenant-1"}
	s := newServer(&fakeCreds{}, &fakeOTP{}, tn)

	claims := &auth.Claims{Roles: auth.Roles{auth.RoleSuperAdmin}}
	ctx := auth.WithClaims(context.Background(), claims)
	resp, err := s.CreateTenant(ctx, &api.CreateTenantRequest{TenantName: "DPS", AdminEmail: "a@dps.io"})
	if err != nil {
		t.Fatalf("CreateTenant error: %v", err)
	}
	if data, ok := resp.Data.(api.TenantData); !ok || data.TenantID != "tenant-1" {
		t.Fatalf("unexpected data: %#v", resp.Data)
	}
	if tn.gotCaller != claims {
		t.Fatalf("claims not forwarded")
	}
	if tn.gotInput.TenantName != "DPS" || tn.gotInput.AdminEmail != "a@dps.io" {
		t.Fatalf("input not forwarded: %+v", tn.gotInput)
	}
}

func TestCreateTenant_WithoutClaims(t *testing.T) {
	tn := &fakeTenants{err: common.ErrForbidden}
	s := newServer(&fakeCreds{}, &fakeOTP{}, tn)

	_, err := s.CreateTenant(context.Background(), &api.CreateTenantRequest{})
	if status.Code(err) != codes.PermissionDenied {
		t.Fatalf("want PermissionDenied, got %v", status.Code(err))
	}
	if tn.gotCaller != nil {
		t.Fatalf("expected nil caller, got %+v", tn.gotCaller)
	}
}
