package grpc

import (
	"context"

	"github.com/dmitrijs2005/tenantauth/internal/server/api"
	"google.golang.org/grpc"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "tenantauth.v1.AuthService"

// Method names.
const (
	MethodPing                 = "Ping"
	MethodLogin                = "Login"
	MethodForgotPassword       = "ForgotPassword"
	MethodResetPassword        = "ResetPassword"
	MethodSetPassword          = "SetPassword"
	MethodMobileVerifyRequest  = "MobileVerifyRequest"
	MethodMobileVerifyConfirm  = "MobileVerifyConfirm"
	MethodPasswordOtpRequest   = "PasswordOtpRequest"
	MethodPasswordOtpVerify    = "PasswordOtpVerify"
	MethodSuperAdminOtpRequest = "SuperAdminOtpRequest"
	MethodSuperAdminOtpVerify  = "SuperAdminOtpVerify"
	MethodCreateTenant         = "CreateTenant"
)

// FullMethod returns the path of method as seen by interceptors.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AuthServer is the server API of AuthService.
type AuthServer interface {
	Ping(context.Context, *api.PingRequest) (*api.PingResponse, error)
	Login(context.Context, *api.LoginRequest) (*api.Response, error)
	ForgotPassword(context.Context, *api.ForgotPasswordRequest) (*api.Response, error)
	ResetPassword(context.Context, *api.PasswordTokenRequest) (*api.Response, error)
	SetPassword(context.Context, *api.PasswordTokenRequest) (*api.Response, error)
	MobileVerifyRequest(context.Context, *api.MobileRequest) (*api.Response, error)
	MobileVerifyConfirm(context.Context, *api.MobileOTPRequest) (*api.Response, error)
	PasswordOtpRequest(context.Context, *api.MobileRequest) (*api.Response, error)
	PasswordOtpVerify(context.Context, *api.PasswordOTPVerifyRequest) (*api.Response, error)
	SuperAdminOtpRequest(context.Context, *api.MobileRequest) (*api.Response, error)
	SuperAdminOtpVerify(context.Context, *api.MobileOTPRequest) (*api.Response, error)
	CreateTenant(context.Context, *api.CreateTenantRequest) (*api.Response, error)
}

// unary adapts a typed AuthServer method to a grpc.MethodDesc.
func unary[Req, Resp any](name string, call func(AuthServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(AuthServer)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}

// ServiceDesc describes AuthService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AuthServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodPing, AuthServer.Ping),
		unary(MethodLogin, AuthServer.Login),
		unary(MethodForgotPassword, AuthServer.ForgotPassword),
		unary(MethodResetPassword, AuthServer.ResetPassword),
		unary(MethodSetPassword, AuthServer.SetPassword),
		unary(MethodMobileVerifyRequest, AuthServer.MobileVerifyRequest),
		unary(MethodMobileVerifyConfirm, AuthServer.MobileVerifyConfirm),
		unary(MethodPasswordOtpRequest, AuthServer.PasswordOtpRequest),
		unary(MethodPasswordOtpVerify, AuthServer.PasswordOtpVerify),
		unary(MethodSuperAdminOtpRequest, AuthServer.SuperAdminOtpRequest),
		unary(MethodSuperAdminOtpVerify, AuthServer.SuperAdminOtpVerify),
		unary(MethodCreateTenant, AuthServer.CreateTenant),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "tenantauth/v1/auth.json",
}
