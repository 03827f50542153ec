package grpc

import (
	"context"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/server/api"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

// Client calls AuthService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Dial opens a plaintext connection to addr.
func Dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
}

func (c *Client) invoke(ctx context.Context, method string, in, out any) error {
	return c.cc.Invoke(ctx, FullMethod(method), in, out, grpc.CallContentSubtype(CodecName))
}

func (c *Client) Ping(ctx context.Context) (*api.PingResponse, error) {
	out := &api.PingResponse{}
	if err := c.invoke(ctx, MethodPing, &api.PingRequest{}, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Login returns the session token for email and password.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	var data api.TokenData
	if err := c.call(ctx, MethodLogin, &api.LoginRequest{Email: email, Password: password}, &data); err != nil {
		return "", err
	}
	return data.Token, nil
}

func (c *Client) SuperAdminOtpRequest(ctx context.Context, mobile string) error {
	return c.call(ctx, MethodSuperAdminOtpRequest, &api.MobileRequest{Mobile: mobile}, nil)
}

// SuperAdminOtpVerify exchanges a super-admin code for a session token.
func (c *Client) SuperAdminOtpVerify(ctx context.Context, mobile, otp string) (string, error) {
	var data api.TokenData
	if err := c.call(ctx, MethodSuperAdminOtpVerify, &api.MobileOTPRequest{Mobile: mobile, OTP: otp}, &data); err != nil {
		return "", err
	}
	return data.Token, nil
}

// CreateTenant provisions a tenant on behalf of the holder of token.
func (c *Client) CreateTenant(ctx context.Context, token string, req *api.CreateTenantRequest) (string, error) {
	ctx = metadata.AppendToOutgoingContext(ctx, common.AccessTokenHeaderName, token)
	var data api.TenantData
	if err := c.call(ctx, MethodCreateTenant, req, &data); err != nil {
		return "", err
	}
	return data.TenantID, nil
}

// call invokes method and decodes the envelope's data into data.
func (c *Client) call(ctx context.Context, method string, in any, data any) error {
	out := &api.Response{Data: data}
	return c.invoke(ctx, method, in, out)
}
