package grpc

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/logging"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

var (
	keyOnce sync.Once
	key     *rsa.PrivateKey
)

func testSigner(t *testing.T) *auth.Signer {
	t.Helper()
	keyOnce.Do(func() {
		var err error
		if key, err = rsa.GenerateKey(rand.Reader, 2048); err != nil {
			panic(err)
		}
	})
	s, err := auth.NewSigner(key, "tenantauth", time.Hour)
	if err != nil {
		t.Fatalf("NewSigner error: %v", err)
	}
	return s
}

// helper to build server
func newTestServer(t *testing.T) (*GRPCServer, *auth.Signer) {
	signer := testSigner(t)
	return &GRPCServer{
		logger:   logging.Nop(),
		verifier: signer.Verifier(),
	}, signer
}

var createTenantInfo = &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodCreateTenant)}

func TestInterceptor_PublicMethod_AllowsWithoutToken(t *testing.T) {
	s, _ := newTestServer(t)

	ctx := context.Background()
	info := &grpc.UnaryServerInfo{FullMethod: FullMethod(MethodLogin)}
	handlerCalled := false

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		handlerCalled = true
		return "ok", nil
	}

	resp, err := s.accessTokenInterceptor(ctx, nil, info, h)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !handlerCalled {
		t.Fatal("handler was not called")
	}
	if resp != "ok" {
		t.Fatalf("unexpected handler resp: %v", resp)
	}
}

func TestInterceptor_CreateTenant_MissingToken(t *testing.T) {
	s, _ := newTestServer(t)

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called when token missing")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(context.Background(), nil, createTenantInfo, h)
	if err == nil {
		t.Fatal("expected error")
	}
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "missing token" {
		t.Fatalf("expected 'missing token', got %q", status.Convert(err).Message())
	}
}

func TestInterceptor_CreateTenant_InvalidToken(t *testing.T) {
	s, _ := newTestServer(t)

	md := metadata.New(map[string]string{
		common.AccessTokenHeaderName: "not-a-valid-jwt",
	})
	ctx := metadata.NewIncomingContext(context.Background(), md)

	h := func(ctx context.Context, req interface{}) (interface{}, error) {
		t.Fatal("handler should not be called for invalid token")
		return nil, nil
	}

	_, err := s.accessTokenInterceptor(ctx, nil, createTenantInfo, h)
	if status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated, got %v", status.Code(err))
	}
	if status.Convert(err).Message() != "UNAUTHORIZED" {
		t.Fatalf("unexpected message %q", status.Convert(err).Message())
	}
}

func TestInterceptor_CreateTenant_ValidToken_SetsClaims(t *testing.T) {
	s, signer := newTestServer(t)

	token, err := signer.Issue(auth.Subject{UserID: "root", Roles: auth.Roles{auth.RoleSuperAdmin}})
	if err != nil {
		t.Fatalf("Issue error: %v", err)
	}

	for name, md := range map[string]metadata.MD{
		"access_token":  metadata.Pairs(common.AccessTokenHeaderName, token),
		"authorization": metadata.Pairs("authorization", common.BearerPrefix+token),
	} {
		t.Run(name, func(t *testing.T) {
			ctx := metadata.NewIncomingContext(context.Background(), md)

			var got *auth.Claims
			h := func(ctx context.Context, req interface{}) (interface{}, error) {
				got, _ = auth.ClaimsFromContext(ctx)
				return "ok", nil
			}

			resp, err := s.accessTokenInterceptor(ctx, nil, createTenantInfo, h)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp != "ok" {
				t.Fatalf("unexpected handler resp: %v", resp)
			}
			if got == nil || got.Subject != "root" || !got.Roles.Has(auth.RoleSuperAdmin) {
				t.Fatalf("claims not propagated in context: %+v", got)
			}
		})
	}
}
