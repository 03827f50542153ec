package grpc

import (
	"context"
	"strings"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// protectedMethods require a verified session token.
var protectedMethods = map[string]bool{
	FullMethod(MethodCreateTenant): true,
}

func (s *GRPCServer) accessTokenInterceptor(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {

	if protectedMethods[info.FullMethod] {

		accessToken := tokenFromMetadata(ctx)
		if len(accessToken) == 0 {
			return nil, status.Error(codes.Unauthenticated, "missing token")
		}

		claims, err := s.verifier.Verify(accessToken)
		if err != nil {
			s.logger.Warn(ctx, "rejected access token", "method", info.FullMethod, "error", err)
			return nil, status.Error(codes.Unauthenticated, string(common.CodeUnauthorized))
		}

		ctx = auth.WithClaims(ctx, claims)

	}

	return handler(ctx, req)
}

// tokenFromMetadata reads access_token, falling back to a bearer
// authorization header.
func tokenFromMetadata(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return ""
	}
	if values := md.Get(common.AccessTokenHeaderName); len(values) > 0 {
		return values[0]
	}
	if values := md.Get("authorization"); len(values) > 0 {
		if token, ok := strings.CutPrefix(values[0], common.BearerPrefix); ok {
			return token
		}
	}
	return ""
}
