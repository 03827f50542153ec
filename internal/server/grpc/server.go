package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/tenantauth/internal/logging"
	"github.com/dmitrijs2005/tenantauth/internal/server/api"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"google.golang.org/grpc"
)

type GRPCServer struct {
	address  string
	creds    api.Credentials
	otp      api.OTP
	tenants  api.Tenants
	verifier *auth.Verifier
	logger   logging.Logger
}

func NewGRPCServer(a string, l logging.Logger, creds api.Credentials, otp api.OTP, tenants api.Tenants, v *auth.Verifier) *GRPCServer {
	return &GRPCServer{
		address:  a,
		logger:   l.With("module", "grpc_server"),
		creds:    creds,
		otp:      otp,
		tenants:  tenants,
		verifier: v,
	}
}

// newServer builds the grpc.Server with the service and interceptors
// registered.
func (s *GRPCServer) newServer() *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(s.accessTokenInterceptor))
	srv.RegisterService(&ServiceDesc, s)
	return srv
}

func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	return s.Serve(ctx, listen)
}

// Serve accepts connections on listen until ctx is cancelled.
func (s *GRPCServer) Serve(ctx context.Context, listen net.Listener) error {

	srv := s.newServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", listen.Addr().String())

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
