package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/tenantauth/internal/common"
	"github.com/dmitrijs2005/tenantauth/internal/server/api"
	"google.golang.org/grpc/status"
)

// TokenEnv is consulted by create-tenant when -token is not given.
const TokenEnv = "AUTHCTL_TOKEN"

// withRemote connects to the server for the duration of fn.
func (a *App) withRemote(fn func(r Remote) error) error {
	r, closer, err := a.dial(a.config.ServerEndpointAddr)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", a.config.ServerEndpointAddr, err)
	}
	defer closer.Close()
	return fn(r)
}

// describe turns a gRPC status into the server's error code.
func describe(op string, err error) error {
	if st, ok := status.FromError(err); ok {
		return fmt.Errorf("%s: %s (%s)", op, st.Message(), api.ErrorMessage(common.Code(st.Message())))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (a *App) ping(ctx context.Context, args []string) error {
	if err := parse(a.flags("ping"), args); err != nil {
		return err
	}
	return a.withRemote(func(r Remote) error {
		ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()

		resp, err := r.Ping(ctx)
		if err != nil {
			return describe("ping", err)
		}
		fmt.Fprintln(a.out, resp.Status)
		return nil
	})
}

// login runs the super-admin OTP flow and prints the session token.
func (a *App) login(ctx context.Context, args []string) error {
	fs := a.flags("login")
	mobile := fs.String("mobile", "", "super-admin mobile, E.164")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "mobile"); err != nil {
		return err
	}

	return a.withRemote(func(r Remote) error {
		reqCtx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		err := r.SuperAdminOtpRequest(reqCtx, *mobile)
		cancel()
		if err != nil {
			return describe("request code", err)
		}

		code, err := GetCode(a.reader, "Enter the code sent to "+*mobile, a.prompt)
		if err != nil {
			return err
		}

		reqCtx, cancel = context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()
		token, err := r.SuperAdminOtpVerify(reqCtx, *mobile, code)
		if err != nil {
			return describe("verify code", err)
		}
		fmt.Fprintln(a.out, token)
		return nil
	})
}

func (a *App) createTenant(ctx context.Context, args []string) error {
	fs := a.flags("create-tenant")
	token := fs.String("token", os.Getenv(TokenEnv), "super-admin session token")
	req := &api.CreateTenantRequest{}
	fs.StringVar(&req.TenantName, "name", "", "tenant name")
	fs.StringVar(&req.AdminFullName, "admin-name", "", "administrator full name")
	fs.StringVar(&req.AdminEmail, "admin-email", "", "administrator email")
	fs.StringVar(&req.AdminMobile, "admin-mobile", "", "administrator mobile, E.164")
	if err := parse(fs, args); err != nil {
		return err
	}
	if err := required(fs, "token", "name", "admin-name", "admin-email", "admin-mobile"); err != nil {
		return err
	}

	return a.withRemote(func(r Remote) error {
		ctx, cancel := context.WithTimeout(ctx, a.config.Timeout)
		defer cancel()

		id, err := r.CreateTenant(ctx, *token, req)
		if err != nil {
			return describe("create tenant", err)
		}
		fmt.Fprintf(a.out, "Tenant %s created, invite sent to %s\n", id, req.AdminEmail)
		return nil
	})
}
