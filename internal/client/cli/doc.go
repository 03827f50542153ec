// Package cli implements authctl, the operator tool for the tenantauth
// service.
//
// Local commands work without a running server:
//   - keygen: write an RS256 key pair as PEM files
//   - hash: print the bcrypt hash of a password read from the terminal
//   - seed-superadmin: insert the platform super-admin into the database
//
// Remote commands talk to the gRPC endpoint:
//   - ping
//   - login: obtain a super-admin session token via an SMS code
//   - create-tenant: provision a tenant and its administrator
//
// Commands are run with App.Run(ctx, args), where args starts with the
// command name.
package cli
