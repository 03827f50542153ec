// Package common contains shared constants, sentinel errors and wire codes
// used across the tenantauth server, its transports and the admin CLI.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// session token on calls that require an authenticated caller.
const AccessTokenHeaderName = "access_token"

// BearerPrefix prefixes the session token in the HTTP Authorization header.
const BearerPrefix = "Bearer "
