// Package config loads configuration for the authctl tool.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c/-config or $TENANTAUTH_CONFIG.
//  3. Environment variables (AUTHCTL_*, and the server's
//     TENANTAUTH_DATABASE_DSN / TENANTAUTH_BCRYPT_COST).
//  4. Global flags given before the command name.
//
// Global flags
//
//	-a string   address:port of the gRPC endpoint
//	-d string   PostgreSQL DSN used by seed-superadmin
//	-t int      request timeout (seconds)
//	-b int      bcrypt cost used by hash and seed-superadmin
//	-m bool     run migrations before seeding
//
// # JSON schema
//
//	{
//	  "server_endpoint_addr": "127.0.0.1:50051",
//	  "database_dsn": "postgres://...",
//	  "timeout": "10s",
//	  "bcrypt_cost": 12,
//	  "migrate": true
//	}
package config
