package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/tenantauth/internal/flagx"
)

var serverFlags = []string{"-a", "-w", "-d", "-k", "-p", "-i", "-t", "-b", "-n", "-l", "-s", "-m"}

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   gRPC bind address (e.g., ":50051")
//	-w string   HTTP bind address (e.g., ":3000")
//	-d string   PostgreSQL DSN
//	-k string   path to the RS256 private key PEM
//	-p string   path to the RS256 public key PEM
//	-i string   token issuer
//	-t int      access token validity, minutes
//	-b int      bcrypt cost
//	-n string   notifier mode ("log" or "aws")
//	-l string   log level
//	-s string   storage ("postgres" or "memory")
//	-m bool     run migrations on start (use -m=false to disable)
//
// Arguments are first filtered to the flags recognised here using
// flagx.FilterArgs so -c/-config and unknown flags do not collide.
func parseFlags(config *Config, args []string) error {
	args = flagx.FilterArgs(args, serverFlags)

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "w", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.PrivateKeyPath, "k", config.PrivateKeyPath, "private key PEM path")
	fs.StringVar(&config.PublicKeyPath, "p", config.PublicKeyPath, "public key PEM path")
	fs.StringVar(&config.Issuer, "i", config.Issuer, "token issuer")

	accessTokenTTL := fs.Int("t", int(config.AccessTokenTTL.Minutes()), "access token validity (in minutes)")

	fs.IntVar(&config.BcryptCost, "b", config.BcryptCost, "bcrypt cost")
	fs.StringVar(&config.Notifier, "n", config.Notifier, "notifier mode")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")
	fs.StringVar(&config.Storage, "s", config.Storage, "storage backend")
	fs.BoolVar(&config.Migrate, "m", config.Migrate, "run migrations on start")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenTTL = time.Duration(*accessTokenTTL) * time.Minute
		}
	})
	return nil
}
