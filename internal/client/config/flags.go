package config

import (
	"flag"
	"fmt"
	"io"
	"time"
)

// flagValues holds the global flags explicitly set on the command line.
type flagValues struct {
	set map[string]bool

	addr    string
	dsn     string
	timeout int
	cost    int
	migrate bool
}

// parseFlags reads global flags up to the first non-flag argument, which is
// the command name. The unconsumed arguments are returned.
func parseFlags(args []string) (*flagValues, []string, error) {
	v := &flagValues{set: map[string]bool{}}

	fs := flag.NewFlagSet("authctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var configPath string
	fs.StringVar(&configPath, "c", "", "path to config file")
	fs.StringVar(&configPath, "config", "", "path to config file")
	fs.StringVar(&v.addr, "a", "", "address and port of the server")
	fs.StringVar(&v.dsn, "d", "", "database DSN")
	fs.IntVar(&v.timeout, "t", 0, "request timeout (in seconds)")
	fs.IntVar(&v.cost, "b", 0, "bcrypt cost")
	fs.BoolVar(&v.migrate, "m", false, "run migrations before seeding")

	if err := fs.Parse(args); err != nil {
		return nil, nil, fmt.Errorf("parse flags: %w", err)
	}
	fs.Visit(func(f *flag.Flag) { v.set[f.Name] = true })

	return v, fs.Args(), nil
}

func (v *flagValues) apply(config *Config) {
	if v.set["a"] {
		config.ServerEndpointAddr = v.addr
	}
	if v.set["d"] {
		config.DatabaseDSN = v.dsn
	}
	if v.set["t"] {
		config.Timeout = time.Duration(v.timeout) * time.Second
	}
	if v.set["b"] {
		config.BcryptCost = v.cost
	}
	if v.set["m"] {
		config.Migrate = v.migrate
	}
}
