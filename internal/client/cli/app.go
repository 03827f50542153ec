package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/tenantauth/internal/client/config"
	"github.com/dmitrijs2005/tenantauth/internal/server/api"
	gs "github.com/dmitrijs2005/tenantauth/internal/server/grpc"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/repomanager"
)

// ErrUsage is returned for an unknown command or bad command flags.
var ErrUsage = errors.New("usage error")

// Remote is the subset of the gRPC client used by the remote commands.
type Remote interface {
	Ping(ctx context.Context) (*api.PingResponse, error)
	SuperAdminOtpRequest(ctx context.Context, mobile string) error
	SuperAdminOtpVerify(ctx context.Context, mobile, otp string) (string, error)
	CreateTenant(ctx context.Context, token string, req *api.CreateTenantRequest) (string, error)
}

type App struct {
	config *config.Config
	reader *bufio.Reader
	out    io.Writer
	// prompts go to their own stream so out carries only results.
	prompt io.Writer

	dial      func(addr string) (Remote, io.Closer, error)
	openRepos func(ctx context.Context, dsn string) (repomanager.RepositoryManager, error)
}

func NewApp(c *config.Config) (*App, error) {
	if c == nil {
		return nil, errors.New("nil config")
	}
	return &App{
		config:    c,
		reader:    bufio.NewReader(os.Stdin),
		out:       os.Stdout,
		prompt:    os.Stderr,
		dial:      dialGRPC,
		openRepos: openPostgres,
	}, nil
}

func dialGRPC(addr string) (Remote, io.Closer, error) {
	cc, err := gs.Dial(addr)
	if err != nil {
		return nil, nil, err
	}
	return gs.NewClient(cc), cc, nil
}

func openPostgres(ctx context.Context, dsn string) (repomanager.RepositoryManager, error) {
	return repomanager.OpenPostgres(ctx, dsn)
}

type command struct {
	usage string
	run   func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"keygen":          {usage: "keygen [-out dir] [-bits n] [-force]", run: (*App).keygen},
	"hash":            {usage: "hash", run: (*App).hash},
	"seed-superadmin": {usage: "seed-superadmin -email e -mobile m [-name n] [-password]", run: (*App).seedSuperAdmin},
	"ping":            {usage: "ping", run: (*App).ping},
	"login":           {usage: "login -mobile m", run: (*App).login},
	"create-tenant":   {usage: "create-tenant -token t -name n -admin-name n -admin-email e -admin-mobile m", run: (*App).createTenant},
}

var commandOrder = []string{"keygen", "hash", "seed-superadmin", "ping", "login", "create-tenant"}

// Run executes the command named by args[0].
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" {
		a.usage()
		if len(args) == 0 {
			return ErrUsage
		}
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		a.usage()
		return fmt.Errorf("%w: unknown command %q", ErrUsage, args[0])
	}
	return cmd.run(a, ctx, args[1:])
}

func (a *App) usage() {
	fmt.Fprintln(a.out, "Usage: authctl [-c file] [-a addr] [-d dsn] [-t seconds] [-b cost] [-m] <command> [flags]")
	fmt.Fprintln(a.out, "Commands:")
	for _, name := range commandOrder {
		fmt.Fprintln(a.out, "  "+commands[name].usage)
	}
}

// flags returns a FlagSet for a command that reports errors instead of
// exiting.
func (a *App) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.out)
	return fs
}

func parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", ErrUsage, err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %s", ErrUsage, strings.Join(fs.Args(), " "))
	}
	return nil
}

// required reports the first flag in names left empty.
func required(fs *flag.FlagSet, names ...string) error {
	for _, n := range names {
		if strings.TrimSpace(fs.Lookup(n).Value.String()) == "" {
			return fmt.Errorf("%w: -%s is required", ErrUsage, n)
		}
	}
	return nil
}
