// Package server initializes and runs the authentication server.
// It selects the storage backend, loads the signing keys, wires the
// services to the notifier, and runs the gRPC and HTTP listeners until the
// process is signalled.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/tenantauth/internal/cryptox"
	"github.com/dmitrijs2005/tenantauth/internal/logging"
	"github.com/dmitrijs2005/tenantauth/internal/server/auth"
	"github.com/dmitrijs2005/tenantauth/internal/server/config"
	"github.com/dmitrijs2005/tenantauth/internal/server/httpapi"
	"github.com/dmitrijs2005/tenantauth/internal/server/notify"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/memory"
	"github.com/dmitrijs2005/tenantauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/tenantauth/internal/server/services"
	"github.com/dmitrijs2005/tenantauth/internal/server/singleuse"

	gs "github.com/dmitrijs2005/tenantauth/internal/server/grpc"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	repos         repomanager.RepositoryManager
	dispatcher    *notify.Dispatcher
	verifier      *auth.Verifier
	credService   *services.CredentialService
	otpService    *services.OTPService
	tenantService *services.TenantService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	signer, err := auth.LoadSigner(c.PrivateKeyPath, c.Issuer, c.AccessTokenTTL)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	verifier, err := auth.LoadVerifier(c.PublicKeyPath, c.Issuer)
	if err != nil {
		return nil, fmt.Errorf("verification key: %w", err)
	}

	notifier, err := newNotifier(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("notifier init error: %w", err)
	}

	repos, err := openRepositories(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	hasher := cryptox.NewHasher(c.BcryptCost)
	dispatcher := notify.NewDispatcher(notifier, logger, notify.DefaultTimeout)
	deps := services.Deps{
		Repos:  repos,
		Store:  singleuse.NewStore(repos, hasher),
		Hasher: hasher,
		Signer: signer,
		Sender: dispatcher,
		Logger: logger,
	}

	return &App{
		config:        c,
		logger:        logger,
		repos:         repos,
		dispatcher:    dispatcher,
		verifier:      verifier,
		credService:   services.NewCredentialService(deps, c),
		otpService:    services.NewOTPService(deps, c),
		tenantService: services.NewTenantService(deps, c),
	}, nil
}

// openRepositories returns the configured store, migrated when asked to.
func openRepositories(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.Storage == config.StorageMemory {
		logger.Warn(ctx, "using in-memory storage, data is lost on exit")
		return memory.NewManager(), nil
	}

	pg, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	if c.Migrate {
		if err := pg.RunMigrations(ctx); err != nil {
			_ = pg.Close()
			return nil, fmt.Errorf("migrations: %w", err)
		}
	}
	return pg, nil
}

// newNotifier returns the delivery backend for the configured mode.
func newNotifier(ctx context.Context, c *config.Config, logger logging.Logger) (notify.Notifier, error) {
	if c.Notifier != config.NotifierAWS {
		return notify.NewLogNotifier(logger), nil
	}

	awsCfg, err := notify.LoadAWSConfig(ctx, notify.AWSOptions{
		Region:          c.AWSRegion,
		Endpoint:        c.AWSEndpoint,
		AccessKeyID:     c.AWSAccessKeyID,
		SecretAccessKey: c.AWSSecretKey,
	})
	if err != nil {
		return nil, err
	}
	return &notify.Router{
		Email: notify.NewSESNotifier(awsCfg, c.SESFrom),
		SMS:   notify.NewSNSNotifier(awsCfg),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.credService, app.otpService, app.tenantService, app.verifier)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	h := httpapi.NewHandler(app.logger, app.credService, app.otpService, app.tenantService, app.verifier)
	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger, h)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled, a signal arrives, or a listener
// fails. Pending deliveries are flushed and the store closed before it
// returns.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	if app.config.EndpointAddrGRPC != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startGRPCServer(ctx, cancelFunc)
		}()
	}

	if app.config.EndpointAddrHTTP != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHTTPServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()

	app.dispatcher.Close()
	if err := app.repos.Close(); err != nil {
		app.logger.Error(ctx, "close store", "error", err)
	}

	app.logger.Info(ctx, "Stopped")
}
