package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/tasmanlabs/orgauth/internal/auth/http"
	"github.com/tasmanlabs/orgauth/internal/auth/notify"
	"github.com/tasmanlabs/orgauth/internal/auth/service"
	"github.com/tasmanlabs/orgauth/internal/auth/store"
	"github.com/tasmanlabs/orgauth/internal/auth/store/drivers/sqlite"
	"github.com/tasmanlabs/orgauth/pkg/cryptox"
	"github.com/tasmanlabs/orgauth/pkg/jwtx"
	"github.com/tasmanlabs/orgauth/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the service together: store, codecs, services, router.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	accessCodec  *jwtx.Codec
	refreshCodec *jwtx.Codec
	inviteCodec  *jwtx.Codec

	sessionService      *service.SessionService
	orgService          *service.OrgService
	inviteService       *service.InviteService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "orgauth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initCodecs(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("orgauth starting",
		slog.Int("port", app.cfg.Port),
		slog.String("version", BuildVersion),
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", slog.Any("signal", sig))
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown stops the server, the housekeeping worker and the store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down orgauth")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", slog.Any("error", err))
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", slog.Any("error", err))
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", slog.Any("error", err))
		return err
	}

	app.logger.Info("orgauth stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied")
	return nil
}

func (app *Application) initCodecs() error {
	var err error
	if app.accessCodec, err = jwtx.NewCodec(app.cfg.JWTSecret, app.cfg.Issuer, app.cfg.AccessTokenTTL); err != nil {
		return fmt.Errorf("access codec: %w", err)
	}
	if app.refreshCodec, err = jwtx.NewCodec(app.cfg.JWTRefreshSecret, app.cfg.Issuer, app.cfg.RefreshTokenTTL); err != nil {
		return fmt.Errorf("refresh codec: %w", err)
	}
	if app.inviteCodec, err = jwtx.NewCodec(app.cfg.JWTInviteSecret, app.cfg.Issuer, app.cfg.InviteTokenTTL); err != nil {
		return fmt.Errorf("invite codec: %w", err)
	}
	return nil
}

func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:   app.db,
		Access:  app.accessCodec,
		Refresh: app.refreshCodec,
	}
	app.orgService = &service.OrgService{Store: app.db}

	var notifier notify.Notifier
	if app.cfg.SMTPAddr != "" {
		notifier = &notify.SMTPNotifier{
			Addr:     app.cfg.SMTPAddr,
			From:     app.cfg.SMTPFrom,
			Username: app.cfg.SMTPUsername,
			Password: app.cfg.SMTPPassword,
		}
	} else {
		notifier = &notify.LogNotifier{Logger: app.logger}
	}

	app.inviteService = &service.InviteService{
		Store:     app.db,
		Invites:   app.inviteCodec,
		Notifier:  notifier,
		AcceptURL: app.cfg.BaseURL + "/v1/organizations/accept-invite",
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.accessCodec, BuildVersion, app.db, app.logger)
	router.SessionService = app.sessionService
	router.OrgService = app.orgService
	router.InviteService = app.inviteService
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: router,
	}
}
