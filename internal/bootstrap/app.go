package bootstrap

import (
	"context"
	"fmt"
	"github.com/ZertGraf/bugtracker/internal/api"
	"github.com/ZertGraf/bugtracker/internal/api/handler"
	"github.com/ZertGraf/bugtracker/internal/pkg/auth"
	"github.com/ZertGraf/bugtracker/internal/pkg/config"
	"github.com/ZertGraf/bugtracker/internal/pkg/logger"
	"github.com/ZertGraf/bugtracker/internal/pkg/postgres"
	"github.com/ZertGraf/bugtracker/internal/repository"
	"github.com/ZertGraf/bugtracker/internal/service"
	"sync"
	"time"
)

const readinessTimeout = 2 * time.Second

type Application struct {
	Config   *config.Config
	Logger   *logger.Logger
	Postgres *postgres.Connection
	Migrator *postgres.Migrator

	Hasher *auth.PasswordHasher
	Tokens *auth.TokenIssuer

	UserRepo    repository.UserRepository
	BugRepo     repository.BugRepository
	SessionRepo repository.SessionRepository

	UserService *service.UserService
	BugService  *service.BugService
	Janitor     *service.SessionJanitor

	HTTPServer *api.HTTPServer

	stopJanitor context.CancelFunc
	janitorDone sync.WaitGroup
}

func New() (*Application, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		AddSource: cfg.LogAddSource,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	log = &logger.Logger{Logger: log.With("service", cfg.ServiceName)}

	pg, err := postgres.New(log, &postgres.Config{
		URL:               cfg.DatabaseURL,
		Host:              cfg.DatabaseHost,
		Port:              cfg.DatabasePort,
		Username:          cfg.DatabaseUser,
		Password:          cfg.DatabasePassword,
		Database:          cfg.DatabaseName,
		Schema:            cfg.DatabaseSchema,
		SSLMode:           cfg.DatabaseSSLMode,
		MaxConns:          cfg.DatabaseMaxConns,
		MinConns:          cfg.DatabaseMinConns,
		MaxConnLifetime:   cfg.DatabaseMaxConnLifetime,
		MaxConnIdleTime:   cfg.DatabaseMaxConnIdleTime,
		HealthCheckPeriod: cfg.DatabaseHealthCheckPeriod,
		ConnectTimeout:    cfg.DatabaseConnectTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(cfg.AuthBcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to create password hasher: %w", err)
	}

	tokens, err := auth.NewTokenIssuer(&auth.TokenConfig{
		Secret: cfg.AuthTokenSecret,
		Issuer: cfg.AuthTokenIssuer,
		TTL:    cfg.AuthTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create token issuer: %w", err)
	}

	return &Application{
		Config:   cfg,
		Logger:   log,
		Postgres: pg,
		Hasher:   hasher,
		Tokens:   tokens,
	}, nil
}

func (app *Application) Init(ctx context.Context) error {
	app.Logger.Info("initializing application")

	if err := app.Postgres.Connect(ctx); err != nil {
		return fmt.Errorf("postgres connection failed: %w", err)
	}

	app.Migrator = postgres.NewMigrator(app.Postgres.Pool(), &postgres.MigrationConfig{
		Timeout:   app.Config.DatabaseMigrationTimeout,
		TableName: app.Config.DatabaseMigrationTable,
		Enabled:   app.Config.DatabaseMigrationEnabled,
	}, app.Logger)

	if err := app.Migrator.RunMigrations(ctx); err != nil {
		return fmt.Errorf("database migrations failed: %w", err)
	}

	app.UserRepo = repository.NewUserRepo(app.Postgres.Pool(), app.Logger)
	app.BugRepo = repository.NewBugRepo(app.Postgres.Pool(), app.Logger)
	app.SessionRepo = repository.NewSessionRepo(app.Postgres.Pool(), app.Logger)

	app.UserService = service.NewUserService(app.UserRepo, app.SessionRepo, app.Hasher, app.Tokens, app.Logger)
	app.BugService = service.NewBugService(app.BugRepo, app.Logger)
	app.Janitor = service.NewSessionJanitor(app.SessionRepo, app.Config.SessionCleanupInterval, app.Logger)

	handlers := &api.Handlers{
		Users:      handler.NewUserHandler(app.UserService, app.Config.AuthCookieSecure, app.Logger),
		Bugs:       handler.NewBugHandler(app.BugService, app.Logger),
		Health:     handler.NewHealthHandler(app.readinessChecks(), readinessTimeout, app.Logger),
		Authorizer: app.UserService,
	}

	serverConfig := &api.ServerConfig{
		Host:           app.Config.ServerHost,
		Port:           app.Config.ServerPort,
		ReadTimeout:    app.Config.ServerReadTimeout,
		WriteTimeout:   app.Config.ServerWriteTimeout,
		IdleTimeout:    app.Config.ServerIdleTimeout,
		AllowedOrigins: app.Config.CORSAllowedOrigins,
	}

	app.HTTPServer = api.NewHTTPServer(serverConfig, handlers, app.Logger)

	if err := app.HTTPServer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start http server: %w", err)
	}

	janitorCtx, cancel := context.WithCancel(context.Background())
	app.stopJanitor = cancel
	app.janitorDone.Add(1)
	go func() {
		defer app.janitorDone.Done()
		app.Janitor.Run(janitorCtx)
	}()

	app.Logger.Info("application initialized successfully")
	return nil
}

func (app *Application) Shutdown(ctx context.Context) error {
	app.Logger.Info("shutting down application")

	if app.HTTPServer != nil {
		if err := app.HTTPServer.Stop(ctx); err != nil {
			app.Logger.Error("error stopping http server", "error", err)
		}
	}

	if app.stopJanitor != nil {
		app.stopJanitor()
		app.janitorDone.Wait()
	}

	app.Postgres.Close()

	app.Logger.Info("application shutdown completed")
	return nil
}

func (app *Application) readinessChecks() map[string]handler.ReadinessCheck {
	return map[string]handler.ReadinessCheck{
		"postgres":   app.Postgres.Health,
		"migrations": app.Migrator.Health,
	}
}
