// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	_ "label-service/docs"
	"label-service/internal/config"
	"label-service/internal/database"
	"label-service/internal/driver"
	"label-service/internal/handler"
	"label-service/internal/label"
	"label-service/internal/repository"
	"label-service/internal/routes"
	"label-service/internal/service"
	"label-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	database *database.DB

	jobRepo        repository.JobRepository
	driverRegistry *driver.Registry
	eventBus       *handler.EventBus
	wsHandler      *handler.WebSocketHandler

	printService *service.PrintService
	statusPoller *service.StatusPoller

	stopBackground context.CancelFunc
}

// @title Label Service API
// @version 1.0.0
// @description Renders labels and prints them on tape label printers over device, socket and relay transports

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /
func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "label-service")
	serviceLogger.LogServiceStart(cfg.App.Version, map[string]interface{}{
		"environment":   cfg.App.Environment,
		"address":       cfg.GetServerAddr(),
		"printers":      cfg.PrinterNames(),
		"database":      cfg.Database.Enabled,
		"poll_interval": cfg.StatusStream.PollInterval.String(),
	})

	app := &Application{
		config: cfg,
		logger: logger,
	}

	if err := app.initializeDatabase(); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	app.initializeRepositories()

	if err := app.initializeDriverRegistry(); err != nil {
		return nil, fmt.Errorf("failed to initialize driver registry: %w", err)
	}

	app.initializeServices()
	app.initializeServer()

	return app, nil
}

// initializeDatabase connects to PostgreSQL and applies migrations when job
// history persistence is enabled
func (app *Application) initializeDatabase() error {
	if !app.config.Database.Enabled {
		app.logger.Info("Database disabled, job history kept in memory",
			zap.Int("history_size", app.config.Database.HistorySize),
		)
		return nil
	}

	db, err := database.NewConnection(app.config, app.logger)
	if err != nil {
		return fmt.Errorf("failed to create database connection: %w", err)
	}

	migrator := database.NewMigrator(app.config, app.logger)
	if err := migrator.Up(); err != nil {
		db.Close()
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	app.database = db

	app.logger.Info("Database initialized successfully")
	return nil
}

// initializeRepositories creates the job history store
func (app *Application) initializeRepositories() {
	if app.database != nil {
		app.jobRepo = repository.NewJobRepository(app.database, app.logger)
	} else {
		app.jobRepo = repository.NewMemoryJobRepository(app.config.Database.HistorySize)
	}

	app.logger.Info("Repositories initialized successfully")
}

// initializeDriverRegistry sets up the printer registry
func (app *Application) initializeDriverRegistry() error {
	registry, err := driver.NewRegistryFromConfig(app.config, app.logger)
	if err != nil {
		return err
	}

	app.driverRegistry = registry
	return nil
}

// initializeServices creates the renderer, print service and status stream
func (app *Application) initializeServices() {
	fonts := label.NewFonts(app.config.Label.FontDirs, app.config.Label.DefaultFont, app.logger)
	renderer := label.NewRenderer(fonts, app.logger)

	app.eventBus = handler.NewEventBus(app.logger)

	app.printService = service.NewPrintService(
		app.driverRegistry,
		renderer,
		app.jobRepo,
		app.eventBus,
		app.logger,
	)

	app.statusPoller = service.NewStatusPoller(
		app.printService,
		app.eventBus,
		app.config.StatusStream.PollInterval,
		app.logger,
	)

	app.wsHandler = handler.NewWebSocketHandler(
		app.printService,
		app.eventBus,
		app.config.Security.AllowedOrigins,
		app.logger,
	)

	app.logger.Info("Services initialized successfully",
		zap.Strings("fonts", fonts.Names()),
	)
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() {
	// a nil *database.DB must not reach the router as a non-nil interface
	var db handler.HealthChecker
	if app.database != nil {
		db = app.database
	}

	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		db,
		app.printService,
		app.wsHandler,
	)

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      routerManager.SetupRouter(),
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
		zap.Bool("tls_enabled", app.config.Server.TLS.Enabled),
	)
}

// startBackgroundServices starts the event bus and the status poller
func (app *Application) startBackgroundServices() {
	ctx, cancel := context.WithCancel(context.Background())
	app.stopBackground = cancel

	go app.eventBus.Start()
	go app.statusPoller.Run(ctx)

	app.logger.Info("Background services started")
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "label-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	if app.stopBackground != nil {
		app.stopBackground()
	}
	app.wsHandler.Close()
	app.eventBus.Close()

	if err := app.driverRegistry.Close(); err != nil {
		app.logger.Error("Printer transport close error", zap.Error(err))
	}

	if app.database != nil {
		if err := app.database.Close(); err != nil {
			app.logger.Error("Database close error", zap.Error(err))
		} else {
			app.logger.Info("Database connection closed")
		}
	}

	app.logger.Info("Application shutdown completed")

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}
}

// Start serves HTTP until a shutdown signal arrives
func (app *Application) Start() error {
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		var err error
		if app.config.Server.TLS.Enabled {
			err = app.server.ListenAndServeTLS(
				app.config.Server.TLS.CertFile,
				app.config.Server.TLS.KeyFile,
			)
		} else {
			err = app.server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	app.startBackgroundServices()
	app.waitForShutdown()

	return nil
}
