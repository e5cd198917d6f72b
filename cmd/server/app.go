package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/rowanvale/taskengine/internal/config"
	"github.com/rowanvale/taskengine/internal/domain/priority"
	"github.com/rowanvale/taskengine/internal/platform/postgres"
	"github.com/rowanvale/taskengine/internal/service"
	"github.com/rowanvale/taskengine/internal/store"
)

// application holds the shared application dependencies so wiring happens in
// one place and cleanup can release them in order.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskStore       store.TaskStore
	dependencyStore store.DependencyStore

	dependencyService *service.DependencyService
	recurrenceService *service.RecurrenceService
	priorityService   *service.PriorityService
}

// newApplication wires stores and services from the already-established core
// dependencies.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) *application {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	app.taskStore = postgres.NewPostgresTaskStore(db, logger)
	app.dependencyStore = postgres.NewPostgresDependencyStore(db, logger)

	app.dependencyService = service.NewDependencyService(
		db,
		app.taskStore,
		app.dependencyStore,
		logger,
	)
	app.recurrenceService = service.NewRecurrenceService(
		db,
		app.taskStore,
		cfg.Engine.MaxRecurrenceInstances,
		logger,
	)
	app.priorityService = service.NewPriorityService(
		app.taskStore,
		app.dependencyStore,
		priority.NewDefaultService(),
		nil, // neutral pattern source until a learning backend lands
		nil,
		cfg.Engine.SuggestionWorkers,
		logger,
	)

	logger.Info("Application initialized successfully")
	return app
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources on shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		closeDatabase(app.db, app.logger)
	}
	app.logger.Info("Application shutdown completed")
}
