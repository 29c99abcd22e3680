// Package server wires configuration, storage, services and the HTTP API
// together and runs them until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/velotrans/tms/internal/logging"
	"github.com/velotrans/tms/internal/server/config"
	"github.com/velotrans/tms/internal/server/httpapi"
	"github.com/velotrans/tms/internal/server/repositories/repomanager"
	"github.com/velotrans/tms/internal/server/services"
)

type App struct {
	config        *config.Config
	logger        logging.Logger
	db            *sql.DB
	authService   *services.AuthService
	httpServer    *httpapi.Server
	sweepInterval time.Duration
}

func NewApp(cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	authService := services.NewAuthService(db, repos, logger, cfg)
	shipmentService := services.NewShipmentService(db, repos, logger)

	httpServer := httpapi.NewServer(cfg.EndpointAddr, logger, authService, shipmentService, db, cfg.Production())

	return &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		authService:   authService,
		httpServer:    httpServer,
		sweepInterval: cfg.SweepInterval,
	}, nil
}

func (app *App) initSignalHandler(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancel()
	}()
}

// runSweeper periodically removes expired refresh-token records.
func (app *App) runSweeper(ctx context.Context) {
	ticker := time.NewTicker(app.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := app.authService.SweepExpired(ctx); err != nil {
				app.logger.Error(ctx, "refresh token sweep failed", "error", err.Error())
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.logger.Info(ctx, "starting app", "env", app.config.Env)

	app.initSignalHandler(cancel)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.httpServer.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancel()
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.runSweeper(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
