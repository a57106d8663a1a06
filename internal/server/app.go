// Package server initializes and runs the application: it opens the
// database, applies migrations, wires the services, and starts the HTTP
// endpoint alongside the session sweeper, with graceful shutdown on signals.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/evgsol/vipgate/internal/logging"
	"github.com/evgsol/vipgate/internal/server/auth"
	"github.com/evgsol/vipgate/internal/server/config"
	"github.com/evgsol/vipgate/internal/server/email"
	"github.com/evgsol/vipgate/internal/server/httpapi"
	"github.com/evgsol/vipgate/internal/server/repositories/repomanager"
	"github.com/evgsol/vipgate/internal/server/services"
	"github.com/evgsol/vipgate/internal/server/sweeper"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	httpServer *http.Server
	sweeper    *sweeper.Sweeper
}

func NewApp(cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(context.Background(), db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	tokens := auth.NewManager([]byte(cfg.SecretKey),
		cfg.AccessTokenValidityDuration, cfg.RefreshTokenValidityDuration)

	var sender email.Sender
	if cfg.SMTPHost != "" && cfg.SMTPHost != "smtp.example.com" {
		sender = email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPFrom)
	} else {
		sender = email.NewLogSender(logger)
	}

	authSvc := services.NewAuthService(db, repos, tokens, sender, logger, cfg)
	heartbeatSvc := services.NewHeartbeatService(db, repos, logger)
	rechargeSvc := services.NewRechargeService(db, repos, logger)
	userSvc := services.NewUserService(db, repos)

	api := httpapi.NewServer(authSvc, heartbeatSvc, rechargeSvc, userSvc, tokens, logger, cfg.StatusInterval)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		httpServer: &http.Server{
			Addr:    cfg.EndpointAddr,
			Handler: api.Router(),
		},
		sweeper: sweeper.New(heartbeatSvc, cfg.SweepInterval, cfg.HeartbeatThreshold, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.logger.Info(ctx, "http server starting", "addr", app.config.EndpointAddr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, "http server failed", "error", err.Error())
		cancelFunc()
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "http shutdown failed", "error", err.Error())
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err.Error())
	}

	app.logger.Info(ctx, "app stopped")
}
