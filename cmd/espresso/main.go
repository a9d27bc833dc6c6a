package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	adapthttp "espresso/internal/adapter/http"
	"espresso/internal/adapter/memory"
	"espresso/internal/adapter/postgres"
	"espresso/internal/app"
	"espresso/internal/config"
	"espresso/internal/domain"
	"espresso/internal/logging"
)

type store interface {
	domain.SnapshotRepository
	domain.EventRepository
	domain.OperatorRepository
}

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	level, _ := cfg.SlogLevel()
	logger, err := logging.New(os.Stdout, logging.Format(strings.ToLower(cfg.LogFormat)), level)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		db       store
		sessions domain.SessionRepository
	)
	if cfg.DatabaseURL != "" {
		pg, err := postgres.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { _ = pg.Close() }()
		db, sessions = pg, postgres.NewSessionRepo(pg)
		logger.Info("using postgres store")
	} else {
		mem := memory.New()
		db, sessions = mem, mem.NewSessionRepo()
		logger.Warn("DATABASE_URL not set, machine state will not survive a restart")
	}

	machineSvc, err := app.NewMachineService(ctx, db, db, app.Capacities{
		WaterLitres: cfg.Machine.WaterCapacity,
		BeanSpoons:  cfg.Machine.BeansCapacity,
	}, logger)
	if err != nil {
		return err
	}
	productionSvc := app.NewProductionService(db)
	authSvc := app.NewAuthService(db, sessions)

	var oidcConfig adapthttp.OIDCConfig
	if cfg.OIDC.Enabled {
		oidcConfig, err = adapthttp.NewOIDCConfig(ctx, cfg.OIDC.IssuerURL, cfg.OIDC.ClientID, cfg.OIDC.ClientSecret, cfg.OIDC.RedirectURL)
		if err != nil {
			return err
		}
		logger.Info("sso enabled", slog.String("issuer", cfg.OIDC.IssuerURL))
	}

	go purgeSessions(ctx, authSvc, cfg.SessionCleanupInterval, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           adapthttp.New(machineSvc, productionSvc, authSvc, oidcConfig, logger).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func purgeSessions(ctx context.Context, auth *app.AuthService, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := auth.PurgeExpiredSessions(ctx); err != nil {
				logger.WarnContext(ctx, "purge expired sessions", slog.String("error", err.Error()))
			}
		}
	}
}
