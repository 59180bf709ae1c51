package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	authhandler "bloodbank/internal/auth/handler"
	authmetrics "bloodbank/internal/auth/metrics"
	authservice "bloodbank/internal/auth/service"
	"bloodbank/internal/auth/workers/cleanup"
	donorhandler "bloodbank/internal/donor/handler"
	donormetrics "bloodbank/internal/donor/metrics"
	donorservice "bloodbank/internal/donor/service"
	jwttoken "bloodbank/internal/jwt_token"
	"bloodbank/internal/platform/config"
	"bloodbank/internal/platform/health"
	"bloodbank/internal/platform/httpserver"
	"bloodbank/internal/platform/logger"
	"bloodbank/internal/platform/metrics"
	redisclient "bloodbank/internal/platform/redis"
	"bloodbank/internal/seeder"
	httptransport "bloodbank/internal/transport/http"
	"bloodbank/pkg/platform/audit"
	"bloodbank/pkg/platform/middleware/metadata"
	"bloodbank/pkg/platform/middleware/request"
	"bloodbank/pkg/platform/tracer"
)

var version = "dev"

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal services packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "bloodbank:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	log := logger.New(level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("initializing bloodbank",
		"addr", cfg.Server.Addr,
		"environment", cfg.Environment,
		"version", version,
	)

	reg := metrics.NewRegistry(version, cfg.Environment)
	authMetrics := authmetrics.New(reg)

	infra, err := openInfra(ctx, cfg, log, authMetrics)
	if err != nil {
		return err
	}
	defer infra.Close(log)

	auditStore := newAuditStore(cfg, infra, log)
	publisher := newAuditPublisher(auditStore, cfg, reg, log)
	defer publisher.Close()
	auditLogger := audit.NewLogger(log, publisher)

	jwtService := jwttoken.NewJWTService(
		cfg.Auth.JWTSecretKey,
		cfg.Auth.JWTIssuer,
		cfg.Auth.JWTAudience,
		cfg.Auth.TokenTTL,
	)

	donorSvc := donorservice.New(infra.donors,
		donorservice.WithLogger(log),
		donorservice.WithAuditLogger(auditLogger),
		donorservice.WithMetrics(donormetrics.New(reg)),
		donorservice.WithTracer(tracer.NewOTel("bloodbank/donor")),
	)
	authSvc := authservice.New(infra.users, infra.revocations, jwtService,
		authservice.WithLogger(log),
		authservice.WithAuditLogger(auditLogger),
		authservice.WithMetrics(authMetrics),
		authservice.WithDonorCounter(donorSvc),
		authservice.WithTokenTTL(cfg.Auth.TokenTTL),
	)

	seed := seeder.New(infra.users, infra.donors, log)
	admin, err := seed.EnsureAdmin(ctx, cfg.Seed.AdminEmail, cfg.Seed.AdminPassword)
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if cfg.Seed.DemoDonors {
		if _, err := seed.SeedDemoDonors(ctx, admin.ID); err != nil {
			return fmt.Errorf("seed demo donors: %w", err)
		}
	}

	trustedProxies, err := metadata.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return err
	}

	healthHandler := health.New(cfg.Environment, health.WithStorage(infra.storage))
	infra.registerHealthChecks(healthHandler)

	router := httptransport.NewRouter(httptransport.Config{
		Logger:         log,
		Version:        version,
		RequestTimeout: cfg.Server.RequestTimeout,
		MaxBodyBytes:   cfg.Server.MaxBodyBytes,
		TrustedProxies: trustedProxies,
		Auth:           authhandler.New(authSvc, log),
		Donors:         donorhandler.New(donorSvc, log),
		Health:         healthHandler,
		Metrics:        reg.Handler(),
		RequestMetrics: request.NewMetrics(reg),
		Tokens:         jwttoken.NewJWTServiceAdapter(jwtService),
		Revocations:    authSvc,
		Accounts:       authSvc,
		AuthRateLimit:  newAuthRateLimit(cfg, infra, log, authMetrics),
	})

	cleaner, err := cleanup.New(infra.revocationStores(),
		cleanup.WithCleanupInterval(cfg.Auth.RevocationCleanupInterval),
		cleanup.WithCleanupLogger(log),
		cleanup.WithCleanupMetrics(authMetrics),
	)
	if err != nil {
		return fmt.Errorf("create revocation cleanup: %w", err)
	}

	srv := httpserver.New(cfg.Server.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return cleaner.Start(gctx)
	})
	if infra.redis != nil {
		poolMetrics := redisclient.NewPoolMetrics(reg)
		g.Go(func() error {
			return poolMetrics.Run(gctx, infra.redis, cfg.Redis.StatsInterval, log)
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server gracefully")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("graceful shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("server stopped with error", slog.Any("error", err))
		return err
	}
	log.Info("server stopped")
	return nil
}
