package main

import (
	"context"
	"fmt"
	"log/slog"

	authmetrics "bloodbank/internal/auth/metrics"
	authservice "bloodbank/internal/auth/service"
	"bloodbank/internal/auth/store/revocation"
	userstore "bloodbank/internal/auth/store/user"
	"bloodbank/internal/auth/workers/cleanup"
	donorservice "bloodbank/internal/donor/service"
	donorstore "bloodbank/internal/donor/store"
	"bloodbank/internal/platform/config"
	"bloodbank/internal/platform/database"
	"bloodbank/internal/platform/health"
	"bloodbank/internal/platform/kafka/producer"
	"bloodbank/internal/platform/migrate"
	redisclient "bloodbank/internal/platform/redis"
)

// infra holds the storage backends selected from configuration.
type infra struct {
	storage string

	db       *database.Pool
	redis    *redisclient.Client
	producer *producer.Producer

	users       authservice.UserStore
	donors      donorservice.Store
	revocations revocation.TokenRevocationList
	purgeable   cleanup.RevocationStore
}

// openInfra connects to the configured database, Redis and Kafka. Anything
// left unconfigured falls back to memory.
func openInfra(ctx context.Context, cfg *config.Config, log *slog.Logger, m *authmetrics.Metrics) (*infra, error) {
	in := &infra{storage: "memory"}

	pool, err := database.New(ctx, database.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	in.db = pool

	switch {
	case pool == nil:
		in.users = userstore.New()
		in.donors = donorstore.NewInMemory()
	default:
		if err := migrate.Up(ctx, pool.DB(), pool.Dialect(), log); err != nil {
			in.Close(log)
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		if pool.Dialect() == database.Postgres {
			in.storage = "postgres"
			in.users = userstore.NewPostgres(pool.DB())
			in.donors = donorstore.NewPostgres(pool.DB())
		} else {
			in.storage = "sqlite"
			in.users = userstore.NewSQLite(pool.DB())
			in.donors = donorstore.NewSQLite(pool.DB())
		}
	}

	client, err := redisclient.New(ctx, cfg.Redis)
	if err != nil {
		in.Close(log)
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	in.redis = client

	switch {
	case client != nil:
		local := revocation.NewInMemoryTRL()
		primary := revocation.NewRedisTRL(client.Client, revocation.WithLatencyObserver(m))
		resilient := revocation.NewResilientTRL(primary, local, log)
		in.revocations = resilient
		in.purgeable = resilient
	case pool != nil:
		sqlTRL := revocation.NewSQLTRL(pool.DB(), pool.Dialect())
		in.revocations = sqlTRL
		in.purgeable = sqlTRL
	default:
		memTRL := revocation.NewInMemoryTRL()
		in.revocations = memTRL
		in.purgeable = memTRL
	}

	if cfg.Kafka.Enabled() {
		p, err := producer.New(producer.Config{
			Brokers:         cfg.Kafka.BrokerList(),
			Acks:            cfg.Kafka.Acks,
			Retries:         cfg.Kafka.Retries,
			DeliveryTimeout: cfg.Kafka.DeliveryTimeout,
		}, log)
		if err != nil {
			in.Close(log)
			return nil, fmt.Errorf("create kafka producer: %w", err)
		}
		in.producer = p
	}

	log.Info("storage selected",
		"storage", in.storage,
		"redis", in.redis != nil,
		"kafka", in.producer != nil,
	)
	return in, nil
}

func (in *infra) revocationStores() []cleanup.RevocationStore {
	return []cleanup.RevocationStore{in.purgeable}
}

func (in *infra) registerHealthChecks(h *health.Handler) {
	if in.db != nil {
		h.RegisterCheck("database", in.db.Health)
	}
	if in.redis != nil {
		h.RegisterCheck("redis", in.redis.Health)
	}
	if in.producer != nil {
		h.RegisterCheck("kafka", in.producer.Healthy)
	}
}

// Close releases connections in reverse order of opening.
func (in *infra) Close(log *slog.Logger) {
	if in.producer != nil {
		if err := in.producer.Close(); err != nil {
			log.Error("close kafka producer", "error", err)
		}
	}
	if in.redis != nil {
		if err := in.redis.Close(); err != nil {
			log.Error("close redis", "error", err)
		}
	}
	if in.db != nil {
		if err := in.db.Close(); err != nil {
			log.Error("close database", "error", err)
		}
	}
}
