package main

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"

	"bloodbank/internal/platform/config"
	"bloodbank/internal/platform/database"
	"bloodbank/pkg/platform/audit"
	auditmetrics "bloodbank/pkg/platform/audit/metrics"
	"bloodbank/pkg/platform/audit/publisher"
	auditkafka "bloodbank/pkg/platform/audit/store/kafka"
	auditmemory "bloodbank/pkg/platform/audit/store/memory"
	auditpostgres "bloodbank/pkg/platform/audit/store/postgres"
)

// newAuditStore picks the audit sink: Kafka when brokers are configured,
// then the audit_events table on Postgres, then memory.
func newAuditStore(cfg *config.Config, in *infra, log *slog.Logger) audit.Store {
	switch {
	case in.producer != nil:
		log.Info("audit sink selected", "sink", "kafka", "topic", cfg.Kafka.AuditTopic)
		return auditkafka.New(in.producer, cfg.Kafka.AuditTopic)
	case in.db != nil && in.db.Dialect() == database.Postgres:
		log.Info("audit sink selected", "sink", "postgres")
		return auditpostgres.New(in.db.DB())
	default:
		log.Info("audit sink selected", "sink", "memory")
		return auditmemory.NewInMemoryStore()
	}
}

func newAuditPublisher(store audit.Store, cfg *config.Config, reg prometheus.Registerer, log *slog.Logger) *publisher.Publisher {
	return publisher.NewPublisher(store,
		publisher.WithAsyncBuffer(cfg.Kafka.AuditBuffer),
		publisher.WithPublisherLogger(log),
		publisher.WithMetrics(auditmetrics.New(reg)),
	)
}
