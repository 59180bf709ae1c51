// Package producer publishes records to Kafka with franz-go. Writes are
// synchronous: Produce returns once the broker acknowledged the record or
// delivery failed.
package producer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kgo"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("producer is closed")

const (
	batchMaxBytes = 16 << 10
	linger        = 5 * time.Millisecond
	flushTimeout  = 30 * time.Second
)

// Message is one record to publish.
type Message struct {
	Topic   string
	Key     []byte
	Value   []byte
	Headers map[string]string
}

// Config selects the brokers and delivery guarantees. Acks is "0", "1" or
// "all"; anything else means "all".
type Config struct {
	Brokers         []string
	Acks            string
	Retries         int
	DeliveryTimeout time.Duration
}

// Producer is safe for concurrent use. Close waits for in-flight writes.
type Producer struct {
	client *kgo.Client
	admin  *kadm.Client
	logger *slog.Logger

	// gate is held shared by writers and exclusively by Close.
	gate   sync.RWMutex
	closed bool
}

// New builds a producer. No connection is made until the first write or
// health check.
func New(cfg Config, logger *slog.Logger) (*Producer, error) {
	if len(cfg.Brokers) == 0 {
		return nil, errors.New("kafka brokers not configured")
	}
	client, err := kgo.NewClient(cfg.options()...)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Producer{client: client, admin: kadm.NewClient(client), logger: logger}, nil
}

func (c Config) options() []kgo.Opt {
	opts := []kgo.Opt{
		kgo.SeedBrokers(c.Brokers...),
		kgo.ProducerBatchMaxBytes(batchMaxBytes),
		kgo.ProducerLinger(linger),
		kgo.AllowAutoTopicCreation(),
	}
	switch c.Acks {
	case "0":
		opts = append(opts, kgo.RequiredAcks(kgo.NoAck()), kgo.DisableIdempotentWrite())
	case "1":
		opts = append(opts, kgo.RequiredAcks(kgo.LeaderAck()), kgo.DisableIdempotentWrite())
	default:
		opts = append(opts, kgo.RequiredAcks(kgo.AllISRAcks()))
	}
	if c.Retries > 0 {
		opts = append(opts, kgo.RecordRetries(c.Retries))
	}
	if c.DeliveryTimeout > 0 {
		opts = append(opts, kgo.RecordDeliveryTimeout(c.DeliveryTimeout))
	}
	return opts
}

// Produce publishes msg and waits for the acknowledgement.
func (p *Producer) Produce(ctx context.Context, msg *Message) error {
	p.gate.RLock()
	defer p.gate.RUnlock()
	if p.closed {
		return ErrClosed
	}
	if err := p.client.ProduceSync(ctx, msg.record()).FirstErr(); err != nil {
		return fmt.Errorf("produce to %s: %w", msg.Topic, err)
	}
	return nil
}

func (m *Message) record() *kgo.Record {
	rec := &kgo.Record{Topic: m.Topic, Key: m.Key, Value: m.Value}
	for k, v := range m.Headers {
		rec.Headers = append(rec.Headers, kgo.RecordHeader{Key: k, Value: []byte(v)})
	}
	return rec
}

// Healthy asks the cluster for its broker list. It fails when no broker
// answers or the cluster reports none.
func (p *Producer) Healthy(ctx context.Context) error {
	p.gate.RLock()
	defer p.gate.RUnlock()
	if p.closed {
		return ErrClosed
	}
	brokers, err := p.admin.ListBrokers(ctx)
	if err != nil {
		return fmt.Errorf("kafka metadata: %w", err)
	}
	if len(brokers) == 0 {
		return errors.New("kafka cluster reported no brokers")
	}
	return nil
}

// Close flushes buffered records and releases the client. Later calls are
// no-ops.
func (p *Producer) Close() error {
	p.gate.Lock()
	defer p.gate.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("kafka producer closed with unflushed records", "error", err)
	}
	p.client.Close()
	return nil
}
