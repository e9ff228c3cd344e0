package producer

import (
	"context"
	"fmt"
	"time"

	"github.com/andreyxaxa/ubl-sender/pkg/kafka/broker"
	"github.com/segmentio/kafka-go"
)

const (
	_defaultConnAttempts = 10
	_defaultConnTimeout  = time.Second
	_defaultWriteTimeout = 10 * time.Second
	_defaultBatchTimeout = 50 * time.Millisecond
	_defaultMaxAttempts  = 3
	_defaultReplication  = 1
)

// Producer wraps a kafka.Writer, which is safe for concurrent use.
type Producer struct {
	connAttempts int
	connTimeout  time.Duration
	writeTimeout time.Duration
	batchTimeout time.Duration
	maxAttempts  int

	replicationFactor int

	brokers []string
	Writer  *kafka.Writer
}

func New(ctx context.Context, brokers []string, opts ...Option) (*Producer, error) {
	p := &Producer{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		writeTimeout: _defaultWriteTimeout,
		batchTimeout: _defaultBatchTimeout,
		maxAttempts:  _defaultMaxAttempts,
		brokers:      brokers,

		replicationFactor: _defaultReplication,
	}

	for _, opt := range opts {
		opt(p)
	}

	err := broker.Wait(ctx, "Kafka Producer", p.brokers, p.connAttempts, p.connTimeout)
	if err != nil {
		return nil, fmt.Errorf("Kafka Producer - New - broker.Wait: %w", err)
	}

	p.Writer = &kafka.Writer{
		Addr:         kafka.TCP(p.brokers...),
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		WriteTimeout: p.writeTimeout,
		BatchTimeout: p.batchTimeout,
		MaxAttempts:  p.maxAttempts,
	}

	return p, nil
}

// EnsureTopic creates the topic the producer writes to when it does not exist yet.
func (p *Producer) EnsureTopic(ctx context.Context, topic string, partitions int) error {
	err := broker.EnsureTopic(ctx, p.brokers, topic, partitions, p.replicationFactor)
	if err != nil {
		return fmt.Errorf("Kafka Producer - EnsureTopic: %w", err)
	}

	return nil
}

func (p *Producer) Close() error {
	if p.Writer != nil {
		return p.Writer.Close()
	}

	return nil
}
