package consumer

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
	_defaultMaxWait      = time.Second
)

type Consumer struct {
	connAttempts int
	connTimeout  time.Duration
	maxWait      time.Duration

	brokers []string
	groupID string
	topic   string

	Reader *kafka.Reader
}

func New(ctx context.Context, brokers []string, groupID, topic string, opts ...Option) (*Consumer, error) {
	c := &Consumer{
		connAttempts: _defaultConnAttempts,
		connTimeout:  _defaultConnTimeout,
		maxWait:      _defaultMaxWait,
		brokers:      brokers,
		groupID:      groupID,
		topic:        topic,
	}

	for _, opt := range opts {
		opt(c)
	}

	err := broker.Wait(ctx, "Kafka Consumer", c.brokers, c.connAttempts, c.connTimeout)
	if err != nil {
		return nil, fmt.Errorf("Kafka Consumer - New - broker.Wait: %w", err)
	}

	// trigger messages are tiny, so no MinBytes batching
	c.Reader = kafka.NewReader(kafka.ReaderConfig{
		Brokers:     c.brokers,
		GroupID:     c.groupID,
		Topic:       c.topic,
		MinBytes:    1,
		MaxBytes:    1e6,
		MaxWait:     c.maxWait,
		StartOffset: kafka.FirstOffset,
	})

	return c, nil
}

func (c *Consumer) Close() error {
	if c.Reader != nil {
		return c.Reader.Close()
	}
	return nil
}
