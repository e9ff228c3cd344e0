// Package broker holds the connection checks shared by the kafka producer and consumer.
package broker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

var ErrNoBrokers = errors.New("no brokers")

// Wait dials the brokers in turn until one of them answers a metadata request.
func Wait(ctx context.Context, name string, brokers []string, attempts int, pause time.Duration) error {
	if len(brokers) == 0 {
		return fmt.Errorf("%s - Wait: %w", name, ErrNoBrokers)
	}

	var err error
	for attempt := 1; ; attempt++ {
		err = ping(ctx, brokers[(attempt-1)%len(brokers)])
		if err == nil {
			return nil
		}
		if attempt >= attempts {
			return fmt.Errorf("%s - Wait - brokers unreachable after %d attempts: %w", name, attempt, err)
		}

		log.Printf("%s is trying to connect, attempt %d/%d: %v", name, attempt, attempts, err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%s - Wait: %w", name, ctx.Err())
		case <-time.After(pause):
		}
	}
}

func ping(ctx context.Context, addr string) error {
	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("kafka.DialContext: %w", err)
	}
	defer conn.Close()

	_, err = conn.Brokers()
	if err != nil {
		return fmt.Errorf("conn.Brokers: %w", err)
	}

	return nil
}

// EnsureTopic creates topic on the cluster controller. An existing topic is not an error.
func EnsureTopic(ctx context.Context, brokers []string, topic string, partitions, replicationFactor int) error {
	if len(brokers) == 0 {
		return fmt.Errorf("EnsureTopic: %w", ErrNoBrokers)
	}

	conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
	if err != nil {
		return fmt.Errorf("EnsureTopic - kafka.DialContext: %w", err)
	}
	defer conn.Close()

	controller, err := conn.Controller()
	if err != nil {
		return fmt.Errorf("EnsureTopic - conn.Controller: %w", err)
	}

	var d kafka.Dialer
	cc, err := d.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("EnsureTopic - dial controller: %w", err)
	}
	defer cc.Close()

	err = cc.CreateTopics(kafka.TopicConfig{
		Topic:             topic,
		NumPartitions:     partitions,
		ReplicationFactor: replicationFactor,
	})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("EnsureTopic - cc.CreateTopics: %w", err)
	}

	return nil
}
