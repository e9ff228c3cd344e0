package kafka

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/andreyxaxa/ubl-sender/pkg/kafka/consumer"
	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type EventConsumer struct {
	*consumer.Consumer
}

func NewEventConsumer(consumer *consumer.Consumer) *EventConsumer {
	return &EventConsumer{consumer}
}

func (ec *EventConsumer) ReadEvent(ctx context.Context) (kafka.Message, error) {
	msg, err := ec.Reader.FetchMessage(ctx)
	if err != nil {
		return kafka.Message{}, fmt.Errorf("EventConsumer - ReadEvent - ec.Reader.FetchMessage: %w", err)
	}

	return msg, nil
}

func (ec *EventConsumer) CommitEvent(ctx context.Context, event kafka.Message) error {
	err := ec.Reader.CommitMessages(ctx, event)
	if err != nil {
		return fmt.Errorf("EventConsumer - CommitEvent - ec.Reader.CommitMessages: %w", err)
	}

	return nil
}

func (ec *EventConsumer) Close() error {
	err := ec.Consumer.Close()
	if err != nil {
		return fmt.Errorf("EventConsumer - Close: %w", err)
	}

	return nil
}

// Trigger is a decoded delivery trigger message.
type Trigger struct {
	DeliveryID uuid.UUID
	EventID    string
	DeliverAt  time.Time // zero if the producer set no delay
}

func ParseTrigger(msg kafka.Message) (Trigger, error) {
	id, err := uuid.ParseBytes(msg.Value)
	if err != nil {
		return Trigger{}, fmt.Errorf("ParseTrigger - uuid.ParseBytes: %w", err)
	}

	t := Trigger{DeliveryID: id}

	for _, h := range msg.Headers {
		switch h.Key {
		case EventIDHeader:
			t.EventID = string(h.Value)
		case DeliverAtHeader:
			ms, err := strconv.ParseInt(string(h.Value), 10, 64)
			if err != nil {
				return Trigger{}, fmt.Errorf("ParseTrigger - strconv.ParseInt: %w", err)
			}
			t.DeliverAt = time.UnixMilli(ms)
		}
	}

	return t, nil
}
