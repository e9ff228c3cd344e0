package kafka

import (
	"context"
	"fmt"
	"strconv"

	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/andreyxaxa/ubl-sender/pkg/kafka/producer"
	"github.com/andreyxaxa/ubl-sender/pkg/types/errs"
	"github.com/segmentio/kafka-go"
)

const (
	EventIDHeader   = "event_id"
	DeliverAtHeader = "deliver_at" // unix millis
)

type EventProducer struct {
	*producer.Producer
	topic string
}

func NewEventProducer(producer *producer.Producer, topic string) *EventProducer {
	return &EventProducer{
		producer,
		topic,
	}
}

func (ep *EventProducer) SendEvents(ctx context.Context, events []*entity.OutboxEvent) error {
	msgsToSend := BuildMessages(ep.topic, events)
	if len(msgsToSend) == 0 {
		return nil
	}

	err := ep.Writer.WriteMessages(ctx, msgsToSend...)
	if err != nil {
		return fmt.Errorf("EventProducer - SendEvents - ep.Writer.WriteMessages: %w: %w", errs.ErrChannel, err)
	}

	return nil
}

// BuildMessages keys every message by record id so redeliveries of one
// record land on one partition.
func BuildMessages(topic string, events []*entity.OutboxEvent) []kafka.Message {
	msgs := make([]kafka.Message, 0, len(events))

	for _, event := range events {
		msgs = append(msgs, kafka.Message{
			Topic: topic,
			Key:   []byte(event.AggregateID.String()),
			Value: event.Payload,
			Headers: []kafka.Header{
				{Key: EventIDHeader, Value: []byte(event.ID.String())},
				{Key: DeliverAtHeader, Value: []byte(strconv.FormatInt(event.DeliverAt.UnixMilli(), 10))},
			},
		})
	}

	return msgs
}

func (ep *EventProducer) Close() error {
	err := ep.Producer.Close()
	if err != nil {
		return fmt.Errorf("EventProducer - Close: %w", err)
	}

	return nil
}
