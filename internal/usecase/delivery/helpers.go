package delivery

import (
	"time"

	"github.com/andreyxaxa/ubl-sender/internal/entity"
	"github.com/google/uuid"
)

// createOutboxEvent builds the trigger for a delivery. The payload is the
// record id only; consumers look the record up themselves.
func (uc *UseCase) createOutboxEvent(deliveryID uuid.UUID, now time.Time, delay time.Duration) *entity.OutboxEvent {
	return &entity.OutboxEvent{
		ID:          uuid.New(),
		AggregateID: deliveryID,
		Payload:     []byte(deliveryID.String()),
		Status:      entity.OutboxPending,
		CreatedAt:   now,
		DeliverAt:   now.Add(delay),
		RetryCount:  0,
	}
}

func eventIDs(events []*entity.OutboxEvent) uuid.UUIDs {
	IDs := make(uuid.UUIDs, 0, len(events))

	for _, event := range events {
		IDs = append(IDs, event.ID)
	}

	return IDs
}
