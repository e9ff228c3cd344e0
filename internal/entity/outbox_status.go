package entity

// OutboxStatus is the relay lifecycle of an outbox row:
// pending -> processing -> processed, or back to pending on a failed publish,
// and failed once retries are exhausted.
type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxProcessing OutboxStatus = "processing"
	OutboxProcessed  OutboxStatus = "processed"
	OutboxFailed     OutboxStatus = "failed"
)
