package entity

import (
	"time"

	"github.com/google/uuid"
)

type FileDelivery struct {
	ID uuid.UUID `json:"id"`

	FileID   string `json:"file_id"`
	Filename string `json:"filename"`

	TaxpayerID   string       `json:"taxpayer_id"`
	DocumentID   string       `json:"document_id"`
	DocumentType DocumentType `json:"document_type"`

	DeliveryStatus DeliveryStatus `json:"delivery_status"`
	ServerURL      string         `json:"server_url"`
	CustomID       *string        `json:"custom_id,omitempty"`

	Attempts      int     `json:"attempts"`
	Ticket        *string `json:"ticket,omitempty"`
	DeliveryError *string `json:"delivery_error,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`
}
