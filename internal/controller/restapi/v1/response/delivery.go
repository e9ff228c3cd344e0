package response

import (
	"time"

	"github.com/andreyxaxa/ubl-sender/internal/entity"
)

type Delivery struct {
	ID             string  `json:"id" example:"6f1c2a3e-8e0b-4d43-9c51-0d0a3c0b9e11"`
	FileID         string  `json:"file_id" example:"20123456789-01-F123-45678.xml"`
	Filename       string  `json:"filename" example:"20123456789-01-F123-45678.xml"`
	TaxpayerID     string  `json:"taxpayer_id" example:"20123456789"`
	DocumentID     string  `json:"document_id" example:"F123-45678"`
	DocumentType   string  `json:"document_type" example:"Invoice"`
	DeliveryStatus string  `json:"delivery_status" example:"scheduled_to_deliver"`
	ServerURL      string  `json:"server_url"`
	CustomID       *string `json:"custom_id,omitempty"`
	Attempts       int     `json:"attempts"`
	Ticket         *string `json:"ticket,omitempty"`
	DeliveryError  *string `json:"delivery_error,omitempty"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
	DeliveredAt    *string `json:"delivered_at,omitempty"`
}

func NewDelivery(d *entity.FileDelivery) Delivery {
	resp := Delivery{
		ID:             d.ID.String(),
		FileID:         d.FileID,
		Filename:       d.Filename,
		TaxpayerID:     d.TaxpayerID,
		DocumentID:     d.DocumentID,
		DocumentType:   string(d.DocumentType),
		DeliveryStatus: string(d.DeliveryStatus),
		ServerURL:      d.ServerURL,
		CustomID:       d.CustomID,
		Attempts:       d.Attempts,
		Ticket:         d.Ticket,
		DeliveryError:  d.DeliveryError,
		CreatedAt:      d.CreatedAt.Format(time.RFC3339),
		UpdatedAt:      d.UpdatedAt.Format(time.RFC3339),
	}

	if d.DeliveredAt != nil {
		s := d.DeliveredAt.Format(time.RFC3339)
		resp.DeliveredAt = &s
	}

	return resp
}
