package entity

type DeliveryStatus string

const (
	ScheduledToDeliver DeliveryStatus = "scheduled_to_deliver"
	Delivering         DeliveryStatus = "delivering"
	Delivered          DeliveryStatus = "delivered"
	DeliveryFailed     DeliveryStatus = "delivery_failed"
)
