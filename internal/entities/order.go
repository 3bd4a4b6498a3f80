package entities

import "time"

// Order - событие маркетплейса, из которого воркер создаёт заявку.
// Payload самодостаточен: верификация через синхронный RPC не нужна.
type Order struct {
	ID              string
	Status          OrderStatusType
	CustomerID      *int64
	Pickup          Waypoint
	Dropoff         Waypoint
	ItemDescription string
	CreatedAt       time.Time
}

type OrderStatusType string

const (
	OrderPlaced    OrderStatusType = "placed"
	OrderCancelled OrderStatusType = "cancelled"
)

func (s OrderStatusType) String() string {
	return string(s)
}
