package responder

import (
	"context"

	"dispatch/internal/entities"
)

// Coordinator - серверная сторона гонки глазами райдера.
type Coordinator interface {
	ListOpen(ctx context.Context, limit int) ([]entities.DeliveryRequest, error)
	Claim(ctx context.Context, requestID, riderID int64) (*entities.DeliveryRequest, error)
}

// Presence продлевает присутствие райдера в онлайн-пуле.
type Presence interface {
	Heartbeat(ctx context.Context, riderID int64) (*entities.Rider, error)
}
